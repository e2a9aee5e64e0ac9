// Package columns maps spreadsheet headers onto the roles the loader needs.
package columns

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the meaning of a column.
type Role int

// Roles recognised in a standings export.
const (
	None Role = iota
	Identifier
	Rank
)

func (r Role) String() string {
	switch r {
	case Identifier:
		return "identifier"
	case Rank:
		return "rank"
	default:
		return "none"
	}
}

// ErrSchemaMismatch reports a header without an identifier or rank column.
var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaError lists what was missing and which headers were present.
type SchemaError struct {
	Missing []Role
	Found   []string
}

func (e *SchemaError) Error() string {
	missing := make([]string, len(e.Missing))
	for i, r := range e.Missing {
		missing[i] = r.String()
	}
	return fmt.Sprintf("no %s column among %q", strings.Join(missing, " or "), e.Found)
}

func (e *SchemaError) Unwrap() error { return ErrSchemaMismatch }

// DefaultIdentifierAliases are the headers accepted for the participant column.
func DefaultIdentifierAliases() []string {
	return []string{"username", "user", "team", "handle", "participant", "name", "contestant"}
}

// DefaultRankAliases are the headers accepted for the rank column.
func DefaultRankAliases() []string {
	return []string{"rank", "position", "place", "standing"}
}

// Mapping gives the zero-based column index of each role.
type Mapping struct {
	Identifier int
	Rank       int
}

// Resolver looks headers up case-insensitively.
type Resolver struct {
	roles map[string]Role
}

// NewResolver builds a resolver from alias lists. An alias listed for both
// roles resolves to the identifier.
func NewResolver(identifierAliases, rankAliases []string) *Resolver {
	r := &Resolver{roles: make(map[string]Role, len(identifierAliases)+len(rankAliases))}
	for _, a := range rankAliases {
		r.roles[normalize(a)] = Rank
	}
	for _, a := range identifierAliases {
		r.roles[normalize(a)] = Identifier
	}
	delete(r.roles, "")
	return r
}

// RoleOf returns the role of a single header.
func (r *Resolver) RoleOf(header string) Role {
	return r.roles[normalize(header)]
}

// Resolve picks the first column for each role.
func (r *Resolver) Resolve(header []string) (Mapping, error) {
	m := Mapping{Identifier: -1, Rank: -1}
	for i, h := range header {
		switch r.RoleOf(h) {
		case Identifier:
			if m.Identifier < 0 {
				m.Identifier = i
			}
		case Rank:
			if m.Rank < 0 {
				m.Rank = i
			}
		}
	}

	var missing []Role
	if m.Identifier < 0 {
		missing = append(missing, Identifier)
	}
	if m.Rank < 0 {
		missing = append(missing, Rank)
	}
	if len(missing) > 0 {
		return m, &SchemaError{Missing: missing, Found: append([]string(nil), header...)}
	}
	return m, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
