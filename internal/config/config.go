// Package config defines run configuration and its loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and TEAMRANK_ env vars.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/okian/teamrank/internal/domain/columns"
	"github.com/okian/teamrank/internal/domain/partition"
	"github.com/okian/teamrank/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// InputDir holds the contest leaderboard exports.
	InputDir string `koanf:"input_dir"`

	// OutputFile is the workbook written at the end of a run.
	OutputFile string `koanf:"output_file"`

	// Extensions filters which files in InputDir are treated as contests.
	Extensions []string `koanf:"extensions"`

	// Numerator and Offset parameterise points = ceil(Numerator / (rank + Offset)).
	Numerator int `koanf:"numerator"`
	Offset    int `koanf:"offset"`

	// TeamSize is used when no team size is given on the command line or prompt.
	TeamSize int `koanf:"team_size"`

	// Workers bounds how many files are read at once.
	Workers int `koanf:"workers"`

	// IdentifierAliases and RankAliases are the accepted header names, case-insensitive.
	IdentifierAliases []string `koanf:"identifier_aliases"`
	RankAliases       []string `koanf:"rank_aliases"`

	// Output workbook layout.
	ParticipantsSheet string `koanf:"participants_sheet"`
	TeamSheetPrefix   string `koanf:"team_sheet_prefix"`
	IdentifierHeader  string `koanf:"identifier_header"`
	TotalHeader       string `koanf:"total_header"`

	// MetricsFile, when set, receives a Prometheus textfile after the run.
	MetricsFile string `koanf:"metrics_file"`
}

// Worksheet name limits of the xlsx format.
const (
	maxSheetName = 31
	// Room for team numbers up to 9999 after the prefix.
	maxTeamSheetPrefix = maxSheetName - 4
	sheetNameForbidden = `:\/?*[]`
)

// DefaultTeamSize is the fallback for missing or unusable team sizes.
const DefaultTeamSize = partition.DefaultTeamSize

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		InputDir:          "Leaderboards",
		OutputFile:        "final_teams.xlsx",
		Extensions:        []string{".xlsx", ".xlsm", ".csv"},
		Numerator:         scoring.DefaultNumerator,
		Offset:            scoring.DefaultOffset,
		TeamSize:          DefaultTeamSize,
		Workers:           1,
		IdentifierAliases: columns.DefaultIdentifierAliases(),
		RankAliases:       columns.DefaultRankAliases(),
		ParticipantsSheet: "Participants",
		TeamSheetPrefix:   "Team_",
		IdentifierHeader:  "Username",
		TotalHeader:       "FinalPoints",
	}
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.InputDir) == "":
		return fmt.Errorf("%w: input_dir must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.OutputFile) == "":
		return fmt.Errorf("%w: output_file must not be empty", ErrInvalidConfig)
	case len(c.Extensions) == 0:
		return fmt.Errorf("%w: extensions must not be empty", ErrInvalidConfig)
	case c.Numerator <= 0:
		return fmt.Errorf("%w: numerator must be positive, got %d", ErrInvalidConfig, c.Numerator)
	case c.Offset < 0:
		return fmt.Errorf("%w: offset must not be negative, got %d", ErrInvalidConfig, c.Offset)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case len(c.IdentifierAliases) == 0:
		return fmt.Errorf("%w: identifier_aliases must not be empty", ErrInvalidConfig)
	case len(c.RankAliases) == 0:
		return fmt.Errorf("%w: rank_aliases must not be empty", ErrInvalidConfig)
	case c.ParticipantsSheet == "" || c.TeamSheetPrefix == "":
		return fmt.Errorf("%w: sheet names must not be empty", ErrInvalidConfig)
	case c.IdentifierHeader == "" || c.TotalHeader == "":
		return fmt.Errorf("%w: header names must not be empty", ErrInvalidConfig)
	}
	return c.validateSheets()
}

func (c *Config) validateSheets() error {
	if err := checkSheetName("participants_sheet", c.ParticipantsSheet, maxSheetName); err != nil {
		return err
	}
	if err := checkSheetName("team_sheet_prefix", c.TeamSheetPrefix, maxTeamSheetPrefix); err != nil {
		return err
	}
	if isTeamSheet(c.ParticipantsSheet, c.TeamSheetPrefix) {
		return fmt.Errorf("%w: participants_sheet %q collides with team sheets named %q<n>",
			ErrInvalidConfig, c.ParticipantsSheet, c.TeamSheetPrefix)
	}
	return nil
}

func checkSheetName(key, name string, limit int) error {
	if n := utf8.RuneCountInString(name); n > limit {
		return fmt.Errorf("%w: %s %q is %d characters, at most %d allowed", ErrInvalidConfig, key, name, n, limit)
	}
	if strings.ContainsAny(name, sheetNameForbidden) {
		return fmt.Errorf("%w: %s %q must not contain any of %s", ErrInvalidConfig, key, name, sheetNameForbidden)
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return fmt.Errorf("%w: %s %q must not start or end with an apostrophe", ErrInvalidConfig, key, name)
	}
	return nil
}

// isTeamSheet reports whether name has the form prefix + team number. Sheet
// names compare case-insensitively.
func isTeamSheet(name, prefix string) bool {
	name, prefix = strings.ToLower(name), strings.ToLower(prefix)
	if !strings.HasPrefix(name, prefix) {
		return false
	}
	suffix := name[len(prefix):]
	n, err := strconv.Atoi(suffix)
	return err == nil && n > 0 && strconv.Itoa(n) == suffix
}
