// Package console handles the single interactive question a run may ask.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// PromptTeamSize asks for a team size and returns the raw answer. EOF is an
// empty answer, so the caller's default applies.
func PromptTeamSize(in io.Reader, out io.Writer, def int) (string, error) {
	fmt.Fprintln(out, "Each team is formed from the final ranking, top scorers first.")
	fmt.Fprintf(out, "For example, %d forms consecutive teams of %d.\n\n", def, def)
	fmt.Fprintf(out, "Enter team size (default %d): ", def)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read team size: %w", err)
	}
	return strings.TrimSpace(line), nil
}
