package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// TerminalConfirmer asks the single bulk yes/no question on a terminal.
type TerminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalConfirmer(in io.Reader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm prints the prompt and reads one answer. Anything that is not an
// affirmative, including a read error or EOF, declines.
func (t *TerminalConfirmer) Confirm(groups, candidates int, reclaimable int64) bool {
	fmt.Fprintf(t.out, "Delete %d file(s) across %d group(s), reclaiming %s? [y/N]: ",
		candidates, groups, humanize.IBytes(uint64(reclaimable)))

	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return IsAffirmative(line)
}

// IsAffirmative recognizes case-insensitive y/yes, trimmed of whitespace.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
