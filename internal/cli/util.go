package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sadopc/solartrack/internal/report"
	"github.com/sadopc/solartrack/internal/store"
	"golang.org/x/term"
)

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func hoursText(h float64) string {
	return report.FormatHours(h) + "h"
}

func signed(v float64) string {
	if v > 0 {
		return "+" + report.FormatHours(v)
	}
	return report.FormatHours(v)
}

// isTerminal is replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var errNotConfirmed = errors.New("aborted")

// confirm asks a yes/no question on in. Without a terminal on stdin the
// question cannot be asked and the caller must pass --yes.
func confirm(in io.Reader, out io.Writer, question string) error {
	if !isTerminal() {
		return fmt.Errorf("%s: stdin is not a terminal, pass --yes to confirm", question)
	}
	warnColor.Fprintf(out, "%s [y/N]: ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "a", "ano":
		return nil
	}
	return errNotConfirmed
}
