// Package console prints the few lines tuck shows on its terminal. Logging
// goes to the log file; these are for the person who started the process.
package console

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Output is where console lines go.
var Output io.Writer = color.Output

var (
	ok    = color.New(color.FgGreen, color.Bold)
	warn  = color.New(color.FgHiYellow, color.Bold)
	fail  = color.New(color.FgRed, color.Bold)
	faint = color.New(color.Faint)
)

func Success(format string, args ...interface{}) {
	_, _ = ok.Fprint(Output, "✓ ")
	_, _ = fmt.Fprintf(Output, format+"\n", args...)
}

func Failure(format string, args ...interface{}) {
	_, _ = fail.Fprint(Output, "✗ ")
	_, _ = fmt.Fprintf(Output, format+"\n", args...)
}

// Banner is printed once the bar is up.
func Banner(toggle, reset string, shortcuts bool) {
	Success("Tuck is running")
	hint("Drag status icons to the LEFT of the separator to hide them")
	hint("Left-click the chevron to toggle visibility")
	hint("Right-click the chevron for the menu (auto-hide)")
	if shortcuts {
		hint("Press %s to toggle visibility", toggle)
		hint("Press %s for emergency reset", reset)
	}
	hint("Run `tuck ctl toggle` to toggle from scripts")
	hint("Press Ctrl+C to exit")
}

// ShortcutsDisabled explains why chords do nothing. Printed at most once per
// run by the caller.
func ShortcutsDisabled(err error) {
	_, _ = fmt.Fprintln(Output)
	_, _ = warn.Fprintln(Output, "⚠  KEYBOARD SHORTCUTS ARE DISABLED")
	_, _ = faint.Fprintf(Output, "   %v\n", err)
	_, _ = faint.Fprintln(Output, "   Global chords need a running sway session ($SWAYSOCK).")
	_, _ = faint.Fprintln(Output, "   Bind `exec tuck ctl toggle` in your compositor instead.")
	_, _ = fmt.Fprintln(Output)
}

func Stopped() {
	_, _ = fmt.Fprintln(Output)
	Success("Tuck stopped")
}

func hint(format string, args ...interface{}) {
	_, _ = faint.Fprintf(Output, "  • "+format+"\n", args...)
}
