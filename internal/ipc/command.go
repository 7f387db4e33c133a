// Package ipc is tuck's control socket: a Unix socket that takes one
// command per connection and answers with one line.
package ipc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command names understood by the server.
const (
	CmdToggle   = "toggle"
	CmdCollapse = "collapse"
	CmdExpand   = "expand"
	CmdReset    = "reset"
	CmdAutoHide = "autohide"
	CmdDelay    = "delay"
	CmdStatus   = "status"
	CmdQuit     = "quit"
)

// Commands lists every command with a one-line description, in help order.
var Commands = []struct {
	Name string
	Help string
}{
	{CmdToggle, "Show or hide the icons left of the separator"},
	{CmdCollapse, "Hide the icons"},
	{CmdExpand, "Show the icons"},
	{CmdReset, "Recreate the status items and forget their positions"},
	{CmdAutoHide, "Turn auto-hide on or off"},
	{CmdDelay, "Set the auto-hide delay: delay <seconds>"},
	{CmdStatus, "Print the current state"},
	{CmdQuit, "Stop tuck"},
}

// Request is a parsed command line.
type Request struct {
	Name string
	Args []string
}

func (r Request) String() string {
	return strings.Join(append([]string{r.Name}, r.Args...), " ")
}

// ParseRequest splits a command line and checks the command name. Unknown
// names return an error wrapping ErrUnknownCommand that carries a
// suggestion when one is close enough.
func ParseRequest(line string) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Request{}, fmt.Errorf("%w: empty", ErrUnknownCommand)
	}

	name := strings.ToLower(fields[0])
	for _, c := range Commands {
		if c.Name == name {
			return Request{Name: name, Args: fields[1:]}, nil
		}
	}

	if s := Suggest(name); len(s) > 0 {
		return Request{}, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownCommand, name, s[0])
	}
	return Request{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

// Suggest ranks known commands against a mistyped one.
func Suggest(name string) []string {
	names := make([]string, len(Commands))
	for i, c := range Commands {
		names[i] = c.Name
	}

	matches := fuzzy.Find(name, names)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}
