package core

import (
	"fmt"
	"strconv"
	"time"

	"github.com/chess10kp/tuck/internal/ipc"
	"github.com/chess10kp/tuck/internal/visibility"
)

// controller is the part of *visibility.Controller the control socket
// drives.
type controller interface {
	Toggle()
	Collapse()
	Expand()
	ToggleAutoHide()
	SetAutoHideDelay(seconds float64) error
	State() visibility.State
	Policy() visibility.AutoHidePolicy
	AutoHidePending() bool
	AutoHideRemaining() time.Duration
}

// commands answers control socket requests. It runs on the main loop.
type commands struct {
	ctrl  controller
	reset func() error
	quit  func()
}

func (c *commands) Handle(req ipc.Request) (string, error) {
	switch req.Name {
	case ipc.CmdToggle:
		c.ctrl.Toggle()
	case ipc.CmdCollapse:
		c.ctrl.Collapse()
	case ipc.CmdExpand:
		c.ctrl.Expand()
	case ipc.CmdReset:
		if err := c.reset(); err != nil {
			return "", err
		}
	case ipc.CmdAutoHide:
		if err := c.autoHide(req.Args); err != nil {
			return "", err
		}
	case ipc.CmdDelay:
		if len(req.Args) != 1 {
			return "", fmt.Errorf("usage: delay <seconds>")
		}
		seconds, err := strconv.ParseFloat(req.Args[0], 64)
		if err != nil {
			return "", fmt.Errorf("invalid delay %q: %w", req.Args[0], err)
		}
		if err := c.ctrl.SetAutoHideDelay(seconds); err != nil {
			return "", err
		}
	case ipc.CmdStatus:
	case ipc.CmdQuit:
		c.quit()
		return "stopping", nil
	default:
		return "", fmt.Errorf("%w: %q", ipc.ErrUnknownCommand, req.Name)
	}
	return c.status(), nil
}

// autoHide toggles, or with an on/off argument sets, the auto-hide flag.
func (c *commands) autoHide(args []string) error {
	if len(args) == 0 {
		c.ctrl.ToggleAutoHide()
		return nil
	}

	want, err := parseSwitch(args[0])
	if err != nil {
		return err
	}
	if c.ctrl.Policy().Enabled != want {
		c.ctrl.ToggleAutoHide()
	}
	return nil
}

func (c *commands) status() string {
	policy := c.ctrl.Policy()
	onOff := "off"
	if policy.Enabled {
		onOff = "on"
	}
	status := fmt.Sprintf("%s autohide=%s delay=%s",
		c.ctrl.State(), onOff, strconv.FormatFloat(policy.DelaySeconds, 'g', -1, 64))
	if c.ctrl.AutoHidePending() {
		status += " hide_in=" + strconv.FormatFloat(c.ctrl.AutoHideRemaining().Seconds(), 'f', 1, 64)
	}
	return status
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "true", "1", "enable":
		return true, nil
	case "off", "false", "0", "disable":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
