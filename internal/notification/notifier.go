// Package notification sends desktop notifications through whatever daemon
// owns org.freedesktop.Notifications on the session bus.
package notification

import (
	"fmt"
	"log"

	"github.com/godbus/dbus/v5"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyCall = busName + ".Notify"
)

type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

// timeout returns the expire timeout in milliseconds; -1 leaves it to the
// daemon and 0 never expires.
func (u Urgency) timeout() int32 {
	if u == UrgencyCritical {
		return 0
	}
	return -1
}

type caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Notifier posts notifications. Successive notifications replace the
// previous one so a burst of resets leaves a single bubble.
type Notifier struct {
	appName string
	icon    string
	conn    *dbus.Conn
	obj     caller
	lastID  uint32
}

func NewNotifier(appName, icon string) (*Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Notifier{
		appName: appName,
		icon:    icon,
		conn:    conn,
		obj:     conn.Object(busName, objectPath),
	}, nil
}

func (n *Notifier) Notify(summary, body string, urgency Urgency) error {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(urgency)),
	}

	call := n.obj.Call(notifyCall, 0,
		n.appName, n.lastID, n.icon, summary, body, []string{}, hints, urgency.timeout())

	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("notify %q: %w", summary, err)
	}
	n.lastID = id

	log.Printf("[NOTIFY] %s (id %d, %s)", summary, id, urgency)
	return nil
}

func (n *Notifier) Close() error {
	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	return err
}
