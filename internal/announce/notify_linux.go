//go:build linux

package announce

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyBusName    = "org.freedesktop.Notifications"
	notifyObjectPath = "/org/freedesktop/Notifications"
	notifyInterface  = "org.freedesktop.Notifications.Notify"
)

// DBusAnnouncer sends desktop notifications over the Linux session bus
// (the debug-only per-tick pop-up of cmd/auralctl), grounded on
// internal/media/mpris_linux.go's dbus.SessionBus() connection
// pattern, stripped to a single method call instead of an exported
// object.
type DBusAnnouncer struct {
	conn *dbus.Conn
}

// NewDBus connects to the session bus for desktop notifications.
func NewDBus() (*DBusAnnouncer, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("announce: failed to connect to session bus: %w", err)
	}
	return &DBusAnnouncer{conn: conn}, nil
}

// Notify fires a desktop notification with title and body.
func (a *DBusAnnouncer) Notify(title, body string) error {
	obj := a.conn.Object(notifyBusName, dbus.ObjectPath(notifyObjectPath))
	call := obj.Call(notifyInterface, 0,
		"auralcore",               // app name
		uint32(0),                 // replaces id
		"",                        // app icon
		title,
		body,
		[]string{},                // actions
		map[string]dbus.Variant{}, // hints
		int32(3000),               // expire timeout, ms
	)
	return call.Err
}

// Close releases the announcer's bus connection.
func (a *DBusAnnouncer) Close() error {
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
