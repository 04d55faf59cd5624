package common

import (
	"sync"

	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/logging"
)

// Notification is a transient user-facing message raised by a plugin screen.
type Notification struct {
	Plugin  string
	Type    constants.NotificationType
	Message string
}

// Notifier surfaces notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notification) {
	switch n.Type {
	case constants.NotifyDanger:
		logging.Warn(n.Message, "plugin", n.Plugin, "type", string(n.Type))
	default:
		logging.Info(n.Message, "plugin", n.Plugin, "type", string(n.Type))
	}
}

// NotificationRecorder keeps every notification it receives.
type NotificationRecorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *NotificationRecorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *NotificationRecorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns how many notifications were recorded.
func (r *NotificationRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
