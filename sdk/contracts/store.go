package contracts

import "errors"

// ErrSettingNotFound is returned by SettingsStore.Get for an unset key.
var ErrSettingNotFound = errors.New("setting not found")

// SettingsStore persists relay configuration: the trigger list, the disabled
// input set, the webhook timeout and named profile snapshots. Get decodes the
// stored value into out, which must be a pointer.
type SettingsStore interface {
	Get(key string, out any) error
	Set(key string, value any) error
}

// NotificationSink receives fire-and-forget desktop notifications. Failures
// are ignored by the relay.
type NotificationSink interface {
	Notify(title, body string)
}

// LogSink receives every activity log entry as it is appended, e.g. for a
// live websocket feed. Implementations must not block the caller.
type LogSink interface {
	Publish(entry LogEntry)
}

// EventSink receives every decoded inbound event, independent of trigger
// matching. Implementations must not block the caller.
type EventSink interface {
	Publish(event MidiEvent)
}
