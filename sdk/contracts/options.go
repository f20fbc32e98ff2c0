package contracts

import (
	"net/http"
	"time"
)

// RelayOptions defines the configuration options for the relay engine.
type RelayOptions struct {
	Logger    Logger        // Logger for engine events and warnings.
	LogLevel  LogLevel      // Severity threshold for the logger.
	Transport Transport     // Device I/O driver.
	Store     SettingsStore // Persisted configuration backend.

	Notifier  NotificationSink // Optional desktop notification sink.
	LogSink   LogSink          // Optional live activity feed.
	EventSink EventSink        // Optional inbound event feed.

	HTTPTimeout time.Duration // Per-call webhook timeout; the httpTimeout setting overrides it.
	HTTPClient  *http.Client  // Client used for webhook calls.

	QueueSize       int    // Capacity of the inbound message queue.
	VirtualPortName string // Name for the best-effort virtual port pair.
}

// Option is a function that modifies RelayOptions.
type Option func(*RelayOptions)

// WithLogger sets the logger for the relay.
func WithLogger(l Logger) Option {
	return func(opts *RelayOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the relay.
func WithLogLevel(level LogLevel) Option {
	return func(opts *RelayOptions) {
		opts.LogLevel = level
	}
}

// WithTransport sets the MIDI transport driver.
func WithTransport(t Transport) Option {
	return func(opts *RelayOptions) {
		opts.Transport = t
	}
}

// WithSettingsStore sets the persisted configuration backend.
func WithSettingsStore(s SettingsStore) Option {
	return func(opts *RelayOptions) {
		opts.Store = s
	}
}

// WithNotifier sets the desktop notification sink.
func WithNotifier(n NotificationSink) Option {
	return func(opts *RelayOptions) {
		opts.Notifier = n
	}
}

// WithLogSink sets the live activity feed sink.
func WithLogSink(s LogSink) Option {
	return func(opts *RelayOptions) {
		opts.LogSink = s
	}
}

// WithEventSink sets the inbound event feed sink.
func WithEventSink(s EventSink) Option {
	return func(opts *RelayOptions) {
		opts.EventSink = s
	}
}

// WithHTTPTimeout sets the default webhook timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(opts *RelayOptions) {
		opts.HTTPTimeout = d
	}
}

// WithHTTPClient sets the HTTP client used for webhook calls.
func WithHTTPClient(c *http.Client) Option {
	return func(opts *RelayOptions) {
		opts.HTTPClient = c
	}
}

// WithQueueSize sets the capacity of the inbound message queue.
func WithQueueSize(n int) Option {
	return func(opts *RelayOptions) {
		opts.QueueSize = n
	}
}

// WithVirtualPortName sets the name of the virtual port pair the relay
// registers on scan.
func WithVirtualPortName(name string) Option {
	return func(opts *RelayOptions) {
		opts.VirtualPortName = name
	}
}
