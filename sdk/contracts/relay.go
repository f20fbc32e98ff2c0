package contracts

// WebhookResult is the synchronous outcome of a test-fired HTTP action.
type WebhookResult struct {
	StatusCode int    `json:"statuscode"`
	Status     string `json:"status"`
	Body       string `json:"body,omitempty"`
}

// Relay is the produced surface of the MIDI relay engine, consumed by an
// external API layer. No method is fatal to the process: failures surface as
// error returns or APP-ERR activity entries and the relay keeps running.
type Relay interface {
	// SendMIDI validates, encodes and sends an outbound message. A
	// validation failure is returned synchronously and never logged as an
	// application error.
	SendMIDI(req OutboundMidiRequest) error

	// Ports scans the transport, auto-opens enabled inputs and reports the
	// merged registry state.
	Ports() ([]PortInfo, error)
	// OpenPort opens the named input. Opening an already-open port is a
	// no-op.
	OpenPort(name string) error
	// ClosePort releases the named port's handles. Idempotent.
	ClosePort(name string) error
	// ToggleInput flips the persisted enabled flag for an input and opens
	// or closes it accordingly.
	ToggleInput(name string) error

	// Triggers reloads the persisted rule set and returns it.
	Triggers() ([]Trigger, error)
	AddTrigger(t Trigger) (Trigger, error)
	UpdateTrigger(t Trigger) error
	DeleteTrigger(id string) error
	// TestTrigger fires an http trigger's webhook immediately and returns
	// the outcome to the caller instead of only logging it.
	TestTrigger(id string) (WebhookResult, error)

	// Profiles are named snapshots of the full trigger list.
	Profiles() ([]string, error)
	SaveProfile(name string) error
	LoadProfile(name string) error
	DeleteProfile(name string) error

	// ActivityEntries returns a snapshot of the bounded activity log,
	// oldest first.
	ActivityEntries() []LogEntry

	// Shutdown closes all open port handles and the transport session.
	// Close errors are swallowed; Shutdown is idempotent.
	Shutdown() error
}
