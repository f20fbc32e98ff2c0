package contracts

// PortDirection tells whether an endpoint receives or emits MIDI.
type PortDirection string

const (
	PortIn  PortDirection = "in"
	PortOut PortDirection = "out"
)

// TransportPort describes an endpoint as reported by the transport driver.
type TransportPort struct {
	Name         string
	Manufacturer string
	Direction    PortDirection
}

// PortInfo is the relay's view of a logical endpoint, merging the transport
// scan with the registry's open/enabled state.
type PortInfo struct {
	Name         string        `json:"name"`
	Manufacturer string        `json:"manufacturer,omitempty"`
	Direction    PortDirection `json:"direction"`
	Opened       bool          `json:"opened"`
	// Enabled applies to inputs only: whether the relay auto-opens the
	// port on scan. Persisted as a disabled-set.
	Enabled bool `json:"enabled,omitempty"`
}

// InputConn is an open input handle. Closing is idempotent.
type InputConn interface {
	Close() error
}

// OutputConn is an open output handle. The relay serializes Send calls per
// handle; implementations need not be safe for interleaved writes.
type OutputConn interface {
	Send(data []byte) error
	Close() error
}

// Transport is the device I/O driver behind the relay. Implementations wrap
// an actual MIDI backend; tests substitute fakes.
type Transport interface {
	// Ports reports every known endpoint, both directions.
	Ports() ([]TransportPort, error)

	// OpenInput opens the named input and delivers every raw byte message
	// to onMessage. The slice passed to onMessage is owned by the callee.
	OpenInput(name string, onMessage func(data []byte)) (InputConn, error)

	// OpenOutput opens the named output for sending.
	OpenOutput(name string) (OutputConn, error)

	// CreateVirtualPair registers a virtual input/output port pair under
	// the given name, where the backend supports it.
	CreateVirtualPair(name string) error

	// Close releases the underlying driver session.
	Close() error
}
