// Package relay is the public entry point of the MIDI relay engine.
package relay

import (
	"github.com/showbridge/midirelay/internal/engine"
	"github.com/showbridge/midirelay/sdk/contracts"
)

// New creates a relay engine with the specified options.
// It applies default options and initializes the engine, which loads the
// persisted configuration, starts the receive pipeline and performs an
// initial port scan.
//
// opts ...contracts.Option: A variadic list of option functions to customize the relay configuration.
//
// Returns:
//   - contracts.Relay: An instance of the relay engine.
//   - error: An error, if any occurred during initialization.
func New(opts ...contracts.Option) (contracts.Relay, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	return engine.New(&options)
}
