package relay

import (
	"net/http"
	"time"

	"github.com/showbridge/midirelay/internal/logger"
	"github.com/showbridge/midirelay/internal/settings"
	"github.com/showbridge/midirelay/internal/transport/rtmidi"
	"github.com/showbridge/midirelay/sdk/contracts"
)

// Fallback values applied when no option overrides them.
const (
	defaultHTTPTimeout = 5000 * time.Millisecond
	defaultQueueSize   = 256
	defaultVirtualName = "MIDI Relay"
)

// applyDefaultOptions sets default values for RelayOptions if not explicitly
// provided: a zap logger, the rtmidi transport, an in-memory settings store
// and the standard timeout and queue sizing.
func applyDefaultOptions(opts ...contracts.Option) (contracts.RelayOptions, error) {
	options := &contracts.RelayOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel != 0 {
		options.Logger.SetLevel(options.LogLevel)
	}

	if options.Store == nil {
		options.Store = settings.NewMemoryStore()
	}

	if options.Transport == nil {
		transport, err := rtmidi.New()
		if err != nil {
			return contracts.RelayOptions{}, err
		}
		options.Transport = transport
	}

	if options.HTTPTimeout <= 0 {
		options.HTTPTimeout = defaultHTTPTimeout
	}
	if options.HTTPClient == nil {
		options.HTTPClient = &http.Client{}
	}
	if options.QueueSize <= 0 {
		options.QueueSize = defaultQueueSize
	}
	if options.VirtualPortName == "" {
		options.VirtualPortName = defaultVirtualName
	}

	return *options, nil
}
