// Package engine implements the relay core: the port registry, the trigger
// engine with its dispatch actions, and the bounded activity log. All mutable
// state is owned by a single Relay instance constructed once per process.
package engine

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/showbridge/midirelay/internal/codec"
	"github.com/showbridge/midirelay/internal/validate"
	"github.com/showbridge/midirelay/sdk/contracts"
)

// Error definitions for engine operations.
var (
	ErrTriggerNotFound = errors.New("trigger not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrNotTestable     = errors.New("only http triggers can be tested")
)

// Settings store keys.
const (
	settingTriggers       = "triggers"
	settingDisabledInputs = "disabledInputs"
	settingHTTPTimeout    = "httpTimeout"
	settingProfiles       = "profiles"
)

const activityCapacity = 500

// inbound is one raw message as delivered by a transport input callback.
type inbound struct {
	port string
	data []byte
}

// Relay owns the relay's mutable state and implements contracts.Relay.
type Relay struct {
	logger    contracts.Logger
	transport contracts.Transport
	store     contracts.SettingsStore
	notifier  contracts.NotificationSink
	eventSink contracts.EventSink

	httpClient  *http.Client
	httpTimeout time.Duration
	virtualName string

	activity *activityLog

	queue    chan inbound
	done     chan struct{}
	stopOnce sync.Once
	dispatch sync.WaitGroup

	mu             sync.Mutex
	inputs         map[string]contracts.InputConn
	outputs        map[string]*outputPort
	disabled       map[string]bool
	virtualCreated bool

	trigMu sync.RWMutex
	armed  []contracts.Trigger
}

// New constructs the relay engine, loads persisted configuration, starts the
// consumer loop and performs an initial port scan. A transport scan failure
// at startup is logged, not fatal.
func New(opts *contracts.RelayOptions) (*Relay, error) {
	if opts.Logger == nil {
		return nil, errors.New("engine: logger is required")
	}
	if opts.Transport == nil {
		return nil, errors.New("engine: transport is required")
	}
	if opts.Store == nil {
		return nil, errors.New("engine: settings store is required")
	}

	r := &Relay{
		logger:      opts.Logger,
		transport:   opts.Transport,
		store:       opts.Store,
		notifier:    opts.Notifier,
		eventSink:   opts.EventSink,
		httpClient:  opts.HTTPClient,
		httpTimeout: opts.HTTPTimeout,
		virtualName: opts.VirtualPortName,
		activity:    newActivityLog(activityCapacity, opts.LogSink),
		queue:       make(chan inbound, opts.QueueSize),
		done:        make(chan struct{}),
		inputs:      make(map[string]contracts.InputConn),
		outputs:     make(map[string]*outputPort),
		disabled:    make(map[string]bool),
	}
	if r.httpClient == nil {
		r.httpClient = &http.Client{}
	}
	if r.httpTimeout <= 0 {
		r.httpTimeout = 5 * time.Second
	}

	// A persisted httpTimeout (milliseconds) overrides the option.
	var timeoutMS int
	if err := r.store.Get(settingHTTPTimeout, &timeoutMS); err == nil && timeoutMS > 0 {
		r.httpTimeout = time.Duration(timeoutMS) * time.Millisecond
	}

	var disabled []string
	if err := r.store.Get(settingDisabledInputs, &disabled); err == nil {
		for _, name := range disabled {
			r.disabled[name] = true
		}
	}

	if err := r.reloadTriggers(); err != nil {
		r.logger.Warn("could not load triggers", r.logger.Field().Error("error", err))
	}

	go r.consume()

	if _, err := r.Ports(); err != nil {
		r.logger.Warn("initial port scan failed", r.logger.Field().Error("error", err))
	}

	return r, nil
}

// consume is the single reader of the inbound queue. Decode, log and match
// run here; dispatch fans out to goroutines so a slow webhook can never stall
// MIDI ingestion.
func (r *Relay) consume() {
	for {
		select {
		case <-r.done:
			return
		case m := <-r.queue:
			r.handleIncoming(m)
		}
	}
}

func (r *Relay) handleIncoming(m inbound) {
	ev, ok := codec.Decode(m.data)
	if !ok || ev.Type == contracts.CommandUnknown {
		// Unrecognized status bytes (clock, active sensing) are dropped
		// without logging.
		return
	}
	ev.Port = m.port

	r.activity.append(contracts.LogEntry{
		Timestamp: time.Now(),
		Direction: contracts.DirectionRX,
		Port:      m.port,
		Command:   string(ev.Type),
		Data:      fmt.Sprintf("% X", m.data),
	})

	if r.eventSink != nil {
		r.eventSink.Publish(ev)
	}

	for _, t := range r.armedTriggers() {
		if !matches(t, ev) {
			continue
		}
		t := t
		r.dispatch.Add(1)
		go func() {
			defer r.dispatch.Done()
			r.executeTrigger(t, ev)
		}()
	}
}

// enqueue is installed as the transport input callback. It never blocks: when
// the queue is full the message is dropped with a warning.
func (r *Relay) enqueue(port string, data []byte) {
	select {
	case <-r.done:
	case r.queue <- inbound{port: port, data: data}:
	default:
		r.logger.Warn("inbound MIDI queue full; dropping message",
			r.logger.Field().String("port", port))
	}
}

// SendMIDI validates, encodes and sends an outbound message. Validation
// errors are returned to the caller; transport failures are additionally
// recorded as application errors.
func (r *Relay) SendMIDI(req contracts.OutboundMidiRequest) error {
	if err := validate.OutboundRequest(req); err != nil {
		return err
	}

	data, warnings, err := codec.Encode(req)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		r.logger.Warn(w, r.logger.Field().String("port", req.Port))
	}

	if err := r.sendBytes(req.Port, data); err != nil {
		r.activity.append(contracts.LogEntry{
			Timestamp: time.Now(),
			Direction: contracts.DirectionAppError,
			Port:      req.Port,
			Command:   req.MidiCommand,
			Data:      err.Error(),
		})
		return err
	}

	r.activity.append(contracts.LogEntry{
		Timestamp: time.Now(),
		Direction: contracts.DirectionTX,
		Port:      req.Port,
		Command:   req.MidiCommand,
		Data:      fmt.Sprintf("% X", data),
	})
	return nil
}

// ActivityEntries returns a snapshot of the activity log, oldest first.
func (r *Relay) ActivityEntries() []contracts.LogEntry {
	return r.activity.snapshot()
}

// Shutdown closes every open handle and the transport session. Errors from
// individual closes are swallowed; the relay is unusable afterwards.
func (r *Relay) Shutdown() error {
	r.stopOnce.Do(func() {
		close(r.done)

		r.mu.Lock()
		for name, conn := range r.inputs {
			_ = conn.Close()
			delete(r.inputs, name)
		}
		for name, out := range r.outputs {
			_ = out.conn.Close()
			delete(r.outputs, name)
		}
		r.mu.Unlock()

		r.dispatch.Wait()

		if err := r.transport.Close(); err != nil {
			r.logger.Warn("transport close failed", r.logger.Field().Error("error", err))
		}
		r.logger.Info("relay shut down")
	})
	return nil
}
