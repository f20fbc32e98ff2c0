// Package rtmidi implements the relay's Transport contract on top of
// gitlab.com/gomidi/midi/v2's rtmidi driver, which wraps CoreMIDI, ALSA and
// the Windows MultiMedia API.
package rtmidi

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/showbridge/midirelay/sdk/contracts"
)

// Error definitions for transport failures.
var (
	ErrPortNotFound = errors.New("MIDI port not found")
	ErrDriver       = errors.New("MIDI driver error")
)

// sysexBufferSize is passed to the rtmidi listener so full MSC frames arrive
// in one callback.
const sysexBufferSize = 1024

// Transport is the rtmidi-backed device driver.
type Transport struct {
	drv *rtmididrv.Driver

	mu         sync.Mutex
	virtualIn  drivers.In
	virtualOut drivers.Out
}

// New initializes the rtmidi driver.
func New() (*Transport, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDriver, err)
	}
	return &Transport{drv: drv}, nil
}

// Ports reports every input and output the driver can see, including the
// relay's own virtual pair once created.
func (t *Transport) Ports() ([]contracts.TransportPort, error) {
	ins, err := t.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("%w: list inputs: %v", ErrDriver, err)
	}
	outs, err := t.drv.Outs()
	if err != nil {
		return nil, fmt.Errorf("%w: list outputs: %v", ErrDriver, err)
	}

	ports := make([]contracts.TransportPort, 0, len(ins)+len(outs)+2)
	for _, in := range ins {
		ports = append(ports, contracts.TransportPort{Name: in.String(), Direction: contracts.PortIn})
	}
	for _, out := range outs {
		ports = append(ports, contracts.TransportPort{Name: out.String(), Direction: contracts.PortOut})
	}

	t.mu.Lock()
	if t.virtualIn != nil {
		ports = append(ports, contracts.TransportPort{Name: t.virtualIn.String(), Direction: contracts.PortIn})
	}
	if t.virtualOut != nil {
		ports = append(ports, contracts.TransportPort{Name: t.virtualOut.String(), Direction: contracts.PortOut})
	}
	t.mu.Unlock()

	return ports, nil
}

// OpenInput opens the named input and starts a raw-byte listener with sysex
// delivery enabled.
func (t *Transport) OpenInput(name string, onMessage func(data []byte)) (contracts.InputConn, error) {
	in, err := t.findIn(name)
	if err != nil {
		return nil, err
	}
	if err := in.Open(); err != nil {
		return nil, fmt.Errorf("open input %q: %w", name, err)
	}

	stop, err := in.Listen(func(msg []byte, milliseconds int32) {
		onMessage(append([]byte(nil), msg...))
	}, drivers.ListenConfig{
		SysEx:           true,
		SysExBufferSize: sysexBufferSize,
	})
	if err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("listen on %q: %w", name, err)
	}

	return &inputConn{in: in, stop: stop}, nil
}

// OpenOutput opens the named output for sending.
func (t *Transport) OpenOutput(name string) (contracts.OutputConn, error) {
	out, err := t.findOut(name)
	if err != nil {
		return nil, err
	}
	if err := out.Open(); err != nil {
		return nil, fmt.Errorf("open output %q: %w", name, err)
	}
	return &outputConn{out: out}, nil
}

// CreateVirtualPair registers a virtual input/output pair under the given
// name. Calling it again with the same name is a no-op.
func (t *Transport) CreateVirtualPair(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.virtualIn == nil {
		in, err := t.drv.OpenVirtualIn(name)
		if err != nil {
			return fmt.Errorf("virtual input %q: %w", name, err)
		}
		t.virtualIn = in
	}
	if t.virtualOut == nil {
		out, err := t.drv.OpenVirtualOut(name)
		if err != nil {
			return fmt.Errorf("virtual output %q: %w", name, err)
		}
		t.virtualOut = out
	}
	return nil
}

// Close releases the virtual ports and the driver session.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.virtualIn != nil {
		_ = t.virtualIn.Close()
		t.virtualIn = nil
	}
	if t.virtualOut != nil {
		_ = t.virtualOut.Close()
		t.virtualOut = nil
	}
	t.mu.Unlock()
	return t.drv.Close()
}

// findIn resolves an input by exact name, then by case-insensitive substring,
// checking the virtual input as well.
func (t *Transport) findIn(name string) (drivers.In, error) {
	t.mu.Lock()
	virtual := t.virtualIn
	t.mu.Unlock()
	if virtual != nil && virtual.String() == name {
		return virtual, nil
	}

	ins, err := t.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("%w: list inputs: %v", ErrDriver, err)
	}
	for _, in := range ins {
		if in.String() == name {
			return in, nil
		}
	}
	lower := strings.ToLower(name)
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), lower) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("%w: input %q", ErrPortNotFound, name)
}

func (t *Transport) findOut(name string) (drivers.Out, error) {
	t.mu.Lock()
	virtual := t.virtualOut
	t.mu.Unlock()
	if virtual != nil && virtual.String() == name {
		return virtual, nil
	}

	outs, err := t.drv.Outs()
	if err != nil {
		return nil, fmt.Errorf("%w: list outputs: %v", ErrDriver, err)
	}
	for _, out := range outs {
		if out.String() == name {
			return out, nil
		}
	}
	lower := strings.ToLower(name)
	for _, out := range outs {
		if strings.Contains(strings.ToLower(out.String()), lower) {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: output %q", ErrPortNotFound, name)
}

// inputConn wraps an open input; Close is idempotent.
type inputConn struct {
	in   drivers.In
	stop func()
	once sync.Once
}

func (c *inputConn) Close() error {
	var err error
	c.once.Do(func() {
		c.stop()
		err = c.in.Close()
	})
	return err
}

// outputConn wraps an open output.
type outputConn struct {
	out drivers.Out
}

func (c *outputConn) Send(data []byte) error {
	return c.out.Send(data)
}

func (c *outputConn) Close() error {
	return c.out.Close()
}
