package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/showbridge/midirelay/sdk/contracts"
)

// outputPort is a lazily opened, cached output handle. Its mutex serializes
// sends so concurrent writers cannot interleave bytes on the wire.
type outputPort struct {
	conn contracts.OutputConn
	mu   sync.Mutex
}

// Ports scans the transport, merges the result with the registry's open and
// enabled state, and auto-opens every input that is enabled but not yet open.
// An open failure on one port is a warning; the scan continues.
func (r *Relay) Ports() ([]contracts.PortInfo, error) {
	r.ensureVirtualPair()

	tports, err := r.transport.Ports()
	if err != nil {
		return nil, fmt.Errorf("port scan: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool)
	infos := make([]contracts.PortInfo, 0, len(tports))
	for _, p := range tports {
		key := string(p.Direction) + "\x00" + p.Name
		if seen[key] {
			continue
		}
		seen[key] = true

		info := contracts.PortInfo{
			Name:         p.Name,
			Manufacturer: p.Manufacturer,
			Direction:    p.Direction,
		}
		switch p.Direction {
		case contracts.PortIn:
			info.Enabled = !r.disabled[p.Name]
			if info.Enabled && r.inputs[p.Name] == nil {
				if err := r.openInputLocked(p.Name); err != nil {
					r.logger.Warn("could not open MIDI input",
						r.logger.Field().String("port", p.Name),
						r.logger.Field().Error("error", err))
				}
			}
			info.Opened = r.inputs[p.Name] != nil
		case contracts.PortOut:
			info.Opened = r.outputs[p.Name] != nil
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Direction != infos[j].Direction {
			return infos[i].Direction < infos[j].Direction
		}
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// OpenPort opens the named input. Opening an already-open port is a no-op.
func (r *Relay) OpenPort(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inputs[name] != nil {
		return nil
	}
	return r.openInputLocked(name)
}

// ClosePort releases the named port's input and output handles. Closing a
// port that is not open is a no-op.
func (r *Relay) ClosePort(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked(name)
	return nil
}

// ToggleInput flips the persisted enabled flag for an input, then closes or
// opens the port to match.
func (r *Relay) ToggleInput(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.disabled[name] = !r.disabled[name]

	disabled := make([]string, 0, len(r.disabled))
	for n, d := range r.disabled {
		if d {
			disabled = append(disabled, n)
		}
	}
	sort.Strings(disabled)
	if err := r.store.Set(settingDisabledInputs, disabled); err != nil {
		r.logger.Warn("could not persist disabled inputs", r.logger.Field().Error("error", err))
	}

	if r.disabled[name] {
		r.closeLocked(name)
		return nil
	}
	return r.openInputLocked(name)
}

// openInputLocked acquires a transport input handle and wires its byte
// callback into the relay queue. Callers hold r.mu.
func (r *Relay) openInputLocked(name string) error {
	conn, err := r.transport.OpenInput(name, func(data []byte) {
		r.enqueue(name, data)
	})
	if err != nil {
		return fmt.Errorf("open input %q: %w", name, err)
	}
	r.inputs[name] = conn
	r.logger.Info("MIDI input opened", r.logger.Field().String("port", name))
	return nil
}

// closeLocked releases both handles for a name, swallowing close errors.
func (r *Relay) closeLocked(name string) {
	if conn := r.inputs[name]; conn != nil {
		_ = conn.Close()
		delete(r.inputs, name)
		r.logger.Info("MIDI input closed", r.logger.Field().String("port", name))
	}
	if out := r.outputs[name]; out != nil {
		_ = out.conn.Close()
		delete(r.outputs, name)
	}
}

// sendBytes writes to a named output, opening and caching the handle on first
// use. Sends on the same port serialize on the handle's mutex.
func (r *Relay) sendBytes(name string, data []byte) error {
	r.mu.Lock()
	out := r.outputs[name]
	if out == nil {
		conn, err := r.transport.OpenOutput(name)
		if err != nil {
			r.mu.Unlock()
			r.logger.Warn("could not open MIDI output",
				r.logger.Field().String("port", name),
				r.logger.Field().Error("error", err))
			return fmt.Errorf("open output %q: %w", name, err)
		}
		out = &outputPort{conn: conn}
		r.outputs[name] = out
	}
	r.mu.Unlock()

	out.mu.Lock()
	defer out.mu.Unlock()
	if err := out.conn.Send(data); err != nil {
		r.logger.Warn("MIDI send failed",
			r.logger.Field().String("port", name),
			r.logger.Field().Error("error", err))
		return fmt.Errorf("send to %q: %w", name, err)
	}
	return nil
}

// ensureVirtualPair registers the relay's virtual input/output pair once.
// Failure is non-fatal and only surfaces a notification.
func (r *Relay) ensureVirtualPair() {
	r.mu.Lock()
	if r.virtualCreated || r.virtualName == "" {
		r.mu.Unlock()
		return
	}
	r.virtualCreated = true
	r.mu.Unlock()

	if err := r.transport.CreateVirtualPair(r.virtualName); err != nil {
		r.logger.Warn("could not create virtual MIDI ports",
			r.logger.Field().String("name", r.virtualName),
			r.logger.Field().Error("error", err))
		if r.notifier != nil {
			r.notifier.Notify("Virtual MIDI ports unavailable",
				fmt.Sprintf("Could not create virtual MIDI ports %q: %v", r.virtualName, err))
		}
	}
}
