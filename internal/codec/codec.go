// Package codec converts raw MIDI byte sequences to structured events and
// back, including the MIDI Show Control sysex sub-encoding. It holds no state.
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/showbridge/midirelay/sdk/contracts"
)

// Error definitions for encoding problems.
var (
	ErrInvalidCommand = errors.New("invalid MIDI command")
	ErrBadSysExData   = errors.New("malformed sysex data")
)

// Decode converts a raw MIDI byte sequence into a structured event. The
// second return value is false for empty input. An unrecognized status byte
// yields an event of type CommandUnknown; callers drop those silently.
func Decode(data []byte) (contracts.MidiEvent, bool) {
	if len(data) == 0 {
		return contracts.MidiEvent{}, false
	}

	ev := contracts.MidiEvent{
		Type: contracts.CommandUnknown,
		Raw:  append([]byte(nil), data...),
	}

	status := data[0]
	switch status & 0xF0 {
	case 0x80:
		if len(data) < 3 {
			return ev, true
		}
		ev.Type = contracts.CommandNoteOff
		ev.Channel = status & 0x0F
		ev.Note = data[1]
		ev.Velocity = data[2]
	case 0x90:
		if len(data) < 3 {
			return ev, true
		}
		// A noteon with velocity 0 is a running-status noteoff.
		ev.Type = contracts.CommandNoteOn
		if data[2] == 0 {
			ev.Type = contracts.CommandNoteOff
		}
		ev.Channel = status & 0x0F
		ev.Note = data[1]
		ev.Velocity = data[2]
	case 0xB0:
		if len(data) < 3 {
			return ev, true
		}
		ev.Type = contracts.CommandControlChange
		ev.Channel = status & 0x0F
		ev.Controller = data[1]
		ev.Value = int(data[2])
	case 0xC0:
		if len(data) < 2 {
			return ev, true
		}
		ev.Type = contracts.CommandProgramChange
		ev.Channel = status & 0x0F
		ev.Value = int(data[1])
	case 0xD0:
		if len(data) < 2 {
			return ev, true
		}
		ev.Type = contracts.CommandPressure
		ev.Channel = status & 0x0F
		ev.Value = int(data[1])
	case 0xE0:
		if len(data) < 3 {
			return ev, true
		}
		ev.Type = contracts.CommandPitchBend
		ev.Channel = status & 0x0F
		ev.Value = int(data[1]) | int(data[2])<<7
	case 0xF0:
		if status != 0xF0 {
			return ev, true
		}
		ev.Type = contracts.CommandSysEx
		// F0 7F <deviceId> 02 identifies an MSC frame.
		if len(data) >= 6 && data[1] == 0x7F && data[3] == 0x02 {
			ev.Type = contracts.CommandMSC
			ev.DeviceID = data[2]
			ev.CommandFormat = data[4]
			ev.Command = data[5]
		}
	}

	return ev, true
}

// Encode converts a validated outbound request into wire bytes. The returned
// warnings name any MSC fields that fell back to a default value; the message
// is still sendable when warnings are present.
func Encode(req contracts.OutboundMidiRequest) ([]byte, []string, error) {
	cmd, ok := contracts.ParseCommandType(req.MidiCommand)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidCommand, req.MidiCommand)
	}

	ch := byte(atoiOr(req.Channel, 0)) & 0x0F
	switch cmd {
	case contracts.CommandNoteOn:
		return []byte{0x90 | ch, byte(atoiOr(req.Note, 0)), byte(atoiOr(req.Velocity, 127))}, nil, nil
	case contracts.CommandNoteOff:
		return []byte{0x80 | ch, byte(atoiOr(req.Note, 0)), byte(atoiOr(req.Velocity, 0))}, nil, nil
	case contracts.CommandControlChange:
		return []byte{0xB0 | ch, byte(atoiOr(req.Controller, 0)), byte(atoiOr(req.Value, 0))}, nil, nil
	case contracts.CommandProgramChange:
		return []byte{0xC0 | ch, byte(atoiOr(req.Value, 0))}, nil, nil
	case contracts.CommandPressure:
		return []byte{0xD0 | ch, byte(atoiOr(req.Value, 0))}, nil, nil
	case contracts.CommandPitchBend:
		v := atoiOr(req.Value, 0)
		return []byte{0xE0 | ch, byte(v & 0x7F), byte((v >> 7) & 0x7F)}, nil, nil
	case contracts.CommandSysEx:
		data, err := parseSysExData(req.Message)
		if err != nil {
			return nil, nil, err
		}
		return data, nil, nil
	case contracts.CommandMSC:
		data, warnings := EncodeMSC(req)
		return data, warnings, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", ErrInvalidCommand, req.MidiCommand)
}

// parseSysExData parses a comma-separated integer list into bytes, verbatim.
func parseSysExData(message string) ([]byte, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: empty message", ErrBadSysExData)
	}
	parts := strings.Split(message, ",")
	data := make([]byte, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 255 {
			return nil, fmt.Errorf("%w: %q is not a byte", ErrBadSysExData, strings.TrimSpace(p))
		}
		data = append(data, byte(n))
	}
	return data, nil
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}
