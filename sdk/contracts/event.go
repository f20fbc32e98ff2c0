package contracts

import "strings"

// CommandType identifies the kind of MIDI message carried by an event or
// requested for sending. The set is closed; anything the relay cannot
// classify is CommandUnknown and is neither logged nor dispatched.
type CommandType string

const (
	CommandNoteOn        CommandType = "noteon"
	CommandNoteOff       CommandType = "noteoff"
	CommandControlChange CommandType = "cc"
	CommandProgramChange CommandType = "pc"
	CommandPressure      CommandType = "pressure"
	CommandPitchBend     CommandType = "pitchbend"
	CommandSysEx         CommandType = "sysex"
	CommandMSC           CommandType = "msc"
	CommandUnknown       CommandType = "unknown"
)

// ParseCommandType resolves a user-supplied command name, case-insensitively.
// CommandUnknown is not a recognized input.
func ParseCommandType(s string) (CommandType, bool) {
	switch CommandType(strings.ToLower(strings.TrimSpace(s))) {
	case CommandNoteOn:
		return CommandNoteOn, true
	case CommandNoteOff:
		return CommandNoteOff, true
	case CommandControlChange:
		return CommandControlChange, true
	case CommandProgramChange:
		return CommandProgramChange, true
	case CommandPressure:
		return CommandPressure, true
	case CommandPitchBend:
		return CommandPitchBend, true
	case CommandSysEx:
		return CommandSysEx, true
	case CommandMSC:
		return CommandMSC, true
	}
	return CommandUnknown, false
}

// MidiEvent is a decoded MIDI message. Events are constructed fresh per
// received byte sequence and are never mutated afterwards.
type MidiEvent struct {
	Port    string      `json:"midiport,omitempty"` // Name of the endpoint the bytes arrived on.
	Type    CommandType `json:"midicommand"`        // Message classification derived from the status byte.
	Channel uint8       `json:"channel"`            // 0-15; meaningless for sysex and msc events.

	Note       uint8 `json:"note,omitempty"`       // Note number for noteon/noteoff.
	Velocity   uint8 `json:"velocity,omitempty"`   // Velocity for noteon/noteoff.
	Controller uint8 `json:"controller,omitempty"` // Controller number for cc.
	Value      int   `json:"value,omitempty"`      // cc/pc/pressure value, or the 14-bit pitchbend value.

	Raw []byte `json:"rawmessage,omitempty"` // The bytes the event was decoded from.

	// MSC fields, populated only for Type == CommandMSC. Raw byte values;
	// inbound MSC is never reverse-mapped to names.
	DeviceID      uint8 `json:"deviceid,omitempty"`
	CommandFormat uint8 `json:"commandformat,omitempty"`
	Command       uint8 `json:"command,omitempty"`
}
