// Package validate holds the stateless checks applied to outbound MIDI
// parameters and trigger definitions before they reach the codec or the
// trigger engine.
package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/showbridge/midirelay/sdk/contracts"
)

// fieldRanges lists the inclusive numeric range for every known parameter.
var fieldRanges = map[string][2]int{
	"channel":    {0, 15},
	"note":       {0, 127},
	"velocity":   {0, 127},
	"value":      {0, 127},
	"controller": {0, 127},
	"program":    {0, 127},
	"pitchbend":  {0, 16383},
}

// Error aggregates every validation problem found in a request or trigger.
// It is surfaced synchronously to the caller and never recorded as an
// application error.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return strings.Join(e.Problems, "; ")
}

// errorOrNil returns nil when no problems accumulated, so callers can compare
// the result against nil without tripping over a typed nil.
func errorOrNil(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &Error{Problems: problems}
}

// Field checks a single named parameter. When allowWildcard is set, the
// wildcard marker passes through unchanged; otherwise the value must parse as
// an integer inside the field's range. The returned string is the trimmed
// value.
func Field(name, value string, allowWildcard bool) (string, error) {
	bounds, ok := fieldRanges[name]
	if !ok {
		return "", fmt.Errorf("unknown parameter %q", name)
	}

	value = strings.TrimSpace(value)
	if value == contracts.Wildcard {
		if allowWildcard {
			return value, nil
		}
		return "", fmt.Errorf("%s does not accept a wildcard", name)
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < bounds[0] || n > bounds[1] {
		return "", fmt.Errorf("%s must be an integer between %d and %d, got %q", name, bounds[0], bounds[1], value)
	}
	return value, nil
}

// OutboundRequest checks a send request: recognized command, non-empty port,
// and the per-command required parameters, each range-checked. All problems
// are collected; validation does not stop at the first failure.
func OutboundRequest(req contracts.OutboundMidiRequest) error {
	var problems []string

	cmd, ok := contracts.ParseCommandType(req.MidiCommand)
	if !ok {
		problems = append(problems, fmt.Sprintf("unknown midicommand %q", req.MidiCommand))
	}
	if strings.TrimSpace(req.Port) == "" {
		problems = append(problems, "midiport is required")
	}
	if !ok {
		return errorOrNil(problems)
	}

	check := func(name, value string, required bool) {
		if value == "" {
			if required {
				problems = append(problems, fmt.Sprintf("%s is required for %s", name, cmd))
			}
			return
		}
		rangeName := name
		if cmd == contracts.CommandPitchBend && name == "value" {
			rangeName = "pitchbend"
		}
		if _, err := Field(rangeName, value, false); err != nil {
			problems = append(problems, err.Error())
		}
	}

	switch cmd {
	case contracts.CommandNoteOn, contracts.CommandNoteOff:
		check("channel", req.Channel, true)
		check("note", req.Note, true)
		check("velocity", req.Velocity, false)
	case contracts.CommandControlChange:
		check("channel", req.Channel, true)
		check("controller", req.Controller, true)
		check("value", req.Value, true)
	case contracts.CommandProgramChange, contracts.CommandPressure:
		check("channel", req.Channel, true)
		check("value", req.Value, true)
	case contracts.CommandPitchBend:
		check("channel", req.Channel, true)
		check("value", req.Value, true)
	case contracts.CommandSysEx:
		if strings.TrimSpace(req.Message) == "" {
			problems = append(problems, "message is required for sysex")
		}
	case contracts.CommandMSC:
		// MSC names are forgiving: unknown values fall back at encode time
		// instead of failing here.
	}

	return errorOrNil(problems)
}

// Trigger checks a trigger definition. The per-command required parameters
// mirror OutboundRequest, but every numeric criterion may be the wildcard
// marker. The action side requires a recognized actiontype plus its one
// mandatory parameter.
func Trigger(t contracts.Trigger) error {
	var problems []string

	cmd, ok := contracts.ParseCommandType(t.MidiCommand)
	if !ok {
		problems = append(problems, fmt.Sprintf("unknown midicommand %q", t.MidiCommand))
	}

	check := func(name, value string, required bool) {
		if value == "" {
			if required {
				problems = append(problems, fmt.Sprintf("%s is required for %s", name, cmd))
			}
			return
		}
		rangeName := name
		if cmd == contracts.CommandPitchBend && name == "value" {
			rangeName = "pitchbend"
		}
		if _, err := Field(rangeName, value, true); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if ok {
		switch cmd {
		case contracts.CommandNoteOn, contracts.CommandNoteOff:
			check("channel", t.Channel, true)
			check("note", t.Note, true)
			check("velocity", t.Velocity, false)
		case contracts.CommandControlChange:
			check("channel", t.Channel, true)
			check("controller", t.Controller, true)
			check("value", t.Value, true)
		case contracts.CommandProgramChange, contracts.CommandPressure:
			check("channel", t.Channel, true)
			check("value", t.Value, true)
		case contracts.CommandPitchBend:
			check("channel", t.Channel, true)
			check("value", t.Value, true)
		}
	}

	action, ok := contracts.ParseActionType(t.ActionType)
	if !ok {
		problems = append(problems, fmt.Sprintf("actiontype must be %q or %q, got %q", contracts.ActionHTTP, contracts.ActionMIDI, t.ActionType))
	} else {
		switch action {
		case contracts.ActionHTTP:
			if strings.TrimSpace(t.URL) == "" {
				problems = append(problems, "url is required for http actions")
			}
		case contracts.ActionMIDI:
			if strings.TrimSpace(t.OutputPort) == "" {
				problems = append(problems, "outputport is required for midi actions")
			}
			if t.OutputCommand != "" {
				if _, ok := contracts.ParseCommandType(t.OutputCommand); !ok {
					problems = append(problems, fmt.Sprintf("unknown outputcommand %q", t.OutputCommand))
				}
			}
			// The output command falls back to the matched command, which
			// decides the range the output value is held to.
			outCmd := cmd
			if parsed, ok := contracts.ParseCommandType(t.OutputCommand); ok {
				outCmd = parsed
			}
			valueRange := "value"
			if outCmd == contracts.CommandPitchBend {
				valueRange = "pitchbend"
			}
			outputs := [][2]string{
				{"channel", t.OutputChannel},
				{"note", t.OutputNote},
				{"velocity", t.OutputVelocity},
				{"controller", t.OutputController},
				{valueRange, t.OutputValue},
			}
			for _, o := range outputs {
				if o[1] == "" {
					continue
				}
				if _, err := Field(o[0], o[1], false); err != nil {
					problems = append(problems, "output"+err.Error())
				}
			}
		}
	}

	return errorOrNil(problems)
}
