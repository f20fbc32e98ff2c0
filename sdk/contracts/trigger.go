package contracts

import "strings"

// Wildcard is the match-anything marker for trigger criteria. A wildcard
// criterion matches any value for that field, including absent.
const Wildcard = "*"

// ActionType identifies what a matched trigger does.
type ActionType string

const (
	ActionHTTP ActionType = "http"
	ActionMIDI ActionType = "midi"
)

// ParseActionType resolves a stored action type, case-insensitively.
func ParseActionType(s string) (ActionType, bool) {
	switch ActionType(strings.ToLower(strings.TrimSpace(s))) {
	case ActionHTTP:
		return ActionHTTP, true
	case ActionMIDI:
		return ActionMIDI, true
	}
	return "", false
}

// Trigger is a persisted rule mapping an incoming MIDI event pattern to an
// outbound action. Match criteria are strings: empty means absent, Wildcard
// matches anything, otherwise the value must equal the event's field.
//
// A trigger whose MidiCommand or ActionType is unknown is inert: it is kept
// in storage but never armed, so it neither matches nor executes.
type Trigger struct {
	// ID is assigned once at creation and never changes.
	ID string `json:"id" mapstructure:"id"`

	// Match criteria.
	MidiCommand string `json:"midicommand" mapstructure:"midicommand"`
	MidiPort    string `json:"midiport,omitempty" mapstructure:"midiport"`
	Channel     string `json:"channel,omitempty" mapstructure:"channel"`
	Note        string `json:"note,omitempty" mapstructure:"note"`
	Velocity    string `json:"velocity,omitempty" mapstructure:"velocity"`
	Controller  string `json:"controller,omitempty" mapstructure:"controller"`
	Value       string `json:"value,omitempty" mapstructure:"value"`

	ActionType string `json:"actiontype" mapstructure:"actiontype"`

	// HTTP action parameters.
	URL      string `json:"url,omitempty" mapstructure:"url"`
	Method   string `json:"method,omitempty" mapstructure:"method"`
	JSONData string `json:"jsondata,omitempty" mapstructure:"jsondata"`

	// MIDI action parameters. Each output field falls back to the matching
	// field of the triggering event when absent.
	OutputPort       string `json:"outputport,omitempty" mapstructure:"outputport"`
	OutputCommand    string `json:"outputcommand,omitempty" mapstructure:"outputcommand"`
	OutputChannel    string `json:"outputchannel,omitempty" mapstructure:"outputchannel"`
	OutputNote       string `json:"outputnote,omitempty" mapstructure:"outputnote"`
	OutputVelocity   string `json:"outputvelocity,omitempty" mapstructure:"outputvelocity"`
	OutputController string `json:"outputcontroller,omitempty" mapstructure:"outputcontroller"`
	OutputValue      string `json:"outputvalue,omitempty" mapstructure:"outputvalue"`
}
