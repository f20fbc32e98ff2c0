package contracts

// OutboundMidiRequest describes a message to be encoded and sent out a named
// port. Numeric parameters travel as strings so the same request shape can be
// filled from API input or from a trigger's output fields; they are validated
// and parsed before encoding. Wildcards are not accepted here.
type OutboundMidiRequest struct {
	Port        string `json:"midiport"`
	MidiCommand string `json:"midicommand"`

	Channel    string `json:"channel,omitempty"`
	Note       string `json:"note,omitempty"`
	Velocity   string `json:"velocity,omitempty"`
	Controller string `json:"controller,omitempty"`
	Value      string `json:"value,omitempty"`

	// Message holds the comma-separated byte list for a raw sysex send.
	Message string `json:"message,omitempty"`

	// MSC parameters. DeviceID accepts a number in [0,111], "all", or a
	// group "g1".."g15"; CommandFormat and Command are MSC names.
	DeviceID      string `json:"deviceid,omitempty"`
	CommandFormat string `json:"commandformat,omitempty"`
	Command       string `json:"command,omitempty"`
	Cue           string `json:"cue,omitempty"`
	CueList       string `json:"cuelist,omitempty"`
	CuePath       string `json:"cuepath,omitempty"`
}
