package contracts

import "time"

// Direction classifies an activity log entry.
type Direction string

const (
	// DirectionRX marks a decoded inbound message.
	DirectionRX Direction = "RX"
	// DirectionTX marks a message sent out a port.
	DirectionTX Direction = "TX"
	// DirectionTrigger marks a successfully executed trigger action.
	DirectionTrigger Direction = "TRIGGER"
	// DirectionAppError marks a failed dispatch or send.
	DirectionAppError Direction = "APP-ERR"
)

// LogEntry is one record in the relay's bounded activity log. Entries are not
// persisted across restarts.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Direction Direction `json:"direction"`
	Port      string    `json:"port,omitempty"`
	Command   string    `json:"command,omitempty"`
	Data      string    `json:"data,omitempty"`
}
