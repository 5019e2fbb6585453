package models

// EventKind is the type tag of an outbound report.
type EventKind string

const (
	EventChangeDetected EventKind = "CHANGE_DETECTED"
	EventStatus         EventKind = "STATUS"
	EventError          EventKind = "ERROR"
)

// EventPayload carries the outcome of one check cycle.
type EventPayload struct {
	ID      string `json:"id"`
	HTTP    int    `json:"http"`
	Size    int    `json:"size"`
	Hash    string `json:"hash"`
	Changed bool   `json:"changed"`
	Excerpt string `json:"excerpt"`
	Error   string `json:"error"`
}

// Event is the message published on the events topic.
type Event struct {
	Type    EventKind    `json:"type"`
	Payload EventPayload `json:"payload"`
	TS      int64        `json:"ts"`
}
