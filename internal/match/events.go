package match

import "fmt"

// EventKind identifies the type of a scan event.
type EventKind string

// The four kinds of events a scan produces, in production order: one Info
// at the start, any number of Match and Error events, one Summary at the
// end. A fatal setup failure produces a single Error event and nothing else.
const (
	EventInfo    EventKind = "info"
	EventMatch   EventKind = "match"
	EventError   EventKind = "error"
	EventSummary EventKind = "summary"
)

// EventChannelBuffer is the buffer size of the scan event channel.
const EventChannelBuffer = 100

// Event is a single entry in the scan's ordered event stream.
type Event struct {
	Kind    EventKind `json:"kind"`
	Message string    `json:"message"`

	// Item is set on per-item Error events and on Match events.
	// A fatal setup Error carries no item.
	Item string `json:"item,omitempty"`

	// Match fields. FaceIndex is 1-based in the order the extractor
	// returned the faces.
	FaceIndex  int       `json:"face_index,omitempty"`
	Distance   float64   `json:"distance,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	BBox       []float64 `json:"bbox,omitempty"`

	// Summary fields.
	Matches int `json:"matches,omitempty"`
	Items   int `json:"items,omitempty"`
}

// SSE renders the event as one frame of the line-oriented stream protocol:
// "data: <payload>\n\n" for everything except fatal setup failures, which
// render as "error: <payload>\n\n". Per-item errors are data, not error:
// they do not terminate the stream.
func (e Event) SSE() string {
	if e.Kind == EventError && e.Item == "" {
		return fmt.Sprintf("error: %s\n\n", e.Message)
	}
	return fmt.Sprintf("data: %s\n\n", e.Message)
}
