package report

import (
	"github.com/videosdk-community/session-usage-api/pkg/videosdk"
)

// EventKind identifies a progress event variant.
type EventKind string

const (
	EventProgress EventKind = "progress"
	EventDone     EventKind = "done"
	EventError    EventKind = "error"
)

// Stages distinguish who is reporting when fetch and format progress
// share one stream.
const (
	StageFetch  = "fetch"
	StageFormat = "format"
)

// Event is one progress update from a fetch or export run. A run emits
// any number of progress events followed by exactly one terminal event
// (done or error); nothing follows a terminal event.
type Event struct {
	Kind         EventKind          `json:"kind"`
	Stage        string             `json:"stage,omitempty"`
	PagesFetched int                `json:"pagesFetched,omitempty"`
	RecordCount  int                `json:"recordCount,omitempty"`
	TotalCount   int                `json:"totalCount,omitempty"`
	Records      []videosdk.Session `json:"records,omitempty"`
	Message      string             `json:"message,omitempty"`
	Filename     string             `json:"filename,omitempty"`
	File         []byte             `json:"file,omitempty"`
}

// Terminal reports whether no further events may follow.
func (e Event) Terminal() bool {
	return e.Kind == EventDone || e.Kind == EventError
}
