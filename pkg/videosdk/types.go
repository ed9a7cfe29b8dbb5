package videosdk

// Timelog is one join/leave interval for a participant within a session.
type Timelog struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Participant is one attendee of a session, with the intervals they
// were connected.
type Participant struct {
	ParticipantID string    `json:"participantId"`
	Name          string    `json:"name,omitempty"`
	Timelog       []Timelog `json:"timelog,omitempty"`
}

// Session is one session record as returned by the listing endpoint.
// Records are never mutated after they are fetched.
type Session struct {
	ID           string        `json:"id"`
	RoomID       string        `json:"roomId"`
	Start        string        `json:"start,omitempty"`
	End          string        `json:"end,omitempty"`
	Status       string        `json:"status,omitempty"`
	Duration     int           `json:"duration,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
}

// Page is one upstream listing response: the records in upstream order
// plus the cursor for the next page. An empty NextCursor means there
// are no more pages.
type Page struct {
	Sessions   []Session
	NextCursor string
}

// listResponse mirrors the raw upstream body.
type listResponse struct {
	Data     []Session `json:"data"`
	PageInfo pageInfo  `json:"pageInfo"`
}

type pageInfo struct {
	CurrentPage int `json:"currentPage"`
	PerPage     int `json:"perPage"`
	LastPage    int `json:"lastPage"`
	Total       int `json:"total"`
}
