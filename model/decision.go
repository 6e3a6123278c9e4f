package model

import "github.com/jsphweid/retune31/theory"

// Candidate is one 31-EDO realization of an incoming key. Lower scores are
// more consonant with the tonal space.
type Candidate struct {
	Pitch theory.Pitch `json:"pitch"`
	Score float64      `json:"score"`
}

// Decision is what the processor made of one event. For a note-on, Pitch
// is the best candidate; for a note-off it is the pitch being released.
type Decision struct {
	Event      Event        `json:"event"`
	Pitch      theory.Pitch `json:"pitch"`
	HasPitch   bool         `json:"has_pitch"`
	Candidates []Candidate  `json:"candidates,omitempty"`
}
