package model

import "github.com/jsphweid/retune31/theory"

type CreateSessionResponse struct {
	Id string `json:"id"`
}

type EventsRequestBody struct {
	Events []Event `json:"events"`
}

type EventsResponse struct {
	Decisions []Decision `json:"decisions"`
}

type ActivePitch struct {
	Pitch      theory.Pitch `json:"pitch"`
	Key        uint8        `json:"key"`
	ClashCount uint8        `json:"clash_count"`
}

type SpaceResponse struct {
	Pitches []ActivePitch `json:"pitches"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
