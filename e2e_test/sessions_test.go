//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jsphweid/retune31/cmd"
	"github.com/jsphweid/retune31/model"
	"github.com/jsphweid/retune31/processor"
	"github.com/jsphweid/retune31/session"
	"github.com/jsphweid/retune31/theory"
	"github.com/jsphweid/retune31/tonalspace"
	"github.com/stretchr/testify/assert"
)

var server *httptest.Server

func TestMain(m *testing.M) {
	sessions := session.NewManager(func() (*processor.Processor, error) {
		return processor.New(tonalspace.New(tonalspace.DefaultConfig()), processor.Options{
			NoteOff: processor.NoteOffEvict,
			Seed:    &processor.Seed{Pitch: theory.MustParsePitch("C4"), Key: 60},
		}), nil
	}, time.Minute)
	server = httptest.NewServer(cmd.NewServer(sessions).Handler())

	exitVal := m.Run()

	server.Close()
	sessions.Close()
	os.Exit(exitVal)
}

func post(path string, body interface{}) *http.Response {
	data, err := json.Marshal(body)
	if err != nil {
		panic(err.Error())
	}
	resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		panic(err.Error())
	}
	return resp
}

func createSession() string {
	resp := post("/sessions", nil)
	defer resp.Body.Close()
	var res model.CreateSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		panic(err.Error())
	}
	return res.Id
}

func play(id string, events ...model.Event) []model.Decision {
	resp := post("/sessions/"+id+"/events", model.EventsRequestBody{Events: events})
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		panic(string(respBody))
	}
	var res model.EventsResponse
	if err := json.Unmarshal(respBody, &res); err != nil {
		panic(err.Error())
	}
	return res.Decisions
}

func chord(keys ...uint8) []model.Event {
	var res []model.Event
	for _, k := range keys {
		res = append(res, model.NewNoteOn(0, k, 100))
	}
	return res
}

func release(keys ...uint8) []model.Event {
	var res []model.Event
	for _, k := range keys {
		res = append(res, model.NewNoteOff(0, k, 0))
	}
	return res
}

func pitches(decisions []model.Decision) []string {
	var res []string
	for _, d := range decisions {
		if d.Event.Kind == model.NoteOn {
			res = append(res, d.Pitch.String())
		}
	}
	return res
}

func TestCMajorTriadE2E(t *testing.T) {
	id := createSession()
	decisions := play(id, chord(60, 64, 67)...)
	assert.Equal(t, []string{"C4", "E4", "G4"}, pitches(decisions))
}

func TestChromaticNeighborsFollowContextE2E(t *testing.T) {
	id := createSession()
	play(id, chord(64, 67)...)
	play(id, release(64, 67)...)

	// a minor third above C in a C context
	decisions := play(id, chord(63)...)
	assert.Equal(t, []string{"Eb4"}, pitches(decisions))
}

func TestSessionsDoNotShareSpaceE2E(t *testing.T) {
	a := createSession()
	b := createSession()
	play(a, chord(61, 66)...)

	resp, err := http.Get(server.URL + "/sessions/" + b + "/space")
	if err != nil {
		panic(err.Error())
	}
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var space model.SpaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&space); err != nil {
		panic(err.Error())
	}
	assert.Len(t, space.Pitches, 1)
	assert.Equal(t, "C4", space.Pitches[0].Pitch.String())
}
