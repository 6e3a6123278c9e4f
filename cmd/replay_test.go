package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jsphweid/retune31/midi"
	"github.com/jsphweid/retune31/model"
	"github.com/jsphweid/retune31/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayPrintsNoteOns(t *testing.T) {
	proc, err := flagsWith(t, nil).build()
	require.NoError(t, err)

	events := []midi.TimedEvent{
		{AbsTicks: 0, Event: model.NewNoteOn(0, 64, 100)},
		{AbsTicks: 0, Event: model.NewController(0, 1, 20)},
		{AbsTicks: 480, Event: model.NewNoteOff(0, 64, 0)},
		{AbsTicks: 480, Event: model.NewNoteOn(0, 63, 100)},
	}

	var buf bytes.Buffer
	decisions := replay(&buf, proc, events, false)

	require.Len(t, decisions, 4)
	assert.Equal(t, theory.MustParsePitch("E4"), decisions[0].Pitch)
	assert.Equal(t, model.Controller, decisions[1].Event.Kind)
	assert.Equal(t, theory.MustParsePitch("E4"), decisions[2].Pitch)
	assert.Equal(t, theory.MustParsePitch("Eb4"), decisions[3].Pitch)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "-> E4")
	assert.Contains(t, lines[1], "-> Eb4")
}

func TestReplayExplain(t *testing.T) {
	proc, err := flagsWith(t, nil).build()
	require.NoError(t, err)

	var buf bytes.Buffer
	replay(&buf, proc, []midi.TimedEvent{{Event: model.NewNoteOn(0, 64, 100)}}, true)
	assert.Contains(t, buf.String(), "C4(60) -> E4: 4.00 x 1.0000")
}
