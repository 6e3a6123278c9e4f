package midi

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/jsphweid/retune31/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

var log = logrus.WithField("pkg", "midi")

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s, e = nil, errors.Errorf("gomidi panicked parsing %v: %v", filepath, r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading midi file")
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, errors.Wrap(err, "error parsing midi file")
	}
	return res, nil
}

// ToEvent decodes the messages the processor cares about. Anything else
// (clock, sysex, pitch bend coming in) is reported as not ok.
func ToEvent(msg midi.Message) (model.Event, bool) {
	var channel, key, velocity, controller, value uint8
	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		return model.NewNoteOn(channel, key, velocity), true
	case msg.GetNoteEnd(&channel, &key):
		// release velocity, when the sender gave one
		msg.GetNoteOff(&channel, &key, &velocity)
		return model.NewNoteOff(channel, key, velocity), true
	case msg.GetControlChange(&channel, &controller, &value):
		return model.NewController(channel, controller, value), true
	}
	return model.Event{}, false
}

// TimedEvent is an event at an absolute position in a MIDI file.
type TimedEvent struct {
	AbsTicks int64
	// microseconds from the start, tempo changes applied
	AbsTime int64
	Event   model.Event
}

func (te TimedEvent) String() string {
	return fmt.Sprintf("%8.3fs %v", float64(te.AbsTime)/1e6, te.Event)
}

// ReadEvents merges all tracks into one stream ordered by time. Note-offs
// come before anything else at the same tick so repeated notes re-strike.
func ReadEvents(s *smf.SMF) []TimedEvent {
	var res []TimedEvent
	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			ev, ok := ToEvent(midi.Message(event.Message))
			if !ok {
				continue
			}
			res = append(res, TimedEvent{
				AbsTicks: absTicks,
				AbsTime:  s.TimeAt(absTicks),
				Event:    ev,
			})
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		if res[i].AbsTicks != res[j].AbsTicks {
			return res[i].AbsTicks < res[j].AbsTicks
		}
		return res[i].Event.Kind == model.NoteOff && res[j].Event.Kind != model.NoteOff
	})
	return res
}

// Excerpt returns the events from fromTicks on, stopping after maxNotes
// note-ons (0 for no limit). Note-offs of notes started inside the excerpt
// are kept past the limit so nothing is left hanging.
func Excerpt(events []TimedEvent, fromTicks int64, maxNotes int) []TimedEvent {
	type noteKey struct{ channel, key uint8 }
	var res []TimedEvent
	open := make(map[noteKey]bool)
	notes := 0
	for _, te := range events {
		if te.AbsTicks < fromTicks {
			continue
		}
		ev := te.Event.Normalized()
		k := noteKey{ev.Channel, ev.Key}
		full := maxNotes > 0 && notes >= maxNotes
		switch ev.Kind {
		case model.NoteOn:
			if full {
				continue
			}
			notes++
			open[k] = true
		case model.NoteOff:
			if !open[k] {
				continue
			}
			delete(open, k)
		default:
			if full {
				continue
			}
		}
		res = append(res, te)
		if full && len(open) == 0 {
			break
		}
	}
	return res
}
