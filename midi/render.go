package midi

import (
	"github.com/jsphweid/retune31/model"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Render plays decisions through r into a new single-track file. decisions
// lines up with events; a decision with no event kind is skipped.
func Render(timeFormat smf.TimeFormat, events []TimedEvent, decisions []model.Decision, r *Realizer) (*smf.SMF, error) {
	if len(events) != len(decisions) {
		return nil, errors.Errorf("%d events but %d decisions", len(events), len(decisions))
	}

	res := smf.New()
	res.TimeFormat = timeFormat

	var track smf.Track
	for _, msg := range r.Setup() {
		track.Add(0, msg)
	}

	var lastTicks int64
	for i, d := range decisions {
		if d.Event.Kind == 0 {
			continue
		}
		delta := uint32(events[i].AbsTicks - lastTicks)
		for _, msg := range r.Realize(d) {
			track.Add(delta, msg)
			delta = 0
			lastTicks = events[i].AbsTicks
		}
	}
	track.Close(0)

	if err := res.Add(track); err != nil {
		return nil, errors.Wrap(err, "add track")
	}
	return res, nil
}
