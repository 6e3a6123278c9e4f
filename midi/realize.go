package midi

import (
	"math"
	"strings"

	"github.com/jsphweid/retune31/constants"
	"github.com/jsphweid/retune31/model"
	"github.com/jsphweid/retune31/theory"
	"github.com/jsphweid/retune31/util"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
)

type Mode uint8

const (
	// nearest 12-EDO key plus a pitch bend on a channel of its own
	ModeBend Mode = iota
	// one key per diesis, for 31-EDO keyboards
	ModeSteps
)

var ErrUnknownMode = errors.New("unknown output mode")

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "bend":
		return ModeBend, nil
	case "steps":
		return ModeSteps, nil
	}
	return 0, errors.Wrapf(ErrUnknownMode, "%q", s)
}

func (m Mode) String() string {
	if m == ModeSteps {
		return "steps"
	}
	return "bend"
}

const maxBend = 8191

type RealizerOptions struct {
	Mode Mode
	// semitones of a full pitch bend
	BendRange int
	// channels the bend mode rotates through
	Channels []uint8
	// key sounding A4 in steps mode
	RootKey int
}

func DefaultRealizerOptions() RealizerOptions {
	channels := make([]uint8, 0, 15)
	for ch := uint8(0); ch < 16; ch++ {
		// leave the GM drum channel alone
		if ch != 9 {
			channels = append(channels, ch)
		}
	}
	return RealizerOptions{
		Mode:      ModeBend,
		BendRange: constants.DefaultBendRange,
		Channels:  channels,
		RootKey:   constants.DefaultStepsRootKey,
	}
}

type sounding struct {
	channel, key uint8
}

type inputKey struct {
	channel, key uint8
}

// Realizer turns decisions into the MIDI messages that make an instrument
// sound the chosen pitches. It is not safe for concurrent use.
type Realizer struct {
	opts  RealizerOptions
	next  int
	notes map[inputKey]sounding
	busy  map[uint8]int
}

func NewRealizer(opts RealizerOptions) *Realizer {
	if len(opts.Channels) == 0 {
		opts.Channels = DefaultRealizerOptions().Channels
	}
	if opts.BendRange <= 0 {
		opts.BendRange = constants.DefaultBendRange
	}
	return &Realizer{
		opts:  opts,
		notes: make(map[inputKey]sounding),
		busy:  make(map[uint8]int),
	}
}

// KeyAndBend splits a pitch into the nearest 12-EDO key and the pitch bend
// needed to reach it with the given bend range.
func KeyAndBend(p theory.Pitch, bendRange int) (uint8, int16) {
	semis := p.Cents() / 100
	nearest := math.Round(semis)
	key := util.Clamp(constants.ReferenceKey+int(nearest), 0, 127)
	rest := semis - float64(key-constants.ReferenceKey)
	bend := int(math.Round(rest / float64(bendRange) * maxBend))
	return uint8(key), int16(util.Clamp(bend, -maxBend-1, maxBend))
}

// StepsKey is the key of p on a keyboard with one key per diesis.
func StepsKey(p theory.Pitch, rootKey int) (uint8, bool) {
	key := rootKey + p.StepsFromA4()
	if key < 0 || key > 127 {
		return 0, false
	}
	return uint8(key), true
}

func (r *Realizer) Realize(d model.Decision) []midi.Message {
	ev := d.Event
	switch ev.Kind {
	case model.NoteOn:
		if !d.HasPitch {
			return nil
		}
		return r.noteOn(ev, d.Pitch)
	case model.NoteOff:
		return r.noteOff(ev)
	case model.Controller:
		return r.controller(ev)
	}
	return nil
}

func (r *Realizer) noteOn(ev model.Event, p theory.Pitch) []midi.Message {
	var msgs []midi.Message
	in := inputKey{ev.Channel, ev.Key}
	if _, ok := r.notes[in]; ok {
		msgs = append(msgs, r.noteOff(ev)...)
	}

	if r.opts.Mode == ModeSteps {
		key, ok := StepsKey(p, r.opts.RootKey)
		if !ok {
			log.WithField("pitch", p).Warn("pitch is off the 31-EDO keyboard")
			return msgs
		}
		r.notes[in] = sounding{ev.Channel, key}
		return append(msgs, midi.NoteOn(ev.Channel, key, ev.Velocity))
	}

	key, bend := KeyAndBend(p, r.opts.BendRange)
	ch := r.pickChannel()
	r.notes[in] = sounding{ch, key}
	r.busy[ch]++
	return append(msgs,
		midi.Pitchbend(ch, bend),
		midi.NoteOn(ch, key, ev.Velocity),
	)
}

func (r *Realizer) noteOff(ev model.Event) []midi.Message {
	in := inputKey{ev.Channel, ev.Key}
	s, ok := r.notes[in]
	if !ok {
		return nil
	}
	delete(r.notes, in)
	if r.opts.Mode == ModeBend {
		r.busy[s.channel]--
	}
	return []midi.Message{midi.NoteOff(s.channel, s.key)}
}

// controller passes control changes through. In bend mode they go to every
// channel of the pool, since the notes of one input channel are spread
// across all of them.
func (r *Realizer) controller(ev model.Event) []midi.Message {
	if r.opts.Mode == ModeSteps {
		return []midi.Message{midi.ControlChange(ev.Channel, ev.Controller, ev.Value)}
	}
	msgs := make([]midi.Message, 0, len(r.opts.Channels))
	for _, ch := range r.opts.Channels {
		msgs = append(msgs, midi.ControlChange(ch, ev.Controller, ev.Value))
	}
	return msgs
}

// pickChannel rotates through the pool, preferring a channel with nothing
// sounding so bends never disturb a held note.
func (r *Realizer) pickChannel() uint8 {
	n := len(r.opts.Channels)
	for i := 0; i < n; i++ {
		ch := r.opts.Channels[(r.next+i)%n]
		if r.busy[ch] == 0 {
			r.next = (r.next + i + 1) % n
			return ch
		}
	}
	ch := r.opts.Channels[r.next]
	r.next = (r.next + 1) % n
	log.WithField("channel", ch).Warn("every channel is sounding, bending a held note")
	return ch
}

// Sounding is the number of notes the realizer has started and not stopped.
func (r *Realizer) Sounding() int {
	return len(r.notes)
}

// Setup is sent once before playing: in bend mode it sets the pitch bend
// range (RPN 0) on every channel of the pool.
func (r *Realizer) Setup() []midi.Message {
	if r.opts.Mode != ModeBend {
		return nil
	}
	var msgs []midi.Message
	for _, ch := range r.opts.Channels {
		msgs = append(msgs,
			midi.ControlChange(ch, 101, 0),
			midi.ControlChange(ch, 100, 0),
			midi.ControlChange(ch, 6, uint8(util.Clamp(r.opts.BendRange, 0, 127))),
			midi.ControlChange(ch, 38, 0),
		)
	}
	return msgs
}
