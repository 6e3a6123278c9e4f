package processor

import (
	"strings"

	"github.com/jsphweid/retune31/model"
	"github.com/jsphweid/retune31/theory"
	"github.com/jsphweid/retune31/tonalspace"
	"github.com/jsphweid/retune31/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("pkg", "processor")

var ErrUnknownNoteOffPolicy = errors.New("unknown note-off policy")

// NoteOffPolicy decides what a released key does to the tonal space.
type NoteOffPolicy uint8

const (
	// Released pitches stay until something clashes with them.
	NoteOffKeep NoteOffPolicy = iota
	// Released pitches leave the space, once the sustain pedal is up.
	NoteOffEvict
)

func ParseNoteOffPolicy(s string) (NoteOffPolicy, error) {
	switch strings.ToLower(s) {
	case "keep":
		return NoteOffKeep, nil
	case "evict":
		return NoteOffEvict, nil
	}
	return 0, errors.Wrapf(ErrUnknownNoteOffPolicy, "%q", s)
}

func (p NoteOffPolicy) String() string {
	if p == NoteOffEvict {
		return "evict"
	}
	return "keep"
}

const (
	ccSustain           = 64
	ccResetAllControls  = 121
	ccAllNotesOff       = 123
	sustainDownMinValue = 64
)

// Seed is a pitch the tonal space starts with, as if key had been played.
type Seed struct {
	Pitch theory.Pitch
	Key   uint8
}

type Options struct {
	Projection tonalspace.ProjectionType
	Metric     tonalspace.AssonanceMetric
	NoteOff    NoteOffPolicy
	Seed       *Seed
}

type heldKey struct {
	channel, key uint8
}

// Processor turns note events into 31-EDO pitch decisions. It owns its
// tonal space; nothing else may touch it while the processor is in use.
type Processor struct {
	space *tonalspace.TonalSpace
	opts  Options

	held      map[heldKey]theory.Pitch
	sustained map[heldKey]theory.Pitch
	// sustained pitches whose key was struck again with another spelling
	orphaned  []theory.Pitch
	pedalDown bool
}

func New(space *tonalspace.TonalSpace, opts Options) *Processor {
	if opts.Seed != nil {
		space.Insert(opts.Seed.Pitch, opts.Seed.Key)
	}
	return &Processor{
		space:     space,
		opts:      opts,
		held:      make(map[heldKey]theory.Pitch),
		sustained: make(map[heldKey]theory.Pitch),
	}
}

// Run consumes events until a Stop event arrives or events is closed,
// passing every decision to emit.
func (p *Processor) Run(events <-chan model.Event, emit func(model.Decision)) {
	for ev := range events {
		d, ok := p.Handle(ev)
		if !ok {
			if ev.Kind == model.Stop {
				log.Debug("stop received")
				return
			}
			continue
		}
		emit(d)
	}
	log.Debug("event queue closed")
}

// Handle applies a single event. It returns false for events that produce
// no decision.
func (p *Processor) Handle(ev model.Event) (model.Decision, bool) {
	ev = ev.Normalized()
	switch ev.Kind {
	case model.NoteOn:
		return p.noteOn(ev), true
	case model.NoteOff:
		return p.noteOff(ev), true
	case model.Controller:
		p.controller(ev)
		return model.Decision{Event: ev}, true
	}
	return model.Decision{}, false
}

func (p *Processor) noteOn(ev model.Event) model.Decision {
	candidates := p.space.Rank(ev.Key, p.opts.Metric, p.opts.Projection)
	if len(candidates) == 0 {
		log.Debug("tonal space is empty, ranking against A4")
		candidates = tonalspace.ReferenceRank(ev.Key, p.opts.Metric, p.opts.Projection, p.space.Config())
	}
	chosen := candidates[0].Pitch

	k := heldKey{ev.Channel, ev.Key}
	if prev, ok := p.held[k]; ok {
		// retriggered without a release in between
		delete(p.held, k)
		p.release(k, prev)
	}
	if old, ok := p.sustained[k]; ok {
		delete(p.sustained, k)
		if old != chosen {
			// still leaves when the pedal does
			p.orphaned = append(p.orphaned, old)
		}
	}
	p.held[k] = chosen
	p.space.Insert(chosen, ev.Key)

	log.WithFields(logrus.Fields{
		"key":        ev.Key,
		"pitch":      chosen,
		"candidates": len(candidates),
	}).Debug("note on")
	return model.Decision{Event: ev, Pitch: chosen, HasPitch: true, Candidates: candidates}
}

func (p *Processor) noteOff(ev model.Event) model.Decision {
	k := heldKey{ev.Channel, ev.Key}
	pitch, ok := p.held[k]
	if !ok {
		log.WithField("key", ev.Key).Debug("note off for a key that is not held")
		return model.Decision{Event: ev}
	}
	delete(p.held, k)
	p.release(k, pitch)
	return model.Decision{Event: ev, Pitch: pitch, HasPitch: true}
}

func (p *Processor) controller(ev model.Event) {
	switch ev.Controller {
	case ccSustain:
		down := ev.Value >= sustainDownMinValue
		if p.pedalDown && !down {
			p.pedalDown = false
			p.flushSustained()
		}
		p.pedalDown = down
	case ccResetAllControls:
		p.pedalDown = false
		p.flushSustained()
	case ccAllNotesOff:
		for _, k := range p.heldKeys() {
			if k.channel != ev.Channel {
				continue
			}
			pitch := p.held[k]
			delete(p.held, k)
			p.release(k, pitch)
		}
	}
}

// release applies the note-off policy to a pitch whose key went up.
func (p *Processor) release(k heldKey, pitch theory.Pitch) {
	if p.opts.NoteOff != NoteOffEvict {
		return
	}
	if p.pedalDown {
		p.sustained[k] = pitch
		return
	}
	p.evict(pitch)
}

func (p *Processor) flushSustained() {
	for k, pitch := range p.sustained {
		delete(p.sustained, k)
		p.evict(pitch)
	}
	for _, pitch := range p.orphaned {
		p.evict(pitch)
	}
	p.orphaned = nil
}

// evict removes pitch unless another held key still sounds it.
func (p *Processor) evict(pitch theory.Pitch) {
	for _, other := range p.held {
		if other == pitch {
			return
		}
	}
	if p.space.Remove(pitch) {
		log.WithField("pitch", pitch).Debug("released from tonal space")
	}
}

func (p *Processor) heldKeys() []heldKey {
	keys := make([]heldKey, 0, len(p.held))
	for k := range p.held {
		keys = append(keys, k)
	}
	return keys
}

// HeldKeys returns the keys currently held down, ascending.
func (p *Processor) HeldKeys() []uint8 {
	set := make(map[uint8]bool)
	for k := range p.held {
		set[k.key] = true
	}
	return util.GetSortedKeys(set)
}

// Snapshot lists the tonal space in recency order.
func (p *Processor) Snapshot() []model.ActivePitch {
	return p.space.Snapshot()
}

func (p *Processor) String() string {
	return p.space.String()
}

// Explain lists the terms a note-on of key would be scored with, without
// changing anything.
func (p *Processor) Explain(key uint8) []tonalspace.Contribution {
	return p.space.Contributions(key, p.opts.Metric, p.opts.Projection)
}
