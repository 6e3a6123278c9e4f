package tonalspace

import (
	"fmt"
	"strings"

	"github.com/jsphweid/retune31/constants"
	"github.com/jsphweid/retune31/model"
	"github.com/jsphweid/retune31/theory"
	"github.com/jsphweid/retune31/util"
)

// ClashHook is called for an octave-displaced clash that did not evict
// existing. It may change existing.ClashCount.
type ClashHook func(existing *ActivePitch, incoming theory.Pitch)

// CountClashes increments the counter once per surviving clash, so an entry
// outlives DiffOctClashThreshold octave-displaced clashes.
func CountClashes(existing *ActivePitch, incoming theory.Pitch) {
	if existing.ClashCount < ^uint8(0) {
		existing.ClashCount++
	}
}

type Config struct {
	// An interval this many steps or less apart is a "semitone" clash.
	SemitoneThreshold int

	// An octave-displaced clash (e.g. a major 7th standing in for a minor
	// 2nd) only evicts an entry whose ClashCount equals this. Zero treats
	// inversions as seriously as seconds.
	DiffOctClashThreshold uint8

	// The second most recent class counts this much as the first, the
	// third this much as the second, and so on.
	OrderPrecedence float64

	// nil never increments ClashCount
	OnClash ClashHook
}

func DefaultConfig() Config {
	return Config{
		SemitoneThreshold:     constants.DefaultSemitoneThreshold,
		DiffOctClashThreshold: constants.DefaultDiffOctClashThreshold,
		OrderPrecedence:       constants.DefaultOrderPrecedence,
	}
}

// ActivePitch is one sounding pitch and the 12-EDO key that produced it.
type ActivePitch struct {
	Pitch      theory.Pitch
	Key        uint8
	ClashCount uint8
}

// TonalSpace holds the pitches that form the harmonic context, grouped by
// class, plus the classes ordered most recently struck first. A class is in
// order exactly when it has at least one entry in notes.
type TonalSpace struct {
	cfg   Config
	notes map[theory.PitchClass][]*ActivePitch
	order []theory.PitchClass
}

func New(cfg Config) *TonalSpace {
	return &TonalSpace{
		cfg:   cfg,
		notes: make(map[theory.PitchClass][]*ActivePitch),
	}
}

func (ts *TonalSpace) Config() Config {
	return ts.cfg
}

// Insert adds pitch unless it is already present, evicts whatever it
// clashes with and makes its class the most recent.
func (ts *TonalSpace) Insert(pitch theory.Pitch, key uint8) {
	if !ts.Contains(pitch) {
		ts.notes[pitch.Class] = append(ts.notes[pitch.Class], &ActivePitch{Pitch: pitch, Key: key})
	}

	threshold := ts.cfg.SemitoneThreshold
	for d := -threshold; d <= threshold; d++ {
		if d == 0 {
			continue
		}
		neighbor := theory.FromSteps(pitch.Class.StepsFromA() + d)
		entries, ok := ts.notes[neighbor]
		if !ok || neighbor == pitch.Class {
			continue
		}
		kept := entries[:0]
		for _, entry := range entries {
			if ts.clashes(entry, pitch) {
				continue
			}
			kept = append(kept, entry)
		}
		ts.setEntries(neighbor, kept)
	}

	ts.removeFromOrder(pitch.Class)
	ts.order = append([]theory.PitchClass{pitch.Class}, ts.order...)
}

// clashes reports whether entry must go now that incoming sounds.
func (ts *TonalSpace) clashes(entry *ActivePitch, incoming theory.Pitch) bool {
	dist := util.Abs(entry.Pitch.StepsFromA4() - incoming.StepsFromA4())
	if dist <= ts.cfg.SemitoneThreshold {
		return true
	}
	if entry.ClashCount == ts.cfg.DiffOctClashThreshold {
		return true
	}
	if ts.cfg.OnClash != nil {
		ts.cfg.OnClash(entry, incoming)
	}
	return false
}

// Remove drops pitch from the space. It reports whether it was present.
func (ts *TonalSpace) Remove(pitch theory.Pitch) bool {
	entries := ts.notes[pitch.Class]
	for i, entry := range entries {
		if entry.Pitch == pitch {
			kept := append(entries[:i:i], entries[i+1:]...)
			ts.setEntries(pitch.Class, kept)
			return true
		}
	}
	return false
}

// setEntries stores entries for pc, dropping the class from both
// containers when nothing is left.
func (ts *TonalSpace) setEntries(pc theory.PitchClass, entries []*ActivePitch) {
	if len(entries) > 0 {
		ts.notes[pc] = entries
		return
	}
	delete(ts.notes, pc)
	ts.removeFromOrder(pc)
}

func (ts *TonalSpace) removeFromOrder(pc theory.PitchClass) {
	for i, c := range ts.order {
		if c == pc {
			ts.order = append(ts.order[:i:i], ts.order[i+1:]...)
			return
		}
	}
}

func (ts *TonalSpace) Contains(pitch theory.Pitch) bool {
	for _, entry := range ts.notes[pitch.Class] {
		if entry.Pitch == pitch {
			return true
		}
	}
	return false
}

// Len is the number of active pitches.
func (ts *TonalSpace) Len() int {
	n := 0
	for _, entries := range ts.notes {
		n += len(entries)
	}
	return n
}

// Order returns the active classes, most recently struck first.
func (ts *TonalSpace) Order() []theory.PitchClass {
	return append([]theory.PitchClass(nil), ts.order...)
}

// Entries returns copies of the active pitches of one class.
func (ts *TonalSpace) Entries(pc theory.PitchClass) []ActivePitch {
	var res []ActivePitch
	for _, entry := range ts.notes[pc] {
		res = append(res, *entry)
	}
	return res
}

// Snapshot lists every active pitch in recency order.
func (ts *TonalSpace) Snapshot() []model.ActivePitch {
	res := make([]model.ActivePitch, 0, ts.Len())
	for _, pc := range ts.order {
		for _, entry := range ts.notes[pc] {
			res = append(res, model.ActivePitch{
				Pitch:      entry.Pitch,
				Key:        entry.Key,
				ClashCount: entry.ClashCount,
			})
		}
	}
	return res
}

func (ts *TonalSpace) String() string {
	var parts []string
	for _, ap := range ts.Snapshot() {
		parts = append(parts, fmt.Sprintf("%v(%d)", ap.Pitch, ap.Key))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
