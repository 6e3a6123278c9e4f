package tonalspace

import (
	"testing"

	"github.com/jsphweid/retune31/theory"
	"github.com/stretchr/testify/assert"
)

func p(s string) theory.Pitch {
	return theory.MustParsePitch(s)
}

// checkConsistent asserts that order and notes describe the same classes.
func checkConsistent(t *testing.T, ts *TonalSpace) {
	t.Helper()
	assert.Equal(t, len(ts.notes), len(ts.order))
	for _, pc := range ts.order {
		assert.NotEmpty(t, ts.notes[pc], "%v is ordered but has no entries", pc)
	}
}

func TestInsertSemitoneClashEvicts(t *testing.T) {
	ts := New(DefaultConfig())
	ts.Insert(p("C4"), 60)
	ts.Insert(p("C#4"), 61)

	assert := assert.New(t)
	assert.False(ts.Contains(p("C4")))
	assert.True(ts.Contains(p("C#4")))
	assert.Equal(1, ts.Len())
	assert.Equal([]theory.PitchClass{theory.Cs}, ts.Order())
	checkConsistent(t, ts)
}

func TestInsertIsIdempotent(t *testing.T) {
	ts := New(DefaultConfig())
	ts.Insert(p("C4"), 60)
	ts.Insert(p("C4"), 60)

	assert := assert.New(t)
	assert.Equal(1, ts.Len())
	assert.Len(ts.Entries(theory.C), 1)
	checkConsistent(t, ts)
}

func TestInsertKeepsOctaveDoublings(t *testing.T) {
	ts := New(DefaultConfig())
	ts.Insert(p("C4"), 60)
	ts.Insert(p("C5"), 72)

	assert := assert.New(t)
	assert.Equal(2, ts.Len())
	assert.Equal([]theory.PitchClass{theory.C}, ts.Order())
}

func TestInsertMovesClassToFront(t *testing.T) {
	ts := New(DefaultConfig())
	ts.Insert(p("C4"), 60)
	ts.Insert(p("E4"), 64)
	ts.Insert(p("G4"), 67)
	assert.Equal(t, []theory.PitchClass{theory.G, theory.E, theory.C}, ts.Order())

	ts.Insert(p("C4"), 60)
	assert.Equal(t, []theory.PitchClass{theory.C, theory.G, theory.E}, ts.Order())
	assert.Equal(t, 3, ts.Len())
	checkConsistent(t, ts)
}

func TestInsertLeavesNonClashingNeighboursAlone(t *testing.T) {
	ts := New(DefaultConfig())
	ts.Insert(p("C4"), 60)
	// D is 5 steps above C, beyond the threshold
	ts.Insert(p("D4"), 62)
	assert.Equal(t, 2, ts.Len())
}

func TestInsertEvictsAcrossOctaveBoundary(t *testing.T) {
	ts := New(DefaultConfig())
	ts.Insert(p("B#4"), 72)
	ts.Insert(p("C5"), 72)
	assert.False(t, ts.Contains(p("B#4")))
	checkConsistent(t, ts)
}

func TestOctaveDisplacedClashDefaultEvicts(t *testing.T) {
	ts := New(DefaultConfig())
	ts.Insert(p("C4"), 60)
	ts.Insert(p("C#5"), 73)
	assert.False(t, ts.Contains(p("C4")))
	checkConsistent(t, ts)
}

func TestOctaveDisplacedClashWithThresholdKeeps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DiffOctClashThreshold = 1
	ts := New(cfg)
	ts.Insert(p("C4"), 60)
	ts.Insert(p("C#5"), 73)

	assert := assert.New(t)
	assert.True(ts.Contains(p("C4")))
	assert.True(ts.Contains(p("C#5")))
	// the default hook never increments
	assert.Equal(uint8(0), ts.Entries(theory.C)[0].ClashCount)

	// a same-octave clash still evicts unconditionally
	ts.Insert(p("B3"), 59)
	assert.False(ts.Contains(p("C4")))
	checkConsistent(t, ts)
}

func TestCountClashesHook(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DiffOctClashThreshold = 2
	cfg.OnClash = CountClashes
	ts := New(cfg)
	ts.Insert(p("C4"), 60)

	assert := assert.New(t)
	ts.Insert(p("C#5"), 73)
	assert.Equal(uint8(1), ts.Entries(theory.C)[0].ClashCount)
	ts.Insert(p("Db6"), 85)
	assert.Equal(uint8(2), ts.Entries(theory.C)[0].ClashCount)
	ts.Insert(p("C#6"), 85)
	assert.False(ts.Contains(p("C4")))
	checkConsistent(t, ts)
}

func TestRemove(t *testing.T) {
	ts := New(DefaultConfig())
	ts.Insert(p("C4"), 60)
	ts.Insert(p("E4"), 64)

	assert := assert.New(t)
	assert.True(ts.Remove(p("E4")))
	assert.False(ts.Remove(p("E4")))
	assert.Equal([]theory.PitchClass{theory.C}, ts.Order())
	assert.True(ts.Remove(p("C4")))
	assert.Empty(ts.Order())
	assert.Equal(0, ts.Len())
	checkConsistent(t, ts)
}

func TestSnapshotAndString(t *testing.T) {
	ts := New(DefaultConfig())
	ts.Insert(p("C4"), 60)
	ts.Insert(p("E4"), 64)

	snap := ts.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, p("E4"), snap[0].Pitch)
	assert.Equal(t, uint8(60), snap[1].Key)
	assert.Equal(t, "[E4(64) C4(60)]", ts.String())
}
