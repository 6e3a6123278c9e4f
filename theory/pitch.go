package theory

import (
	"regexp"
	"strconv"

	"github.com/jsphweid/retune31/constants"
	"github.com/jsphweid/retune31/util"
	"github.com/pkg/errors"
)

// Pitch is a class in a concrete octave. Octaves start at C, so the
// canonical octave of Cb and Dbb is one below their spelled octave.
type Pitch struct {
	Class  PitchClass
	Octave int
}

// splits a pitch into spelling and octave
var pitchRegex = regexp.MustCompile(`^([a-gA-G][^0-9-]*)(.*)$`)

// ParsePitch reads scientific pitch notation, e.g. "C4", "Eb^3", "Bx-1".
func ParsePitch(s string) (Pitch, error) {
	m := pitchRegex.FindStringSubmatch(s)
	if m == nil {
		return Pitch{}, errors.Wrapf(ErrInvalidSpelling, "invalid pitch name %q", s)
	}
	steps, err := parseSpelling(m[1])
	if err != nil {
		return Pitch{}, err
	}
	// the octave fits in a signed byte
	octave, err := strconv.ParseInt(m[2], 10, 8)
	if err != nil {
		return Pitch{}, errors.Wrapf(ErrInvalidOctave, "%q in %q", m[2], s)
	}
	return FromStepsFromA4(steps + constants.StepsPerOctave*(int(octave)-constants.ReferenceOctave)), nil
}

func MustParsePitch(s string) Pitch {
	p, err := ParsePitch(s)
	if err != nil {
		panic(err)
	}
	return p
}

// FromStepsFromA4 decomposes an absolute step count into class and octave.
func FromStepsFromA4(n int) Pitch {
	return Pitch{
		Class:  FromSteps(n),
		Octave: constants.ReferenceOctave + util.FloorDiv(n-minSteps, constants.StepsPerOctave),
	}
}

func (p Pitch) StepsFromA4() int {
	return p.Class.StepsFromA() + constants.StepsPerOctave*(p.Octave-constants.ReferenceOctave)
}

func (p Pitch) Offset(delta int) Pitch {
	return FromStepsFromA4(p.StepsFromA4() + delta)
}

// Cents above (or below) A4.
func (p Pitch) Cents() float64 {
	return float64(p.StepsFromA4()) * 1200 / constants.StepsPerOctave
}

// spelledOctave is the octave of the written letter, which differs from
// p.Octave when the accidental carries the pitch across a C.
func (p Pitch) spelledOctave() int {
	natural := naturalSteps[p.Class.Letter()] + constants.StepsPerOctave*(p.Octave-constants.ReferenceOctave)
	return p.Octave + util.FloorDiv(p.StepsFromA4()-p.Class.accidentalSteps()-natural, constants.StepsPerOctave)
}

func (p Pitch) String() string {
	return p.Class.String() + strconv.Itoa(p.spelledOctave())
}

func (p Pitch) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pitch) UnmarshalText(b []byte) error {
	parsed, err := ParsePitch(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
