package theory

import (
	"regexp"
	"strings"

	"github.com/jsphweid/retune31/constants"
	"github.com/jsphweid/retune31/util"
	"github.com/pkg/errors"
)

var (
	ErrInvalidSpelling = errors.New("invalid spelling")
	ErrInvalidOctave   = errors.New("invalid octave")
)

// PitchClass is one of the 31 enharmonically distinct notes of 31-EDO.
// The constants run along the circle of fifths.
type PitchClass uint8

const (
	Abb PitchClass = iota
	Ebb
	Bbb
	Fb
	// Cb sits a diesis above B. Octaves begin at exactly C, so Cb4
	// belongs to canonical octave 3.
	Cb
	Gb
	Db
	Ab
	Eb
	Bb
	F
	C
	G
	D
	A
	E
	B
	Fs
	Cs
	Gs
	Ds
	As
	Es
	Bs
	Fx
	Cx
	Gx
	Dx // also Fbb
	Ax // also Cbb
	Ex // also Gbb
	Bx // also Dbb

	numClasses = iota
)

// lowest and highest steps from A that a class can have
const (
	minSteps = -23
	maxSteps = 7
)

type classInfo struct {
	letter     byte
	accidental string
	steps      int
}

var classes = [numClasses]classInfo{
	Abb: {'A', "bb", -4},
	Ebb: {'E', "bb", -17},
	Bbb: {'B', "bb", 1},
	Fb:  {'F', "b", -12},
	Cb:  {'C', "b", 6},
	Gb:  {'G', "b", -7},
	Db:  {'D', "b", -20},
	Ab:  {'A', "b", -2},
	Eb:  {'E', "b", -15},
	Bb:  {'B', "b", 3},
	F:   {'F', "", -10},
	C:   {'C', "", -23},
	G:   {'G', "", -5},
	D:   {'D', "", -18},
	A:   {'A', "", 0},
	E:   {'E', "", -13},
	B:   {'B', "", 5},
	Fs:  {'F', "#", -8},
	Cs:  {'C', "#", -21},
	Gs:  {'G', "#", -3},
	Ds:  {'D', "#", -16},
	As:  {'A', "#", 2},
	Es:  {'E', "#", -11},
	Bs:  {'B', "#", 7},
	Fx:  {'F', "x", -6},
	Cx:  {'C', "x", -19},
	Gx:  {'G', "x", -1},
	Dx:  {'D', "x", -14},
	Ax:  {'A', "x", 4},
	Ex:  {'E', "x", -9},
	Bx:  {'B', "x", -22},
}

// byStep[n-minSteps] is the class n steps from A.
var byStep = func() [numClasses]PitchClass {
	var res [numClasses]PitchClass
	for pc, info := range classes {
		res[info.steps-minSteps] = PitchClass(pc)
	}
	return res
}()

var naturalSteps = map[byte]int{
	'A': 0,
	'B': 5,
	'C': -23,
	'D': -18,
	'E': -13,
	'F': -10,
	'G': -5,
}

var accidentalSteps = map[string]int{
	"":    0,
	"b":   -2,
	"bb":  -4,
	"#":   2,
	"##":  4,
	"x":   4,
	"^":   1,
	"v":   -1,
	"#v":  1,
	"bv":  -3,
	"bb^": -3,
	"#^":  3,
	"xv":  3,
}

var unicodeAccidentals = strings.NewReplacer("♯", "#", "♭", "b", "𝄪", "x")

// splits a spelling into note and accidental
var noteRegex = regexp.MustCompile(`^([a-gA-G])(.*)$`)

// ParsePitchClass reads a letter followed by an optional accidental, e.g.
// "C", "Eb", "F#^", "Bbv". Spellings that land on the same class return
// the same value; String gives the canonical one back.
func ParsePitchClass(s string) (PitchClass, error) {
	steps, err := parseSpelling(s)
	if err != nil {
		return 0, err
	}
	return FromSteps(steps), nil
}

// parseSpelling returns the steps from A of the spelled note within the
// letter's own octave, before any reduction.
func parseSpelling(s string) (int, error) {
	m := noteRegex.FindStringSubmatch(unicodeAccidentals.Replace(s))
	if m == nil {
		return 0, errors.Wrapf(ErrInvalidSpelling, "%q has no note name", s)
	}
	acc, ok := accidentalSteps[m[2]]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidSpelling, "%q is an invalid accidental", m[2])
	}
	return naturalSteps[strings.ToUpper(m[1])[0]] + acc, nil
}

// FromSteps returns the class n steps away from A. Any integer is valid.
func FromSteps(n int) PitchClass {
	return byStep[util.Mod(n-minSteps, constants.StepsPerOctave)]
}

// StepsFromA returns how many dieses this class is from A in the same
// octave, e.g. -5 for G.
func (pc PitchClass) StepsFromA() int {
	return classes[pc].steps
}

// FifthsTo counts the fifths separating two classes on the 31-step circle,
// taking the shorter way round.
func (pc PitchClass) FifthsTo(other PitchClass) int {
	r := util.Abs(pc.StepsFromA()-other.StepsFromA()) % constants.StepsPerOctave
	count := 0
	for r != 0 {
		r = (r + 13) % constants.StepsPerOctave
		count++
	}
	if count > 15 {
		count = constants.StepsPerOctave - count
	}
	return count
}

func (pc PitchClass) Letter() byte {
	return classes[pc].letter
}

func (pc PitchClass) Accidental() string {
	return classes[pc].accidental
}

// accidentalSteps of the canonical spelling
func (pc PitchClass) accidentalSteps() int {
	return accidentalSteps[classes[pc].accidental]
}

func (pc PitchClass) String() string {
	if int(pc) >= numClasses {
		return "PitchClass(?)"
	}
	return string(pc.Letter()) + pc.Accidental()
}

func (pc PitchClass) MarshalText() ([]byte, error) {
	return []byte(pc.String()), nil
}

func (pc *PitchClass) UnmarshalText(b []byte) error {
	parsed, err := ParsePitchClass(string(b))
	if err != nil {
		return err
	}
	*pc = parsed
	return nil
}

// All returns every class in circle-of-fifths order.
func All() []PitchClass {
	res := make([]PitchClass, numClasses)
	for i := range res {
		res[i] = PitchClass(i)
	}
	return res
}
