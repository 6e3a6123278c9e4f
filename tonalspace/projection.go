package tonalspace

import (
	"sort"
	"strings"

	"github.com/jsphweid/retune31/constants"
	"github.com/jsphweid/retune31/model"
	"github.com/jsphweid/retune31/theory"
	"github.com/jsphweid/retune31/util"
	"github.com/pkg/errors"
)

var (
	ErrUnknownProjection = errors.New("unknown projection type")
	ErrUnknownMetric     = errors.New("unknown assonance metric")
)

type ProjectionType uint8

const (
	// U1, P4/5, Maj2/3/6/7 -> only 1 option
	// m2/3/6/7, dim5 -> 2 options: #/b variants
	Meantone17 ProjectionType = iota

	// U1 -> only 1 option
	// P4/5, Maj2/3/6/7 -> 3 options: v / natural / ^
	// m2/3/6/7, dim5 -> 2 options: #/b variants
	Meantone31KeepUnison
)

// 31-EDO step offsets for each 12-EDO interval class
var projections = map[ProjectionType][constants.SemitonesPerOctave][]int{
	Meantone17: {
		{0},
		{2, 3},
		{5},
		{7, 8},
		{10},
		{13},
		{15, 16},
		{18},
		{20, 21},
		{23},
		{25, 26},
		{28},
	},
	Meantone31KeepUnison: {
		{0},
		{2, 3},
		{5, 4, 6},
		{7, 8},
		{10, 9, 11},
		{13, 12, 14},
		{15, 16},
		{18, 17, 19},
		{20, 21},
		{23, 22, 24},
		{25, 26},
		{28, 27, 29},
	},
}

var projectionNames = map[ProjectionType]string{
	Meantone17:           "meantone17",
	Meantone31KeepUnison: "meantone31",
}

func ParseProjectionType(s string) (ProjectionType, error) {
	for pt, name := range projectionNames {
		if strings.EqualFold(s, name) {
			return pt, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownProjection, "%q", s)
}

func (pt ProjectionType) String() string {
	return projectionNames[pt]
}

type AssonanceMetric uint8

const (
	// fifths between the two classes
	Pythagorean AssonanceMetric = iota
)

func ParseAssonanceMetric(s string) (AssonanceMetric, error) {
	if strings.EqualFold(s, "pythagorean") {
		return Pythagorean, nil
	}
	return 0, errors.Wrapf(ErrUnknownMetric, "%q", s)
}

func (am AssonanceMetric) String() string {
	return "pythagorean"
}

// CandidateProjections lists the 31-EDO realizations of the 12-EDO interval
// between ap.Key and key, measured from ap.Pitch.
func (ap ActivePitch) CandidateProjections(key uint8, pt ProjectionType) []theory.Pitch {
	dist12 := int(key) - int(ap.Key)
	octaves := util.FloorDiv(dist12, constants.SemitonesPerOctave)
	semis := util.Mod(dist12, constants.SemitonesPerOctave)

	offsets := projections[pt][semis]
	res := make([]theory.Pitch, 0, len(offsets))
	for _, x := range offsets {
		res = append(res, ap.Pitch.Offset(x+constants.StepsPerOctave*octaves))
	}
	return res
}

// Assonance is lower the more preferable the interval between ap and
// candidate is under metric.
func (ap ActivePitch) Assonance(candidate theory.Pitch, metric AssonanceMetric) float64 {
	switch metric {
	case Pythagorean:
		return float64(candidate.Class.FifthsTo(ap.Pitch.Class))
	}
	return 0
}

// Contribution is one term of a ranking: what a single active pitch thinks
// of a single candidate.
type Contribution struct {
	Source     ActivePitch
	Candidate  theory.Pitch
	Multiplier float64
	Score      float64
}

// Contributions walks the space from the most recent class to the least
// recent and scores every candidate projection of every active pitch.
func (ts *TonalSpace) Contributions(key uint8, metric AssonanceMetric, pt ProjectionType) []Contribution {
	var res []Contribution
	orderMultiplier := 1.0
	for _, pc := range ts.order {
		entries := ts.notes[pc]
		for _, ap := range entries {
			for _, can := range ap.CandidateProjections(key, pt) {
				// divide by the pitches of the same class so octave
				// doublings are not counted twice
				score := ap.Assonance(can, metric) / float64(len(entries)) * orderMultiplier
				res = append(res, Contribution{
					Source:     *ap,
					Candidate:  can,
					Multiplier: orderMultiplier,
					Score:      score,
				})
			}
		}
		orderMultiplier *= ts.cfg.OrderPrecedence
	}
	return res
}

// Rank returns every candidate for key, best (lowest score) first. Equal
// scores keep the order in which the candidates were first proposed.
func (ts *TonalSpace) Rank(key uint8, metric AssonanceMetric, pt ProjectionType) []model.Candidate {
	index := make(map[theory.Pitch]int)
	var res []model.Candidate
	for _, c := range ts.Contributions(key, metric, pt) {
		i, ok := index[c.Candidate]
		if !ok {
			i = len(res)
			index[c.Candidate] = i
			res = append(res, model.Candidate{Pitch: c.Candidate})
		}
		res[i].Score += c.Score
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Score < res[j].Score
	})
	return res
}

// ReferenceRank ranks key against a space holding only A4, for when there
// is no harmonic context to go on.
func ReferenceRank(key uint8, metric AssonanceMetric, pt ProjectionType, cfg Config) []model.Candidate {
	ts := New(cfg)
	ts.Insert(theory.Pitch{Class: theory.A, Octave: constants.ReferenceOctave}, constants.ReferenceKey)
	return ts.Rank(key, metric, pt)
}
