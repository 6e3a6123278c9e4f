package constants

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// 31 dieses to the octave
const StepsPerOctave = 31

const SemitonesPerOctave = 12

// A4 is the reference pitch: MIDI key 69, octave 4, 0 steps.
const ReferenceKey = 69
const ReferenceOctave = 4

const DefaultSemitoneThreshold = 3
const DefaultDiffOctClashThreshold = 0
const DefaultOrderPrecedence = 0.99

const DefaultProjection = "meantone17"
const DefaultMetric = "pythagorean"
const DefaultNoteOffPolicy = "keep"

// middle C
const DefaultSeed = "C4"
const DefaultSeedKey = 60

const DefaultQueueSize = 256
const DefaultAddr = ":8080"

// semitones either side, the General MIDI default
const DefaultBendRange = 2

// key that sounds A4 when driving a 31-EDO keyboard directly
const DefaultStepsRootKey = 64

const DefaultSessionTTL = 10 * time.Minute

func getString(name string, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func getInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("ignoring %s=%q: %v", name, v, err)
		return fallback
	}
	return n
}

func GetSemitoneThreshold() int {
	return getInt("RETUNE_SEMITONE_THRESHOLD", DefaultSemitoneThreshold)
}

func GetDiffOctClashThreshold() int {
	return getInt("RETUNE_DIFF_OCT_CLASH_THRESHOLD", DefaultDiffOctClashThreshold)
}

func GetOrderPrecedence() float64 {
	v := os.Getenv("RETUNE_ORDER_PRECEDENCE")
	if v == "" {
		return DefaultOrderPrecedence
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 || f > 1 {
		logrus.Warnf("ignoring RETUNE_ORDER_PRECEDENCE=%q: must be in (0, 1]", v)
		return DefaultOrderPrecedence
	}
	return f
}

func GetProjection() string {
	return getString("RETUNE_PROJECTION", DefaultProjection)
}

func GetMetric() string {
	return getString("RETUNE_METRIC", DefaultMetric)
}

func GetNoteOffPolicy() string {
	return getString("RETUNE_NOTE_OFF", DefaultNoteOffPolicy)
}

// GetSeed returns the pitch the tonal space starts with. An empty value
// (RETUNE_SEED="") starts from an empty space.
func GetSeed() string {
	return getString("RETUNE_SEED", DefaultSeed)
}

func GetQueueSize() int {
	n := getInt("RETUNE_QUEUE_SIZE", DefaultQueueSize)
	if n < 1 {
		logrus.Warnf("ignoring RETUNE_QUEUE_SIZE=%d: must be positive", n)
		return DefaultQueueSize
	}
	return n
}

func GetAddr() string {
	return getString("RETUNE_ADDR", DefaultAddr)
}

func GetBendRange() int {
	return getInt("RETUNE_BEND_RANGE", DefaultBendRange)
}

func GetSessionTTL() time.Duration {
	v := os.Getenv("RETUNE_SESSION_TTL")
	if v == "" {
		return DefaultSessionTTL
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.Warnf("ignoring RETUNE_SESSION_TTL=%q: %v", v, err)
		return DefaultSessionTTL
	}
	return d
}
