package cmd

import (
	"github.com/jsphweid/retune31/constants"
	"github.com/jsphweid/retune31/midi"
	"github.com/jsphweid/retune31/processor"
	"github.com/jsphweid/retune31/theory"
	"github.com/jsphweid/retune31/tonalspace"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// processorFlags are the tuning options shared by every command that runs
// a processor.
type processorFlags struct {
	projection            string
	metric                string
	noteOff               string
	seed                  string
	seedKey               int
	semitoneThreshold     int
	diffOctClashThreshold int
	orderPrecedence       float64
	countClashes          bool
}

func addProcessorFlags(cmd *cobra.Command) *processorFlags {
	f := &processorFlags{}
	flags := cmd.Flags()
	flags.StringVar(&f.projection, "projection", constants.GetProjection(), "meantone17 or meantone31")
	flags.StringVar(&f.metric, "metric", constants.GetMetric(), "assonance metric")
	flags.StringVar(&f.noteOff, "note-off", constants.GetNoteOffPolicy(), "keep or evict released pitches")
	flags.StringVar(&f.seed, "seed", constants.GetSeed(), `pitch the tonal space starts with, "" for none`)
	flags.IntVar(&f.seedKey, "seed-key", constants.DefaultSeedKey, "key the seed pitch stands for")
	flags.IntVar(&f.semitoneThreshold, "semitone-threshold", constants.GetSemitoneThreshold(), "steps apart that count as a clash (0-15)")
	flags.IntVar(&f.diffOctClashThreshold, "diff-oct-clash-threshold", constants.GetDiffOctClashThreshold(), "clashes an octave-displaced pitch survives")
	flags.Float64Var(&f.orderPrecedence, "order-precedence", constants.GetOrderPrecedence(), "weight decay per older pitch class")
	flags.BoolVar(&f.countClashes, "count-clashes", false, "count octave-displaced clashes towards eviction")
	return f
}

func (f *processorFlags) config() (tonalspace.Config, error) {
	if f.semitoneThreshold < 0 || f.semitoneThreshold > 15 {
		return tonalspace.Config{}, errors.Errorf("--semitone-threshold must be within 0-15, got %d", f.semitoneThreshold)
	}
	if f.diffOctClashThreshold < 0 || f.diffOctClashThreshold > 255 {
		return tonalspace.Config{}, errors.Errorf("--diff-oct-clash-threshold must be within 0-255, got %d", f.diffOctClashThreshold)
	}
	if f.orderPrecedence <= 0 || f.orderPrecedence > 1 {
		return tonalspace.Config{}, errors.Errorf("--order-precedence must be within (0, 1], got %v", f.orderPrecedence)
	}

	cfg := tonalspace.Config{
		SemitoneThreshold:     f.semitoneThreshold,
		DiffOctClashThreshold: uint8(f.diffOctClashThreshold),
		OrderPrecedence:       f.orderPrecedence,
	}
	if f.countClashes {
		cfg.OnClash = tonalspace.CountClashes
	}
	return cfg, nil
}

func (f *processorFlags) options() (processor.Options, error) {
	var opts processor.Options
	var err error
	if opts.Projection, err = tonalspace.ParseProjectionType(f.projection); err != nil {
		return opts, err
	}
	if opts.Metric, err = tonalspace.ParseAssonanceMetric(f.metric); err != nil {
		return opts, err
	}
	if opts.NoteOff, err = processor.ParseNoteOffPolicy(f.noteOff); err != nil {
		return opts, err
	}
	if f.seed != "" {
		pitch, err := theory.ParsePitch(f.seed)
		if err != nil {
			return opts, errors.Wrap(err, "--seed")
		}
		if f.seedKey < 0 || f.seedKey > 127 {
			return opts, errors.Errorf("--seed-key must be within 0-127, got %d", f.seedKey)
		}
		opts.Seed = &processor.Seed{Pitch: pitch, Key: uint8(f.seedKey)}
	}
	return opts, nil
}

// newProcessorFunc validates the flags once and returns a constructor for
// fresh processors.
func (f *processorFlags) newProcessorFunc() (func() (*processor.Processor, error), error) {
	cfg, err := f.config()
	if err != nil {
		return nil, err
	}
	opts, err := f.options()
	if err != nil {
		return nil, err
	}
	return func() (*processor.Processor, error) {
		return processor.New(tonalspace.New(cfg), opts), nil
	}, nil
}

func (f *processorFlags) build() (*processor.Processor, error) {
	newProc, err := f.newProcessorFunc()
	if err != nil {
		return nil, err
	}
	return newProc()
}

type realizerFlags struct {
	mode      string
	bendRange int
	rootKey   int
}

func addRealizerFlags(cmd *cobra.Command) *realizerFlags {
	f := &realizerFlags{}
	flags := cmd.Flags()
	flags.StringVar(&f.mode, "mode", "bend", "bend: nearest key plus pitch bend, steps: one key per diesis")
	flags.IntVar(&f.bendRange, "bend-range", constants.GetBendRange(), "pitch bend range of the receiver in semitones")
	flags.IntVar(&f.rootKey, "root-key", constants.DefaultStepsRootKey, "key sounding A4 in steps mode")
	return f
}

func (f *realizerFlags) build() (*midi.Realizer, error) {
	mode, err := midi.ParseMode(f.mode)
	if err != nil {
		return nil, err
	}
	opts := midi.DefaultRealizerOptions()
	opts.Mode = mode
	opts.BendRange = f.bendRange
	opts.RootKey = f.rootKey
	return midi.NewRealizer(opts), nil
}
