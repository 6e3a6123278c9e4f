package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/retune31/midi"
	"github.com/jsphweid/retune31/model"
	"github.com/jsphweid/retune31/processor"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	replayOut           string
	replayExplain       bool
	replayFromTick      int64
	replayMaxNotes      int
	replayProcFlags     *processorFlags
	replayRealizerFlags *realizerFlags
)

func init() {
	replayProcFlags = addProcessorFlags(replayCmd)
	replayRealizerFlags = addRealizerFlags(replayCmd)
	replayCmd.Flags().StringVarP(&replayOut, "out", "o", "", "write the retuned notes to this MIDI file")
	replayCmd.Flags().BoolVar(&replayExplain, "explain", false, "print every scoring term before each note")
	replayCmd.Flags().Int64Var(&replayFromTick, "from-tick", 0, "start at this tick")
	replayCmd.Flags().IntVar(&replayMaxNotes, "max-notes", 0, "stop after this many notes, 0 for all")
	rootCmd.AddCommand(replayCmd)
}

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Retunes a MIDI file",
	Long: `Runs every track of a MIDI file through the processor in time order and
prints the pitch chosen for each note. With --out the retuned performance is
written to a new file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proc, err := replayProcFlags.build()
		if err != nil {
			return err
		}
		s, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}

		events := midi.ReadEvents(s)
		if replayFromTick > 0 || replayMaxNotes > 0 {
			events = midi.Excerpt(events, replayFromTick, replayMaxNotes)
		}
		decisions := replay(cmd.OutOrStdout(), proc, events, replayExplain)
		logrus.WithFields(logrus.Fields{
			"events": len(events),
			"space":  proc.String(),
		}).Info("replay done")

		if replayOut == "" {
			return nil
		}
		realizer, err := replayRealizerFlags.build()
		if err != nil {
			return err
		}
		rendered, err := midi.Render(s.TimeFormat, events, decisions, realizer)
		if err != nil {
			return err
		}
		if err := rendered.WriteFile(replayOut); err != nil {
			return errors.Wrapf(err, "write %v", replayOut)
		}
		logrus.WithField("file", replayOut).Info("wrote retuned file")
		return nil
	},
}

// replay handles events in order and prints one line per note-on. The
// returned decisions line up with events.
func replay(w io.Writer, proc *processor.Processor, events []midi.TimedEvent, explain bool) []model.Decision {
	decisions := make([]model.Decision, len(events))
	for i, te := range events {
		ev := te.Event.Normalized()
		if explain && ev.Kind == model.NoteOn {
			for _, c := range proc.Explain(ev.Key) {
				fmt.Fprintf(w, "          %v(%d) -> %v: %.2f x %.4f\n",
					c.Source.Pitch, c.Source.Key, c.Candidate, c.Score/c.Multiplier, c.Multiplier)
			}
		}

		d, ok := proc.Handle(ev)
		if !ok {
			continue
		}
		decisions[i] = d
		if d.Event.Kind == model.NoteOn {
			fmt.Fprintf(w, "%v -> %v", te, d.Pitch)
			if len(d.Candidates) > 1 {
				fmt.Fprintf(w, " (%v %.2f", d.Candidates[0].Pitch, d.Candidates[0].Score)
				for _, c := range d.Candidates[1:] {
					fmt.Fprintf(w, ", %v %.2f", c.Pitch, c.Score)
				}
				fmt.Fprint(w, ")")
			}
			fmt.Fprintln(w)
		}
	}
	return decisions
}
