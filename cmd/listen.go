package cmd

import (
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/retune31/constants"
	"github.com/jsphweid/retune31/midi"
	"github.com/jsphweid/retune31/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/xlab/closer"
	gomidi "gitlab.com/gomidi/midi/v2"
)

var (
	listenIn            string
	listenOut           string
	listenQueueSize     int
	listenProcFlags     *processorFlags
	listenRealizerFlags *realizerFlags
)

func init() {
	listenProcFlags = addProcessorFlags(listenCmd)
	listenRealizerFlags = addRealizerFlags(listenCmd)
	listenCmd.Flags().StringVar(&listenIn, "in", "0", "input port, by number or name")
	listenCmd.Flags().StringVar(&listenOut, "out", "", "output port, by number or name; decisions are only logged without one")
	listenCmd.Flags().IntVar(&listenQueueSize, "queue-size", constants.GetQueueSize(), "events buffered between the port and the processor")
	rootCmd.AddCommand(listenCmd)
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Retunes a live MIDI input",
	Long: `Listens on a MIDI input, picks a 31-EDO pitch for every key and plays it
on a MIDI output. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listenQueueSize < 1 {
			listenQueueSize = constants.DefaultQueueSize
		}
		proc, err := listenProcFlags.build()
		if err != nil {
			return err
		}
		realizer, err := listenRealizerFlags.build()
		if err != nil {
			return err
		}

		ports, err := midi.OpenPorts()
		if err != nil {
			return err
		}
		closer.Bind(ports.Close)

		in, err := ports.FindIn(listenIn)
		if err != nil {
			ports.Close()
			return err
		}
		send := func(gomidi.Message) error { return nil }
		if listenOut != "" {
			out, err := ports.FindOut(listenOut)
			if err != nil {
				ports.Close()
				return err
			}
			if send, err = midi.Sender(out); err != nil {
				ports.Close()
				return err
			}
			for _, msg := range realizer.Setup() {
				if err := send(msg); err != nil {
					logrus.WithError(err).Warn("could not set up output")
				}
			}
		}

		queue := make(chan model.Event, listenQueueSize)
		stop, err := midi.Listen(in, queue)
		if err != nil {
			ports.Close()
			return err
		}
		logrus.WithFields(logrus.Fields{"in": in, "out": listenOut}).Info("listening")

		logSpace := debounce.New(250 * time.Millisecond)
		done := make(chan struct{})
		go func() {
			defer close(done)
			proc.Run(queue, func(d model.Decision) {
				if d.HasPitch {
					logrus.WithFields(logrus.Fields{
						"event": d.Event.String(),
						"pitch": d.Pitch,
					}).Debug("decision")
				}
				for _, msg := range realizer.Realize(d) {
					if err := send(msg); err != nil {
						logrus.WithError(err).Warn("send failed")
					}
				}
				// taken here, the space belongs to this goroutine
				space := proc.String()
				logSpace(func() {
					logrus.WithField("space", space).Info("tonal space")
				})
			})
		}()

		// bound last, so it runs before the ports are closed
		closer.Bind(func() {
			stop()
			queue <- model.NewStop()
			<-done
			logrus.Info("stopped listening")
		})
		closer.Hold()
		return nil
	},
}
