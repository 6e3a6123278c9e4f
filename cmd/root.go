package cmd

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "retune31",
	Short: "Retunes 12-EDO MIDI into 31-EDO",
	Long: `Retunes notes played on an ordinary 12-EDO keyboard into 31-EDO pitches,
picking for every key the spelling that best fits what is already sounding.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return errors.Wrap(err, "--log-level")
		}
		logrus.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "panic, fatal, error, warn, info, debug or trace")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
