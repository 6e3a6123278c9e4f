package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/retune31/theory"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse NAME...",
	Short: "Shows where pitches sit in 31-EDO",
	Long: `Parses pitch names such as C#4, Ebv3 or Fx and prints their canonical
class, steps from A, steps from A4 and cents from A4.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range args {
			if err := describe(cmd.OutOrStdout(), name); err != nil {
				return err
			}
		}
		return nil
	},
}

func describe(w io.Writer, name string) error {
	if p, err := theory.ParsePitch(name); err == nil {
		fmt.Fprintf(w, "%-8s %-6v class=%-4v from A=%-4d from A4=%-5d cents=%.1f\n",
			name, p, p.Class, p.Class.StepsFromA(), p.StepsFromA4(), p.Cents())
		return nil
	}
	pc, err := theory.ParsePitchClass(name)
	if err != nil {
		return errors.Wrapf(err, "%q is neither a pitch nor a pitch class", name)
	}
	fmt.Fprintf(w, "%-8s %-6v from A=%d\n", name, pc, pc.StepsFromA())
	return nil
}
