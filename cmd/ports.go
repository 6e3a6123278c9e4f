package cmd

import (
	"fmt"

	"github.com/jsphweid/retune31/midi"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "Lists MIDI ports",
	Long:  `Lists the MIDI input and output ports, numbered as --in and --out accept them.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := midi.OpenPorts()
		if err != nil {
			return err
		}
		defer ports.Close()

		ins, err := ports.ListIns()
		if err != nil {
			return err
		}
		outs, err := ports.ListOuts()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "inputs:")
		for i, name := range ins {
			fmt.Fprintf(w, "  %d: %s\n", i, name)
		}
		fmt.Fprintln(w, "outputs:")
		for i, name := range outs {
			fmt.Fprintf(w, "  %d: %s\n", i, name)
		}
		return nil
	},
}
