package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input and output devices",
		Long:  "Lists the audio devices and their IDs for audio.input_device_id and audio.output_device_id.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, err := openDriver()
			if err != nil {
				return err
			}
			defer driver.Close()

			devices, err := driver.ListDevices()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tIN\tOUT\tDEFAULT")
			for _, d := range devices {
				def := ""
				switch {
				case d.IsDefaultInput && d.IsDefaultOutput:
					def = "input,output"
				case d.IsDefaultInput:
					def = "input"
				case d.IsDefaultOutput:
					def = "output"
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", d.ID, d.Name, d.MaxInputChannels, d.MaxOutputChannels, def)
			}
			return w.Flush()
		},
	}
}
