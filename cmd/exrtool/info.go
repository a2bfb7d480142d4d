package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vearutop/exrplanes"
)

func newInfoCmd(v *viper.Viper) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info [file]",
		Short: "Show OpenEXR header summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := exrplanes.InspectFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			channels := make([]string, 0, len(info.Channels))
			for _, ch := range info.Channels {
				channels = append(channels, ch.Name+":"+ch.Type)
			}
			fmt.Fprintf(out, "File:           %s\n", args[0])
			fmt.Fprintf(out, "Dimensions:     %d x %d\n", info.Width, info.Height)
			fmt.Fprintf(out, "Data window:    (%d,%d)-(%d,%d)\n",
				info.DataWindow.Min.X, info.DataWindow.Min.Y, info.DataWindow.Max.X, info.DataWindow.Max.Y)
			fmt.Fprintf(out, "Display window: (%d,%d)-(%d,%d)\n",
				info.DisplayWindow.Min.X, info.DisplayWindow.Min.Y, info.DisplayWindow.Max.X, info.DisplayWindow.Max.Y)
			fmt.Fprintf(out, "Channels:       %s\n", strings.Join(channels, " "))
			fmt.Fprintf(out, "Compression:    %s\n", info.Compression)
			fmt.Fprintf(out, "Alpha:          %t\n", info.HasAlpha)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}
