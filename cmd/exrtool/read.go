package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vearutop/exrplanes"
)

func newReadCmd(v *viper.Viper) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "read [file.exr]",
		Short: "Decode OpenEXR into JSON planes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := exrplanes.Read(args[0], func(o *exrplanes.ReadOptions) {
				o.Logger = logger(v, cmd.ErrOrStderr())
			})
			if err != nil {
				return err
			}

			// Marshal before touching the output.
			data, err := json.Marshal(img)
			if err != nil {
				return fmt.Errorf("encode planes: %w", err)
			}
			data = append(data, '\n')

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			return os.WriteFile(filepath.Clean(output), data, 0o600)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output JSON file (default: stdout)")

	return cmd
}
