package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vearutop/exrplanes"
)

func newWriteCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write [planes.json|-] [file.exr]",
		Short: "Encode JSON planes into OpenEXR",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(filepath.Clean(args[0]))
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var img exrplanes.Image
			if err := json.NewDecoder(r).Decode(&img); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}

			return exrplanes.Write(args[1], &img, func(o *exrplanes.WriteOptions) {
				o.Toggle = toggle(v)
				o.Logger = logger(v, cmd.ErrOrStderr())
			})
		},
	}

	addForceZIPFlag(cmd, v)

	return cmd
}
