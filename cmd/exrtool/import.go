package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vearutop/exrplanes"
)

func newImportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [in.png|in.tif] [file.exr]",
		Short: "Convert a PNG or TIFF image into linear OpenEXR",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(filepath.Clean(args[0]))
			if err != nil {
				return err
			}
			defer f.Close()

			img, err := exrplanes.DecodeRaster(f)
			if err != nil {
				return err
			}

			return exrplanes.Write(args[1], img, func(o *exrplanes.WriteOptions) {
				o.Toggle = toggle(v)
				o.Logger = logger(v, cmd.ErrOrStderr())
			})
		},
	}

	addForceZIPFlag(cmd, v)

	return cmd
}
