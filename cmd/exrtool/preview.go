package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vearutop/exrplanes"
	"golang.org/x/image/tiff"
)

func newPreviewCmd(v *viper.Viper) *cobra.Command {
	var (
		format    string
		maxWidth  uint
		maxHeight uint
	)

	cmd := &cobra.Command{
		Use:   "preview [file.exr] [out.png|out.tif]",
		Short: "Render an sRGB PNG or TIFF preview",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(args[1])), ".")
			}
			encode, err := previewEncoder(format)
			if err != nil {
				return err
			}

			img, err := exrplanes.Read(args[0], func(o *exrplanes.ReadOptions) {
				o.Logger = logger(v, cmd.ErrOrStderr())
			})
			if err != nil {
				return err
			}
			p, err := exrplanes.Preview(img, maxWidth, maxHeight)
			if err != nil {
				return err
			}

			f, err := os.Create(filepath.Clean(args[1]))
			if err != nil {
				return err
			}
			if err := encode(f, p); err != nil {
				_ = f.Close()
				return fmt.Errorf("encode %s: %w", format, err)
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (png|tiff), from extension by default")
	cmd.Flags().UintVar(&maxWidth, "max-width", 0, "downscale to fit this width")
	cmd.Flags().UintVar(&maxHeight, "max-height", 0, "downscale to fit this height")

	return cmd
}

func previewEncoder(format string) (func(w io.Writer, img image.Image) error, error) {
	switch format {
	case "png":
		return png.Encode, nil
	case "tif", "tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
		}, nil
	default:
		return nil, fmt.Errorf("unknown format: %q", format)
	}
}
