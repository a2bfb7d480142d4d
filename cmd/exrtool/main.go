package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "exrtool",
		Short: "Convert OpenEXR images to and from RGBA float planes",
		Long: `exrtool reads and writes single-part scanline OpenEXR files as four
column-major float planes (R, G, B, A).

Examples:
  # Show header summary
  exrtool info image.exr

  # Dump planes as JSON and write them back with ZIP compression
  exrtool read image.exr -o planes.json
  exrtool write planes.json copy.exr --force-zip

  # Render a downscaled PNG preview
  exrtool preview image.exr preview.png --max-width 512

  # Convert an 8/16-bit PNG or TIFF into linear OpenEXR
  exrtool import photo.tif photo.exr

  # Start HTTP server
  exrtool serve --port 8080`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.exrtool.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "log pipeline steps to stderr")
	_ = v.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(
		newInfoCmd(v),
		newReadCmd(v),
		newWriteCmd(v),
		newPreviewCmd(v),
		newImportCmd(v),
		newServeCmd(v),
	)

	return rootCmd
}
