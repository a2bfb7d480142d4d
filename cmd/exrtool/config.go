package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vearutop/exrplanes"
)

const forceZIPKey = "force_zip"

// initConfig reads in config file and ENV variables if set.
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".exrtool")
	}

	v.SetEnvPrefix("exrtool")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(forceZIPKey, exrplanes.ForceZIPEnv); err != nil {
		return err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// addForceZIPFlag registers --force-zip on cmd and binds it when cmd runs,
// so that several commands can share the config key.
func addForceZIPFlag(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().String("force-zip", "", "use ZIP (16 scanlines) instead of ZIPS compression, overrides "+exrplanes.ForceZIPEnv)
	cmd.Flags().Lookup("force-zip").NoOptDefVal = "1"
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return v.BindPFlag(forceZIPKey, cmd.Flags().Lookup("force-zip"))
	}
}

func toggle(v *viper.Viper) exrplanes.ToggleFunc {
	return func() string {
		return v.GetString(forceZIPKey)
	}
}

func logger(v *viper.Viper, w io.Writer) *slog.Logger {
	if !v.GetBool("debug") {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
