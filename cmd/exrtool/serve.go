package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vearutop/exrplanes/internal/server"
)

var version = "dev"

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server for plane conversion",
		Long: `Start an HTTP server with endpoints:

  GET  /health
  POST /api/v1/info    OpenEXR body, JSON header summary
  POST /api/v1/decode  OpenEXR body, JSON planes
  POST /api/v1/encode  JSON planes, OpenEXR body`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v)
		},
	}

	cmd.Flags().StringP("bind", "b", "localhost", "bind address")
	cmd.Flags().IntP("port", "p", 8080, "port to listen on")
	cmd.Flags().Duration("timeout", 60*time.Second, "request timeout")
	cmd.Flags().Int64("max-body", 256<<20, "request body limit in bytes")

	_ = v.BindPFlag("server.bind", cmd.Flags().Lookup("bind"))
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("server.timeout", cmd.Flags().Lookup("timeout"))
	_ = v.BindPFlag("server.max_body", cmd.Flags().Lookup("max-body"))

	addForceZIPFlag(cmd, v)

	return cmd
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	addr := fmt.Sprintf("%s:%d", v.GetString("server.bind"), v.GetInt("server.port"))
	timeout := v.GetDuration("server.timeout")

	log := logger(v, cmd.ErrOrStderr())
	s := server.NewServer(server.Config{
		Version:      version,
		Toggle:       toggle(v),
		Logger:       log,
		MaxBodyBytes: v.GetInt64("server.max_body"),
		Timeout:      timeout,
	})

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		fmt.Fprintf(cmd.ErrOrStderr(), "\nShutting down server...\n")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Server shutdown error: %v\n", err)
		}
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "Starting exrtool server on %s\n", addr)
	fmt.Fprintf(cmd.ErrOrStderr(), "Health check: http://%s/health\n", addr)

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
