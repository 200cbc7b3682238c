package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/umlgen/internal/llm"
	"github.com/abhisek/umlgen/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generation API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if d.cfg.AppEnv != "development" {
			gin.SetMode(gin.ReleaseMode)
		}
		llm.RegisterMetrics()

		srv := server.New(d.service, d.store.GenerationRepo(), d.logger, server.Options{
			CORSOrigins: d.cfg.CORSOrigins,
			Metrics:     true,
		})

		addr := d.cfg.HTTPAddress()
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			d.logger.Info("listening",
				zap.String("addr", addr),
				zap.Strings("models", modelIDs(d.registry)),
			)
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		d.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	},
}

// shutdownTimeout lets in-flight generations finish, including a full
// retry cycle of the longest per-call timeout.
const shutdownTimeout = 60 * time.Second

func modelIDs(r *llm.Registry) []string {
	var ids []string
	for _, pc := range r.Models() {
		ids = append(ids, pc.Model)
	}
	return ids
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides PORT)")
}
