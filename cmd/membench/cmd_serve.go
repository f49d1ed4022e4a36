package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/membench/membench/internal/metrics"
	"github.com/membench/membench/internal/server"
	"github.com/membench/membench/internal/storage/sqlite"
	"github.com/membench/membench/pkg/logger"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve generated reports and run history over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address (default: from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	metrics.Init()

	var history *sqlite.Client
	if client, err := sqlite.NewClient(cfg.SQLite.Path); err != nil {
		logger.Warn("Run history unavailable", zap.Error(err))
	} else if err := client.InitSchema(); err != nil {
		logger.Warn("Run history schema init failed", zap.Error(err))
		client.Close()
	} else {
		history = client
		defer history.Close()
	}

	addr := serveFlags.addr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	srv := server.New(cfg.Paths.ResultsDir, history)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(addr)
	}()

	logger.Info("Report server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down report server")
		return srv.Shutdown()
	}
}
