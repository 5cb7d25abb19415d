package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trackd.sh/internal/config"
	"trackd.sh/internal/database"
	"trackd.sh/internal/repository"
	"trackd.sh/internal/server"
	"trackd.sh/internal/services"
	"trackd.sh/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the asset tracking engine",
	Long: `Connect to the record store, start the stats exporter, and serve
the health/metrics endpoint until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	slog.Info("starting trackd", "version", version.GetVersion())

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		repo   repository.AssetRepository
		pinger server.Pinger
	)
	switch cfg.Store {
	case "memory":
		slog.Warn("using in-memory store, data will not survive restarts")
		repo = repository.NewMemoryStore()
	default:
		db, err := database.Connect(ctx, database.Config{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
		if err != nil {
			return err
		}
		defer db.Close(context.Background())
		repo = repository.NewMongoStore(db.Database())
		pinger = db
	}

	stats := services.NewStatsService(repo)

	go stats.RunExporter(ctx, cfg.StatsInterval)

	srv := server.New(cfg.OpsAddr, pinger)
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		slog.Error("ops server failed", "error", err)
		return err
	case s := <-sig:
		slog.Info("received signal", "signal", s.String())
	}

	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
		return err
	}
	slog.Info("shutdown complete")
	return nil
}
