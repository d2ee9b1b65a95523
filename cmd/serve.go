package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stay-nest/internal/data/repository"
	"stay-nest/internal/jobs"
	"stay-nest/internal/wire"
	"stay-nest/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			return runServe(cmd.Context(), migrate)
		},
	}
	cmd.Flags().Bool("migrate", false, "apply pending migrations before serving")
	return cmd
}

func runServe(parent context.Context, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if migrate {
		if err := database.Migrate(ctx, db, logger); err != nil {
			logger.Error("Failed to apply migrations", zap.Error(err))
			return err
		}
	}

	repos := repository.NewRepository(db, logger)

	app, err := wire.Wiring(ctx, repos, config, logger)
	if err != nil {
		logger.Error("Failed to wire application", zap.Error(err))
		return err
	}

	scheduler, err := jobs.NewScheduler(repos, config.Jobs, logger)
	if err != nil {
		logger.Error("Failed to create job scheduler", zap.Error(err))
		return err
	}
	scheduler.Start()

	serveErr := APIServer(ctx, app.Router, config.App.Port, config.App.ShutdownTimeout, logger)

	// The server has stopped accepting requests; release background work in
	// dependency order before the pool closes.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.App.ShutdownTimeout)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := app.Close(shutdownCtx); err != nil {
		logger.Warn("Shutdown incomplete", zap.Error(err))
	}

	if serveErr != nil {
		logger.Error("Server stopped with error", zap.Error(serveErr))
		return serveErr
	}

	logger.Info("Server stopped")
	return nil
}
