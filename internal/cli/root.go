package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/printdesk/printd/internal/config"
	"github.com/printdesk/printd/internal/device"
	"github.com/printdesk/printd/internal/lifecycle"
	"github.com/printdesk/printd/internal/retention"
	"github.com/printdesk/printd/internal/store"
)

// app holds everything a subcommand needs, built once from config.
type app struct {
	cfg       *config.Config
	db        *sql.DB
	jobs      *store.JobStore
	users     *store.UserStore
	gateway   device.Gateway
	lifecycle *lifecycle.Lifecycle
	sweeper   *retention.Sweeper
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

func buildApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogging(cfg.Logging)

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	gateway, err := device.New(cfg.Device, nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	jobs := store.NewJobStore(db)
	users := store.NewUserStore(db)
	sweeper := retention.NewSweeper(jobs, retention.Config{
		UploadDir: cfg.Retention.UploadDir,
		ScanDir:   cfg.Retention.ScanDir,
		Window:    cfg.Retention.Window,
		DailyAt:   cfg.Retention.DailyAt,
	}, slog.Default())

	return &app{
		cfg:       cfg,
		db:        db,
		jobs:      jobs,
		users:     users,
		gateway:   gateway,
		lifecycle: lifecycle.New(jobs, gateway, slog.Default()),
		sweeper:   sweeper,
	}, nil
}

func setupLogging(cfg config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "printd",
		Short: "Print-job lifecycle service",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "printd.yaml", "Path to configuration file")

	cmd.AddCommand(
		newServeCmd(&configPath),
		newSweepCmd(&configPath),
		newJobsCmd(&configPath),
		newDeviceCmd(&configPath),
		newUserCmd(&configPath),
	)
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
