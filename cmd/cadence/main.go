package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/cadence/internal/config"
	"github.com/sandeepkv93/cadence/internal/materializer"
	"github.com/sandeepkv93/cadence/internal/model"
	"github.com/sandeepkv93/cadence/internal/storage"
)

var v = config.NewViper()

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Recurring task schedules backed by SQLite",
	Long: `cadence keeps one pending occurrence per schedule.
Closing an occurrence (done, cancelled or skipped) materializes the next one.
Editing a schedule rebuilds its pending occurrence from confirmed history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, materializer.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "information not found")
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func addPersistentFlags() {
	def := config.Default()
	rootCmd.PersistentFlags().String(config.KeyDB, def.DBPath, "SQLite database path")
	rootCmd.PersistentFlags().String(config.KeyLogLevel, def.LogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool(config.KeyJSON, def.JSON, "output JSON")
	for _, key := range []string{config.KeyDB, config.KeyLogLevel, config.KeyJSON} {
		_ = v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key))
	}
}

func registerCommands() {
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(occurrenceCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(tuiCmd())
}

type app struct {
	cfg    config.Config
	logger *slog.Logger
	m      *materializer.Materializer
}

// withMaterializer opens the configured database for one command.
func withMaterializer(ctx context.Context, fn func(context.Context, app) error) error {
	return withMaterializerLog(ctx, os.Stderr, fn)
}

func withMaterializerLog(ctx context.Context, logOut io.Writer, fn func(context.Context, app) error) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.DBPath, err)
	}
	defer repo.Close()

	m := materializer.New(repo, materializer.WithLogger(logger))
	return fn(ctx, app{cfg: cfg, logger: logger, m: m})
}

func jsonOutput() bool {
	return v.GetBool(config.KeyJSON)
}

func printJSON(value any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func parseDateFlag(name, value string) (time.Time, error) {
	d, err := model.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must look like %s: %w", name, model.DateLayout, model.ErrInvalidConfiguration)
	}
	return d, nil
}
