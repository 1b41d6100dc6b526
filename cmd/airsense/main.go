package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/lox/airsense/internal/api"
	"github.com/lox/airsense/internal/config"
	"github.com/lox/airsense/internal/ingest"
	"github.com/lox/airsense/internal/logging"
	"github.com/lox/airsense/internal/source"
	"github.com/lox/airsense/internal/store"
)

var version = "dev"

type CLI struct {
	config.Globals

	Serve   ServeCmd         `cmd:"" help:"Run the web interface."`
	Ingest  IngestCmd        `cmd:"" help:"Fetch a sensor log from a file, HTTP or FTP location and store its analysis."`
	Prune   PruneCmd         `cmd:"" help:"Delete old uploads and their unreferenced raw logs."`
	Version kong.VersionFlag `help:"Print version and exit."`
}

type ServeCmd struct {
	Port        string `default:"8080" env:"PORT" help:"HTTP server port."`
	MaxUploadMB int64  `name:"max-upload-mb" default:"32" help:"Largest accepted sensor log in MiB."`
}

func (c *ServeCmd) Run(g *config.Globals) error {
	logger, err := newLogger(g)
	if err != nil {
		return err
	}
	db, st, err := openStore(g, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(st, logger, c.Port)
	srv.SetMaxUploadSize(c.MaxUploadMB << 20)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

type IngestCmd struct {
	Location    string        `arg:"" help:"Path, http(s):// URL or ftp:// URL of the sensor log."`
	Temperature float64       `required:"" help:"Ambient temperature in °C when the log was recorded."`
	Humidity    float64       `required:"" help:"Relative humidity in % when the log was recorded."`
	Timeout     time.Duration `default:"1m" help:"Fetch timeout."`
}

func (c *IngestCmd) Run(g *config.Globals) error {
	logger, err := newLogger(g)
	if err != nil {
		return err
	}
	db, st, err := openStore(g, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	payload, err := source.Fetch(ctx, c.Location)
	if err != nil {
		return err
	}
	logger.Debug("fetched sensor log", "location", c.Location, "bytes", len(payload.Data))

	u, err := ingest.New(st, logger).Ingest(ingest.Request{
		Source:      store.SourceIngest,
		Filename:    payload.Name,
		Data:        payload.Data,
		Temperature: c.Temperature,
		Humidity:    c.Humidity,
	})
	if err != nil {
		return fmt.Errorf("ingest %s: %w", c.Location, err)
	}

	fmt.Println(u.ID)
	fmt.Println(u.Advisory)
	return nil
}

type PruneCmd struct {
	OlderThan time.Duration `default:"720h" help:"Delete uploads created longer ago than this."`
}

func (c *PruneCmd) Run(g *config.Globals) error {
	logger, err := newLogger(g)
	if err != nil {
		return err
	}
	db, st, err := openStore(g, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	cutoff := time.Now().Add(-c.OlderThan)
	deleted, err := st.DeleteUploadsBefore(cutoff)
	if err != nil {
		return fmt.Errorf("prune uploads: %w", err)
	}
	orphans, err := st.CleanupOrphanRawPayloads()
	if err != nil {
		return fmt.Errorf("prune raw payloads: %w", err)
	}
	logger.Info("pruned", "uploads", deleted, "raw_payloads", orphans, "cutoff", cutoff.UTC())
	return nil
}

func newLogger(g *config.Globals) (*slog.Logger, error) {
	level, err := g.Level()
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, g.LogFormat, level, version)
	slog.SetDefault(logger)
	return logger, nil
}

func openStore(g *config.Globals, logger *slog.Logger) (*sql.DB, *store.Store, error) {
	db, err := store.Open(g.DB)
	if err != nil {
		return nil, nil, err
	}
	st := store.New(db, logger)
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return db, st, nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("airsense"),
		kong.Description("Analyse air quality sensor logs for the effect of temperature and humidity on accuracy."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}
