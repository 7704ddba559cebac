package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/levelfeed/internal/api"
	"github.com/rickgao/levelfeed/internal/chart"
	"github.com/rickgao/levelfeed/internal/clock"
	"github.com/rickgao/levelfeed/internal/config"
	"github.com/rickgao/levelfeed/internal/database"
	"github.com/rickgao/levelfeed/internal/driver"
	"github.com/rickgao/levelfeed/internal/hub"
	"github.com/rickgao/levelfeed/internal/model"
	"github.com/rickgao/levelfeed/internal/render"
	"github.com/rickgao/levelfeed/internal/scheduler"
	"github.com/rickgao/levelfeed/internal/study"
	"github.com/rickgao/levelfeed/internal/version"
	"github.com/rickgao/levelfeed/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/levelfeed.yaml", "path to config file")
	once := flag.Bool("once", false, "run one fetch and render cycle, print the lines, and exit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// -once prints its result on stdout.
	logOut := os.Stdout
	if *once {
		logOut = os.Stderr
	}
	logger = newLogger(cfg.Log, logOut)
	slog.SetDefault(logger)

	logger.Info("starting levelfeed",
		"version", version.String(),
		"config", *configPath,
	)
	logger.Info("configuration loaded",
		"feed_url", cfg.Feed.URL,
		"interval", cfg.Feed.Interval,
		"timezone", cfg.Chart.Timezone,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if *once {
		err = runOnce(ctx, cfg, logger)
	} else {
		err = run(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error("levelfeed failed", "error", err)
		os.Exit(1)
	}
	logger.Info("levelfeed stopped")
}

// components is the tick pipeline shared by both run modes.
type components struct {
	fetcher  *api.Fetcher
	surface  *chart.Memory
	clock    *clock.Exchange
	renderer *render.Renderer
	session  *study.Session
}

func build(ctx context.Context, cfg *config.Config, recorder study.Recorder, logger *slog.Logger) (*components, error) {
	exchange, err := clock.NewExchange(cfg.Chart.Timezone, cfg.Chart.SessionStart)
	if err != nil {
		return nil, fmt.Errorf("create exchange clock: %w", err)
	}

	settings, err := sessionSettings(cfg)
	if err != nil {
		return nil, err
	}

	fetcher := api.NewFetcher(ctx,
		api.WithTimeout(cfg.Feed.HTTPTimeout),
		api.WithUserAgent(cfg.Feed.UserAgent),
		api.WithLogger(logger),
	)
	surface := chart.NewMemory()
	renderer := render.New(surface, exchange, cfg.Style.BaseOffset, logger)
	sched := scheduler.New(scheduler.Config{TimeoutTicks: cfg.Feed.TimeoutTicks})
	session := study.New(settings, sched, fetcher, renderer, recorder, logger)

	return &components{
		fetcher:  fetcher,
		surface:  surface,
		clock:    exchange,
		renderer: renderer,
		session:  session,
	}, nil
}

func sessionSettings(cfg *config.Config) (study.Settings, error) {
	override, err := cfg.Style.Color()
	if err != nil {
		return study.Settings{}, fmt.Errorf("style color: %w", err)
	}
	style, err := model.ParseLineStyle(cfg.Style.LineStyle)
	if err != nil {
		return study.Settings{}, fmt.Errorf("style line: %w", err)
	}
	return study.Settings{
		URL:           cfg.Feed.URL,
		Interval:      cfg.Feed.Interval,
		ColorOverride: override,
		FontSize:      cfg.Style.FontSize,
		LineWidth:     cfg.Style.LineWidth,
		LineStyle:     style,
	}, nil
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var (
		recorder study.Recorder
		pinger   hub.Pinger
		snapshot *writer.SnapshotWriter
	)

	if cfg.Database.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Postgres.Host,
			"port", cfg.Database.Postgres.Port,
			"database", cfg.Database.Postgres.Name,
		)
		pool, err := database.Connect(ctx, cfg.Database.Postgres)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		if err := database.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		logger.Info("database connected")

		snapshot = writer.NewSnapshotWriter(writer.WriterConfig{
			BatchSize:     cfg.Database.BatchSize,
			FlushInterval: cfg.Database.FlushInterval,
		}, pool, logger)
		recorder = snapshot
		pinger = pool
	}

	c, err := build(ctx, cfg, recorder, logger)
	if err != nil {
		return err
	}
	defer c.fetcher.Close()

	d := driver.New(driver.Config{TickInterval: cfg.Host.TickInterval}, c.session, c.clock, logger)
	h := hub.New(hub.Config{
		ImageWidth:  cfg.Chart.ImageWidth,
		ImageHeight: cfg.Chart.ImageHeight,
	}, c.surface, c.session, pinger, d, logger)

	if snapshot != nil {
		if err := snapshot.Start(ctx); err != nil {
			return fmt.Errorf("start snapshot writer: %w", err)
		}
	}
	if err := h.Start(ctx); err != nil {
		return fmt.Errorf("start hub: %w", err)
	}
	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("start driver: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	var server *http.Server
	if cfg.Server.Enabled {
		server = &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           h.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("starting hub server", "addr", cfg.Server.Addr)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("hub server: %w", err)
			}
			return nil
		})
	}

	logger.Info("levelfeed running",
		"tick_interval", cfg.Host.TickInterval,
		"base_id", c.renderer.Base(),
		"server", cfg.Server.Enabled,
		"database", cfg.Database.Enabled,
	)

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if server != nil {
			server.Shutdown(shutdownCtx)
		}
		d.Stop(shutdownCtx)
		h.Stop(shutdownCtx)
		if snapshot != nil {
			snapshot.Stop(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}

// runOnce drives one fetch cycle to completion and prints the drawn lines.
func runOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Feed.URL == study.PlaceholderURL {
		return errors.New("feed.url is the placeholder, set it before running")
	}

	c, err := build(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer c.fetcher.Close()

	maxTicks := driver.TicksToTimeout(cfg.Feed.TimeoutTicks)
	action, err := driver.RunOnce(ctx, c.session, c.clock, cfg.Host.TickInterval, maxTicks)
	if err != nil {
		return err
	}
	if action.Kind != scheduler.HandleSuccess {
		return fmt.Errorf("fetch did not succeed: %s", action.Kind)
	}

	lines := c.surface.Lines()
	out := make([]hub.Line, len(lines))
	for i, l := range lines {
		out[i] = hub.NewLine(l)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(hub.LevelsResponse{Count: len(out), Lines: out})
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
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
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
