// levelwatch connects to a running levelfeed hub and prints line changes to
// the console.
// Usage: go run ./cmd/levelwatch --url ws://localhost:8080/ws
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/levelfeed/internal/hub"
	"github.com/rickgao/levelfeed/internal/watch"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "hub websocket address")
	verbose := flag.Bool("verbose", false, "print full event JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	cfg := watch.DefaultConfig()
	cfg.URL = *url
	client := watch.NewClient(cfg, logger)

	dialCtx, dialCancel := context.WithTimeout(ctx, 15*time.Second)
	err := client.Connect(dialCtx)
	dialCancel()
	if err != nil {
		logger.Error("failed to connect", "url", *url, "error", err)
		os.Exit(1)
	}
	defer client.Close()

	logger.Info("watching levels - press Ctrl+C to stop", "url", *url)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown complete")
			return
		case err := <-client.Errors():
			logger.Error("connection lost", "error", err)
			os.Exit(1)
		case ev := <-client.Events():
			printEvent(ev, client.Mirror().Len(), *verbose)
		}
	}
}

func printEvent(ev hub.Event, total int, verbose bool) {
	if verbose {
		data, _ := json.MarshalIndent(ev, "", "  ")
		fmt.Printf("[%s] %s\n", ev.Type, data)
		return
	}

	switch ev.Type {
	case hub.EventSnapshot:
		fmt.Printf("[SNAPSHOT] lines=%d\n", len(ev.Lines))
		for _, l := range ev.Lines {
			fmt.Printf("  id=%d price=%g label=%q color=%s\n", l.ID, l.Price, l.Label, l.Color)
		}
	case hub.EventDraw:
		fmt.Printf("[DRAW] id=%d price=%g label=%q color=%s total=%d\n",
			ev.Line.ID, ev.Line.Price, ev.Line.Label, ev.Line.Color, total)
	case hub.EventDelete:
		fmt.Printf("[DELETE] id=%d total=%d\n", ev.ID, total)
	}
}
