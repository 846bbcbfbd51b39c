package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/librescoot/mvi"
	"github.com/librescoot/mvi/counter"
	"github.com/librescoot/mvi/internal/config"
	"github.com/librescoot/mvi/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	interactive := useTUI(cfg.UI.Mode, os.Stdout.Fd())

	logger, closeLog, err := newLogger(cfg.Log, interactive)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer closeLog()
	mvi.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := counter.New(
		counter.WithStart(cfg.Counter.Start),
		counter.WithStoreOptions(mvi.WithLogger(logger)),
	)
	if err != nil {
		return fmt.Errorf("build store: %w", err)
	}
	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("start store: %w", err)
	}
	defer store.Stop()

	counter.AutoIncrement(store, cfg.Counter.Tick)

	if interactive {
		err = tui.Run(ctx, store)
	} else {
		err = tui.RunPlain(ctx, store, os.Stdin, os.Stdout)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func useTUI(mode string, fd uintptr) bool {
	switch mode {
	case config.ModeTUI:
		return true
	case config.ModePlain:
		return false
	default:
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}

// newLogger builds the process logger. While the TUI owns the terminal, logs
// go to the configured file or are discarded.
func newLogger(cfg config.LogConfig, interactive bool) (*slog.Logger, func(), error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case cfg.File != "":
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case interactive:
		w = io.Discard
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), closeFn, nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), closeFn, nil
}
