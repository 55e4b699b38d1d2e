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
	_ "time/tzdata"

	"github.com/jacoelho/dotjson/internal/app"
	"github.com/jacoelho/dotjson/internal/config"
	"github.com/jacoelho/dotjson/internal/exit"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Parse(args)
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			fmt.Fprintln(stdout, config.Usage())
			return exit.CodeOK
		}

		fmt.Fprintf(stderr, "Error: %v\n\n%s\n", err, config.Usage())
		return exit.CodeUsage
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := app.New(cfg, newLogger(stderr, cfg.LogLevel))
	a.SetOutput(stdout)
	a.SetErrorOutput(stderr)
	return a.Run(ctx)
}

// newLogger writes text records without timestamps.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}
