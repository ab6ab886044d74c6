package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/storefront/internal/config"
	"github.com/aretw0/storefront/pkg/adapters/terminal"
	"github.com/aretw0/storefront/pkg/domain"
)

// ChatOptions configures an interactive console session.
type ChatOptions struct {
	ActorID  int64
	Username string
	// Pretty renders messages as markdown and prints the banner.
	Pretty bool
	Debug  bool
}

// Chat runs the storefront against a console until EOF, /quit or ctx ends.
func Chat(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, opts ChatOptions) error {
	level := cfg.LogLevel
	if !opts.Debug && level != "error" {
		// Keep the conversation readable; warnings still reach stderr.
		level = "warn"
	}
	chatCfg := *cfg
	chatCfg.LogLevel = level
	logger := NewLogger(&chatCfg, os.Stderr)

	consoleOpts := []terminal.Option{
		terminal.WithActor(domain.Actor{ID: opts.ActorID, Username: opts.Username, FirstName: opts.Username}),
	}
	if opts.Pretty {
		terminal.PrintBanner(out)
		consoleOpts = append(consoleOpts, terminal.WithRenderer(terminal.NewRenderer()))
	}
	console := terminal.New(in, out, consoleOpts...)

	rt, err := Build(ctx, cfg, console, logger)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, terminal.Dim("Type /start to begin, #n to press a button, /quit to leave."))
	runErr := console.Run(ctx, rt.Shop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := rt.Close(shutdownCtx); err != nil {
		logger.Warn("release backends", "err", err)
	}

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
