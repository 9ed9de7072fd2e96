package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/noahxzhu/remindme/internal/alarm"
	"github.com/noahxzhu/remindme/internal/app"
	"github.com/noahxzhu/remindme/internal/config"
	"github.com/noahxzhu/remindme/internal/mcptools"
	"github.com/noahxzhu/remindme/internal/notify"
	"github.com/noahxzhu/remindme/internal/pushover"
	"github.com/noahxzhu/remindme/internal/sound"
	"github.com/noahxzhu/remindme/internal/storage"
	"github.com/noahxzhu/remindme/internal/tui"
	"github.com/noahxzhu/remindme/internal/web"
	flag "github.com/spf13/pflag"
)

const usage = `Usage: remindme [tui|serve|mcp] [--config path]

Commands:
  tui     terminal interface (default)
  serve   browser interface on server.addr
  mcp     MCP tools over stdio
`

func main() {
	flags := flag.NewFlagSet("remindme", flag.ContinueOnError)
	configPath := flags.StringP("config", "c", "configs/config.yaml", "path to the config file")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	mode := "tui"
	if flags.NArg() > 0 {
		mode = flags.Arg(0)
	}
	switch mode {
	case "tui", "serve", "mcp":
	default:
		flags.Usage()
		os.Exit(2)
	}

	// Load Config
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(cfg, mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	if err := run(cfg, mode, logger); err != nil {
		slog.Error("Exited with error", "mode", mode, "error", err)
		closeLog()
		os.Exit(1)
	}
}

// newLogger writes JSON logs to stderr, or to log.file in tui mode so the
// screen stays clean. stdout is reserved for the MCP transport.
func newLogger(cfg *config.Config, mode string) (*slog.Logger, func(), error) {
	var out io.Writer = os.Stderr
	closeFn := func() {}
	if mode == "tui" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closeFn = func() { f.Close() }
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.SlogLevel()})), closeFn, nil
}

func run(cfg *config.Config, mode string, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Init Storage
	kv, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer kv.Close()
	store := storage.NewStore(kv, cfg.Storage.Key, logger)

	// Alert channels
	bellOut := io.Writer(os.Stderr)
	if mode == "mcp" {
		bellOut = io.Discard
	}
	audio, err := sound.New(cfg.Audio.Backend, bellOut, logger)
	if err != nil {
		return err
	}
	notifier := newNotifier(cfg, logger)

	var overlay *tui.Overlay
	presenterCfg := alarm.Config{
		Audio:    audio,
		Notifier: notifier,
		Options: alarm.Options{
			RepeatInterval: cfg.Alarm.RepeatInterval,
			MaxRepeats:     cfg.Alarm.MaxRepeats,
			AutoDismiss:    cfg.Alarm.AutoDismiss,
		},
		Logger: logger,
	}
	if mode == "tui" {
		overlay = tui.NewOverlay()
		presenterCfg.Overlay = overlay
	}
	presenter := alarm.NewPresenter(presenterCfg)

	ctrl := app.New(app.Deps{
		Store:     store,
		Presenter: presenter,
		Notifier:  notifier,
		Logger:    logger,
	})
	defer ctrl.Close()

	if err := ctrl.Load(ctx); err != nil {
		return err
	}

	switch mode {
	case "serve":
		return serve(ctx, cfg, ctrl, logger)
	case "mcp":
		return mcpServe(ctx, ctrl)
	default:
		return tui.Run(ctx, ctrl, overlay)
	}
}

func newNotifier(cfg *config.Config, logger *slog.Logger) alarm.Notifier {
	backends := []alarm.Notifier{notify.NewDesktop(cfg.Notifications.Desktop)}
	if cfg.Pushover.Enabled() {
		client := pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.User)
		backends = append(backends, notify.NewPushover(client, notify.PushoverOptions{
			Retry:  cfg.Pushover.Retry,
			Expire: cfg.Pushover.Expire,
		}, logger))
	}
	return notify.NewMulti(backends...)
}

func serve(ctx context.Context, cfg *config.Config, ctrl *app.Controller, logger *slog.Logger) error {
	// Init Web Server
	srv := web.NewServer(ctrl, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", cfg.Server.Addr, "url", "http://"+cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful Shutdown
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("Server exited")
	return nil
}

func mcpServe(ctx context.Context, ctrl *app.Controller) error {
	s := mcptools.NewServer(ctrl)
	errCh := make(chan error, 1)
	go func() { errCh <- s.ServeStdio() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}
