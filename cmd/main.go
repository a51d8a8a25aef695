package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/okian/matchdesk/internal/adapters/console"
	"github.com/okian/matchdesk/internal/adapters/repository"
	app "github.com/okian/matchdesk/internal/app"
	"github.com/okian/matchdesk/internal/config"
	"github.com/okian/matchdesk/pkg/logger"
	"github.com/okian/matchdesk/pkg/metrics"
)

func main() {
	// Initialize logging with defaults until configuration is known
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}

// run wires the store, service and console session from cfg and serves one
// interactive session on in/out.
func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return err
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
		}
	}()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	sessionID := uuid.NewString()
	log := logger.Get().With(logger.String("session", sessionID))

	if cfg.MetricsPath != "" {
		defer func() {
			if err := metrics.WriteTextfile(cfg.MetricsPath); err != nil {
				log.Error(ctx, "failed to write metrics", logger.String("path", cfg.MetricsPath), logger.Error(err))
			}
		}()
	}

	store := repository.NewCSVStore(cfg.StorePath,
		repository.WithExportPath(cfg.ExportPath),
		repository.WithLogger(log.Named("store")),
	)
	svc := app.New(
		app.WithStore(store),
		app.WithLogger(logger.Get()),
		app.WithSessionID(sessionID),
	)

	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		log.Warn(ctx, "invalid locale; falling back to en", logger.String("locale", cfg.Locale), logger.Error(err))
		tag = language.English
	}

	log.Info(ctx, "session starting",
		logger.String("store", cfg.StorePath),
		logger.String("export", cfg.ExportPath),
		logger.String("locale", tag.String()),
	)
	session := console.NewSession(svc, in, out,
		console.WithLocale(tag),
		console.WithStorePath(cfg.StorePath),
		console.WithLogger(log.Named("console")),
	)
	if err := session.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info(context.WithoutCancel(ctx), "session interrupted")
			return err
		}
		log.Error(ctx, "session ended with error", logger.Error(err))
		return err
	}
	log.Info(ctx, "session finished")
	return nil
}
