package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/vocabq/pkg/config"
	"github.com/dmitrymomot/vocabq/pkg/httpserver"
	"github.com/dmitrymomot/vocabq/pkg/logger"
	"github.com/dmitrymomot/vocabq/pkg/queue"
	"github.com/dmitrymomot/vocabq/pkg/requestid"
)

// Config is the worker configuration read from the environment.
type Config struct {
	Env             string        `env:"APP_ENV" envDefault:"development" validate:"oneof=development staging production"`
	Name            string        `env:"APP_NAME" envDefault:"vocabq-worker" validate:"required"`
	LogLevel        string        `env:"LOG_LEVEL"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m" validate:"gt=0"`
	AnalyticsCron   string        `env:"ANALYTICS_CRON" envDefault:"0 3 * * *" validate:"required"`
	ReminderEvery   time.Duration `env:"REMINDER_INTERVAL" envDefault:"1h" validate:"gt=0"`

	Queue queue.Config
	HTTP  httpserver.Config
}

func main() {
	if err := run(); err != nil {
		slog.Error("worker exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	logger.SetAsDefault(log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := queue.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register job metrics: %w", err)
	}

	// Run owns the dispatch loop, so Add must not restart it during shutdown
	engine := queue.NewEngineFromConfig(cfg.Queue,
		queue.WithLogger(log.With(logger.Component("engine"))),
		queue.WithObserver(metrics),
		queue.WithAutoStart(false),
	)
	defer engine.Close()

	reg.MustRegister(queue.NewStatsCollector(engine))

	if err := registerHandlers(engine, log); err != nil {
		return fmt.Errorf("register handlers: %w", err)
	}

	scheduler, err := queue.NewScheduler(engine,
		queue.WithSchedulerLogger(log.With(logger.Component("scheduler"))))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	if err := registerSchedules(scheduler, cfg); err != nil {
		_ = scheduler.Close()
		return fmt.Errorf("register schedules: %w", err)
	}

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log.With(logger.Component("http"))))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("worker starting",
		slog.String("metrics_addr", cfg.HTTP.Addr),
		slog.Int("concurrency", cfg.Queue.Concurrency),
		slog.Any("handlers", engine.RegisteredTypes()),
		slog.Any("schedules", scheduler.Schedules()))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(engine.Run(ctx))
	g.Go(scheduler.Run(ctx))
	g.Go(func() error { return srv.Run(ctx, newRouter(engine, reg, log)) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("worker stopped", slog.Any("stats", engine.Stats()))
	return nil
}

func newLogger(cfg Config) (*slog.Logger, error) {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithContextExtractors(jobInfoExtractor, requestid.LogAttr),
	}
	if cfg.LogLevel != "" {
		lvl, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		opts = append(opts, logger.WithLevel(lvl))
	}
	return logger.New(opts...), nil
}

// jobInfoExtractor tags records logged with a handler context with the job being run.
func jobInfoExtractor(ctx context.Context) (slog.Attr, bool) {
	info, ok := queue.JobInfoFromContext(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return slog.Group("job",
		slog.String("id", info.ID.String()),
		slog.String("type", info.Type),
		slog.Int("attempt", info.Attempt),
	), true
}
