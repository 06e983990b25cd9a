package queue

import "time"

// Config holds the configuration for the job engine.
type Config struct {
	Concurrency     int           `env:"QUEUE_CONCURRENCY" envDefault:"5" validate:"min=1"`
	JobTimeout      time.Duration `env:"QUEUE_JOB_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	RetryBaseDelay  time.Duration `env:"QUEUE_RETRY_BASE_DELAY" envDefault:"1s" validate:"gte=0"`
	MaxAttempts     int           `env:"QUEUE_MAX_ATTEMPTS" envDefault:"3" validate:"min=1,max=100"`
	AutoStart       bool          `env:"QUEUE_AUTO_START" envDefault:"true"`
	ShutdownTimeout time.Duration `env:"QUEUE_SHUTDOWN_TIMEOUT" envDefault:"30s" validate:"gt=0"`
}

// NewEngineFromConfig creates an engine from cfg. Options passed after the
// config take precedence over it.
func NewEngineFromConfig(cfg Config, opts ...EngineOption) *Engine {
	configOpts := []EngineOption{
		WithConcurrency(cfg.Concurrency),
		WithJobTimeout(cfg.JobTimeout),
		WithRetryBaseDelay(cfg.RetryBaseDelay),
		WithDefaultMaxAttempts(cfg.MaxAttempts),
		WithAutoStart(cfg.AutoStart),
		WithShutdownTimeout(cfg.ShutdownTimeout),
	}
	return NewEngine(append(configOpts, opts...)...)
}
