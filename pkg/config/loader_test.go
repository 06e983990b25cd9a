package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/vocabq/pkg/config"
	"github.com/dmitrymomot/vocabq/pkg/queue"
)

type workerConfig struct {
	Env   string        `env:"TEST_APP_ENV" envDefault:"development" validate:"oneof=development staging production"`
	Every time.Duration `env:"TEST_CLEANUP_INTERVAL" envDefault:"10m"`
	Queue queue.Config
}

type requiredConfig struct {
	Token string `env:"TEST_REQUIRED_TOKEN,required"`
}

type fileConfig struct {
	Word  string `env:"TEST_FILE_WORD"`
	Level string `env:"TEST_FILE_LEVEL" envDefault:"info"`
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	var cfg workerConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 10*time.Minute, cfg.Every)
	assert.Equal(t, queue.Config{
		Concurrency:     5,
		JobTimeout:      30 * time.Second,
		RetryBaseDelay:  time.Second,
		MaxAttempts:     3,
		AutoStart:       true,
		ShutdownTimeout: 30 * time.Second,
	}, cfg.Queue)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("TEST_APP_ENV", "production")
	t.Setenv("QUEUE_CONCURRENCY", "12")
	t.Setenv("QUEUE_JOB_TIMEOUT", "2m")
	t.Setenv("QUEUE_AUTO_START", "false")

	var cfg workerConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 12, cfg.Queue.Concurrency)
	assert.Equal(t, 2*time.Minute, cfg.Queue.JobTimeout)
	assert.False(t, cfg.Queue.AutoStart)
}

func TestLoad_ParseError(t *testing.T) {
	t.Setenv("QUEUE_CONCURRENCY", "many")

	var cfg workerConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)

	var parseErr env.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "Concurrency", parseErr.Name)
	assert.Contains(t, err.Error(), `field "Concurrency"`)
}

func TestLoad_Validation(t *testing.T) {
	t.Setenv("QUEUE_MAX_ATTEMPTS", "500")

	var cfg workerConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "MaxAttempts")
}

func TestLoad_ValidationOneOf(t *testing.T) {
	t.Setenv("TEST_APP_ENV", "qa")

	var cfg workerConfig
	assert.ErrorIs(t, config.Load(&cfg), config.ErrInvalidConfig)
}

func TestLoad_Required(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *workerConfig
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
}

func TestLoad_EnvFile(t *testing.T) {
	// set by the file, not by t.Setenv
	t.Cleanup(func() { _ = os.Unsetenv("TEST_FILE_WORD") })
	t.Setenv("TEST_FILE_LEVEL", "warn")

	path := writeEnvFile(t, "TEST_FILE_WORD=\"serendipity\"\nTEST_FILE_LEVEL=debug\n")

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg, path))

	assert.Equal(t, "serendipity", cfg.Word)
	assert.Equal(t, "warn", cfg.Level, "real environment wins over the file")
}

func TestLoad_MissingEnvFile(t *testing.T) {
	var cfg fileConfig
	err := config.Load(&cfg, filepath.Join(t.TempDir(), "absent.env"))
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
}

func TestMustLoad(t *testing.T) {
	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})

	t.Setenv("TEST_REQUIRED_TOKEN", "secret")
	assert.NotPanics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
		assert.Equal(t, "secret", cfg.Token)
	})
}
