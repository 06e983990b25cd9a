package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultEnvFile is read by Load when present.
const DefaultEnvFile = ".env"

// Load fills v from environment variables according to its env tags and
// checks the result against its validate tags.
//
// Before parsing, values from the given dotenv files are added to the process
// environment; variables already set keep their value. Without files, Load
// reads DefaultEnvFile if it exists. Explicitly listed files must exist.
//
// Example:
//
//	type App struct {
//		Env         string `env:"APP_ENV" envDefault:"development" validate:"oneof=development staging production"`
//		MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
//		Queue       queue.Config
//	}
//
//	var cfg App
//	if err := config.Load(&cfg); err != nil {
//		// Handle error
//	}
func Load[T any](v *T, files ...string) error {
	if v == nil {
		return ErrNilPointer
	}

	if err := loadEnvFiles(files); err != nil {
		return err
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	if err := validate.Struct(v); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T, files ...string) {
	if err := Load(v, files...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil
		}
		files = []string{DefaultEnvFile}
	}

	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadingEnvFile, err)
	}
	return nil
}
