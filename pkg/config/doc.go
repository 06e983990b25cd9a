// Package config loads typed configuration from environment variables.
//
// Configuration is declared as structs with caarlos0/env tags. Nested structs
// are parsed too, so a service can embed the configuration of every package
// it wires, for example queue.Config:
//
//	type Config struct {
//		Env   string `env:"APP_ENV" envDefault:"development"`
//		Queue queue.Config
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Values from dotenv files (parsed with joho/godotenv) are merged into the
// process environment first. Real environment variables always take
// precedence over values from files.
//
// # Error Handling
//
// After parsing, the struct is checked with go-playground/validator using its
// validate tags.
//
// Parse failures wrap ErrParsingConfig, validation failures wrap
// ErrInvalidConfig, unreadable dotenv files wrap ErrLoadingEnvFile. The underlying error from the env library is joined so
// its message names the offending variable.
package config
