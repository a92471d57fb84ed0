package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the settings shared by every dectree command. Values come from
// DECTREE_* environment variables; command line flags take precedence.
type Config struct {
	LogLevel       string  `env:"LOG_LEVEL" envDefault:"warn" validate:"oneof=debug info warn error"`
	MaxGoroutines  uint    `env:"MAX_GOROUTINES" envDefault:"0"`
	TerminateRatio float64 `env:"TERMINATE_RATIO" envDefault:"0.95" validate:"gt=0,lte=1"`
	Strict         bool    `env:"STRICT" envDefault:"false"`
	ProfileOutput  string  `env:"PROFILE_OUTPUT"`
}

const envPrefix = "DECTREE_"

func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom reads the configuration from environment, or from the process
// environment when it is nil.
func LoadFrom(environment map[string]string) (Config, error) {
	opts := env.Options{Prefix: envPrefix}
	if environment != nil {
		opts.Environment = environment
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// Logger returns a zap logger writing to stderr at c.LogLevel.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", c.LogLevel)
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
