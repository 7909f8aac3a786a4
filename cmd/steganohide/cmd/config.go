package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	stegano "github.com/yyyoichi/stegano_lsb"
)

const envPrefix = "STEGANOHIDE"

type Config struct {
	Output   string `mapstructure:"output"`
	Channels int    `mapstructure:"channels"`
	Workers  int    `mapstructure:"workers"`
	Golay    bool   `mapstructure:"golay"`
	LogLevel string `mapstructure:"log-level"`
}

// loadConfig merges flags and STEGANOHIDE_* environment variables.
// Flags set on the command line take precedence.
func loadConfig(flags *pflag.FlagSet) (*Config, error) {
	vip := viper.New()
	vip.SetEnvPrefix(envPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vip.AutomaticEnv()
	if err := vip.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg := new(Config)
	if err := vip.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) options() []stegano.Option {
	opts := []stegano.Option{
		stegano.WithChannels(c.Channels),
		stegano.WithWorkers(c.Workers),
	}
	if c.Golay {
		opts = append(opts, stegano.WithGolay())
	}
	return opts
}

// newLogger writes console formatted logs to w, leaving stdout to the payload.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		MessageKey:     "M",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl)).Named("steganohide"), nil
}
