package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	xerrors "github.com/leoovs/Xuzumi/errors"
	"github.com/leoovs/Xuzumi/pool"
)

const envPrefix = "XUZUMI"

// Config is the sandbox configuration, read from flags, XUZUMI_* env
// vars and an optional xuzumi.yaml in that order of precedence.
type Config struct {
	Pool    pool.Specification `mapstructure:"pool"`
	Log     LogConfig          `mapstructure:"log"`
	Metrics MetricsConfig      `mapstructure:"metrics"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// MetricsConfig enables the prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("pool.block_size", pool.DefaultBlockSize)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("metrics.addr", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig reads path, or xuzumi.yaml from the working directory when
// path is empty. Only an explicit path is required to exist.
func loadConfig(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("xuzumi")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, xerrors.Wrap(xerrors.PhaseConfig, xerrors.KindInvalidInput, err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, xerrors.Wrap(xerrors.PhaseConfig, xerrors.KindInvalidInput, err, "decode config")
	}
	if err := cfg.Pool.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// newLogger builds the process logger. When out is non-nil the logger
// writes there instead of stderr.
func newLogger(cfg LogConfig, out io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}

	if out == nil {
		return zapCfg.Build()
	}

	var enc zapcore.Encoder
	if cfg.Development {
		enc = zapcore.NewConsoleEncoder(zapCfg.EncoderConfig)
	} else {
		enc = zapcore.NewJSONEncoder(zapCfg.EncoderConfig)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(out), zapCfg.Level)
	return zap.New(core), nil
}
