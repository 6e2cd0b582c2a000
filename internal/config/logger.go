package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig selects how much the console logger prints
type LoggingConfig struct {
	// Level is one of none, normal or debug
	Level string `yaml:"level"`
}

// Validate checks the level name
func (conf LoggingConfig) Validate() error {
	switch conf.Level {
	case "none", "normal", "debug":
		return nil
	}
	return fmt.Errorf("logging level must be one of none, normal, debug, got %q", conf.Level)
}

// Prepare returns a console logger writing to stderr, leaving stdout to the
// documents the tool produces
func (conf LoggingConfig) Prepare() (*zap.Logger, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	var enabler zapcore.LevelEnabler
	switch conf.Level {
	case "normal":
		enabler = zapcore.InfoLevel
	case "debug":
		enabler = zapcore.DebugLevel
	default:
		return zap.NewNop(), nil
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), enabler)
	return zap.New(core).Named("rtedit"), nil
}
