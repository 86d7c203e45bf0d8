// Package logging builds the process logger. Quiet mode keeps only
// warnings and errors; verbose mode adds debug output.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	Quiet Level = iota
	Normal
	Verbose
)

func (l Level) zap() zapcore.Level {
	switch l {
	case Quiet:
		return zapcore.WarnLevel
	case Verbose:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// New returns a console logger on stderr named "turbinectl".
func New(level Level) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level.zap())
	cfg.DisableStacktrace = level != Verbose
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.Named("turbinectl"), nil
}

// FromFlags maps the CLI's quiet and verbose flags to a level; quiet wins.
func FromFlags(quiet, verbose bool) Level {
	switch {
	case quiet:
		return Quiet
	case verbose:
		return Verbose
	default:
		return Normal
	}
}
