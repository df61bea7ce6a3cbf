package console

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Channels holds one writer per severity.
type Channels struct {
	Debug io.Writer
	Info  io.Writer
	Warn  io.Writer
	Error io.Writer
}

// DefaultChannels sends debug and info to stdout, warn and error to stderr.
func DefaultChannels() Channels {
	return Channels{
		Debug: os.Stdout,
		Info:  os.Stdout,
		Warn:  os.Stderr,
		Error: os.Stderr,
	}
}

// SingleChannel routes every severity to w.
func SingleChannel(w io.Writer) Channels {
	return Channels{Debug: w, Info: w, Warn: w, Error: w}
}

// encoderConfig keeps only the message: the timestamp and namespace are already part of it.
// Extra fields follow the message as a JSON object.
func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
	}
}

// newCore tees one core per severity so each level lands only on its own channel.
func newCore(channels Channels) zapcore.Core {
	channels = withFallbacks(channels)
	encoder := zapcore.NewConsoleEncoder(encoderConfig())

	return zapcore.NewTee(
		exactLevelCore(encoder, channels.Debug, zapcore.DebugLevel),
		exactLevelCore(encoder, channels.Info, zapcore.InfoLevel),
		exactLevelCore(encoder, channels.Warn, zapcore.WarnLevel),
		exactLevelCore(encoder, channels.Error, zapcore.ErrorLevel),
	)
}

func exactLevelCore(encoder zapcore.Encoder, w io.Writer, target zapcore.Level) zapcore.Core {
	return zapcore.NewCore(
		encoder,
		zapcore.Lock(zapcore.AddSync(w)),
		zap.LevelEnablerFunc(func(level zapcore.Level) bool {
			return level == target
		}),
	)
}

func withFallbacks(channels Channels) Channels {
	defaults := DefaultChannels()
	if channels.Debug == nil {
		channels.Debug = defaults.Debug
	}
	if channels.Info == nil {
		channels.Info = defaults.Info
	}
	if channels.Warn == nil {
		channels.Warn = defaults.Warn
	}
	if channels.Error == nil {
		channels.Error = defaults.Error
	}
	return channels
}
