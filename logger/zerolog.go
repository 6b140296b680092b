package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Console    bool   `yaml:"console" mapstructure:"console"`
	FileName   string `yaml:"file-name" mapstructure:"file-name"`
	MaxSize    int    `yaml:"max-size" mapstructure:"max-size"`
	MaxBackups int    `yaml:"max-backups" mapstructure:"max-backups"`
	MaxAge     int    `yaml:"max-age" mapstructure:"max-age"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
}

// NewLogger builds a zerolog backed Logger. Output goes to stderr unless a
// file name is configured, in which case lumberjack rotates it.
func NewLogger(cfg *Config) Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.WarnLevel
	}

	var writer io.Writer = os.Stderr
	if cfg.Console {
		writer = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	if cfg.FileName != "" {
		writer = &lumberjack.Logger{
			Filename:   cfg.FileName,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	}

	return New(zerolog.New(writer).Level(level).With().Timestamp().Logger())
}

// New wraps an existing zerolog.Logger.
func New(l zerolog.Logger) Logger {
	return &zerologLogger{
		Logger: l,
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return New(zerolog.Nop())
}

type zerologLogger struct {
	zerolog.Logger
}

func (l *zerologLogger) Info(msg string, fields ...Field) {
	l.Logger.Info().Fields(fieldsToMap(fields)).Msg(msg)
}

func (l *zerologLogger) Infof(format string, args ...any) {
	l.Logger.Info().Msgf(format, args...)
}

func (l *zerologLogger) Debug(msg string, fields ...Field) {
	l.Logger.Debug().Fields(fieldsToMap(fields)).Msg(msg)
}

func (l *zerologLogger) Debugf(format string, args ...any) {
	l.Logger.Debug().Msgf(format, args...)
}

func (l *zerologLogger) Warn(msg string, fields ...Field) {
	l.Logger.Warn().Fields(fieldsToMap(fields)).Msg(msg)
}

func (l *zerologLogger) Warnf(format string, args ...any) {
	l.Logger.Warn().Msgf(format, args...)
}

func (l *zerologLogger) Error(msg string, fields ...Field) {
	l.Logger.Error().Fields(fieldsToMap(fields)).Msg(msg)
}

func (l *zerologLogger) Errorf(format string, args ...any) {
	l.Logger.Error().Msgf(format, args...)
}

func (l *zerologLogger) Fatal(msg string, fields ...Field) {
	l.Logger.Fatal().Fields(fieldsToMap(fields)).Msg(msg)
}

func (l *zerologLogger) Fatalf(format string, args ...any) {
	l.Logger.Fatal().Msgf(format, args...)
}

func (l *zerologLogger) Panic(msg string, fields ...Field) {
	l.Logger.Panic().Fields(fieldsToMap(fields)).Msg(msg)
}

func (l *zerologLogger) Panicf(format string, args ...any) {
	l.Logger.Panic().Msgf(format, args...)
}

func (l *zerologLogger) WithFields(fields ...Field) Logger {
	return &zerologLogger{
		Logger: l.Logger.With().Fields(fieldsToMap(fields)).Logger(),
	}
}

func (l *zerologLogger) WithField(key string, value any) Logger {
	return &zerologLogger{
		Logger: l.Logger.With().Interface(key, value).Logger(),
	}
}

func fieldsToMap(fields []Field) map[string]any {
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			m[f.Key] = err.Error()
			continue
		}
		m[f.Key] = f.Value
	}
	return m
}
