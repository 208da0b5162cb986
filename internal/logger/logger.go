package logger

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base atomic.Pointer[zap.Logger]

func init() {
	base.Store(zap.NewNop())
}

// Init builds the process-wide zap logger. Until it is called every Logger is silent.
func Init(level, environment string) error {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	built, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		built = built.With(zap.String("hostname", hostname))
	}

	base.Store(built)
	return nil
}

func Sync() {
	_ = base.Load().Sync()
}

// Std adapts the process logger for libraries that expect a *log.Logger.
func Std() *log.Logger {
	return zap.NewStdLog(base.Load())
}

type Logger struct {
	name     string
	file     string
	function string
}

func New(name string) Logger {
	return Logger{name: name}
}

func (l Logger) File(file string) Logger {
	l.file = file
	return l
}

func (l Logger) Function(function string) Logger {
	l.function = function
	return l
}

func (l Logger) sugar() *zap.SugaredLogger {
	z := base.Load().Named(l.name)
	if l.file != "" {
		z = z.With(zap.String("file", l.file))
	}
	if l.function != "" {
		z = z.With(zap.String("function", l.function))
	}
	return z.Sugar()
}

func (l Logger) Debug(msg string, args ...any) {
	l.sugar().Debugw(msg, args...)
}

func (l Logger) Info(msg string, args ...any) {
	l.sugar().Infow(msg, args...)
}

func (l Logger) Warn(msg string, args ...any) {
	l.sugar().Warnw(msg, args...)
}

// Er logs err without returning it.
func (l Logger) Er(msg string, err error, args ...any) {
	l.sugar().Errorw(msg, append(args, "error", err)...)
}

func (l Logger) ErMsg(msg string, args ...any) {
	l.sugar().Errorw(msg, args...)
}

// Err logs err and returns it wrapped with msg.
func (l Logger) Err(msg string, err error, args ...any) error {
	l.Er(msg, err, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

func (l Logger) ErrMsg(msg string) error {
	l.sugar().Errorw(msg)
	return errors.New(msg)
}

// Error logs msg with context and returns it as an error.
func (l Logger) Error(msg string, args ...any) error {
	l.sugar().Errorw(msg, args...)
	return errors.New(msg)
}
