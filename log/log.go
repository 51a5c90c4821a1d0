// Copyright (c) 2022 Runetale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD 3-Clause License
// license that can be found in the LICENSE file.

package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const (
	DebugLevelStr   string = "debug"
	InfoLevelStr    string = "info"
	WarningLevelStr string = "warning"
	ErrorLevelStr   string = "error"
)

type Logger struct {
	Logger *zap.SugaredLogger
}

// NewLogger builds a named console logger writing to stderr and, when
// logFile is set, to a rotated file.
func NewLogger(name string, logLevel string, logFile string, dev bool) (*Logger, error) {
	l, err := newZap(logLevel, logFile, dev)
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: l.Named(name).Sugar(),
	}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

func parseLevel(logLevel string) (zapcore.Level, error) {
	switch logLevel {
	case DebugLevelStr:
		return zap.DebugLevel, nil
	case InfoLevelStr:
		return zap.InfoLevel, nil
	case WarningLevelStr:
		return zap.WarnLevel, nil
	case ErrorLevelStr:
		return zap.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %s", logLevel)
	}
}

func newZap(logLevel string, logFile string, dev bool) (*zap.Logger, error) {
	level, err := parseLevel(logLevel)
	if err != nil {
		return nil, err
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	enc := zapcore.NewConsoleEncoder(encoderConfig)
	lvl := zap.NewAtomicLevelAt(level)

	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.Lock(os.Stderr), lvl),
	}
	if logFile != "" {
		ll := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    1024, //MB
			MaxBackups: 30,
			MaxAge:     90, //days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(ll), lvl))
	}

	opts := []zap.Option{zap.AddCaller()}
	if dev {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zap.ErrorLevel))
	}
	return zap.New(zapcore.NewTee(cores...), opts...), nil
}
