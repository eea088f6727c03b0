// Copyright 2025 Alexandre Mahdhaoui
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging provides shared logging utilities for the testenv-vm
// binaries. It installs log/slog as the default logger and returns a
// logr.Logger backed by zap for libraries that take an injected logger.
package logging

import (
	"log/slog"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the logger behavior.
type Options struct {
	// Development enables development mode logging (more verbose, human-readable).
	Development bool

	// Level sets the minimum log level. Defaults to slog.LevelInfo.
	Level slog.Level
}

// DefaultOptions returns the default logging options.
func DefaultOptions() Options {
	return Options{
		Development: false,
		Level:       slog.LevelInfo,
	}
}

// Setup configures the default slog logger and returns a logr.Logger for
// injection into library code. It must be called early in main(), before
// anything logs.
//
// Production mode emits JSON; development mode emits a human-readable text
// format. Both log to stderr so command output on stdout stays
// machine-readable.
func Setup(opts Options) logr.Logger {
	var handler slog.Handler
	if opts.Development {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: opts.Level,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: opts.Level,
		})
	}
	slog.SetDefault(slog.New(handler))

	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(opts.Level))

	return zapr.NewLogger(zap.Must(cfg.Build()))
}

// zapLevel maps a slog level onto the nearest zap level.
func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level <= slog.LevelDebug:
		return zapcore.DebugLevel
	case level <= slog.LevelInfo:
		return zapcore.InfoLevel
	case level <= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
