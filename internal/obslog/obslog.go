// Copyright 2017 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package obslog owns the process-wide structured logger shared by the
// builder CLI, the loader, the cache and the engine.
package obslog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger     *zap.Logger
	globalLoggerInit sync.Once
)

// Level names accepted by the SRC_LOG_LEVEL-style environment knob.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

const (
	envLogLevel = "COMICIDX_LOG_LEVEL"
	envLogDev   = "COMICIDX_LOG_DEV"
)

// Get returns the initialized global logger, or a no-op logger if Init has
// not been called yet — convenient for library code and tests that log
// incidentally without standing up the full CLI entry point.
func Get() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// Init constructs the global logger from the environment. It must be
// called once from a command's main(); subsequent calls are no-ops. The
// returned func flushes buffered log lines and should be deferred.
func Init() func() error {
	globalLoggerInit.Do(func() {
		globalLogger = build(Level(os.Getenv(envLogLevel)), os.Getenv(envLogDev) == "true")
	})
	return globalLogger.Sync
}

func build(level Level, development bool) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if development {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	} else {
		encoder = zapcore.NewJSONEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), zap.NewAtomicLevelAt(level.zapLevel()))
	opts := []zap.Option{zap.AddCaller()}
	if development {
		opts = append(opts, zap.Development())
	}
	return zap.New(core, opts...)
}
