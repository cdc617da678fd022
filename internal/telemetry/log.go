// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package telemetry is the store's ambient logging/metrics seam. Its log
// API deliberately mirrors github.com/erigontech/erigon-lib/log/v3's
// call shape (Info(msg, "key", val, ...)) seen throughout
// turbo/snapshotsync/snapshotsync.go, backed here by zap's structured core.
package telemetry

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured, key-value logger matching the erigon-lib/log/v3
// call convention: alternating string keys and values after the message.
type Logger struct {
	z *zap.Logger
}

// NewLogger builds a development-friendly console logger at the given
// level ("trace" is mapped to zap's Debug, since zap has no finer level).
func NewLogger(level string) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level == "trace" {
		level = "debug"
	}
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// Noop returns a Logger that discards everything; used as the Store's
// default so embedding applications opt in to logging explicitly.
func Noop() *Logger { return &Logger{z: zap.NewNop()} }

func fields(kv []any) []zap.Field {
	fs := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		fs = append(fs, zap.Any(key, kv[i+1]))
	}
	return fs
}

func (l *Logger) Trace(msg string, kv ...any) { l.z.Debug(msg, fields(kv)...) }
func (l *Logger) Debug(msg string, kv ...any) { l.z.Debug(msg, fields(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.z.Info(msg, fields(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.z.Warn(msg, fields(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.z.Error(msg, fields(kv)...) }

// Sync flushes any buffered log entries; call on shutdown.
func (l *Logger) Sync() error { return l.z.Sync() }
