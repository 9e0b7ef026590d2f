// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"io"
	"log/slog"
	"strings"

	"github.com/SladkyCitron/slogcolor"

	iu "github.com/choria-io/openstack-nfs/internal/util"
	"github.com/choria-io/openstack-nfs/model"
)

var _ model.Logger = (*SlogLogger)(nil)

type SlogLogger struct {
	log *slog.Logger
}

func (s *SlogLogger) Debug(msg string, args ...any) {
	s.log.Debug(msg, args...)
}

func (s *SlogLogger) Info(msg string, args ...any) {
	s.log.Info(msg, args...)
}

func (s *SlogLogger) Warn(msg string, args ...any) {
	s.log.Warn(msg, args...)
}

func (s *SlogLogger) Error(msg string, args ...any) {
	s.log.Error(msg, args...)
}

func (s *SlogLogger) With(args ...any) model.Logger {
	return NewSlogLogger(s.log.With(args...))
}

func NewSlogLogger(log *slog.Logger) *SlogLogger {
	return &SlogLogger{log: log}
}

// ParseLevel parses debug, info, warn and error, anything else is warn
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// NewConsoleLogger logs in color to terminals and as plain text to out otherwise
func NewConsoleLogger(out io.Writer, level slog.Level) *SlogLogger {
	if iu.IsTerminal() {
		return NewSlogLogger(slog.New(slogcolor.NewHandler(out, &slogcolor.Options{Level: level})))
	}

	return NewSlogLogger(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}
