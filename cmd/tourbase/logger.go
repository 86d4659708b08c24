package main

import (
	"log/slog"
	"os"
)

// slogAdapter bridges slog to the auth core's Logger interface.
type slogAdapter struct {
	base *slog.Logger
}

func newLogger() *slogAdapter {
	return &slogAdapter{
		base: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}
}

func (l *slogAdapter) Debug(msg string, args ...any) { l.base.Debug(msg, args...) }
func (l *slogAdapter) Info(msg string, args ...any)  { l.base.Info(msg, args...) }
func (l *slogAdapter) Warn(msg string, args ...any)  { l.base.Warn(msg, args...) }
func (l *slogAdapter) Error(msg string, args ...any) { l.base.Error(msg, args...) }
