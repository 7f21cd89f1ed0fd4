// Package clog carries a *slog.Logger in a context.Context.
package clog

import (
	"context"
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
)

// Ctx returns the logger stored in ctx, or the default logger.
func Ctx(ctx context.Context) *slog.Logger {
	return slogctx.FromCtx(ctx)
}

func WithCtx(ctx context.Context, logger *slog.Logger) context.Context {
	return slogctx.NewCtx(ctx, logger)
}

// WithAttrs returns a context whose logger carries attrs.
func WithAttrs(ctx context.Context, attrs ...any) context.Context {
	return slogctx.With(ctx, attrs...)
}

func NewLoggerFromHandler(ctx context.Context, handler slog.Handler) (*slog.Logger, context.Context) {
	customHandler := slogctx.NewHandler(handler, nil)
	logger := slog.New(customHandler)
	ctx = slogctx.NewCtx(ctx, logger)
	return logger, ctx
}

// NewTerminalLogger installs a tint handler writing to w at level.
func NewTerminalLogger(ctx context.Context, w io.Writer, level slog.Level, noColor bool) (*slog.Logger, context.Context) {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	})
	return NewLoggerFromHandler(ctx, handler)
}

// Discard returns a context whose logger drops every record.
func Discard(ctx context.Context) context.Context {
	return WithCtx(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)))
}
