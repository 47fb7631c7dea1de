// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uarray

import (
	"context"

	"go.uber.org/zap"
)

// Read-only environment carried by the context alongside the scope:
// a logger and an optional rewrite recorder.

type loggerKey struct{}

var nopLogger = zap.NewNop()

// WithLogger returns a context whose rewrites and scope changes are logged
// to l at debug level.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// Logger returns the logger carried by ctx, or a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return nopLogger
}
