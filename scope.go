// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uarray

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scoped dispatch.
// The current table travels with the context. Entering a scope derives a
// context whose current table is the scope's; the caller's own context is
// untouched, so leaving the scope means going back to it. Contexts are
// immutable: a goroutine observes the table of the context it was started
// with, and neither entry nor release of a scope on another goroutine
// changes it.

type scopeKey struct{}

// Scope is an active dispatch scope.
//
// Scope enforces affine semantics: Release may be called at most once.
// Calling Release twice panics.
type Scope struct {
	used   atomic.Uintptr
	id     uuid.UUID
	table  *Table
	parent *Scope
	log    *zap.Logger
}

// ID returns the unique identifier of the scope.
func (s *Scope) ID() uuid.UUID { return s.id }

// Table returns the table the scope activates.
func (s *Scope) Table() *Table { return s.table }

// Released reports whether Release has been called.
func (s *Scope) Released() bool { return s.used.Load() != 0 }

// Release ends the scope. Contexts derived from the scope keep resolving
// to its table, so goroutines started inside it are unaffected; the caller
// continues with the context it entered from.
// Panics if the scope has already been released.
func (s *Scope) Release() {
	if s.used.Add(1) != 1 {
		panic("uarray: scope released twice")
	}
	s.log.Debug("scope released", zap.String("scope", s.id.String()))
}

// TryRelease releases the scope and reports whether this call released it.
func (s *Scope) TryRelease() bool {
	if s.used.Add(1) != 1 {
		return false
	}
	s.log.Debug("scope released", zap.String("scope", s.id.String()))
	return true
}

// Current returns the table of the innermost scope ctx was derived from,
// or [Default] when ctx carries no scope.
func Current(ctx context.Context) *Table {
	if s := ScopeFrom(ctx); s != nil {
		return s.table
	}
	return defaultTable
}

// ScopeFrom returns the innermost scope ctx was derived from, or nil.
func ScopeFrom(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

// Parent returns the scope that was current when s was entered, or nil.
func (s *Scope) Parent() *Scope { return s.parent }

// Enter activates t and returns the derived context together with the scope
// handle. Work inside the scope uses the returned context; the caller must
// release the scope, typically with defer:
//
//	sctx, scope := uarray.Enter(ctx, backendTable)
//	defer scope.Release()
func Enter(ctx context.Context, t *Table) (context.Context, *Scope) {
	s := &Scope{
		id:     uuid.New(),
		table:  t,
		parent: ScopeFrom(ctx),
		log:    Logger(ctx),
	}
	s.log.Debug("scope entered", zap.String("scope", s.id.String()), zap.Int("keys", t.Len()))
	return context.WithValue(ctx, scopeKey{}, s), s
}

// EnterLayer activates a fresh layer over the current table. Handlers
// registered on the layer shadow, without modifying, the outer table.
func EnterLayer(ctx context.Context) (context.Context, *Scope) {
	return Enter(ctx, Current(ctx).Layer())
}

// WithScope runs fn with t active and releases the scope when fn returns
// or panics. A panic is re-raised after release. The table active in ctx is
// unchanged throughout.
func WithScope(ctx context.Context, t *Table, fn func(ctx context.Context) error) error {
	ctx, s := Enter(ctx, t)
	defer s.TryRelease()
	return fn(ctx)
}

// WithLayer runs fn with a fresh layer over the current table active.
// The layer is passed to fn for registration and discarded afterwards.
func WithLayer(ctx context.Context, fn func(ctx context.Context, t *Table) error) error {
	ctx, s := EnterLayer(ctx)
	defer s.TryRelease()
	return fn(ctx, s.table)
}

func (s *Scope) String() string {
	return fmt.Sprintf("Scope(%s)", s.id)
}
