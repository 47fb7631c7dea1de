// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uarray

import (
	"context"
	"slices"
	"sync"
)

// Handler is a replacement handler. It returns an accepted [Result] carrying
// the replacement box, or [Decline] if it does not apply to b. A non-nil
// error aborts the enclosing rewrite.
type Handler func(ctx context.Context, b *Box) (Result, error)

// HandlerFunc adapts a context-free, infallible function to a Handler.
func HandlerFunc(f func(b *Box) Result) Handler {
	return func(_ context.Context, b *Box) (Result, error) {
		return f(b), nil
	}
}

// Declining is a Handler that declines every node.
func Declining(context.Context, *Box) (Result, error) {
	return Decline(), nil
}

// Chain is an ordered list of handlers for one dispatch key.
// Handlers are tried front to back.
type Chain []Handler

// Call tries each handler in order and returns the first accepted result.
// If every handler declines, Call declines. The first error is returned
// immediately.
func (c Chain) Call(ctx context.Context, b *Box) (Result, error) {
	for _, h := range c {
		r, err := h(ctx, b)
		if err != nil {
			return Decline(), err
		}
		if r.Accepted() {
			return r, nil
		}
	}
	return Decline(), nil
}

// Combine returns a Handler trying hs in order, first acceptance wins.
func Combine(hs ...Handler) Handler {
	return Chain(slices.Clone(hs)).Call
}

// Table maps dispatch keys to handler chains.
//
// Registering prepends, so the most recently registered handler for a key
// runs first. A layered table (see [Table.Layer]) consults its own chain
// and then its parent's. Table is safe for concurrent use; the zero value
// is an empty table ready to use.
type Table struct {
	mu     sync.RWMutex
	chains map[any]Chain
	masked map[any]struct{}
	parent *Table
	frozen bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{chains: make(map[any]Chain)}
}

// Layer creates an empty table layered over t. Handlers registered on the
// layer run before t's handlers for the same key; t is not modified.
func (t *Table) Layer() *Table {
	l := NewTable()
	l.parent = t
	return l
}

// Parent returns the table t is layered over, or nil.
func (t *Table) Parent() *Table { return t.parent }

// Register prepends h to the chain for key.
func (t *Table) Register(key any, h Handler) error {
	if t.frozen {
		return ErrFrozenTable
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.chains == nil {
		t.chains = make(map[any]Chain)
	}
	c := make(Chain, 0, len(t.chains[key])+1)
	c = append(c, h)
	t.chains[key] = append(c, t.chains[key]...)
	delete(t.masked, key)
	return nil
}

// MustRegister registers h and panics on error.
// Use this for static registration into tables the caller owns.
func (t *Table) MustRegister(key any, h Handler) {
	if err := t.Register(key, h); err != nil {
		panic(err)
	}
}

// Delete removes the whole chain for key. On a layer the parent's chain is
// hidden as well, until a handler is registered for key again.
func (t *Table) Delete(key any) error {
	if t.frozen {
		return ErrFrozenTable
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.chains, key)
	if t.parent != nil {
		if t.masked == nil {
			t.masked = make(map[any]struct{})
		}
		t.masked[key] = struct{}{}
	}
	return nil
}

// Lookup returns the chain for key. The boolean is false when no table in
// the layer stack has handlers for key; an absent chain behaves as one
// that always declines.
func (t *Table) Lookup(key any) (Chain, bool) {
	var out Chain
	for cur := t; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		c := cur.chains[key]
		_, masked := cur.masked[key]
		cur.mu.RUnlock()
		out = append(out, c...)
		if masked {
			break
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// Keys returns every key with a visible chain.
func (t *Table) Keys() []any {
	var keys []any
	for k := range t.visible() {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of keys with a visible chain.
func (t *Table) Len() int {
	return len(t.visible())
}

func (t *Table) visible() map[any]struct{} {
	seen := make(map[any]struct{})
	hidden := make(map[any]struct{})
	for cur := t; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		for k, c := range cur.chains {
			if _, h := hidden[k]; !h && len(c) > 0 {
				seen[k] = struct{}{}
			}
		}
		for k := range cur.masked {
			hidden[k] = struct{}{}
		}
		cur.mu.RUnlock()
	}
	return seen
}

// Frozen reports whether t rejects mutation.
func (t *Table) Frozen() bool { return t.frozen }

// defaultTable is the process-wide fallback consulted when no scope is
// active. It is created empty at init and never mutated; register into a
// scope's table or a layer over it instead.
var defaultTable = &Table{chains: make(map[any]Chain), frozen: true}

// Default returns the process-wide default table.
func Default() *Table { return defaultTable }
