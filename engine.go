// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uarray

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "code.hybscloud.com/uarray"

// stepFrame is one pending box of the post-order walk in [Step].
type stepFrame struct {
	box      *Box
	children []*Box
	next     int
}

// Step performs one rewrite on the tree rooted at node, in place.
//
// Children are visited depth-first and left to right before their parent,
// so the innermost, leftmost node that some handler accepts is rewritten.
// The accepted replacement's value is stored into the existing box, whose
// identity is preserved, and that box is returned. Step returns (nil, nil)
// at a fixpoint: no key in the tree has a chain, or every chain declined.
//
// A node that is not a Box fails with a [*NotBoxError]. Handler errors are
// returned wrapped in a [*HandlerError]; structural errors raised by a
// handler are returned unchanged.
//
// The walk keeps an explicit frame stack and visits every box at most once,
// so aliased and cyclic trees terminate.
func Step(ctx context.Context, node any) (*Box, error) {
	root, ok := node.(*Box)
	if !ok || root == nil {
		return nil, &NotBoxError{Value: node}
	}
	table := Current(ctx)
	visited := map[*Box]struct{}{root: {}}
	stack := []stepFrame{{box: root, children: Children(root.Value)}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.children) {
			child := top.children[top.next]
			top.next++
			if child == nil {
				return nil, &NotBoxError{Value: child, Parent: top.box}
			}
			if _, done := visited[child]; done {
				continue
			}
			visited[child] = struct{}{}
			stack = append(stack, stepFrame{box: child, children: Children(child.Value)})
			continue
		}
		b := top.box
		stack = stack[:len(stack)-1]
		rewrote, err := rewriteNode(ctx, table, b)
		if err != nil {
			return nil, err
		}
		if rewrote {
			return b, nil
		}
	}
	return nil, nil
}

// rewriteNode consults table for b and applies the accepted replacement.
func rewriteNode(ctx context.Context, table *Table, b *Box) (bool, error) {
	key := KeyOf(b.Value)
	rec := recorderFrom(ctx)
	chain, ok := table.Lookup(key)
	if !ok {
		rec.tell(Event{Kind: EventNoChain, Key: key, Box: b})
		return false, nil
	}
	r, err := chain.Call(ctx, b)
	if err != nil {
		if errors.Is(err, ErrNotBox) {
			return false, err
		}
		return false, &HandlerError{Key: key, Err: err}
	}
	nb, ok := r.Box()
	if !ok {
		rec.tell(Event{Kind: EventDeclined, Key: key, Box: b})
		return false, nil
	}
	b.Value = nb.Value
	rec.tell(Event{Kind: EventRewrote, Key: key, Box: b})
	if l := Logger(ctx); l.Core().Enabled(zap.DebugLevel) {
		l.Debug("rewrote node", zap.Any("key", key), zap.String("value", fmt.Sprintf("%T", b.Value)))
	}
	return true, nil
}

// Rewriter steps a tree to its fixpoint one rewrite at a time.
//
// A Rewriter is finite and not restartable: once it reports the fixpoint
// or an error it stays exhausted.
type Rewriter struct {
	ctx   context.Context
	node  any
	done  bool
	err   error
	steps int
}

// NewRewriter creates a rewriter over the tree rooted at node. The tree is
// mutated in place; use [Replace] to leave the original untouched.
func NewRewriter(ctx context.Context, node any) *Rewriter {
	return &Rewriter{ctx: ctx, node: node}
}

// Next performs one step. It returns the rewritten box and true, or
// (nil, false, nil) at the fixpoint, or the step's error.
func (r *Rewriter) Next() (*Box, bool, error) {
	if r.done {
		return nil, false, r.err
	}
	b, err := Step(r.ctx, r.node)
	if err != nil {
		r.done, r.err = true, err
		return nil, false, err
	}
	if b == nil {
		r.done = true
		return nil, false, nil
	}
	r.steps++
	return b, true, nil
}

// All returns an iterator over the remaining steps. An error is yielded
// once as the final element.
func (r *Rewriter) All() iter.Seq2[*Box, error] {
	return func(yield func(*Box, error) bool) {
		for {
			b, ok, err := r.Next()
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok || !yield(b, nil) {
				return
			}
		}
	}
}

// Steps returns the number of successful rewrites so far.
func (r *Rewriter) Steps() int { return r.steps }

// Done reports whether the rewriter is exhausted.
func (r *Rewriter) Done() bool { return r.done }

// Rewrites rewrites the tree rooted at node in place, yielding the
// rewritten box after each step until the fixpoint.
//
// Example:
//
//	for b, err := range uarray.Rewrites(ctx, root) {
//	    if err != nil {
//	        return err
//	    }
//	    log.Println("rewrote", b)
//	}
func Rewrites(ctx context.Context, node any) iter.Seq2[*Box, error] {
	return NewRewriter(ctx, node).All()
}

// Replace clones b and rewrites the clone to its fixpoint under the table
// current in ctx. b and everything reachable from it are left unchanged.
func Replace(ctx context.Context, b *Box) (*Box, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "uarray.Replace", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	if b == nil {
		err := &NotBoxError{Value: b}
		span.RecordError(err)
		span.SetStatus(codes.Error, "not a box")
		return nil, err
	}
	c := Clone(b)
	r := NewRewriter(ctx, c)
	for _, err := range r.All() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rewrite failed")
			return nil, err
		}
	}
	span.SetAttributes(attribute.Int("uarray.steps", r.Steps()))
	return c, nil
}
