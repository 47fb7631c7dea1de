// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uarray

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Operation is a named extension point with a fixed arity. Invoking it
// builds a [Call] node and rewrites it under the current table; backends
// supply implementations with [Register].
//
// Example:
//
//	var Add = uarray.NewOperation("add", 2)
//
//	// in a backend
//	uarray.RegisterIn(t, Add, uarray.KeyFor[float64](), func(ctx context.Context, b *uarray.Box) (uarray.Result, error) {
//	    args, _ := uarray.CallArgs(b)
//	    return uarray.Accept(b.With(args[0].(float64) + args[1].(float64))), nil
//	})
//
//	// at a call site
//	sum, err := Add.Invoke(ctx, 1.0, 2.0)
type Operation struct {
	name         string
	arity        int
	variadic     bool
	concreteOnly bool
	fallback     func(ctx context.Context, args []any) (any, error)
}

// OperationOption configures an Operation.
type OperationOption func(*Operation)

// WithDefault sets the function Invoke falls back to when the expression
// reaches a fixpoint without becoming concrete. It receives the raw
// arguments of the invocation.
func WithDefault(f func(ctx context.Context, args []any) (any, error)) OperationOption {
	return func(op *Operation) { op.fallback = f }
}

// RequireConcrete makes every registered handler decline until all
// arguments of the call are concrete, so arguments are resolved first.
func RequireConcrete() OperationOption {
	return func(op *Operation) { op.concreteOnly = true }
}

// Variadic makes the arity a minimum rather than an exact count.
func Variadic() OperationOption {
	return func(op *Operation) { op.variadic = true }
}

// NewOperation creates an operation taking arity arguments.
func NewOperation(name string, arity int, opts ...OperationOption) *Operation {
	op := &Operation{name: name, arity: arity}
	for _, o := range opts {
		o(op)
	}
	return op
}

// Name returns the operation name.
func (op *Operation) Name() string { return op.name }

// Arity returns the number of arguments, or the minimum for a variadic
// operation.
func (op *Operation) Arity() int { return op.arity }

// HasDefault reports whether op has a fallback.
func (op *Operation) HasDefault() bool { return op.fallback != nil }

func (op *Operation) String() string { return op.name }

func (op *Operation) checkArity(n int) error {
	if n == op.arity || (op.variadic && n >= op.arity) {
		return nil
	}
	return fmt.Errorf("%w: %s takes %d, got %d", ErrArity, op.name, op.arity, n)
}

// Call is the payload of an operation node. Its children are the argument
// boxes and its dispatch key is the operation, so every implementation of
// one operation shares a chain. A Call is never concrete.
type Call struct {
	Op   *Operation
	Args []*Box
}

func (c Call) Children() []*Box { return c.Args }

func (c Call) MapChildren(fn func(any) any) any {
	args := make([]*Box, len(c.Args))
	for i, a := range c.Args {
		args[i], _ = fn(a).(*Box)
	}
	return Call{Op: c.Op, Args: args}
}

func (c Call) DispatchKey() any { return c.Op }

func (Call) Concrete() bool { return false }

func (c Call) String() string {
	var sb strings.Builder
	sb.WriteString(c.Op.name)
	sb.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%T", a.Value)
	}
	sb.WriteByte(')')
	return sb.String()
}

// Expr builds the unevaluated expression op(args...). Arguments that are
// boxes are embedded as they are, so expressions compose lazily.
func (op *Operation) Expr(args ...any) (*Box, error) {
	if err := op.checkArity(len(args)); err != nil {
		return nil, err
	}
	return NewBox(Call{Op: op, Args: ExtractArgs(args...)}), nil
}

// Invoke evaluates op(args...) under the table current in ctx.
//
// When the rewritten expression is concrete its plain value is returned.
// Otherwise the operation's default is called if it has one, and an
// [*UnresolvedError] is returned if it does not.
func (op *Operation) Invoke(ctx context.Context, args ...any) (any, error) {
	b, err := op.Expr(args...)
	if err != nil {
		return nil, err
	}
	return op.Resolve(ctx, b, args)
}

// Resolve rewrites expr, an expression rooted at a call of op, and returns
// its plain value. args are handed to the default on an unresolved result.
func (op *Operation) Resolve(ctx context.Context, expr *Box, args []any) (any, error) {
	out, err := Replace(ctx, expr)
	if err != nil {
		return nil, err
	}
	if IsConcreteTree(out.Value) {
		return ExtractValue(out)
	}
	if op.fallback != nil {
		Logger(ctx).Debug("falling back to default", zap.String("op", op.name))
		return op.fallback(ctx, args)
	}
	return nil, &UnresolvedError{Op: op, Node: out}
}

// AnyKey registers a handler for every argument key.
var AnyKey any = anyKey{}

type anyKey struct{}

func (anyKey) String() string { return "any" }

// Register installs h for op into the table current in ctx. Outside any
// scope the current table is the frozen default and Register fails with
// [ErrFrozenTable].
func Register(ctx context.Context, op *Operation, key any, h Handler) error {
	return RegisterIn(Current(ctx), op, key, h)
}

// RegisterIn installs h for op into t.
//
// Unless key is [AnyKey], h only sees calls whose arguments all have
// dispatch key key; it declines for the rest. For operations created with
// [RequireConcrete], h also declines until every argument is concrete.
func RegisterIn(t *Table, op *Operation, key any, h Handler) error {
	return t.Register(op, op.guard(key, h))
}

func (op *Operation) guard(key any, h Handler) Handler {
	return func(ctx context.Context, b *Box) (Result, error) {
		call, ok := b.Value.(Call)
		if !ok || call.Op != op {
			return Decline(), nil
		}
		if op.concreteOnly && !argsConcrete(call.Args) {
			return Decline(), nil
		}
		if key != AnyKey {
			for _, a := range call.Args {
				if KeyOf(a.Value) != key {
					return Decline(), nil
				}
			}
		}
		return h(ctx, b)
	}
}

// ConcreteOnly wraps h so that it declines until every child of the node
// is concrete.
func ConcreteOnly(h Handler) Handler {
	return func(ctx context.Context, b *Box) (Result, error) {
		if !argsConcrete(Children(b.Value)) {
			return Decline(), nil
		}
		return h(ctx, b)
	}
}

func argsConcrete(args []*Box) bool {
	for _, a := range args {
		if a == nil || !IsConcreteTree(a.Value) {
			return false
		}
	}
	return true
}

// CallArgs returns the argument values of the call held by b.
func CallArgs(b *Box) ([]any, bool) {
	call, ok := b.Value.(Call)
	if !ok {
		return nil, false
	}
	vals := make([]any, len(call.Args))
	for i, a := range call.Args {
		vals[i] = a.Value
	}
	return vals, true
}

// ExtractArgs boxes raw call arguments. Arguments that are already boxes
// are kept.
func ExtractArgs(args ...any) []*Box {
	out := make([]*Box, len(args))
	for i, a := range args {
		if b, ok := a.(*Box); ok && b != nil {
			out[i] = b
			continue
		}
		out[i] = NewBox(a)
	}
	return out
}

// ExtractValue returns the plain value held by b, unwrapping nested boxes.
// It fails with [ErrUnresolved] if the value is not concrete.
func ExtractValue(b *Box) (any, error) {
	if b == nil {
		return nil, &NotBoxError{Value: b}
	}
	v := b.Value
	seen := map[*Box]struct{}{b: {}}
	for {
		inner, ok := v.(*Box)
		if !ok || inner == nil {
			break
		}
		if _, loop := seen[inner]; loop {
			return nil, fmt.Errorf("%w: box contains itself", ErrUnresolved)
		}
		seen[inner] = struct{}{}
		v = inner.Value
	}
	if !IsConcreteTree(v) {
		return nil, fmt.Errorf("%w: %T", ErrUnresolved, v)
	}
	return v, nil
}

// Extract returns the plain value held by b as a T.
func Extract[T any](b *Box) (T, error) {
	var zero T
	v, err := ExtractValue(b)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("uarray: extract: value is %T, not %T", v, zero)
	}
	return t, nil
}
