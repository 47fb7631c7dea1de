// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package numeric is a small catalogue of arithmetic operations declared
// against the uarray engine. It carries no arithmetic of its own: backends
// register the implementations.
package numeric

import (
	"context"
	"fmt"
	"sort"

	"code.hybscloud.com/uarray"
)

// Literal is a numeric literal in source form. It is not concrete until a
// backend converts it to its own number type.
type Literal string

// Concrete implements uarray.Concreter.
func (Literal) Concrete() bool { return false }

var (
	Add = uarray.NewOperation("add", 2, uarray.RequireConcrete())
	Mul = uarray.NewOperation("mul", 2, uarray.RequireConcrete())
	Neg = uarray.NewOperation("neg", 1, uarray.RequireConcrete())

	// Sub falls back to add(a, neg(b)).
	Sub = uarray.NewOperation("sub", 2, uarray.RequireConcrete(), uarray.WithDefault(subDefault))

	// Sum falls back to a left fold of add.
	Sum = uarray.NewOperation("sum", 1, uarray.RequireConcrete(), uarray.Variadic(), uarray.WithDefault(sumDefault))
)

var ops = map[string]*uarray.Operation{}

func init() {
	for _, op := range []*uarray.Operation{Add, Mul, Neg, Sub, Sum} {
		ops[op.Name()] = op
	}
}

// Lookup returns the operation named name.
func Lookup(name string) (*uarray.Operation, bool) {
	op, ok := ops[name]
	return op, ok
}

// Names returns the names of all operations, sorted.
func Names() []string {
	names := make([]string, 0, len(ops))
	for n := range ops {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func subDefault(ctx context.Context, args []any) (any, error) {
	vals, err := evalArgs(ctx, args)
	if err != nil {
		return nil, err
	}
	neg, err := Neg.Expr(vals[1])
	if err != nil {
		return nil, err
	}
	return Add.Invoke(ctx, vals[0], neg)
}

func sumDefault(ctx context.Context, args []any) (any, error) {
	vals, err := evalArgs(ctx, args)
	if err != nil {
		return nil, err
	}
	acc := vals[0]
	for _, a := range vals[1:] {
		v, err := Add.Invoke(ctx, acc, a)
		if err != nil {
			return nil, fmt.Errorf("sum: %w", err)
		}
		acc = v
	}
	return resolve(ctx, acc)
}

// evalArgs evaluates the expression arguments of a default, so that nested
// calls get the chance to fall back to their own defaults.
func evalArgs(ctx context.Context, args []any) ([]any, error) {
	vals := make([]any, len(args))
	for i, a := range args {
		b, ok := a.(*uarray.Box)
		if !ok {
			vals[i] = a
			continue
		}
		v, err := eval(ctx, b)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// resolve rewrites a lone value, or an expression box, under the current
// table.
func resolve(ctx context.Context, v any) (any, error) {
	b, ok := v.(*uarray.Box)
	if !ok {
		b = uarray.NewBox(v)
	}
	out, err := uarray.Replace(ctx, b)
	if err != nil {
		return nil, err
	}
	return uarray.ExtractValue(out)
}

func eval(ctx context.Context, b *uarray.Box) (any, error) {
	if call, ok := b.Value.(uarray.Call); ok {
		return call.Op.Resolve(ctx, b, boxArgs(call.Args))
	}
	return resolve(ctx, b)
}

// Eval parses src and evaluates it under the table current in ctx.
func Eval(ctx context.Context, src string) (any, error) {
	b, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return eval(ctx, b)
}

func boxArgs(args []*uarray.Box) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}
