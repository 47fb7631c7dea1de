// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package floatbackend implements the numeric catalogue with float64.
package floatbackend

import (
	"context"
	"strconv"

	"code.hybscloud.com/uarray"
	"code.hybscloud.com/uarray/internal/backend"
	"code.hybscloud.com/uarray/internal/numeric"
)

// Name is the registry name of the backend.
const Name = "float"

// Backend returns the float64 provider.
func Backend() *backend.Backend {
	return &backend.Backend{
		Name:        Name,
		Description: "IEEE 754 double precision",
		Install:     Install,
	}
}

var key = uarray.KeyFor[float64]()

// Install registers the float64 implementations into t.
func Install(t *uarray.Table) error {
	if err := t.Register(uarray.KeyFor[numeric.Literal](), parseLiteral); err != nil {
		return err
	}
	binary := map[*uarray.Operation]func(a, b float64) float64{
		numeric.Add: func(a, b float64) float64 { return a + b },
		numeric.Mul: func(a, b float64) float64 { return a * b },
		numeric.Sub: func(a, b float64) float64 { return a - b },
	}
	for op, f := range binary {
		if err := uarray.RegisterIn(t, op, key, binaryHandler(f)); err != nil {
			return err
		}
	}
	if err := uarray.RegisterIn(t, numeric.Neg, key, uarray.HandlerFunc(func(b *uarray.Box) uarray.Result {
		args, _ := uarray.CallArgs(b)
		return uarray.Accept(b.With(-args[0].(float64)))
	})); err != nil {
		return err
	}
	return uarray.RegisterIn(t, numeric.Sum, key, uarray.HandlerFunc(func(b *uarray.Box) uarray.Result {
		args, _ := uarray.CallArgs(b)
		var s float64
		for _, a := range args {
			s += a.(float64)
		}
		return uarray.Accept(b.With(s))
	}))
}

// parseLiteral declines literals ParseFloat rejects, such as "1/3".
func parseLiteral(_ context.Context, b *uarray.Box) (uarray.Result, error) {
	l, ok := b.Value.(numeric.Literal)
	if !ok {
		return uarray.Decline(), nil
	}
	f, err := strconv.ParseFloat(string(l), 64)
	if err != nil {
		return uarray.Decline(), nil
	}
	return uarray.Accept(b.With(f)), nil
}

func binaryHandler(f func(a, b float64) float64) uarray.Handler {
	return uarray.HandlerFunc(func(b *uarray.Box) uarray.Result {
		args, _ := uarray.CallArgs(b)
		return uarray.Accept(b.With(f(args[0].(float64), args[1].(float64))))
	})
}
