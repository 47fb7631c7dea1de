// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ratbackend implements part of the numeric catalogue with exact
// rationals. It provides no sum or sub; those resolve through the
// catalogue's defaults.
package ratbackend

import (
	"context"
	"math/big"

	"code.hybscloud.com/uarray"
	"code.hybscloud.com/uarray/internal/backend"
	"code.hybscloud.com/uarray/internal/numeric"
)

// Name is the registry name of the backend.
const Name = "rat"

// Backend returns the rational provider.
func Backend() *backend.Backend {
	return &backend.Backend{
		Name:        Name,
		Description: "exact rationals (math/big)",
		Install:     Install,
	}
}

var key = uarray.KeyFor[*big.Rat]()

// Install registers the *big.Rat implementations into t.
func Install(t *uarray.Table) error {
	if err := t.Register(uarray.KeyFor[numeric.Literal](), parseLiteral); err != nil {
		return err
	}
	if err := uarray.RegisterIn(t, numeric.Add, key, binaryHandler((*big.Rat).Add)); err != nil {
		return err
	}
	if err := uarray.RegisterIn(t, numeric.Mul, key, binaryHandler((*big.Rat).Mul)); err != nil {
		return err
	}
	return uarray.RegisterIn(t, numeric.Neg, key, uarray.HandlerFunc(func(b *uarray.Box) uarray.Result {
		args, _ := uarray.CallArgs(b)
		return uarray.Accept(b.With(new(big.Rat).Neg(args[0].(*big.Rat))))
	}))
}

// parseLiteral declines literals big.Rat cannot represent, such as "NaN",
// so that another backend may take them.
func parseLiteral(_ context.Context, b *uarray.Box) (uarray.Result, error) {
	l, ok := b.Value.(numeric.Literal)
	if !ok {
		return uarray.Decline(), nil
	}
	r, ok := new(big.Rat).SetString(string(l))
	if !ok {
		return uarray.Decline(), nil
	}
	return uarray.Accept(b.With(r)), nil
}

func binaryHandler(f func(z, x, y *big.Rat) *big.Rat) uarray.Handler {
	return uarray.HandlerFunc(func(b *uarray.Box) uarray.Result {
		args, _ := uarray.CallArgs(b)
		return uarray.Accept(b.With(f(new(big.Rat), args[0].(*big.Rat), args[1].(*big.Rat))))
	})
}
