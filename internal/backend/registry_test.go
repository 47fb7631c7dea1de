// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/uarray"
	"code.hybscloud.com/uarray/internal/backend"
)

type sample struct{}

// constant returns a backend rewriting sample to v.
func constant(name string, v any) *backend.Backend {
	return &backend.Backend{
		Name: name,
		Install: func(t *uarray.Table) error {
			return t.Register(uarray.KeyFor[sample](), uarray.HandlerFunc(func(b *uarray.Box) uarray.Result {
				return uarray.Accept(b.With(v))
			}))
		},
	}
}

func TestRegistryRegister(t *testing.T) {
	r := backend.NewRegistry()
	require.NoError(t, r.Register(constant("b", 1)))
	require.NoError(t, r.Register(constant("a", 2)))

	err := r.Register(constant("a", 3))
	assert.ErrorIs(t, err, backend.ErrAlreadyRegistered)

	assert.Equal(t, []string{"a", "b"}, r.Names())
	b, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", b.Name)
	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Panics(t, func() { r.MustRegister(constant("b", 4)) })
}

func TestRegistryInvalid(t *testing.T) {
	r := backend.NewRegistry()
	assert.ErrorIs(t, r.Register(&backend.Backend{Install: constant("x", 0).Install}), backend.ErrInvalid)
	assert.ErrorIs(t, r.Register(&backend.Backend{Name: "x"}), backend.ErrInvalid)
	assert.Empty(t, r.Names())
}

func TestRegistryTablePrecedence(t *testing.T) {
	r := backend.NewRegistry()
	r.MustRegister(constant("first", "first"))
	r.MustRegister(constant("second", "second"))

	for _, tc := range []struct {
		order []string
		want  string
	}{
		{[]string{"first", "second"}, "second"},
		{[]string{"second", "first"}, "first"},
	} {
		tbl, err := r.Table(tc.order...)
		require.NoError(t, err)
		chain, ok := tbl.Lookup(uarray.KeyFor[sample]())
		require.True(t, ok)
		assert.Len(t, chain, 2)

		res, err := chain.Call(context.Background(), uarray.NewBox(sample{}))
		require.NoError(t, err)
		b, _ := res.Box()
		assert.Equal(t, tc.want, b.Value)
	}
}

func TestRegistryTableUnknown(t *testing.T) {
	r := backend.NewRegistry()
	_, err := r.Table("nope")
	assert.ErrorIs(t, err, backend.ErrUnknown)
}

func TestRegistryInstallError(t *testing.T) {
	boom := errors.New("boom")
	r := backend.NewRegistry()
	r.MustRegister(&backend.Backend{Name: "bad", Install: func(*uarray.Table) error { return boom }})

	_, err := r.Table("bad")
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, r.InstallInto(uarray.Default(), "bad"), boom)
}

func TestRegistryInstallIntoFrozen(t *testing.T) {
	r := backend.NewRegistry()
	r.MustRegister(constant("c", 0))
	assert.ErrorIs(t, r.InstallInto(uarray.Default(), "c"), uarray.ErrFrozenTable)
}
