// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package numeric_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/uarray"
	"code.hybscloud.com/uarray/internal/backend/floatbackend"
	"code.hybscloud.com/uarray/internal/backend/ratbackend"
	"code.hybscloud.com/uarray/internal/numeric"
)

// under returns a context with a table holding the given installers, in
// order.
func under(t *testing.T, installs ...func(*uarray.Table) error) context.Context {
	t.Helper()
	tbl := uarray.NewTable()
	for _, in := range installs {
		require.NoError(t, in(tbl))
	}
	ctx, s := uarray.Enter(context.Background(), tbl)
	t.Cleanup(func() { s.TryRelease() })
	return ctx
}

func ratString(t *testing.T, v any) string {
	t.Helper()
	r, ok := v.(*big.Rat)
	require.Truef(t, ok, "got %T, want *big.Rat", v)
	return r.RatString()
}

func TestEvalFloat(t *testing.T) {
	ctx := under(t, floatbackend.Install)
	cases := []struct {
		src  string
		want float64
	}{
		{"2.5", 2.5},
		{"(add 1 2)", 3},
		{"(add 1 (mul 2 3))", 7},
		{"(neg (sub 1 4))", 3},
		{"(sum 1 2 3 4)", 10},
		{"(sum 5)", 5},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			v, err := numeric.Eval(ctx, tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
		})
	}
}

func TestEvalRatUsesDefaults(t *testing.T) {
	ctx := under(t, ratbackend.Install)
	cases := []struct {
		src  string
		want string
	}{
		{"1/3", "1/3"},
		{"(add 1/3 1/6)", "1/2"},
		{"(mul 2/3 3/4)", "1/2"},
		// sub and sum have no rat handlers.
		{"(sub 1/2 1/3)", "1/6"},
		{"(sum 1 2 3)", "6"},
		{"(sum 1/4)", "1/4"},
		{"(sub (sum 1 1) (neg 1))", "3"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			v, err := numeric.Eval(ctx, tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ratString(t, v))
		})
	}
}

func TestEvalBackendPrecedence(t *testing.T) {
	// rat installed last: every rational literal is taken by rat.
	ctx := under(t, floatbackend.Install, ratbackend.Install)
	v, err := numeric.Eval(ctx, "(add 1/3 1)")
	require.NoError(t, err)
	assert.Equal(t, "4/3", ratString(t, v))

	// float installed last: "1" becomes a float, "1/3" falls through to rat
	// and the mixed call stays unresolved.
	ctx = under(t, ratbackend.Install, floatbackend.Install)
	_, err = numeric.Eval(ctx, "(add 1/3 1)")
	assert.ErrorIs(t, err, uarray.ErrUnresolved)

	v, err = numeric.Eval(ctx, "(add 1 2)")
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestEvalWithoutBackend(t *testing.T) {
	_, err := numeric.Eval(context.Background(), "(add 1 2)")
	assert.ErrorIs(t, err, uarray.ErrUnresolved)

	_, err = numeric.Eval(context.Background(), "1")
	assert.ErrorIs(t, err, uarray.ErrUnresolved)
}

func TestEvalDoesNotShareState(t *testing.T) {
	ctx := under(t, floatbackend.Install)
	expr, err := numeric.Parse("(add 1 2)")
	require.NoError(t, err)

	call := expr.Value.(uarray.Call)
	v, err := call.Op.Resolve(ctx, expr, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
	assert.Equal(t, numeric.Literal("1"), call.Args[0].Value)
}

func TestLookupAndNames(t *testing.T) {
	assert.Equal(t, []string{"add", "mul", "neg", "sub", "sum"}, numeric.Names())
	op, ok := numeric.Lookup("sub")
	require.True(t, ok)
	assert.Same(t, numeric.Sub, op)
	assert.True(t, op.HasDefault())
	_, ok = numeric.Lookup("pow")
	assert.False(t, ok)
}
