// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package numeric_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/uarray"
	"code.hybscloud.com/uarray/internal/numeric"
)

func TestParse(t *testing.T) {
	b, err := numeric.Parse(" (add 1\t(neg 2.5)) ")
	require.NoError(t, err)

	call, ok := b.Value.(uarray.Call)
	require.True(t, ok)
	assert.Same(t, numeric.Add, call.Op)
	require.Len(t, call.Args, 2)
	assert.Equal(t, numeric.Literal("1"), call.Args[0].Value)

	inner, ok := call.Args[1].Value.(uarray.Call)
	require.True(t, ok)
	assert.Same(t, numeric.Neg, inner.Op)
	assert.Equal(t, numeric.Literal("2.5"), inner.Args[0].Value)
	assert.False(t, uarray.IsConcreteTree(b.Value))
}

func TestParseAtom(t *testing.T) {
	b, err := numeric.Parse("1/3")
	require.NoError(t, err)
	assert.Equal(t, numeric.Literal("1/3"), b.Value)
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"",
		"   ",
		"(",
		")",
		"(add 1",
		"(pow 1 2)",
		"(add 1 2) 3",
		"(add 1 2))",
		"(() 1)",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := numeric.Parse(src)
			assert.ErrorIs(t, err, numeric.ErrSyntax)
		})
	}
}

func TestParseArity(t *testing.T) {
	_, err := numeric.Parse("(neg 1 2)")
	assert.ErrorIs(t, err, uarray.ErrArity)
	_, err = numeric.Parse("(sum)")
	assert.ErrorIs(t, err, uarray.ErrArity)
}
