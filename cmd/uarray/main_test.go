// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"code.hybscloud.com/uarray"
	"code.hybscloud.com/uarray/internal/backend"
	"code.hybscloud.com/uarray/internal/telemetry"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestEvalAll(t *testing.T) {
	reg := newRegistry()
	got, err := evalAll(context.Background(), reg, []string{"float"}, 2,
		[]string{"(add 1 2)", "(mul 1.5 2)", "(sum 1 2 3)", "(sub 1 4)"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "3", "6", "-3"}, got)

	got, err = evalAll(context.Background(), reg, []string{"float", "rat"}, 1,
		[]string{"(add 1/3 1/6)", "(sub 1 1/3)"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1/2", "2/3"}, got)
}

func TestEvalAllErrors(t *testing.T) {
	reg := newRegistry()
	_, err := evalAll(context.Background(), reg, []string{"nope"}, 1, []string{"1"})
	assert.ErrorIs(t, err, backend.ErrUnknown)

	_, err = evalAll(context.Background(), reg, []string{"float"}, 1, []string{"(add 1/3 1)"})
	require.ErrorIs(t, err, uarray.ErrUnresolved)
	assert.True(t, strings.HasPrefix(err.Error(), "(add 1/3 1): "))
}

func TestEvalAllLeavesNoScope(t *testing.T) {
	ctx := context.Background()
	_, err := evalAll(ctx, newRegistry(), []string{"float"}, 4, []string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Same(t, uarray.Default(), uarray.Current(ctx))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0.5", format(0.5))
	assert.Equal(t, "1/3", format(big.NewRat(1, 3)))
	assert.Equal(t, "7", format(int64(7)))
}

func TestListBackends(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, listBackends(&buf, newRegistry(), []string{"rat"}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "  float"))
	assert.True(t, strings.HasPrefix(lines[1], "* rat"))
}

func TestRootEval(t *testing.T) {
	out, err := execute(t, "eval", "--backend", "rat", "(add 1/3 1/6)", "(neg 2)")
	require.NoError(t, err)
	assert.Equal(t, "(add 1/3 1/6) = 1/2\n(neg 2) = -2\n", out)
}

func TestRootEvalTrace(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	out, err := execute(t, "eval", "--trace", "(add 1 2)")
	require.NoError(t, err)
	assert.Contains(t, out, "(add 1 2) = 3\n")
	assert.Contains(t, out, "uarray.Replace steps=")
}

func TestShutdownTracingReportsError(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var err error
	shutdownTracing(ctx, telemetry.Setup(true), &err)
	assert.ErrorIs(t, err, context.Canceled)

	// An earlier error is kept.
	first := errors.New("eval failed")
	err = first
	shutdownTracing(ctx, telemetry.Setup(true), &err)
	assert.Same(t, first, err)

	err = nil
	shutdownTracing(context.Background(), telemetry.Setup(false), &err)
	assert.NoError(t, err)
}

func TestRootEvalConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uarray.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backends: [rat]\nworkers: 1\n"), 0o600))

	out, err := execute(t, "--config", path, "eval", "(mul 1/2 1/2)")
	require.NoError(t, err)
	assert.Equal(t, "(mul 1/2 1/2) = 1/4\n", out)
}

func TestRootEvalFails(t *testing.T) {
	_, err := execute(t, "eval", "(pow 1 2)")
	assert.Error(t, err)

	_, err = execute(t, "eval")
	assert.Error(t, err)
}

func TestRootBackendsAndOps(t *testing.T) {
	out, err := execute(t, "backends")
	require.NoError(t, err)
	assert.Contains(t, out, "* float")
	assert.Contains(t, out, "  rat")

	out, err = execute(t, "ops")
	require.NoError(t, err)
	assert.Equal(t, "add/2\nmul/2\nneg/1\nsub/2\nsum/1\n", out)
}
