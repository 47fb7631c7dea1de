// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"code.hybscloud.com/uarray"
	"code.hybscloud.com/uarray/internal/backend"
	"code.hybscloud.com/uarray/internal/numeric"
	"code.hybscloud.com/uarray/internal/telemetry"
)

func newEvalCmd() *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "eval [expr]...",
		Short: "Evaluate one or more expressions",
		Long: `Evaluates each expression under a scope holding the configured backends.
Expressions are evaluated concurrently; results are printed in argument order.

Example:
  uarray eval --backend float,rat "(add 1/3 1/6)" "(sum 1 2 3)"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			tr := telemetry.Setup(trace || cfg.Trace)
			defer shutdownTracing(context.Background(), tr, &err)

			ctx := uarray.WithLogger(cmd.Context(), logger)
			results, err := evalAll(ctx, newRegistry(), cfg.Backends, cfg.Workers, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, r := range results {
				fmt.Fprintf(out, "%s = %s\n", args[i], r)
			}
			return tr.Report(out)
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "print a span summary after evaluation")
	return cmd
}

// shutdownTracing stops tr and stores its error in *err unless an earlier
// error is already there.
func shutdownTracing(ctx context.Context, tr *telemetry.Tracing, err *error) {
	if serr := tr.Shutdown(ctx); serr != nil && *err == nil {
		*err = fmt.Errorf("shutdown tracing: %w", serr)
	}
}

// evalAll evaluates every expression with the named backends active.
// Each worker goroutine inherits the scope through ctx.
func evalAll(ctx context.Context, reg *backend.Registry, names []string, workers int, exprs []string) ([]string, error) {
	table, err := reg.Table(names...)
	if err != nil {
		return nil, err
	}
	results := make([]string, len(exprs))
	err = uarray.WithScope(ctx, table, func(ctx context.Context) error {
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, src := range exprs {
			g.Go(func() error {
				v, err := numeric.Eval(ctx, src)
				if err != nil {
					return fmt.Errorf("%s: %w", src, err)
				}
				results[i] = format(v)
				uarray.Logger(ctx).Debug("evaluated", zap.String("expr", src), zap.String("result", results[i]))
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func format(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case *big.Rat:
		return x.RatString()
	}
	return fmt.Sprint(v)
}

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List available backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listBackends(cmd.OutOrStdout(), newRegistry(), cfg.Backends)
		},
	}
}

func listBackends(w io.Writer, reg *backend.Registry, active []string) error {
	on := make(map[string]bool, len(active))
	for _, n := range active {
		on[n] = true
	}
	for _, n := range reg.Names() {
		b, _ := reg.Get(n)
		mark := " "
		if on[n] {
			mark = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %-6s %s\n", mark, n, b.Description); err != nil {
			return err
		}
	}
	return nil
}

func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, n := range numeric.Names() {
				op, _ := numeric.Lookup(n)
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%d\n", n, op.Arity())
			}
			return nil
		},
	}
}
