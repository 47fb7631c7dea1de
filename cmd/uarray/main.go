// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command uarray evaluates arithmetic expressions against selectable
// backends.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"code.hybscloud.com/uarray/internal/backend"
	"code.hybscloud.com/uarray/internal/backend/floatbackend"
	"code.hybscloud.com/uarray/internal/backend/ratbackend"
	"code.hybscloud.com/uarray/internal/config"
)

var (
	// Global flags
	configPath string
	debug      bool
	backends   []string

	cfg    config.Config
	logger *zap.Logger
)

func newRegistry() *backend.Registry {
	r := backend.NewRegistry()
	r.MustRegister(floatbackend.Backend())
	r.MustRegister(ratbackend.Backend())
	return r
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "uarray",
		Short: "Evaluate expressions through scoped backend dispatch",
		Long: `uarray evaluates prefix arithmetic expressions such as

  (add 1 (mul 2 3))

by rewriting them with the handlers of the configured backends. Backends
listed later take precedence over earlier ones.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("backend") {
				cfg.Backends = backends
			}
			lvl, err := cfg.Level()
			if err != nil {
				return err
			}
			zc := zap.NewProductionConfig()
			zc.Level = zap.NewAtomicLevelAt(lvl)
			if debug {
				zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err = zc.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log every rewrite")
	root.PersistentFlags().StringSliceVarP(&backends, "backend", "b", nil, "backends to activate, in precedence order (overrides config)")

	root.AddCommand(newEvalCmd(), newBackendsCmd(), newOpsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
