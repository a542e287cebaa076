// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.eksjob.dev/internal/config/jobconfig"
	"go.eksjob.dev/internal/here"
	"go.eksjob.dev/internal/plog"
	"go.eksjob.dev/internal/runner"
)

type runDeps struct {
	getenv     func(key string) string
	loadConfig func(path string) (*jobconfig.Config, error)
	setLogging func(spec plog.LogSpec) error
	run        func(ctx context.Context, cfg *jobconfig.Config, deps runner.Deps, out io.Writer) (*runner.Result, error)
}

func runRealDeps() runDeps {
	return runDeps{
		getenv:     os.Getenv,
		loadConfig: jobconfig.Load,
		setLogging: plog.ValidateAndSetLogLevelAndFormatGlobally,
		run:        runner.Run,
	}
}

type runFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func (r *runFlags) addTo(f *pflag.FlagSet, getenv func(key string) string) {
	f.StringVar(&r.configPath, "config", getenv("EKSJOB_CONFIG"), "Path to a YAML config file (default: $EKSJOB_CONFIG, or built-in defaults when unset)")
	f.StringVar(&r.logLevel, "log-level", "", "Log level, one of info, debug, trace or all (default: the config file's log.level, i.e. warnings only)")
	f.StringVar(&r.logFormat, "log-format", "", "Log format, one of cli, json or text (default: the config file's log.format, i.e. cli)")
}

func newRunCommand(deps runDeps) *cobra.Command {
	cmd := &cobra.Command{
		Args:  cobra.NoArgs, // do not accept positional arguments for this command
		Use:   "run",
		Short: "Submit the Job, wait for it to complete and print its output",
		Long: here.Doc(`
			Submit the Job, wait for it to complete and print its output.

			Without --config the built-in defaults are used: cluster "eksjob" in region
			us-east-1, namespace "default", and a python:3.9 container that prints 5 + 12.
		`),
		SilenceUsage: true, // do not print usage message when commands fail
	}
	flags := &runFlags{}
	flags.addTo(cmd.Flags(), deps.getenv)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runRun(cmd.Context(), cmd.OutOrStdout(), deps, flags)
	}

	return cmd
}

func runRun(ctx context.Context, out io.Writer, deps runDeps, flags *runFlags) error {
	cfg, err := deps.loadConfig(flags.configPath)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	if flags.logLevel != "" {
		cfg.Log.Level = plog.LogLevel(flags.logLevel)
	}
	if flags.logFormat != "" {
		cfg.Log.Format = plog.LogFormat(flags.logFormat)
	}
	if err := deps.setLogging(cfg.Log); err != nil {
		return fmt.Errorf("could not configure logging: %w", err)
	}

	plog.Debug("loaded config",
		"configPath", flags.configPath,
		"region", cfg.Region,
		"cluster", cfg.ClusterName,
		"namespace", cfg.Namespace,
	)

	_, err = deps.run(ctx, cfg, runner.Deps{}, out)
	return err
}
