// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"go.eksjob.dev/internal/here"
	"go.eksjob.dev/internal/plog"
	"go.eksjob.dev/internal/runerror"
)

func newRootCommand(deps runDeps) *cobra.Command {
	rootCmd := newRunCommand(deps)
	rootCmd.Use = "eksjob"
	rootCmd.Short = "Run a one-off Job on an Amazon EKS cluster and print its output"
	rootCmd.Long = here.Doc(`
		eksjob authenticates to an Amazon EKS cluster with the ambient AWS credentials,
		submits a single batch/v1 Job, waits for it to complete and prints the log of its pod.

		Running eksjob without a subcommand is the same as running "eksjob run".
	`)

	rootCmd.AddCommand(newRunCommand(deps))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the eksjob CLI and returns the process exit code. This is called by main.main().
func Execute(ctx context.Context) int {
	flush := plog.Setup()
	defer flush()

	err := newRootCommand(runRealDeps()).ExecuteContext(ctx)
	return runerror.ExitCode(err)
}
