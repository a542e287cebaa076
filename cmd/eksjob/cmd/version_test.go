// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"go.eksjob.dev/internal/here"
)

var (
	knownGoodHelpRegexpForVersion = here.Doc(`
		Print the version of this eksjob CLI

		Usage:
		  version \[flags\]

		Flags:
		  -h, --help            help for version
		  -o, --output string   one of 'yaml' or 'json'
		`)

	emptyVersionRegexp = `version.Info{Major:"\d+", Minor:"\d+", GitVersion:".*", GitCommit:".*", GitTreeState:".*", BuildDate:".*", GoVersion:".*", Compiler:".*", Platform:".*/.*"}`
)

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name             string
		args             []string
		wantError        bool
		wantStdoutRegexp string
		wantStderr       string
	}{
		{
			name:             "no flags",
			args:             []string{},
			wantStdoutRegexp: emptyVersionRegexp + "\n",
		},
		{
			name:             "json output",
			args:             []string{"--output", "json"},
			wantStdoutRegexp: `(?s)^\{\n  "major": "\d+",\n  "minor": "\d+",\n  "gitVersion": ".*",\n.*  "platform": ".*/.*"\n\}\n$`,
		},
		{
			name:             "yaml output",
			args:             []string{"-o", "yaml"},
			wantStdoutRegexp: `(?s)^buildDate: .*gitVersion: .*major: "\d+"\n.*platform: .*/.*\n$`,
		},
		{
			name:       "bad output",
			args:       []string{"-o", "toml"},
			wantError:  true,
			wantStderr: "Error: 'toml' is not a valid output format, must be one of json or yaml\n",
		},
		{
			name:             "help flag passed",
			args:             []string{"--help"},
			wantStdoutRegexp: knownGoodHelpRegexpForVersion,
		},
		{
			name:       "arg passed",
			args:       []string{"tuna"},
			wantError:  true,
			wantStderr: `Error: unknown command "tuna" for "version"` + "\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd := newVersionCommand()
			require.NotNil(t, cmd)

			var stdout, stderr bytes.Buffer
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			if tt.wantError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Regexp(t, tt.wantStdoutRegexp, stdout.String(), "unexpected stdout")
			require.Equal(t, tt.wantStderr, stderr.String(), "unexpected stderr")
		})
	}
}
