// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"go.eksjob.dev/internal/pversion"
)

func newVersionCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := pversion.Get()
			switch output {
			case "":
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%#v\n", info)
			case "json":
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
			case "yaml":
				data, err := yaml.Marshal(info)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), string(data))
			default:
				return fmt.Errorf("'%s' is not a valid output format, must be one of json or yaml", output)
			}
			return nil
		},
		Args:         cobra.NoArgs, // do not accept positional arguments for this command
		Use:          "version",
		Short:        "Print the version of this eksjob CLI",
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "one of 'yaml' or 'json'")
	return cmd
}
