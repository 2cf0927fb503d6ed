// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ik5/stemdeck/stems"
)

func newSeparateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "separate <input>",
		Short: "Split a recording into stems with the configured separator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sep, err := ctx.newSeparator(cfg)
			if err != nil {
				return err
			}

			input := args[0]
			ctx.log().Info("separating",
				zap.String("input", input),
				zap.String("backend", sep.Name()),
				zap.String("output_dir", cfg.Stems.OutputDir),
			)
			if err := sep.Separate(cmd.Context(), input, cfg.Stems.OutputDir); err != nil {
				return err
			}

			set, err := ctx.registerStems(stems.BaseName(input))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Separated %s into %s\n", input, set.Dir)
			return writeStemTable(out, set)
		},
	}
}
