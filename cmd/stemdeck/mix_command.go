// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ik5/stemdeck"
	"github.com/ik5/stemdeck/formats/wav"
)

func newMixCommand(ctx *commandContext) *cobra.Command {
	var selectFlag string
	var outPath string
	var monoRate int

	cmd := &cobra.Command{
		Use:   "mix <base>",
		Short: "Render a gain selection of stems to a WAV file",
		Long: `Render a gain selection of stems to a WAV file.

--select lists the stems to include with their gain in dB, for example
"vocals=0,bass=-6". A stem that is not listed is left out; "drums=off"
drops a stem explicitly. Without --select every stem is mixed at 0 dB.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			set, err := ctx.registerStems(args[0])
			if err != nil {
				return err
			}
			sel, err := parseSelection(selectFlag, set)
			if err != nil {
				return err
			}

			target := outPath
			if target == "" {
				target = set.BaseName + "-mix.wav"
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			f, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}
			defer func() {
				err = errors.Join(err, f.Close())
				if err != nil {
					_ = os.Remove(target)
				}
			}()

			if monoRate > 0 {
				pcm16, rate, err := stemdeck.MixToMono16(cmd.Context(), set, sel, monoRate)
				if err != nil {
					return err
				}
				if err := wav.WriteWAV16(f, rate, pcm16); err != nil {
					return fmt.Errorf("write mix: %w", err)
				}
			} else if err := stemdeck.MixToWAV(cmd.Context(), set, sel, f); err != nil {
				return err
			}

			ctx.log().Info("mix written",
				zap.String("path", target),
				zap.Stringer("selection", sel),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", target, sel)
			return nil
		},
	}

	cmd.Flags().StringVarP(&selectFlag, "select", "s", "", "Stems and gains, e.g. vocals=0,bass=-6")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output WAV path (default <base>-mix.wav)")
	cmd.Flags().IntVar(&monoRate, "mono-rate", 0, "Resample to this rate and fold to mono")
	return cmd
}
