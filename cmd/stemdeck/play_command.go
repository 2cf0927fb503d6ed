// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const nullDeviceName = "null"

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var selectFlag string
	var deviceFlag string

	cmd := &cobra.Command{
		Use:   "play <base>",
		Short: "Mix a gain selection of stems and play it",
		Long: `Mix a gain selection of stems and play it with a progress display.

--select takes the same syntax as the mix command. Ctrl-C stops playback
and removes the temporary mix file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := ctx.newEngine(deviceFlag)
			if err != nil {
				return err
			}
			defer eng.Close()

			set, err := eng.Open(args[0])
			if err != nil {
				return err
			}
			sel, err := parseSelection(selectFlag, set)
			if err != nil {
				return err
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := eng.SetSelection(sigCtx, sel); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			progress := newProgressReporter(out, set.BaseName)
			done := make(chan struct{})
			var once sync.Once

			eng.OnProgress(progress.Update)
			eng.OnPlaybackEnded(func() {
				once.Do(func() { close(done) })
			})

			if err := eng.Play(sigCtx); err != nil {
				return err
			}
			ctx.log().Debug("playing",
				zap.String("base", set.BaseName),
				zap.Stringer("selection", sel),
				zap.Duration("duration", eng.Duration()),
			)

			select {
			case <-done:
				progress.Finish()
				fmt.Fprintln(out, "Finished")
			case <-sigCtx.Done():
				if err := eng.Stop(); err != nil {
					return err
				}
				progress.Finish()
				fmt.Fprintln(out, "Stopped")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&selectFlag, "select", "s", "", "Stems and gains, e.g. vocals=0,bass=-6")
	cmd.Flags().StringVarP(&deviceFlag, "device", "d", "", "Playback device (default playback.device)")
	return cmd
}
