// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ik5/stemdeck/stems"
)

func newStemsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stems <base>",
		Short: "List the stems separated from a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := ctx.registerStems(args[0])
			if err != nil {
				return err
			}
			return writeStemTable(cmd.OutOrStdout(), set)
		},
	}
}

func writeStemTable(w io.Writer, set *stems.Set) error {
	rows := make([][]string, 0, len(set.Stems))
	for _, st := range set.Stems {
		size := "-"
		if info, err := os.Stat(st.Path); err == nil {
			size = formatBytes(info.Size())
		}
		rows = append(rows, []string{
			stemLabel(string(st.Name)),
			st.Path,
			strconv.Itoa(set.Format.SampleRate),
			strconv.Itoa(set.Format.Channels),
			size,
		})
	}

	table := renderTable(
		[]string{"Stem", "File", "Rate", "Channels", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
	_, err := fmt.Fprintln(w, table)
	return err
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
