// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	_ "github.com/ik5/stemdeck/device/miniaudio"
	_ "github.com/ik5/stemdeck/device/pulse"
	_ "github.com/ik5/stemdeck/device/speaker"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
