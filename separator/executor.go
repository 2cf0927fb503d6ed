// SPDX-License-Identifier: EPL-2.0

package separator

import (
	"context"
	"os/exec"
)

// CommandExecutor abstracts the creation of commands
type CommandExecutor interface {
	// Command creates a new command instance bound to ctx
	Command(ctx context.Context, name string, args ...string) Commander
}

// Commander abstracts the exec.Cmd functionality
type Commander interface {
	// CombinedOutput runs the command and returns stdout and stderr together
	CombinedOutput() ([]byte, error)
}

// DefaultCommandExecutor uses the real exec.CommandContext
type DefaultCommandExecutor struct{}

// Command creates a real exec.Cmd
func (e *DefaultCommandExecutor) Command(ctx context.Context, name string, args ...string) Commander {
	return &DefaultCommander{
		cmd: exec.CommandContext(ctx, name, args...),
	}
}

// DefaultCommander wraps a real exec.Cmd
type DefaultCommander struct {
	cmd *exec.Cmd
}

func (c *DefaultCommander) CombinedOutput() ([]byte, error) {
	return c.cmd.CombinedOutput()
}

// DefaultExecutor is the standard command executor
var DefaultExecutor CommandExecutor = &DefaultCommandExecutor{}
