// Package shell runs external commands as argument vectors. Nothing in this
// package ever goes through a shell, so arguments need no quoting and cannot
// be reinterpreted.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes external commands and captures their output.
type Runner interface {
	// Run executes name with args and returns the captured stdout and stderr.
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
	// RunInput is Run with stdin fed to the process.
	RunInput(ctx context.Context, stdin, name string, args ...string) (stdout, stderr string, err error)
}

// CommandError reports a command that could not start or exited non-zero.
// The argument vector is retained for callers but deliberately kept out of
// the message: arguments may carry credentials.
type CommandError struct {
	Name   string
	Args   []string
	Stdout string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %s: %v", e.Name, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}

	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExecRunner runs commands on the local host. Env entries are appended to
// the inherited environment of every command.
type ExecRunner struct {
	Env []string
}

var _ Runner = (*ExecRunner)(nil)

func (r *ExecRunner) Run(
	ctx context.Context,
	name string,
	args ...string,
) (string, string, error) {
	return r.run(ctx, "", name, args)
}

func (r *ExecRunner) RunInput(
	ctx context.Context,
	stdin, name string,
	args ...string,
) (string, string, error) {
	return r.run(ctx, stdin, name, args)
}

func (r *ExecRunner) run(
	ctx context.Context,
	stdin, name string,
	args []string,
) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), stderr.String(), &CommandError{
			Name:   name,
			Args:   args,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return stdout.String(), stderr.String(), nil
}
