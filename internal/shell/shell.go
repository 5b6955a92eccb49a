// Package shell runs commands with elevated privileges.
package shell

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultWrapper = "su"
	DefaultTimeout = 10 * time.Second
)

// DefaultWrapperArgs make su treat the command as a single shell string.
var DefaultWrapperArgs = []string{"-c"}

// Config selects the privilege wrapper. The command string is passed as the
// last argument after WrapperArgs, so sudo needs ["-n", "sh", "-c"].
// An empty Wrapper runs the command through "sh -c" unprivileged.
type Config struct {
	Wrapper     string
	WrapperArgs []string
	Timeout     time.Duration
}

// Executor runs shell command strings through the configured wrapper.
type Executor struct {
	wrapper string
	args    []string
	timeout time.Duration
}

// New creates an executor.
func New(cfg Config) *Executor {
	e := &Executor{
		wrapper: cfg.Wrapper,
		args:    append([]string(nil), cfg.WrapperArgs...),
		timeout: cfg.Timeout,
	}
	if e.wrapper == "" {
		e.wrapper = "sh"
		e.args = []string{"-c"}
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	return e
}

// TopCommand builds the batch-mode top invocation.
func TopCommand(iterations int) string {
	if iterations < 1 {
		iterations = 1
	}
	return "top -b -n " + strconv.Itoa(iterations)
}

// Argv returns the program and arguments used to run command.
func (e *Executor) Argv(command string) (string, []string) {
	args := make([]string, 0, len(e.args)+1)
	args = append(args, e.args...)
	args = append(args, command)
	return e.wrapper, args
}

// Run executes command and returns its standard output. A non-zero exit
// status is an error that carries the command's standard error.
func (e *Executor) Run(ctx context.Context, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	name, args := e.Argv(command)
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// children of a killed wrapper may hold the pipes open
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.Wrapf(ctx.Err(), "%s %s timed out after %s", name, command, e.timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.Wrapf(err, "failed to run %s %s: %s", name, command, msg)
		}
		return "", errors.Wrapf(err, "failed to run %s %s", name, command)
	}
	return stdout.String(), nil
}

// Top captures iterations rounds of top output.
func (e *Executor) Top(ctx context.Context, iterations int) (string, error) {
	return e.Run(ctx, TopCommand(iterations))
}

// RootAvailable reports whether commands run through the wrapper get uid 0.
func (e *Executor) RootAvailable(ctx context.Context) bool {
	out, err := e.Run(ctx, "id -u")
	return err == nil && strings.TrimSpace(out) == "0"
}
