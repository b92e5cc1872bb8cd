// Package tool runs the external command-line converters fspdf relies on.
package tool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"fspdf/internal/log"
)

// Error reports a failed external command together with its stderr.
type Error struct {
	Name   string
	Args   []string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Name, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\nStderr: " + s
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Runner executes a command to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// Exec runs commands on the host. Dir, when set, is the working directory.
type Exec struct {
	Dir string
}

// Run executes name with args and returns an *Error on failure.
func (x Exec) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = x.Dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.Trace.Printf("exec %s %s", name, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if execErr, ok := err.(*exec.Error); ok {
			return &Error{Name: name, Args: args, Err: fmt.Errorf("%w (ensure %q is installed)", execErr, name)}
		}
		return &Error{Name: name, Args: args, Stderr: stderr.String(), Err: err}
	}
	return nil
}
