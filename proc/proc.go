// Package proc runs the external programs (renderer and video encoder) that
// the frame sequencer delegates to.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
)

// Only the tail of a failing command's stderr is kept for error reporting.
const maxStderrBytes = 4096

// A failed command invocation.
type ExitError struct {
	// The command line that was executed.
	Args []string

	// Exit code reported by the process; -1 if it never ran.
	Code int

	// Trailing output written to stderr.
	Stderr string

	Err error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%q exited with status %d", strings.Join(e.Args, " "), e.Code)
	if e.Code == -1 {
		msg = fmt.Sprintf("%q could not be started: %v", strings.Join(e.Args, " "), e.Err)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Ran reports whether the process was started (as opposed to not being found
// or not being executable).
func (e *ExitError) Ran() bool {
	return e.Code != -1
}

// Split a command template using shell word rules and substitute every
// {name} placeholder with the matching value from vars. Substitution happens
// after splitting so values containing spaces stay a single argument.
func Expand(template string, vars map[string]string) ([]string, error) {
	args, err := shellwords.Parse(template)
	if err != nil {
		return nil, fmt.Errorf("proc: invalid command template %q: %w", template, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("proc: empty command template")
	}

	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	replacer := strings.NewReplacer(pairs...)
	for i, arg := range args {
		args[i] = replacer.Replace(arg)
	}

	return args, nil
}

// Run the command described by args and wait for it to complete. Stdout is
// discarded unless a writer is supplied via opts. A non-nil error is always
// an *ExitError unless the context was cancelled, in which case the context
// error is returned.
func Run(ctx context.Context, args []string, opts ...Option) error {
	if len(args) == 0 {
		return &ExitError{Code: -1, Err: errors.New("empty command")}
	}

	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = cfg.dir
	cmd.Stdout = cfg.stdout

	var stderr tailBuffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	exitErr := &ExitError{
		Args:   args,
		Code:   -1,
		Stderr: strings.TrimSpace(stderr.String()),
		Err:    err,
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		exitErr.Code = ee.ExitCode()
	}
	return exitErr
}

// Optional settings for Run.
type Option func(*runConfig)

type runConfig struct {
	dir    string
	stdout io.Writer
}

// Run the command inside dir.
func InDir(dir string) Option {
	return func(c *runConfig) {
		c.dir = dir
	}
}

// Copy the command's stdout to w.
func WithStdout(w io.Writer) Option {
	return func(c *runConfig) {
		c.stdout = w
	}
}

// A writer that only retains the last maxStderrBytes bytes written to it.
type tailBuffer struct {
	buf bytes.Buffer
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	t.buf.Write(p)
	if extra := t.buf.Len() - maxStderrBytes; extra > 0 {
		t.buf.Next(extra)
	}
	return n, nil
}

func (t *tailBuffer) String() string {
	return t.buf.String()
}
