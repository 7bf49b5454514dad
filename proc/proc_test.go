package proc

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	args, err := Expand(`mitsuba -m scalar_rgb -o {output} "{job}"`, map[string]string{
		"output": "/tmp/out dir/frame.npy",
		"job":    "/tmp/job.xml",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mitsuba", "-m", "scalar_rgb", "-o", "/tmp/out dir/frame.npy", "/tmp/job.xml"}, args)

	// Unknown placeholders are left untouched
	args, err = Expand("render {unknown}", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"render", "{unknown}"}, args)

	_, err = Expand("   ", nil)
	assert.Error(t, err)

	_, err = Expand(`render "unterminated`, nil)
	assert.Error(t, err)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestRunSuccess(t *testing.T) {
	script := writeScript(t, `echo "hello $1"`)

	var stdout bytes.Buffer
	err := Run(context.Background(), []string{script, "world"}, WithStdout(&stdout))
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", stdout.String())
}

func TestRunInDir(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, `touch marker`)

	require.NoError(t, Run(context.Background(), []string{script}, InDir(dir)))
	assert.FileExists(t, filepath.Join(dir, "marker"))
}

func TestRunExitStatus(t *testing.T) {
	script := writeScript(t, `echo "something broke" >&2; exit 3`)

	err := Run(context.Background(), []string{script})
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.True(t, exitErr.Ran())
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "something broke", exitErr.Stderr)
	assert.Contains(t, err.Error(), "exited with status 3")
}

func TestRunNotFound(t *testing.T) {
	err := Run(context.Background(), []string{filepath.Join(t.TempDir(), "no-such-binary")})
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.False(t, exitErr.Ran())
	assert.Contains(t, err.Error(), "could not be started")
}

func TestRunCancelled(t *testing.T) {
	script := writeScript(t, `sleep 5`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, []string{script})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStderrTail(t *testing.T) {
	var tb tailBuffer
	tb.Write([]byte(strings.Repeat("a", maxStderrBytes)))
	tb.Write([]byte("tail"))

	out := tb.String()
	assert.Len(t, out, maxStderrBytes)
	assert.True(t, strings.HasSuffix(out, "tail"))
}
