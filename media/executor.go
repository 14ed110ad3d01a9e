package media

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// ExecResult holds the outcome of a single command invocation.
type ExecResult struct {
	Stdout []byte
	Stderr string
	Err    error
}

// Runner executes an external command.
type Runner func(ctx context.Context, name string, args ...string) ExecResult

// Exec runs name with args, capturing stdout and stderr.
func Exec(ctx context.Context, name string, args ...string) ExecResult {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return ExecResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.String(),
		Err:    err,
	}
}

// lastLine returns the last non-empty line of ffmpeg's stderr, which is
// where it states why it gave up.
func lastLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
