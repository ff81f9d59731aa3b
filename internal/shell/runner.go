package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
)

// DefaultTimeout bounds a single command when no other timeout is given.
const DefaultTimeout = 30 * time.Second

// waitDelay is how long Run waits for output pipes to close after the process is killed.
const waitDelay = time.Second

// ErrTimeout is returned when a command is killed because it ran past its timeout.
var ErrTimeout = errors.New("command timed out")

// Result holds the decoded output of a finished command.
type Result struct {
	// Stdout is the decoded standard output.
	Stdout string

	// Combined is stdout followed by stderr, decoded.
	Combined string

	// ExitCode is the process exit code, or -1 when the process did not start.
	ExitCode int
}

// Runner executes external commands.
type Runner interface {
	// Run executes name with args and returns its output.
	// A non-zero exit status is reported as an error together with the output collected so far.
	Run(ctx context.Context, name string, args ...string) (Result, error)

	// LookPath reports the full path of an executable, or an error when it is not installed.
	LookPath(name string) (string, error)
}

// ExecRunner runs commands on the host with os/exec.
type ExecRunner struct {
	// Timeout bounds each command. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewExecRunner returns an ExecRunner with the given per-command timeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

// Run executes the command with a timeout derived from ctx.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, name, args...) //nolint:gosec // commands are fixed by the collectors
	// Children of a killed process may hold the output pipes open.
	cmd.WaitDelay = waitDelay

	var stdout bytes.Buffer
	combined := &lockedBuffer{}
	cmd.Stdout = &teeWriter{primary: &stdout, combined: combined}
	cmd.Stderr = combined

	err := cmd.Run()
	result := Result{
		Stdout:   Decode(stdout.Bytes()),
		Combined: Decode(combined.Bytes()),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("%s: %w after %s", name, ErrTimeout, timeout)
		}
		return result, fmt.Errorf("%s: %w", name, err)
	}
	return result, nil
}

// LookPath wraps exec.LookPath.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// lockedBuffer is written from the stdout and stderr copy goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Bytes()
}

// teeWriter copies stdout into its own buffer and the combined stream.
type teeWriter struct {
	primary  *bytes.Buffer
	combined *lockedBuffer
}

func (t *teeWriter) Write(p []byte) (int, error) {
	t.primary.Write(p)
	return t.combined.Write(p)
}

// Decode converts raw command output into a string.
// Valid UTF-8 is returned unchanged; anything else is decoded as CP949
// and undecodable bytes are dropped.
func Decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	decoded, err := korean.EUCKR.NewDecoder().Bytes(b)
	if err != nil {
		return string(bytes.ToValidUTF8(b, nil))
	}
	return string(bytes.ReplaceAll(decoded, []byte("\uFFFD"), nil))
}
