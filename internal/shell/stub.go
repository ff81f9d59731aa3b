package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNotFound is returned by StubRunner for commands it has no response for.
var ErrNotFound = errors.New("executable file not found")

// StubResponse is the canned result of one command line.
type StubResponse struct {
	Result Result
	Err    error
}

// StubRunner is a Runner that answers from a fixed table.
// Keys are the command line joined with single spaces, e.g. "ip addr".
// It is meant for tests of code that shells out.
type StubRunner struct {
	mu        sync.Mutex
	responses map[string]StubResponse
	calls     []string
}

// NewStubRunner returns an empty StubRunner.
func NewStubRunner() *StubRunner {
	return &StubRunner{responses: make(map[string]StubResponse)}
}

// On registers a successful response for the command line.
func (s *StubRunner) On(cmdline, stdout string) *StubRunner {
	return s.OnResult(cmdline, Result{Stdout: stdout, Combined: stdout}, nil)
}

// OnError registers a failing response for the command line.
func (s *StubRunner) OnError(cmdline string, err error) *StubRunner {
	return s.OnResult(cmdline, Result{ExitCode: 1}, err)
}

// OnResult registers an arbitrary response for the command line.
func (s *StubRunner) OnResult(cmdline string, result Result, err error) *StubRunner {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[cmdline] = StubResponse{Result: result, Err: err}
	return s
}

// Run returns the registered response, or ErrNotFound.
func (s *StubRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, err
	}

	cmdline := strings.Join(append([]string{name}, args...), " ")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, cmdline)

	resp, ok := s.responses[cmdline]
	if !ok {
		return Result{ExitCode: -1}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return resp.Result, resp.Err
}

// LookPath succeeds when any registered command line starts with name.
func (s *StubRunner) LookPath(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cmdline := range s.responses {
		if cmdline == name || strings.HasPrefix(cmdline, name+" ") {
			return "/usr/bin/" + name, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

// Calls returns the command lines run so far, in order.
func (s *StubRunner) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}
