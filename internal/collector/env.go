package collector

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/nao1215/llmctx/internal/shell"
)

// Env is the view of the host a collector works against.
type Env struct {
	// Runner executes external commands.
	Runner shell.Runner

	// GOOS is the operating system name as spelled by runtime.GOOS.
	GOOS string

	// GOARCH is the architecture as spelled by runtime.GOARCH.
	// It is the last resort when the machine type cannot be queried.
	GOARCH string

	// ReadFile reads files such as /proc/cpuinfo.
	ReadFile func(name string) ([]byte, error)

	// Getenv reads environment variables such as PROCESSOR_ARCHITECTURE.
	Getenv func(key string) string

	// Logger receives debug details about failed probes.
	Logger *slog.Logger
}

// NewEnv returns an Env for the running host.
func NewEnv(runner shell.Runner, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	return &Env{
		Runner:   runner,
		GOOS:     runtime.GOOS,
		GOARCH:   runtime.GOARCH,
		ReadFile: os.ReadFile,
		Getenv:   os.Getenv,
		Logger:   logger,
	}
}

// isWindows reports whether the env describes a Windows host.
func (e *Env) isWindows() bool {
	return e.GOOS == "windows"
}

// logger returns e.Logger or the default logger.
func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// readFile reads name through e.ReadFile, falling back to os.ReadFile.
func (e *Env) readFile(name string) ([]byte, error) {
	if e.ReadFile == nil {
		return os.ReadFile(name)
	}
	return e.ReadFile(name)
}

// getenv reads key through e.Getenv, falling back to os.Getenv.
func (e *Env) getenv(key string) string {
	if e.Getenv == nil {
		return os.Getenv(key)
	}
	return e.Getenv(key)
}
