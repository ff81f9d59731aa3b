package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/llmctx/internal/model"
)

// StepPython is the name of the Python collector step.
const StepPython = "python_details"

// pythonProbe prints version, executable and venv flag on three lines.
const pythonProbe = "import sys; print(sys.version.split(' ')[0]); print(sys.executable); print(sys.prefix != sys.base_prefix)"

// PythonCollector fills SystemInfo.Python from the interpreter on PATH.
type PythonCollector struct {
	env *Env
}

// NewPythonCollector creates a Python collector.
func NewPythonCollector(env *Env) *PythonCollector {
	return &PythonCollector{env: env}
}

// Name returns the step name.
func (c *PythonCollector) Name() string {
	return StepPython
}

// candidates lists interpreter names in lookup order.
// On Windows "python3" is often the store alias that only opens the store.
func (c *PythonCollector) candidates() []string {
	if c.env.isWindows() {
		return []string{"python", "py", "python3"}
	}
	return []string{"python3", "python"}
}

// Do locates an interpreter and records its details.
// Without an interpreter every field keeps its N/A placeholder.
func (c *PythonCollector) Do(ctx context.Context, info *model.SystemInfo) error {
	details := model.PythonDetails{
		Version:    model.NotAvailable,
		Executable: model.NotAvailable,
		PipFreeze:  model.NotAvailable,
	}
	defer func() { info.Python = details }()

	interpreter, err := c.find()
	if err != nil {
		c.env.logger().Debug("python interpreter not found", "error", err)
		return ctx.Err()
	}

	res, err := c.env.Runner.Run(ctx, interpreter, "-c", pythonProbe)
	if err != nil {
		c.env.logger().Debug("python probe failed", "interpreter", interpreter, "error", err)
		return ctx.Err()
	}
	version, executable, isVenv, err := parsePythonProbe(res.Stdout)
	if err != nil {
		c.env.logger().Debug("python probe output unparsable", "error", err)
		return ctx.Err()
	}
	details.Version = version
	details.Executable = executable
	details.IsVenv = isVenv

	res, err = c.env.Runner.Run(ctx, interpreter, "-m", "pip", "freeze")
	if err != nil {
		c.env.logger().Debug("pip freeze failed", "error", err)
		return ctx.Err()
	}
	details.PipFreeze = res.Stdout
	return ctx.Err()
}

func (c *PythonCollector) find() (string, error) {
	var lastErr error
	for _, name := range c.candidates() {
		if _, err := c.env.Runner.LookPath(name); err != nil {
			lastErr = err
			continue
		}
		return name, nil
	}
	return "", lastErr
}

// parsePythonProbe splits the three probe lines.
func parsePythonProbe(out string) (version, executable string, isVenv bool, err error) {
	lines := nonEmptyLines(out)
	if len(lines) < 3 {
		return "", "", false, fmt.Errorf("python probe: %w", errNoValue)
	}
	return lines[0], lines[1], strings.EqualFold(lines[2], "true"), nil
}
