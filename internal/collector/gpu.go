package collector

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nao1215/llmctx/internal/model"
)

// StepGPU is the name of the GPU collector step.
const StepGPU = "gpu_info"

// nvccReleasePattern matches the toolkit release in "nvcc --version" output,
// e.g. "Cuda compilation tools, release 12.4, V12.4.131".
var nvccReleasePattern = regexp.MustCompile(`release (\d+\.\d+)`)

// GPUCollector fills SystemInfo.GPU using nvidia-smi and nvcc.
type GPUCollector struct {
	env *Env
}

// NewGPUCollector creates a GPU collector.
func NewGPUCollector(env *Env) *GPUCollector {
	return &GPUCollector{env: env}
}

// Name returns the step name.
func (c *GPUCollector) Name() string {
	return StepGPU
}

// Do collects GPU names, memory and CUDA versions.
//
// When nvidia-smi fails both GPU and CUDADriverVersion are N/A.
// When nvcc fails CUDAToolkitVersion is N/A; when nvcc runs but prints no
// release the field is left empty and omitted from JSON.
func (c *GPUCollector) Do(ctx context.Context, info *model.SystemInfo) error {
	gpu := model.GPUInfo{
		GPU:               model.NotAvailable,
		CUDADriverVersion: model.NotAvailable,
	}

	if devices, driver, err := c.nvidiaSMI(ctx); err != nil {
		c.env.logger().Debug("nvidia-smi unavailable", "error", err)
	} else {
		if len(devices) > 0 {
			gpu.GPU = strings.Join(devices, ", ")
		}
		gpu.CUDADriverVersion = driver
	}

	res, err := c.env.Runner.Run(ctx, "nvcc", "--version")
	if err != nil {
		c.env.logger().Debug("nvcc unavailable", "error", err)
		gpu.CUDAToolkitVersion = model.NotAvailable
	} else if m := nvccReleasePattern.FindStringSubmatch(res.Stdout); m != nil {
		gpu.CUDAToolkitVersion = m[1]
	}

	info.GPU = gpu
	return ctx.Err()
}

func (c *GPUCollector) nvidiaSMI(ctx context.Context) ([]string, string, error) {
	res, err := c.env.Runner.Run(ctx, "nvidia-smi",
		"--query-gpu=name,memory.total", "--format=csv,noheader,nounits")
	if err != nil {
		return nil, "", err
	}
	devices, err := parseGPUList(res.Stdout)
	if err != nil {
		return nil, "", err
	}

	res, err = c.env.Runner.Run(ctx, "nvidia-smi",
		"--query-gpu=driver_version", "--format=csv,noheader")
	if err != nil {
		return nil, "", err
	}
	driver, err := firstLine(res.Stdout)
	if err != nil {
		return nil, "", fmt.Errorf("nvidia-smi driver_version: %w", err)
	}
	return devices, driver, nil
}

// parseGPUList parses "name, memory MiB" CSV rows into
// "<name> (<memory> GB)" entries.
func parseGPUList(out string) ([]string, error) {
	lines := nonEmptyLines(out)
	devices := make([]string, 0, len(lines))
	for _, line := range lines {
		idx := strings.LastIndex(line, ",")
		if idx < 0 {
			return nil, fmt.Errorf("nvidia-smi row %q: %w", line, errNoValue)
		}
		name := strings.TrimSpace(line[:idx])
		mib, err := strconv.ParseFloat(strings.TrimSpace(line[idx+1:]), 64)
		if err != nil {
			return nil, fmt.Errorf("nvidia-smi memory %q: %w", line, err)
		}
		gb := math.Round(mib/1024*100) / 100
		devices = append(devices, fmt.Sprintf("%s (%s GB)", name, FormatGB(gb)))
	}
	return devices, nil
}

// FormatGB prints a rounded size the way the document has always shown it:
// shortest representation, with ".0" kept for whole numbers ("24.0", "7.79").
func FormatGB(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
