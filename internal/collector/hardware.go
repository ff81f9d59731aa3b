package collector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nao1215/llmctx/internal/model"
)

// StepHardware is the name of the hardware collector step.
const StepHardware = "hardware_info"

// bytesPerGB is the divisor used for every memory size in the document.
const bytesPerGB = 1 << 30

// errNoValue is returned by parsers when the output held no usable value.
var errNoValue = errors.New("no value in command output")

// cpuinfoKeys are the /proc/cpuinfo fields that name the CPU, by preference.
// x86 kernels report "model name", older ARM kernels "Hardware" or "Processor".
var cpuinfoKeys = []string{"model name", "Hardware", "Processor", "cpu model"}

// HardwareCollector fills SystemInfo.Hardware.
type HardwareCollector struct {
	env *Env
}

// NewHardwareCollector creates a hardware collector.
func NewHardwareCollector(env *Env) *HardwareCollector {
	return &HardwareCollector{env: env}
}

// Name returns the step name.
func (c *HardwareCollector) Name() string {
	return StepHardware
}

// Do collects the CPU model and total memory.
//
// When the CPU model cannot be read the processor type is stored instead.
// When memory cannot be read RAMTotalGB stays nil and RAMError explains why.
func (c *HardwareCollector) Do(ctx context.Context, info *model.SystemInfo) error {
	hw := model.HardwareInfo{}

	cpu, err := c.cpuModel(ctx)
	if err != nil {
		c.env.logger().Debug("cpu model unavailable", "error", err)
		cpu = c.processor(ctx)
	}
	hw.CPUModel = cpu

	total, err := c.memoryBytes(ctx)
	if err != nil {
		c.env.logger().Debug("memory size unavailable", "error", err)
		hw.RAMError = fmt.Sprintf("memory size unavailable: %v", err)
	} else {
		hw.RAMTotalGB = model.Float64(RoundGB(total))
	}

	info.Hardware = hw
	return ctx.Err()
}

// RoundGB converts bytes to GiB rounded to two decimal places.
func RoundGB(bytes uint64) float64 {
	return math.Round(float64(bytes)/bytesPerGB*100) / 100
}

func (c *HardwareCollector) cpuModel(ctx context.Context) (string, error) {
	switch c.env.GOOS {
	case "linux":
		data, err := c.env.readFile("/proc/cpuinfo")
		if err != nil {
			return "", err
		}
		return parseCPUInfo(string(data))
	case "darwin":
		res, err := c.env.Runner.Run(ctx, "sysctl", "-n", "machdep.cpu.brand_string")
		if err != nil {
			return "", err
		}
		return nonEmpty(strings.TrimSpace(res.Stdout))
	case "windows":
		res, err := c.env.Runner.Run(ctx, "wmic", "cpu", "get", "name")
		if err == nil {
			if v, perr := parseWMICValue(res.Stdout); perr == nil {
				return v, nil
			}
		}
		res, err = c.env.Runner.Run(ctx, "powershell", "-NoProfile", "-Command",
			"(Get-CimInstance Win32_Processor).Name")
		if err != nil {
			return "", err
		}
		return firstLine(res.Stdout)
	default:
		res, err := c.env.Runner.Run(ctx, "sysctl", "-n", "hw.model")
		if err != nil {
			return "", err
		}
		return nonEmpty(strings.TrimSpace(res.Stdout))
	}
}

// processor is the fallback CPU description.
func (c *HardwareCollector) processor(ctx context.Context) string {
	if c.env.isWindows() {
		if v := strings.TrimSpace(c.env.getenv("PROCESSOR_IDENTIFIER")); v != "" {
			return v
		}
		return goarchMachine(c.env.GOOS, c.env.GOARCH)
	}
	res, err := c.env.Runner.Run(ctx, "uname", "-p")
	if err == nil {
		if v := strings.TrimSpace(res.Stdout); v != "" && v != "unknown" {
			return v
		}
	}
	return goarchMachine(c.env.GOOS, c.env.GOARCH)
}

func (c *HardwareCollector) memoryBytes(ctx context.Context) (uint64, error) {
	switch c.env.GOOS {
	case "linux":
		data, err := c.env.readFile("/proc/meminfo")
		if err != nil {
			return 0, err
		}
		return parseMemInfo(string(data))
	case "windows":
		res, err := c.env.Runner.Run(ctx, "wmic", "ComputerSystem", "get", "TotalPhysicalMemory")
		if err == nil {
			if v, perr := parseWMICValue(res.Stdout); perr == nil {
				return parseUint(v)
			}
		}
		res, err = c.env.Runner.Run(ctx, "powershell", "-NoProfile", "-Command",
			"(Get-CimInstance Win32_ComputerSystem).TotalPhysicalMemory")
		if err != nil {
			return 0, err
		}
		v, err := firstLine(res.Stdout)
		if err != nil {
			return 0, err
		}
		return parseUint(v)
	default:
		key := "hw.memsize"
		if c.env.GOOS != "darwin" {
			key = "hw.physmem"
		}
		res, err := c.env.Runner.Run(ctx, "sysctl", "-n", key)
		if err != nil {
			return 0, err
		}
		return parseUint(strings.TrimSpace(res.Stdout))
	}
}

// parseCPUInfo returns the CPU name from /proc/cpuinfo content.
func parseCPUInfo(content string) (string, error) {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if _, seen := fields[key]; !seen {
			fields[key] = strings.TrimSpace(value)
		}
	}
	for _, key := range cpuinfoKeys {
		if v := fields[key]; v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("/proc/cpuinfo: %w", errNoValue)
}

// parseMemInfo returns MemTotal from /proc/meminfo content, in bytes.
func parseMemInfo(content string) (uint64, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || strings.TrimSpace(key) != "MemTotal" {
			continue
		}
		fields := strings.Fields(value)
		if len(fields) == 0 {
			break
		}
		kb, err := parseUint(fields[0])
		if err != nil {
			return 0, err
		}
		return kb * 1024, nil
	}
	return 0, fmt.Errorf("/proc/meminfo MemTotal: %w", errNoValue)
}

// parseWMICValue returns the first value below the header line of a
// single-column wmic listing.
func parseWMICValue(out string) (string, error) {
	lines := nonEmptyLines(out)
	if len(lines) < 2 {
		return "", fmt.Errorf("wmic: %w", errNoValue)
	}
	return lines[1], nil
}

func parseUint(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return v, nil
}

func firstLine(out string) (string, error) {
	lines := nonEmptyLines(out)
	if len(lines) == 0 {
		return "", errNoValue
	}
	return lines[0], nil
}

func nonEmpty(s string) (string, error) {
	if s == "" {
		return "", errNoValue
	}
	return s, nil
}

// nonEmptyLines splits out into trimmed lines, dropping blank ones.
// wmic terminates lines with "\r\r\n", which TrimSpace removes.
func nonEmptyLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
