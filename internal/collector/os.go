package collector

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/llmctx/internal/model"
)

// StepOS is the name of the OS collector step.
const StepOS = "os_info"

// systemNames maps GOOS values to the names Python's platform.system()
// reports, which is what tools consuming the document expect.
var systemNames = map[string]string{
	"windows": "Windows",
	"darwin":  "Darwin",
	"linux":   "Linux",
	"freebsd": "FreeBSD",
	"openbsd": "OpenBSD",
	"netbsd":  "NetBSD",
	"solaris": "SunOS",
	"aix":     "AIX",
}

// windowsVersionPattern extracts major, minor and build from the output
// of "ver", e.g. "Microsoft Windows [Version 10.0.22631.3296]".
var windowsVersionPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

// windows11Build is the first build number shipped as Windows 11.
const windows11Build = 22000

// OSCollector fills SystemInfo.OS.
type OSCollector struct {
	env *Env
}

// NewOSCollector creates an OS collector.
func NewOSCollector(env *Env) *OSCollector {
	return &OSCollector{env: env}
}

// Name returns the step name.
func (c *OSCollector) Name() string {
	return StepOS
}

// Do collects the system name, version and machine type.
func (c *OSCollector) Do(ctx context.Context, info *model.SystemInfo) error {
	version := c.version(ctx)
	if version == "" {
		version = model.NotAvailable
	}
	info.OS = model.OSInfo{
		Type:    SystemName(c.env.GOOS),
		Version: version,
		CPUArch: c.arch(ctx),
	}
	return ctx.Err()
}

// SystemName converts a GOOS value to its conventional display name.
func SystemName(goos string) string {
	if name, ok := systemNames[goos]; ok {
		return name
	}
	return cases.Title(language.Und).String(goos)
}

func (c *OSCollector) version(ctx context.Context) string {
	switch c.env.GOOS {
	case "windows":
		res, err := c.env.Runner.Run(ctx, "cmd", "/c", "ver")
		if err != nil {
			c.env.logger().Debug("ver failed", "error", err)
			return ""
		}
		return parseWindowsRelease(res.Stdout)
	case "darwin":
		res, err := c.env.Runner.Run(ctx, "sw_vers", "-productVersion")
		if err != nil {
			c.env.logger().Debug("sw_vers failed", "error", err)
			return ""
		}
		return strings.TrimSpace(res.Stdout)
	default:
		parts := make([]string, 0, 2)
		for _, flag := range []string{"-r", "-v"} {
			res, err := c.env.Runner.Run(ctx, "uname", flag)
			if err != nil {
				c.env.logger().Debug("uname failed", "flag", flag, "error", err)
				continue
			}
			if v := strings.TrimSpace(res.Stdout); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, " ")
	}
}

// parseWindowsRelease turns "ver" output into a release name ("10", "11").
// Output without a version number yields an empty string.
func parseWindowsRelease(out string) string {
	m := windowsVersionPattern.FindStringSubmatch(out)
	if m == nil {
		return ""
	}
	major := m[1]
	if major == "10" {
		if build, err := strconv.Atoi(m[3]); err == nil && build >= windows11Build {
			return "11"
		}
	}
	return major
}

func (c *OSCollector) arch(ctx context.Context) string {
	if c.env.isWindows() {
		if v := strings.TrimSpace(c.env.getenv("PROCESSOR_ARCHITECTURE")); v != "" {
			return v
		}
		return goarchMachine(c.env.GOOS, c.env.GOARCH)
	}

	res, err := c.env.Runner.Run(ctx, "uname", "-m")
	if err == nil {
		if v := strings.TrimSpace(res.Stdout); v != "" {
			return v
		}
	}
	c.env.logger().Debug("uname -m failed", "error", err)
	return goarchMachine(c.env.GOOS, c.env.GOARCH)
}

// goarchMachine approximates the machine type from GOARCH.
func goarchMachine(goos, goarch string) string {
	windows := goos == "windows"
	switch goarch {
	case "amd64":
		if windows {
			return "AMD64"
		}
		return "x86_64"
	case "386":
		if windows {
			return "x86"
		}
		return "i686"
	case "arm64":
		if windows {
			return "ARM64"
		}
		if goos == "linux" {
			return "aarch64"
		}
		return "arm64"
	default:
		return goarch
	}
}
