package collector

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/llmctx/internal/model"
	"github.com/nao1215/llmctx/internal/shell"
)

// newTestEnv returns an Env for goos backed by runner and an in-memory
// file table.
func newTestEnv(goos string, runner shell.Runner, files map[string]string, vars map[string]string) *Env {
	return &Env{
		Runner: runner,
		GOOS:   goos,
		GOARCH: "amd64",
		ReadFile: func(name string) ([]byte, error) {
			content, ok := files[name]
			if !ok {
				return nil, fs.ErrNotExist
			}
			return []byte(content), nil
		},
		Getenv: func(key string) string {
			return vars[key]
		},
		Logger: slog.New(slog.DiscardHandler),
	}
}

// blockingRunner never finishes a command before the context is done.
type blockingRunner struct{}

func (blockingRunner) Run(ctx context.Context, _ string, _ ...string) (shell.Result, error) {
	<-ctx.Done()
	return shell.Result{ExitCode: -1}, ctx.Err()
}

func (blockingRunner) LookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func TestSystemName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos string
		want string
	}{
		{goos: "windows", want: "Windows"},
		{goos: "darwin", want: "Darwin"},
		{goos: "linux", want: "Linux"},
		{goos: "freebsd", want: "FreeBSD"},
		{goos: "solaris", want: "SunOS"},
		{goos: "plan9", want: "Plan9"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			t.Parallel()
			if got := SystemName(tt.goos); got != tt.want {
				t.Errorf("SystemName(%q) = %q, want %q", tt.goos, got, tt.want)
			}
		})
	}
}

func TestParseWindowsRelease(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		out  string
		want string
	}{
		{name: "windows 10", out: "\r\nMicrosoft Windows [Version 10.0.19045.3803]\r\n", want: "10"},
		{name: "windows 11", out: "Microsoft Windows [Version 10.0.22631.3296]", want: "11"},
		{name: "korean locale", out: "Microsoft Windows [버전 10.0.22631.3296]", want: "11"},
		{name: "windows 7", out: "Microsoft Windows [Version 6.1.7601]", want: "6"},
		{name: "no version", out: "garbage", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseWindowsRelease(tt.out); got != tt.want {
				t.Errorf("parseWindowsRelease() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOSCollector(t *testing.T) {
	t.Parallel()

	t.Run("linux joins kernel release and version", func(t *testing.T) {
		t.Parallel()

		runner := shell.NewStubRunner().
			On("uname -r", "6.8.0-45-generic\n").
			On("uname -v", "#45-Ubuntu SMP PREEMPT_DYNAMIC\n").
			On("uname -m", "x86_64\n")
		info := model.NewSystemInfo()

		if err := NewOSCollector(newTestEnv("linux", runner, nil, nil)).Do(context.Background(), info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := model.OSInfo{Type: "Linux", Version: "6.8.0-45-generic #45-Ubuntu SMP PREEMPT_DYNAMIC", CPUArch: "x86_64"}
		if diff := cmp.Diff(want, info.OS); diff != "" {
			t.Errorf("OS mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("darwin uses the product version", func(t *testing.T) {
		t.Parallel()

		runner := shell.NewStubRunner().
			On("sw_vers -productVersion", "14.4.1\n").
			On("uname -m", "arm64\n")
		info := model.NewSystemInfo()

		if err := NewOSCollector(newTestEnv("darwin", runner, nil, nil)).Do(context.Background(), info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := model.OSInfo{Type: "Darwin", Version: "14.4.1", CPUArch: "arm64"}
		if diff := cmp.Diff(want, info.OS); diff != "" {
			t.Errorf("OS mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("windows reads ver and the processor architecture", func(t *testing.T) {
		t.Parallel()

		runner := shell.NewStubRunner().
			On("cmd /c ver", "\r\nMicrosoft Windows [Version 10.0.19045.3803]\r\n")
		env := newTestEnv("windows", runner, nil, map[string]string{"PROCESSOR_ARCHITECTURE": "AMD64"})
		info := model.NewSystemInfo()

		if err := NewOSCollector(env).Do(context.Background(), info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := model.OSInfo{Type: "Windows", Version: "10", CPUArch: "AMD64"}
		if diff := cmp.Diff(want, info.OS); diff != "" {
			t.Errorf("OS mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("falls back to placeholders when uname is missing", func(t *testing.T) {
		t.Parallel()

		info := model.NewSystemInfo()
		env := newTestEnv("linux", shell.NewStubRunner(), nil, nil)
		env.GOARCH = "arm64"

		if err := NewOSCollector(env).Do(context.Background(), info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := model.OSInfo{Type: "Linux", Version: model.NotAvailable, CPUArch: "aarch64"}
		if diff := cmp.Diff(want, info.OS); diff != "" {
			t.Errorf("OS mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestHardwareCollector(t *testing.T) {
	t.Parallel()

	const cpuinfo = "processor\t: 0\nvendor_id\t: GenuineIntel\nmodel name\t: Intel(R) Core(TM) i7-10700 CPU @ 2.90GHz\n\nprocessor\t: 1\nmodel name\t: Intel(R) Core(TM) i7-10700 CPU @ 2.90GHz\n"
	const meminfo = "MemTotal:       16318412 kB\nMemFree:         1234567 kB\n"

	tests := []struct {
		name   string
		goos   string
		runner *shell.StubRunner
		files  map[string]string
		vars   map[string]string
		want   model.HardwareInfo
	}{
		{
			name:   "linux reads proc files",
			goos:   "linux",
			runner: shell.NewStubRunner(),
			files:  map[string]string{"/proc/cpuinfo": cpuinfo, "/proc/meminfo": meminfo},
			want: model.HardwareInfo{
				CPUModel:   "Intel(R) Core(TM) i7-10700 CPU @ 2.90GHz",
				RAMTotalGB: model.Float64(15.56),
			},
		},
		{
			name: "darwin reads sysctl",
			goos: "darwin",
			runner: shell.NewStubRunner().
				On("sysctl -n machdep.cpu.brand_string", "Apple M2 Pro\n").
				On("sysctl -n hw.memsize", "17179869184\n"),
			want: model.HardwareInfo{CPUModel: "Apple M2 Pro", RAMTotalGB: model.Float64(16)},
		},
		{
			name: "windows reads wmic",
			goos: "windows",
			runner: shell.NewStubRunner().
				On("wmic cpu get name", "Name  \r\r\nAMD Ryzen 9 5900X 12-Core Processor  \r\r\n\r\r\n").
				On("wmic ComputerSystem get TotalPhysicalMemory", "TotalPhysicalMemory  \r\r\n34276212736  \r\r\n"),
			want: model.HardwareInfo{CPUModel: "AMD Ryzen 9 5900X 12-Core Processor", RAMTotalGB: model.Float64(31.92)},
		},
		{
			name: "windows without wmic uses powershell",
			goos: "windows",
			runner: shell.NewStubRunner().
				On("powershell -NoProfile -Command (Get-CimInstance Win32_Processor).Name", "AMD Ryzen 9 5900X\r\n").
				On("powershell -NoProfile -Command (Get-CimInstance Win32_ComputerSystem).TotalPhysicalMemory", "34276212736\r\n"),
			want: model.HardwareInfo{CPUModel: "AMD Ryzen 9 5900X", RAMTotalGB: model.Float64(31.92)},
		},
		{
			name:   "missing cpu model falls back to processor type",
			goos:   "linux",
			runner: shell.NewStubRunner().On("uname -p", "x86_64\n"),
			files:  map[string]string{"/proc/meminfo": meminfo},
			want:   model.HardwareInfo{CPUModel: "x86_64", RAMTotalGB: model.Float64(15.56)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := model.NewSystemInfo()
			env := newTestEnv(tt.goos, tt.runner, tt.files, tt.vars)
			if err := NewHardwareCollector(env).Do(context.Background(), info); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, info.Hardware); diff != "" {
				t.Errorf("hardware mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("memory failure is reported in cpu_ram_info", func(t *testing.T) {
		t.Parallel()

		info := model.NewSystemInfo()
		env := newTestEnv("linux", shell.NewStubRunner(), map[string]string{"/proc/cpuinfo": cpuinfo}, nil)
		if err := NewHardwareCollector(env).Do(context.Background(), info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Hardware.RAMTotalGB != nil {
			t.Errorf("expected nil RAMTotalGB, got %v", *info.Hardware.RAMTotalGB)
		}
		if !strings.HasPrefix(info.Hardware.RAMError, "memory size unavailable") {
			t.Errorf("unexpected RAMError %q", info.Hardware.RAMError)
		}
	})
}

func TestParseCPUInfo(t *testing.T) {
	t.Parallel()

	t.Run("uses Hardware on older arm kernels", func(t *testing.T) {
		t.Parallel()

		got, err := parseCPUInfo("processor\t: 0\nBogoMIPS\t: 38.40\n\nHardware\t: BCM2835\n")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "BCM2835" {
			t.Errorf("got %q, want %q", got, "BCM2835")
		}
	})

	t.Run("fails without a known field", func(t *testing.T) {
		t.Parallel()

		if _, err := parseCPUInfo("processor\t: 0\n"); !errors.Is(err, errNoValue) {
			t.Errorf("expected errNoValue, got %v", err)
		}
	})
}

func TestGPUCollector(t *testing.T) {
	t.Parallel()

	const listCmd = "nvidia-smi --query-gpu=name,memory.total --format=csv,noheader,nounits"
	const driverCmd = "nvidia-smi --query-gpu=driver_version --format=csv,noheader"

	tests := []struct {
		name   string
		runner *shell.StubRunner
		want   model.GPUInfo
	}{
		{
			name: "lists every device with its memory",
			runner: shell.NewStubRunner().
				On(listCmd, "NVIDIA GeForce RTX 4090, 24564\nNVIDIA RTX A4000, 16376\n").
				On(driverCmd, "550.54.15\n550.54.15\n").
				On("nvcc --version", "nvcc: NVIDIA (R) Cuda compiler driver\nCuda compilation tools, release 12.4, V12.4.131\n"),
			want: model.GPUInfo{
				GPU:                "NVIDIA GeForce RTX 4090 (23.99 GB), NVIDIA RTX A4000 (15.99 GB)",
				CUDADriverVersion:  "550.54.15",
				CUDAToolkitVersion: "12.4",
			},
		},
		{
			name:   "no nvidia tools",
			runner: shell.NewStubRunner(),
			want: model.GPUInfo{
				GPU:                model.NotAvailable,
				CUDADriverVersion:  model.NotAvailable,
				CUDAToolkitVersion: model.NotAvailable,
			},
		},
		{
			name: "nvcc without a release line leaves the toolkit empty",
			runner: shell.NewStubRunner().
				On(listCmd, "Tesla T4, 15360\n").
				On(driverCmd, "535.104.05\n").
				On("nvcc --version", "nvcc: NVIDIA (R) Cuda compiler driver\n"),
			want: model.GPUInfo{GPU: "Tesla T4 (15.0 GB)", CUDADriverVersion: "535.104.05"},
		},
		{
			name: "driver without devices",
			runner: shell.NewStubRunner().
				On(listCmd, "").
				On(driverCmd, "535.104.05\n").
				OnError("nvcc --version", errors.New("exit status 1")),
			want: model.GPUInfo{
				GPU:                model.NotAvailable,
				CUDADriverVersion:  "535.104.05",
				CUDAToolkitVersion: model.NotAvailable,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := model.NewSystemInfo()
			if err := NewGPUCollector(newTestEnv("linux", tt.runner, nil, nil)).Do(context.Background(), info); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, info.GPU); diff != "" {
				t.Errorf("gpu mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatGB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{in: 24, want: "24.0"},
		{in: 7.79, want: "7.79"},
		{in: 15.9, want: "15.9"},
		{in: 0, want: "0.0"},
	}
	for _, tt := range tests {
		if got := FormatGB(tt.in); got != tt.want {
			t.Errorf("FormatGB(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPythonCollector(t *testing.T) {
	t.Parallel()

	t.Run("records interpreter details and pip freeze", func(t *testing.T) {
		t.Parallel()

		runner := shell.NewStubRunner().
			On("python3 -c "+pythonProbe, "3.12.1\n/home/dev/.venv/bin/python3\nTrue\n").
			On("python3 -m pip freeze", "requests==2.31.0\nstreamlit==1.33.0\n")
		info := model.NewSystemInfo()

		if err := NewPythonCollector(newTestEnv("linux", runner, nil, nil)).Do(context.Background(), info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := model.PythonDetails{
			Version:    "3.12.1",
			Executable: "/home/dev/.venv/bin/python3",
			IsVenv:     true,
			PipFreeze:  "requests==2.31.0\nstreamlit==1.33.0\n",
		}
		if diff := cmp.Diff(want, info.Python); diff != "" {
			t.Errorf("python mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("windows prefers python over python3", func(t *testing.T) {
		t.Parallel()

		runner := shell.NewStubRunner().
			On("python -c "+pythonProbe, "3.11.9\r\nC:\\Python311\\python.exe\r\nFalse\r\n").
			On("python -m pip freeze", "").
			On("python3 -c "+pythonProbe, "3.0.0\nstore-alias\nFalse\n")
		info := model.NewSystemInfo()

		if err := NewPythonCollector(newTestEnv("windows", runner, nil, nil)).Do(context.Background(), info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Python.Executable != `C:\Python311\python.exe` {
			t.Errorf("unexpected executable %q", info.Python.Executable)
		}
		if info.Python.IsVenv {
			t.Error("expected is_venv false")
		}
	})

	t.Run("keeps placeholders without an interpreter", func(t *testing.T) {
		t.Parallel()

		info := model.NewSystemInfo()
		if err := NewPythonCollector(newTestEnv("linux", shell.NewStubRunner(), nil, nil)).Do(context.Background(), info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := model.PythonDetails{
			Version:    model.NotAvailable,
			Executable: model.NotAvailable,
			PipFreeze:  model.NotAvailable,
		}
		if diff := cmp.Diff(want, info.Python); diff != "" {
			t.Errorf("python mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestNetworkCollector(t *testing.T) {
	t.Parallel()

	t.Run("windows merges stderr into the listing", func(t *testing.T) {
		t.Parallel()

		runner := shell.NewStubRunner().OnResult("ipconfig /all",
			shell.Result{Stdout: "Windows IP Configuration\r\n", Combined: "Windows IP Configuration\r\nwarning\r\n"}, nil)
		info := model.NewSystemInfo()

		if err := NewNetworkCollector(newTestEnv("windows", runner, nil, nil)).Do(context.Background(), info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.NetworkDetails != "Windows IP Configuration\r\nwarning\r\n" {
			t.Errorf("unexpected details %q", info.NetworkDetails)
		}
	})

	t.Run("failure stores the error text", func(t *testing.T) {
		t.Parallel()

		runner := shell.NewStubRunner().OnError("ip addr", errors.New("exit status 255"))
		info := model.NewSystemInfo()

		if err := NewNetworkCollector(newTestEnv("linux", runner, nil, nil)).Do(context.Background(), info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(info.NetworkDetails, "exit status 255") {
			t.Errorf("expected error text in details, got %q", info.NetworkDetails)
		}
	})
}

func TestPingCollector(t *testing.T) {
	t.Parallel()

	t.Run("unix uses the count flag -c", func(t *testing.T) {
		t.Parallel()

		runner := shell.NewStubRunner().On("ping -c 4 google.com", "4 packets transmitted, 4 received\n")
		info := model.NewSystemInfo()

		if err := NewPingCollector(newTestEnv("linux", runner, nil, nil)).Do(context.Background(), info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := model.PingTest{Status: model.PingStatusSuccess, Log: "4 packets transmitted, 4 received\n"}
		if diff := cmp.Diff(want, info.Ping); diff != "" {
			t.Errorf("ping mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("windows uses the count flag -n and the configured target", func(t *testing.T) {
		t.Parallel()

		runner := shell.NewStubRunner().On("ping -n 2 example.com", "Reply from example.com\r\n")
		info := model.NewSystemInfo()
		c := NewPingCollector(newTestEnv("windows", runner, nil, nil), WithPingCount(2), WithPingTarget("example.com"))

		if err := c.Do(context.Background(), info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Ping.Status != model.PingStatusSuccess {
			t.Errorf("expected success, got %q", info.Ping.Status)
		}
	})

	t.Run("failure records the error and output", func(t *testing.T) {
		t.Parallel()

		runner := shell.NewStubRunner().OnResult("ping -c 4 google.com",
			shell.Result{Combined: "ping: google.com: Name or service not known\n", ExitCode: 2},
			errors.New("ping: exit status 2"))
		info := model.NewSystemInfo()

		if err := NewPingCollector(newTestEnv("linux", runner, nil, nil)).Do(context.Background(), info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Ping.Status != model.PingStatusFail {
			t.Errorf("expected fail, got %q", info.Ping.Status)
		}
		if !strings.Contains(info.Ping.Log, "exit status 2") || !strings.Contains(info.Ping.Log, "Name or service not known") {
			t.Errorf("unexpected log %q", info.Ping.Log)
		}
	})

	t.Run("timeout is a failure", func(t *testing.T) {
		t.Parallel()

		info := model.NewSystemInfo()
		c := NewPingCollector(newTestEnv("linux", blockingRunner{}, nil, nil), WithPingTimeout(20*time.Millisecond))

		if err := c.Do(context.Background(), info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Ping.Status != model.PingStatusFail {
			t.Errorf("expected fail, got %q", info.Ping.Status)
		}
		if !strings.Contains(info.Ping.Log, "timed out") {
			t.Errorf("expected timeout in log, got %q", info.Ping.Log)
		}
	})
}

func TestCollectAll(t *testing.T) {
	t.Parallel()

	t.Run("runs every collector", func(t *testing.T) {
		t.Parallel()

		runner := shell.NewStubRunner().
			On("uname -r", "6.8.0\n").
			On("uname -v", "#1 SMP\n").
			On("uname -m", "x86_64\n").
			On("ip addr", "1: lo: <LOOPBACK,UP>\n    inet 127.0.0.1/8 scope host lo\n").
			On("ping -c 1 localhost", "1 packets transmitted, 1 received\n")
		files := map[string]string{
			"/proc/cpuinfo": "model name\t: Test CPU\n",
			"/proc/meminfo": "MemTotal: 2097152 kB\n",
		}
		settings := DefaultSettings()
		settings.PingTarget = "localhost"
		settings.PingCount = 1

		info, err := CollectAll(context.Background(), newTestEnv("linux", runner, files, nil), settings)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(info.PerformedSteps) != 6 {
			t.Errorf("expected 6 performed steps, got %v", info.PerformedSteps)
		}
		if info.OS.Type != "Linux" || info.Hardware.CPUModel != "Test CPU" {
			t.Errorf("unexpected facts: %+v %+v", info.OS, info.Hardware)
		}
		if info.Hardware.RAMTotalGB == nil || *info.Hardware.RAMTotalGB != 2 {
			t.Errorf("unexpected RAM %v", info.Hardware.RAMTotalGB)
		}
		if info.GPU.GPU != model.NotAvailable {
			t.Errorf("expected GPU placeholder, got %q", info.GPU.GPU)
		}
		if info.Ping.Status != model.PingStatusSuccess {
			t.Errorf("expected ping success, got %q", info.Ping.Status)
		}
		if info.CollectedAt.IsZero() {
			t.Error("expected CollectedAt to be set")
		}
	})

	t.Run("returns the context error when cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		info, err := CollectAll(ctx, newTestEnv("linux", shell.NewStubRunner(), nil, nil), DefaultSettings())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if info == nil {
			t.Fatal("expected placeholder info")
		}
	})
}
