package model

import "time"

// NotAvailable is the placeholder stored when a fact could not be collected.
const NotAvailable = "N/A"

// Ping status values.
const (
	// PingStatusSuccess means the ping command exited successfully.
	PingStatusSuccess = "success"
	// PingStatusFail means the ping command failed or timed out.
	PingStatusFail = "fail"
)

// SystemInfo holds every fact collected from the local machine.
// Each section is written by exactly one collector, so collectors may run
// concurrently without additional locking.
type SystemInfo struct {
	// OS describes the operating system and CPU architecture.
	OS OSInfo `json:"os_info"`

	// Hardware describes the CPU model and installed memory.
	Hardware HardwareInfo `json:"hardware_info"`

	// GPU describes NVIDIA GPUs and CUDA versions.
	GPU GPUInfo `json:"gpu_info"`

	// Python describes the Python interpreter found on PATH.
	Python PythonDetails `json:"python_details"`

	// NetworkDetails is the raw output of ipconfig /all or ip addr.
	// It may contain addresses and must be masked before display.
	NetworkDetails string `json:"network_details"`

	// Ping is the result of a connectivity check.
	Ping PingTest `json:"ping_test"`

	// CollectedAt is when collection finished.
	CollectedAt time.Time `json:"collected_at"`

	// PerformedSteps lists the collectors that ran, in completion order.
	PerformedSteps []string `json:"performed_steps,omitempty"`
}

// OSInfo describes the operating system.
type OSInfo struct {
	// Type is the system name: "Windows", "Darwin", "Linux", ...
	Type string `json:"os_type"`

	// Version is the release ("10" on Windows, "14.4" on macOS,
	// kernel release and version on Linux).
	Version string `json:"os_version"`

	// CPUArch is the machine type, e.g. "x86_64", "arm64", "AMD64".
	CPUArch string `json:"cpu_arch"`
}

// HardwareInfo describes CPU and memory.
type HardwareInfo struct {
	// CPUModel is the marketing name of the CPU.
	CPUModel string `json:"cpu_model"`

	// RAMTotalGB is the installed memory in GiB rounded to two decimals.
	// Nil when memory could not be read.
	RAMTotalGB *float64 `json:"ram_total_gb,omitempty"`

	// RAMError explains why RAMTotalGB is missing.
	RAMError string `json:"cpu_ram_info,omitempty"`
}

// GPUInfo describes GPUs visible to the NVIDIA driver.
type GPUInfo struct {
	// GPU lists devices as "<name> (<memory> GB)" joined by ", ", or N/A.
	GPU string `json:"gpu"`

	// CUDADriverVersion is the NVIDIA driver version, or N/A.
	CUDADriverVersion string `json:"cuda_driver_version"`

	// CUDAToolkitVersion is the nvcc release, N/A when nvcc fails,
	// and empty when nvcc runs but prints no release line.
	CUDAToolkitVersion string `json:"cuda_toolkit_version,omitempty"`
}

// PythonDetails describes the Python interpreter.
type PythonDetails struct {
	// Version is the interpreter version, e.g. "3.12.1".
	Version string `json:"version"`

	// Executable is the absolute interpreter path.
	Executable string `json:"executable"`

	// IsVenv is true when the interpreter runs inside a virtual environment.
	IsVenv bool `json:"is_venv"`

	// PipFreeze is the output of "pip freeze".
	PipFreeze string `json:"pip_freeze"`
}

// PingTest is the outcome of the connectivity check.
type PingTest struct {
	// Status is PingStatusSuccess or PingStatusFail.
	Status string `json:"status"`

	// Log is the ping output on success, or the error text on failure.
	Log string `json:"log"`
}

// NewSystemInfo returns a SystemInfo whose fields hold placeholders.
// Collectors overwrite the sections they manage to gather.
func NewSystemInfo() *SystemInfo {
	return &SystemInfo{
		GPU: GPUInfo{
			GPU:               NotAvailable,
			CUDADriverVersion: NotAvailable,
		},
		Python: PythonDetails{
			Version:    NotAvailable,
			Executable: NotAvailable,
			PipFreeze:  NotAvailable,
		},
		Ping: PingTest{Status: PingStatusFail},
	}
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}
