package model

import (
	"time"

	"github.com/nao1215/llmctx/internal/redact"
)

// TimestampLayout is the layout of Metadata.LastUpdated.
const TimestampLayout = "2006-01-02 15:04:05"

// GitHubBaseURL prefixes account names selected from the account list.
const GitHubBaseURL = "https://github.com/"

// Instructions embedded in the document so that an LLM generates code for the right platform.
const (
	WindowsInstruction = "You are on a Windows system. Use '\\' as the path separator and expect CRLF line endings."
	UnixInstruction    = "You are on a Unix-like system (Linux/macOS). Use '/' as the path separator and expect LF line endings."
)

// Document is the content of data.json.
// The network and system detail sections are optional and only present
// when the user asked to include them.
type Document struct {
	Metadata        Metadata        `json:"metadata"`
	UserEnvironment UserEnvironment `json:"user_development_environment"`
	DevOpsPlan      DevOpsPlan      `json:"devops_and_infrastructure_plan"`
	NetworkInfo     *NetworkInfo    `json:"network_info,omitempty"`
	SystemDetails   *SystemDetails  `json:"system_details_for_reference,omitempty"`
}

// Metadata carries bookkeeping about the document itself.
type Metadata struct {
	// LastUpdated is the local save time formatted with TimestampLayout.
	LastUpdated string `json:"last_updated"`
}

// UserEnvironment describes the developer's machine and tools.
type UserEnvironment struct {
	OS             string   `json:"os"`
	OSVersion      string   `json:"osVersion"`
	PythonVersion  string   `json:"pythonVersion"`
	Hardware       Hardware `json:"hardware"`
	IDE            string   `json:"ide"`
	IDEVersion     *string  `json:"ideVersion"`
	Shell          string   `json:"shell"`
	LLMInstruction string   `json:"llm_instruction_for_code_generation"`
}

// Hardware is the hardware summary placed in UserEnvironment.
type Hardware struct {
	CPUArch string `json:"cpuArch"`
}

// DevOpsPlan describes the planned tooling around the project.
type DevOpsPlan struct {
	UseDocker        bool    `json:"useDocker"`
	UseCI            bool    `json:"useCI"`
	CIProvider       string  `json:"ciProvider"`
	DeploymentTarget string  `json:"deploymentTarget"`
	GitRepoURL       *string `json:"gitRepoURL"`
}

// NetworkInfo is the optional network section.
type NetworkInfo struct {
	// Details is the interface listing, masked unless the user opted out.
	Details string   `json:"details"`
	Ping    PingTest `json:"ping_test"`
}

// SystemDetails is the optional reference section.
type SystemDetails struct {
	Hardware         HardwareInfo `json:"hardware_info"`
	GPU              GPUInfo      `json:"gpu_info"`
	PythonExecutable string       `json:"python_executable"`
	IsVenv           bool         `json:"is_venv"`
	PipFreeze        string       `json:"pip_freeze"`
}

// LLMInstruction returns the code generation hint for the given GOOS value.
func LLMInstruction(goos string) string {
	if goos == "windows" {
		return WindowsInstruction
	}
	return UnixInstruction
}

// GitURL resolves the repository URL for the selected account.
// The custom choice uses the URL typed by the user; any other account
// becomes a GitHub profile URL.
func (p *Preferences) GitURL() string {
	if p.GitAccount == CustomGitAccount {
		return p.CustomGitURL
	}
	return GitHubBaseURL + p.GitAccount
}

// BuildDocument assembles the document saved on form submission.
//
// The optional sections are copied from info only when prefs asks for
// them. Network details are masked with redact.MaskNetworkDetails when
// prefs.MaskNetwork is set.
func BuildDocument(info *SystemInfo, prefs *Preferences, now time.Time, goos string) *Document {
	doc := &Document{
		Metadata: Metadata{LastUpdated: now.Format(TimestampLayout)},
		UserEnvironment: UserEnvironment{
			OS:             info.OS.Type,
			OSVersion:      info.OS.Version,
			PythonVersion:  info.Python.Version,
			Hardware:       Hardware{CPUArch: info.OS.CPUArch},
			IDE:            prefs.IDE,
			IDEVersion:     optionalString(prefs.IDEVersion),
			Shell:          prefs.Shell,
			LLMInstruction: LLMInstruction(goos),
		},
		DevOpsPlan: DevOpsPlan{
			UseDocker:        prefs.UseDocker,
			UseCI:            prefs.CIProvider != NoneOption,
			CIProvider:       prefs.CIProvider,
			DeploymentTarget: prefs.DeploymentTarget,
			GitRepoURL:       optionalString(prefs.GitURL()),
		},
	}

	if prefs.IncludeNetwork {
		details := info.NetworkDetails
		if prefs.MaskNetwork {
			details = redact.MaskNetworkDetails(details)
		}
		doc.NetworkInfo = &NetworkInfo{
			Details: details,
			Ping:    info.Ping,
		}
	}

	if prefs.IncludePython {
		doc.SystemDetails = &SystemDetails{
			Hardware:         info.Hardware,
			GPU:              info.GPU,
			PythonExecutable: info.Python.Executable,
			IsVenv:           info.Python.IsVenv,
			PipFreeze:        info.Python.PipFreeze,
		}
	}

	return doc
}

// optionalString maps the empty string to nil so it serializes as JSON null.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
