package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func sampleInfo() *SystemInfo {
	info := NewSystemInfo()
	info.OS = OSInfo{Type: "Linux", Version: "6.8.0-45-generic #45-Ubuntu SMP", CPUArch: "x86_64"}
	info.Python = PythonDetails{Version: "3.11.9", Executable: "/usr/bin/python3", PipFreeze: "numpy==1.26.4"}
	info.GPU = GPUInfo{GPU: NotAvailable, CUDADriverVersion: NotAvailable, CUDAToolkitVersion: NotAvailable}
	info.NetworkDetails = "2: eth0: <BROADCAST,UP>\n    inet 10.0.0.5/24 brd 10.0.0.255 scope global eth0"
	info.Ping = PingTest{Status: PingStatusSuccess, Log: "4 packets transmitted, 4 received"}
	return info
}

func TestBuildDocument(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 9, 14, 5, 59, 0, time.Local)

	t.Run("listed account becomes a GitHub URL", func(t *testing.T) {
		t.Parallel()

		prefs := &Preferences{
			IDE:              "VSCode",
			IDEVersion:       "1.89",
			Shell:            "zsh",
			UseDocker:        true,
			CIProvider:       "GitHub Actions",
			DeploymentTarget: "AWS",
			GitAccount:       "HisameOgasahara",
		}
		doc := BuildDocument(sampleInfo(), prefs, now, "linux")

		wantEnv := UserEnvironment{
			OS:             "Linux",
			OSVersion:      "6.8.0-45-generic #45-Ubuntu SMP",
			PythonVersion:  "3.11.9",
			Hardware:       Hardware{CPUArch: "x86_64"},
			IDE:            "VSCode",
			IDEVersion:     optionalString("1.89"),
			Shell:          "zsh",
			LLMInstruction: UnixInstruction,
		}
		if diff := cmp.Diff(wantEnv, doc.UserEnvironment); diff != "" {
			t.Errorf("UserEnvironment mismatch (-want +got):\n%s", diff)
		}

		wantPlan := DevOpsPlan{
			UseDocker:        true,
			UseCI:            true,
			CIProvider:       "GitHub Actions",
			DeploymentTarget: "AWS",
			GitRepoURL:       optionalString("https://github.com/HisameOgasahara"),
		}
		if diff := cmp.Diff(wantPlan, doc.DevOpsPlan); diff != "" {
			t.Errorf("DevOpsPlan mismatch (-want +got):\n%s", diff)
		}

		if doc.Metadata.LastUpdated != "2024-03-09 14:05:59" {
			t.Errorf("LastUpdated = %q", doc.Metadata.LastUpdated)
		}
		if doc.NetworkInfo != nil || doc.SystemDetails != nil {
			t.Error("optional sections should be omitted when not requested")
		}
	})

	t.Run("empty custom URL and IDE version serialize as null", func(t *testing.T) {
		t.Parallel()

		prefs := &Preferences{
			IDE:              "Cursor",
			Shell:            "PowerShell",
			CIProvider:       NoneOption,
			DeploymentTarget: NoneOption,
			GitAccount:       CustomGitAccount,
		}
		doc := BuildDocument(sampleInfo(), prefs, now, "windows")

		if doc.DevOpsPlan.UseCI {
			t.Error("UseCI should be false when the CI provider is None")
		}
		if doc.UserEnvironment.LLMInstruction != WindowsInstruction {
			t.Errorf("LLMInstruction = %q, want the Windows instruction", doc.UserEnvironment.LLMInstruction)
		}

		data, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		for _, want := range []string{`"ideVersion":null`, `"gitRepoURL":null`} {
			if !strings.Contains(string(data), want) {
				t.Errorf("JSON %s does not contain %s", data, want)
			}
		}
		for _, absent := range []string{"network_info", "system_details_for_reference"} {
			if strings.Contains(string(data), absent) {
				t.Errorf("JSON should not contain %s", absent)
			}
		}
	})

	t.Run("custom account uses the typed URL", func(t *testing.T) {
		t.Parallel()

		prefs := &Preferences{GitAccount: CustomGitAccount, CustomGitURL: "https://gitlab.com/team/app", CIProvider: NoneOption}
		doc := BuildDocument(sampleInfo(), prefs, now, "linux")
		if doc.DevOpsPlan.GitRepoURL == nil || *doc.DevOpsPlan.GitRepoURL != "https://gitlab.com/team/app" {
			t.Errorf("GitRepoURL = %v", doc.DevOpsPlan.GitRepoURL)
		}
	})

	t.Run("network details are masked on request", func(t *testing.T) {
		t.Parallel()

		prefs := &Preferences{IncludeNetwork: true, MaskNetwork: true, CIProvider: NoneOption, GitAccount: "AriannaHeartbell"}
		doc := BuildDocument(sampleInfo(), prefs, now, "linux")
		if doc.NetworkInfo == nil {
			t.Fatal("NetworkInfo should be present")
		}
		if strings.Contains(doc.NetworkInfo.Details, "10.0.0.5") {
			t.Errorf("Details still contains the address: %q", doc.NetworkInfo.Details)
		}
		if doc.NetworkInfo.Ping.Status != PingStatusSuccess {
			t.Errorf("Ping.Status = %q", doc.NetworkInfo.Ping.Status)
		}
	})

	t.Run("network details are kept when masking is off", func(t *testing.T) {
		t.Parallel()

		info := sampleInfo()
		prefs := &Preferences{IncludeNetwork: true, CIProvider: NoneOption, GitAccount: "AriannaHeartbell"}
		doc := BuildDocument(info, prefs, now, "linux")
		if doc.NetworkInfo.Details != info.NetworkDetails {
			t.Errorf("Details = %q, want raw output", doc.NetworkInfo.Details)
		}
	})

	t.Run("python section copies reference details", func(t *testing.T) {
		t.Parallel()

		prefs := &Preferences{IncludePython: true, CIProvider: NoneOption, GitAccount: "AriannaHeartbell"}
		doc := BuildDocument(sampleInfo(), prefs, now, "linux")
		want := &SystemDetails{
			GPU:              GPUInfo{GPU: NotAvailable, CUDADriverVersion: NotAvailable, CUDAToolkitVersion: NotAvailable},
			PythonExecutable: "/usr/bin/python3",
			PipFreeze:        "numpy==1.26.4",
		}
		if diff := cmp.Diff(want, doc.SystemDetails); diff != "" {
			t.Errorf("SystemDetails mismatch (-want +got):\n%s", diff)
		}
	})
}
