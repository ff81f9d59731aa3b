package model

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestPreferencesFromDocument(t *testing.T) {
	t.Parallel()

	opts := DefaultFormOptions()

	tests := []struct {
		name string
		doc  *Document
		goos string
		want *Preferences
	}{
		{
			name: "no document on windows",
			doc:  nil,
			goos: "windows",
			want: &Preferences{
				IDE:              "VSCode",
				Shell:            "PowerShell",
				CIProvider:       NoneOption,
				DeploymentTarget: NoneOption,
				GitAccount:       "HisameOgasahara",
				MaskNetwork:      true,
			},
		},
		{
			name: "no document on linux",
			doc:  nil,
			goos: "linux",
			want: &Preferences{
				IDE:              "VSCode",
				Shell:            "bash",
				CIProvider:       NoneOption,
				DeploymentTarget: NoneOption,
				GitAccount:       "HisameOgasahara",
				MaskNetwork:      true,
			},
		},
		{
			name: "saved answers are restored",
			doc: &Document{
				UserEnvironment: UserEnvironment{IDE: "Cursor", IDEVersion: optionalString("0.40"), Shell: "fish"},
				DevOpsPlan: DevOpsPlan{
					UseDocker:        true,
					CIProvider:       "Jenkins",
					DeploymentTarget: "GCP",
					GitRepoURL:       optionalString("https://github.com/AriannaHeartbell"),
				},
				NetworkInfo:   &NetworkInfo{},
				SystemDetails: &SystemDetails{},
			},
			goos: "linux",
			want: &Preferences{
				IDE:              "Cursor",
				IDEVersion:       "0.40",
				Shell:            "fish",
				UseDocker:        true,
				CIProvider:       "Jenkins",
				DeploymentTarget: "GCP",
				GitAccount:       "AriannaHeartbell",
				IncludeNetwork:   true,
				MaskNetwork:      true,
				IncludePython:    true,
			},
		},
		{
			name: "unknown values fall back",
			doc: &Document{
				UserEnvironment: UserEnvironment{IDE: "Emacs", Shell: "tcsh"},
				DevOpsPlan:      DevOpsPlan{CIProvider: "Travis", DeploymentTarget: "Heroku"},
			},
			goos: "linux",
			want: &Preferences{
				IDE:              "Cursor",
				Shell:            "PowerShell",
				CIProvider:       NoneOption,
				DeploymentTarget: NoneOption,
				GitAccount:       "HisameOgasahara",
				MaskNetwork:      true,
			},
		},
		{
			name: "unlisted URL selects the custom account",
			doc: &Document{
				DevOpsPlan: DevOpsPlan{GitRepoURL: optionalString("https://git.example.com/me/repo")},
			},
			goos: "darwin",
			want: &Preferences{
				IDE:              "VSCode",
				Shell:            "bash",
				CIProvider:       NoneOption,
				DeploymentTarget: NoneOption,
				GitAccount:       CustomGitAccount,
				CustomGitURL:     "https://git.example.com/me/repo",
				MaskNetwork:      true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := PreferencesFromDocument(tt.doc, opts, tt.goos)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("PreferencesFromDocument() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPreferencesRoundTripThroughDocument(t *testing.T) {
	t.Parallel()

	prefs := &Preferences{
		IDE:              "Jupyter Notebook",
		Shell:            "zsh",
		CIProvider:       "GitLab CI",
		DeploymentTarget: "Hugging Face Spaces",
		GitAccount:       CustomGitAccount,
		CustomGitURL:     "https://gitlab.com/me/app",
		IncludeNetwork:   true,
		MaskNetwork:      true,
		IncludePython:    true,
	}
	doc := BuildDocument(sampleInfo(), prefs, time.Now(), "linux")

	got := PreferencesFromDocument(doc, DefaultFormOptions(), "linux")
	if diff := cmp.Diff(prefs, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPreferencesValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Preferences {
		return &Preferences{
			IDE:              "VSCode",
			Shell:            "bash",
			CIProvider:       NoneOption,
			DeploymentTarget: NoneOption,
			GitAccount:       CustomGitAccount,
		}
	}

	tests := []struct {
		name    string
		mutate  func(p *Preferences)
		wantErr bool
	}{
		{name: "all choices offered", mutate: func(*Preferences) {}},
		{name: "unknown IDE", mutate: func(p *Preferences) { p.IDE = "Emacs" }, wantErr: true},
		{name: "unknown shell", mutate: func(p *Preferences) { p.Shell = "tcsh" }, wantErr: true},
		{name: "unknown CI", mutate: func(p *Preferences) { p.CIProvider = "Travis" }, wantErr: true},
		{name: "unknown deployment", mutate: func(p *Preferences) { p.DeploymentTarget = "" }, wantErr: true},
		{name: "unknown git account", mutate: func(p *Preferences) { p.GitAccount = "someone" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := valid()
			tt.mutate(p)
			err := p.Validate(DefaultFormOptions())
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidOption) {
				t.Errorf("Validate() error = %v, want ErrInvalidOption", err)
			}
		})
	}
}

func TestFormOptionsMerge(t *testing.T) {
	t.Parallel()

	custom := FormOptions{IDEs: []string{"Zed", "Other"}}
	got := custom.Merge(DefaultFormOptions())

	if diff := cmp.Diff([]string{"Zed", "Other"}, got.IDEs); diff != "" {
		t.Errorf("IDEs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultFormOptions().Shells, got.Shells); diff != "" {
		t.Errorf("Shells mismatch (-want +got):\n%s", diff)
	}
	if last := got.GitAccountChoices(); last[len(last)-1] != CustomGitAccount {
		t.Errorf("GitAccountChoices() = %v, want the custom choice last", last)
	}
}
