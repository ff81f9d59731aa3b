package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/llmctx/internal/model"
)

func TestApplyPreferenceFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		base model.Preferences
		want model.Preferences
	}{
		{
			name: "no flags keep the previous answers",
			args: nil,
			base: model.Preferences{IDE: "Cursor", Shell: "zsh", MaskNetwork: true},
			want: model.Preferences{IDE: "Cursor", Shell: "zsh", MaskNetwork: true},
		},
		{
			name: "string and bool flags override",
			args: []string{"--ide", "Visual Studio", "--ide-version", "17.9", "--shell", "PowerShell",
				"--ci", "Jenkins", "--deploy", "Azure", "--docker", "--network", "--python"},
			base: model.Preferences{IDE: "Cursor", Shell: "zsh", MaskNetwork: true},
			want: model.Preferences{IDE: "Visual Studio", IDEVersion: "17.9", Shell: "PowerShell",
				CIProvider: "Jenkins", DeploymentTarget: "Azure", UseDocker: true,
				IncludeNetwork: true, MaskNetwork: true, IncludePython: true},
		},
		{
			name: "mask can be turned off",
			args: []string{"--mask-network=false"},
			base: model.Preferences{IncludeNetwork: true, MaskNetwork: true},
			want: model.Preferences{IncludeNetwork: true},
		},
		{
			name: "git url selects the custom account",
			args: []string{"--git-url", "https://gitlab.com/team"},
			base: model.Preferences{GitAccount: "HisameOgasahara"},
			want: model.Preferences{GitAccount: model.CustomGitAccount, CustomGitURL: "https://gitlab.com/team"},
		},
		{
			name: "listed git account drops a previous custom url",
			args: []string{"--git-account", "AriannaHeartbell"},
			base: model.Preferences{GitAccount: model.CustomGitAccount, CustomGitURL: "https://gitlab.com/team"},
			want: model.Preferences{GitAccount: "AriannaHeartbell"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewGenerateCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			got := tt.base
			if err := applyPreferenceFlags(cmd, &got); err != nil {
				t.Fatalf("applyPreferenceFlags() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("preferences mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunGenerate(t *testing.T) {
	t.Parallel()

	t.Run("saves data.json and records history", func(t *testing.T) {
		t.Parallel()

		ws, db := newTestWorkspace(t)
		var buf bytes.Buffer
		if err := runGenerate(context.Background(), &buf, ws, testPreferences(), false); err != nil {
			t.Fatalf("runGenerate() error = %v", err)
		}
		if !strings.Contains(buf.String(), "Saved "+ws.DataFile()) {
			t.Errorf("output = %q", buf.String())
		}
		if _, err := os.Stat(ws.DataFile()); err != nil {
			t.Errorf("data.json missing: %v", err)
		}
		n, err := db.Count(context.Background())
		if err != nil || n != 1 {
			t.Errorf("Count() = %d, %v; want 1", n, err)
		}
	})

	t.Run("print writes the document", func(t *testing.T) {
		t.Parallel()

		ws, _ := newTestWorkspace(t)
		var buf bytes.Buffer
		if err := runGenerate(context.Background(), &buf, ws, testPreferences(), true); err != nil {
			t.Fatal(err)
		}
		var doc model.Document
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("output is not a document: %v", err)
		}
		if doc.UserEnvironment.OS != "Linux" || doc.UserEnvironment.LLMInstruction != model.UnixInstruction {
			t.Errorf("environment = %+v", doc.UserEnvironment)
		}
		if doc.Metadata.LastUpdated != testNow.Format(model.TimestampLayout) {
			t.Errorf("last_updated = %q", doc.Metadata.LastUpdated)
		}
	})

	t.Run("invalid choice is rejected", func(t *testing.T) {
		t.Parallel()

		ws, _ := newTestWorkspace(t)
		prefs := testPreferences()
		prefs.Shell = "tcsh"
		err := runGenerate(context.Background(), &bytes.Buffer{}, ws, prefs, false)
		if !errors.Is(err, model.ErrInvalidOption) {
			t.Errorf("expected ErrInvalidOption, got %v", err)
		}
		if _, err := os.Stat(ws.DataFile()); !os.IsNotExist(err) {
			t.Errorf("data.json should not be written, Stat() error = %v", err)
		}
	})
}
