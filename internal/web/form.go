package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/nao1215/llmctx/internal/model"
)

// Form field names.
const (
	fieldIDE              = "ide"
	fieldIDEVersion       = "ide_version"
	fieldShell            = "shell"
	fieldUseDocker        = "use_docker"
	fieldCIProvider       = "ci_provider"
	fieldDeploymentTarget = "deployment_target"
	fieldGitAccount       = "git_account"
	fieldCustomGitURL     = "custom_git_url"
	fieldIncludeNetwork   = "include_network"
	fieldMaskNetwork      = "mask_network"
	fieldMaskNetworkShown = "mask_network_shown"
	fieldIncludePython    = "include_python"
)

// maxFormBytes bounds the size of a form submission.
const maxFormBytes = 64 << 10

// parsePreferences reads the submitted form.
//
// Unchecked checkboxes are not submitted, so a missing field means false.
// The mask checkbox is the exception: it only reads as unchecked when the
// hidden mask_network_shown marker proves the form offered it. A submission
// without the marker keeps network details masked.
// The custom URL is only kept when the custom account is selected.
func parsePreferences(w http.ResponseWriter, r *http.Request) (*model.Preferences, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	prefs := &model.Preferences{
		IDE:              r.PostFormValue(fieldIDE),
		IDEVersion:       strings.TrimSpace(r.PostFormValue(fieldIDEVersion)),
		Shell:            r.PostFormValue(fieldShell),
		UseDocker:        checked(r, fieldUseDocker),
		CIProvider:       r.PostFormValue(fieldCIProvider),
		DeploymentTarget: r.PostFormValue(fieldDeploymentTarget),
		GitAccount:       r.PostFormValue(fieldGitAccount),
		IncludeNetwork:   checked(r, fieldIncludeNetwork),
		MaskNetwork:      maskRequested(r),
		IncludePython:    checked(r, fieldIncludePython),
	}
	if prefs.GitAccount == model.CustomGitAccount {
		prefs.CustomGitURL = strings.TrimSpace(r.PostFormValue(fieldCustomGitURL))
	}
	return prefs, nil
}

func checked(r *http.Request, field string) bool {
	return r.PostFormValue(field) != ""
}

// maskRequested reports whether network details should be masked.
func maskRequested(r *http.Request) bool {
	if !checked(r, fieldMaskNetworkShown) {
		return true
	}
	return checked(r, fieldMaskNetwork)
}
