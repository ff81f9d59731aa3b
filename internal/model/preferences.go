package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// NoneOption is the "not used" choice in the CI and deployment lists.
const NoneOption = "None"

// CustomGitAccount is the account choice that enables the free-form URL field.
const CustomGitAccount = "Custom"

// Form defaults used when the saved document has no value.
const (
	DefaultIDE          = "VSCode"
	DefaultShellWindows = "PowerShell"
	DefaultShellUnix    = "bash"
)

// ErrInvalidOption is returned when a preference is not one of the offered choices.
var ErrInvalidOption = errors.New("invalid option")

// FormOptions lists the choices offered by the form.
// The lists are configurable; see config.File.
type FormOptions struct {
	IDEs              []string `yaml:"ides,omitempty" json:"ides"`
	Shells            []string `yaml:"shells,omitempty" json:"shells"`
	GitAccounts       []string `yaml:"gitAccounts,omitempty" json:"gitAccounts"`
	DeploymentTargets []string `yaml:"deploymentTargets,omitempty" json:"deploymentTargets"`
	CIProviders       []string `yaml:"ciProviders,omitempty" json:"ciProviders"`
}

// DefaultFormOptions returns the built-in choice lists.
func DefaultFormOptions() FormOptions {
	return FormOptions{
		IDEs:              []string{"Cursor", "VSCode", "Jupyter Notebook", "Visual Studio", "Other"},
		Shells:            []string{"PowerShell", "cmd", "bash", "zsh", "fish"},
		GitAccounts:       []string{"HisameOgasahara", "AriannaHeartbell"},
		DeploymentTargets: []string{"AWS", "Cloudflare Tunnel", "Hugging Face Spaces", "Streamlit Cloud", "GCP", "Azure", "Other", NoneOption},
		CIProviders:       []string{NoneOption, "GitHub Actions", "GitLab CI", "Jenkins"},
	}
}

// Merge returns o with every empty list replaced by the one from fallback.
func (o FormOptions) Merge(fallback FormOptions) FormOptions {
	pick := func(v, d []string) []string {
		if len(v) == 0 {
			return d
		}
		return v
	}
	return FormOptions{
		IDEs:              pick(o.IDEs, fallback.IDEs),
		Shells:            pick(o.Shells, fallback.Shells),
		GitAccounts:       pick(o.GitAccounts, fallback.GitAccounts),
		DeploymentTargets: pick(o.DeploymentTargets, fallback.DeploymentTargets),
		CIProviders:       pick(o.CIProviders, fallback.CIProviders),
	}
}

// GitAccountChoices returns the account list followed by the custom choice.
func (o FormOptions) GitAccountChoices() []string {
	return append(slices.Clone(o.GitAccounts), CustomGitAccount)
}

// Preferences is what the user enters in the form.
type Preferences struct {
	IDE              string `json:"ide"`
	IDEVersion       string `json:"ideVersion"`
	Shell            string `json:"shell"`
	UseDocker        bool   `json:"useDocker"`
	CIProvider       string `json:"ciProvider"`
	DeploymentTarget string `json:"deploymentTarget"`
	GitAccount       string `json:"gitAccount"`
	CustomGitURL     string `json:"customGitURL"`
	IncludeNetwork   bool   `json:"includeNetwork"`
	MaskNetwork      bool   `json:"maskNetwork"`
	IncludePython    bool   `json:"includePython"`
}

// DefaultShell returns the preselected shell for the given GOOS value.
func DefaultShell(goos string) string {
	if goos == "windows" {
		return DefaultShellWindows
	}
	return DefaultShellUnix
}

// PreferencesFromDocument derives the form's initial values from the last
// saved document. A nil document yields the defaults.
//
// Values that are not in the option lists fall back to the first option,
// except the deployment target which falls back to the last one ("None"
// in the default list).
func PreferencesFromDocument(doc *Document, opts FormOptions, goos string) *Preferences {
	prefs := &Preferences{
		IDE:              choose(opts.IDEs, DefaultIDE, false),
		Shell:            choose(opts.Shells, DefaultShell(goos), false),
		CIProvider:       choose(opts.CIProviders, NoneOption, false),
		DeploymentTarget: choose(opts.DeploymentTargets, NoneOption, true),
		GitAccount:       first(opts.GitAccountChoices()),
		MaskNetwork:      true,
	}
	if doc == nil {
		return prefs
	}

	env := doc.UserEnvironment
	plan := doc.DevOpsPlan

	prefs.IDE = choose(opts.IDEs, orDefault(env.IDE, DefaultIDE), false)
	if env.IDEVersion != nil {
		prefs.IDEVersion = *env.IDEVersion
	}
	prefs.Shell = choose(opts.Shells, orDefault(env.Shell, DefaultShell(goos)), false)
	prefs.UseDocker = plan.UseDocker
	prefs.CIProvider = choose(opts.CIProviders, orDefault(plan.CIProvider, NoneOption), false)
	prefs.DeploymentTarget = choose(opts.DeploymentTargets, orDefault(plan.DeploymentTarget, NoneOption), true)
	prefs.IncludeNetwork = doc.NetworkInfo != nil
	prefs.IncludePython = doc.SystemDetails != nil

	if plan.GitRepoURL != nil && *plan.GitRepoURL != "" {
		prefs.GitAccount, prefs.CustomGitURL = matchGitAccount(opts.GitAccounts, *plan.GitRepoURL)
	}

	return prefs
}

// Validate checks that every choice is one of the offered options.
func (p *Preferences) Validate(opts FormOptions) error {
	checks := []struct {
		field string
		value string
		list  []string
	}{
		{"ide", p.IDE, opts.IDEs},
		{"shell", p.Shell, opts.Shells},
		{"ciProvider", p.CIProvider, opts.CIProviders},
		{"deploymentTarget", p.DeploymentTarget, opts.DeploymentTargets},
		{"gitAccount", p.GitAccount, opts.GitAccountChoices()},
	}
	for _, c := range checks {
		if !slices.Contains(c.list, c.value) {
			return fmt.Errorf("%w: %s %q (choose one of: %s)",
				ErrInvalidOption, c.field, c.value, strings.Join(c.list, ", "))
		}
	}
	return nil
}

// matchGitAccount maps a saved URL back to an account choice.
func matchGitAccount(accounts []string, url string) (account, customURL string) {
	for _, a := range accounts {
		if url == GitHubBaseURL+a {
			return a, ""
		}
	}
	return CustomGitAccount, url
}

// choose returns value when it is offered, otherwise the first option
// (or the last one when fallbackLast is set).
func choose(options []string, value string, fallbackLast bool) string {
	if slices.Contains(options, value) {
		return value
	}
	if len(options) == 0 {
		return value
	}
	if fallbackLast {
		return options[len(options)-1]
	}
	return options[0]
}

func first(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[0]
}

func orDefault(v, d string) string {
	if v == "" {
		return d
	}
	return v
}
