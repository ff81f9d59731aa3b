package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/llmctx/internal/model"
	"github.com/nao1215/llmctx/internal/report"
	"github.com/nao1215/llmctx/internal/workspace"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write data.json from flags",
		Long: `Generate writes data.json without the browser form.

Every choice starts from the last saved data.json (or the form
defaults when there is none) and is replaced by the flags you pass.
Choices must be one of the options the form offers; see 'llmctx init'
to customize the lists.

Examples:
  # Save with the defaults (or the previous answers)
  llmctx generate

  # Change the IDE and shell
  llmctx generate --ide Cursor --shell zsh

  # Plan Docker with GitHub Actions, deploy to AWS
  llmctx generate --docker --ci "GitHub Actions" --deploy AWS

  # Use a repository URL that is not in the account list
  llmctx generate --git-url https://gitlab.com/my-org

  # Include network details without masking and print the result
  llmctx generate --network --mask-network=false --print`,
		Args: cobra.NoArgs,
		RunE: runGenerateCmd,
	}

	cmd.Flags().String("ide", "", "IDE or editor")
	cmd.Flags().String("ide-version", "", "IDE version (empty stores null)")
	cmd.Flags().String("shell", "", "Primary shell")
	cmd.Flags().Bool("docker", false, "Plan to use Docker")
	cmd.Flags().String("ci", "", `CI provider ("None" disables CI)`)
	cmd.Flags().String("deploy", "", "Deployment target")
	cmd.Flags().String("git-account", "", "GitHub account from the account list")
	cmd.Flags().String("git-url", "", "Git account or repository URL (selects the custom account)")
	cmd.Flags().Bool("network", false, "Include network information")
	cmd.Flags().Bool("mask-network", true, "Mask IP and MAC addresses in the network information")
	cmd.Flags().Bool("python", false, "Include Python and hardware details")
	cmd.Flags().BoolP("print", "p", false, "Print the saved document")

	return cmd
}

// runGenerateCmd executes the generate command.
func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ws, closeWS, err := newWorkspace(cfg, logger, newCollectFunc(cfg, logger))
	if err != nil {
		return err
	}
	defer closeWS()

	prefs, err := ws.Preferences()
	if err != nil {
		return err
	}
	if err := applyPreferenceFlags(cmd, prefs); err != nil {
		return err
	}
	printDoc, err := cmd.Flags().GetBool("print")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	return runGenerate(ctx, cmd.OutOrStdout(), ws, prefs, printDoc)
}

// applyPreferenceFlags overrides prefs with every flag given on the command line.
func applyPreferenceFlags(cmd *cobra.Command, prefs *model.Preferences) error {
	flags := cmd.Flags()

	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"ide", &prefs.IDE},
		{"ide-version", &prefs.IDEVersion},
		{"shell", &prefs.Shell},
		{"ci", &prefs.CIProvider},
		{"deploy", &prefs.DeploymentTarget},
		{"git-account", &prefs.GitAccount},
	}
	for _, s := range stringFlags {
		if !flags.Changed(s.name) {
			continue
		}
		v, err := flags.GetString(s.name)
		if err != nil {
			return err
		}
		*s.dst = v
	}

	boolFlags := []struct {
		name string
		dst  *bool
	}{
		{"docker", &prefs.UseDocker},
		{"network", &prefs.IncludeNetwork},
		{"mask-network", &prefs.MaskNetwork},
		{"python", &prefs.IncludePython},
	}
	for _, b := range boolFlags {
		if !flags.Changed(b.name) {
			continue
		}
		v, err := flags.GetBool(b.name)
		if err != nil {
			return err
		}
		*b.dst = v
	}

	if flags.Changed("git-url") {
		url, err := flags.GetString("git-url")
		if err != nil {
			return err
		}
		prefs.GitAccount = model.CustomGitAccount
		prefs.CustomGitURL = url
	} else if flags.Changed("git-account") && prefs.GitAccount != model.CustomGitAccount {
		prefs.CustomGitURL = ""
	}
	return nil
}

// runGenerate saves prefs and reports the result on w.
func runGenerate(ctx context.Context, w io.Writer, ws *workspace.Workspace, prefs *model.Preferences, printDoc bool) error {
	doc, err := ws.Save(ctx, prefs)
	if doc == nil {
		return err
	}
	if printDoc {
		if _, werr := report.NewJSONWriter(w, report.WithPrettyPrint()).Write(doc); werr != nil {
			return werr
		}
	} else {
		fmt.Fprintf(w, "Saved %s (last updated %s)\n", ws.DataFile(), doc.Metadata.LastUpdated)
	}
	return err
}
