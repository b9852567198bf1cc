package cmd

import (
	"github.com/mywio/release-notifier/pkg/core"
	"github.com/spf13/cobra"
)

const contextFlagUsage = `release context JSON file ("-" reads stdin)`

func newVerifyConditionsCmd(o *globalOptions) *cobra.Command {
	var contextFile string
	cmd := &cobra.Command{
		Use:   "verify-conditions",
		Short: "Check that the notifier can run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := loadEventData(contextFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return o.runStep(cmd, core.StepVerifyConditions, data)
		},
	}
	cmd.Flags().StringVar(&contextFile, "context", "", contextFlagUsage)
	return cmd
}

func newSuccessCmd(o *globalOptions) *cobra.Command {
	var in successInput
	cmd := &cobra.Command{
		Use:   "success",
		Short: "Announce a published release",
		Long: `Posts the release announcement to Discord.

Examples:
  release-notifier success --version 1.4.0 --notes-file CHANGELOG.md --branch main
  release-notifier success --github-repo acme/app --github-tag v1.4.0
  release-notifier success --context release-context.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := o.successData(cmd.Context(), in, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return o.runStep(cmd, core.StepSuccess, data)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.contextFile, "context", "", contextFlagUsage)
	f.StringVar(&in.version, "version", "", "released version (nextRelease.version)")
	f.StringVar(&in.notes, "notes", "", "release notes (nextRelease.notes)")
	f.StringVar(&in.notesFile, "notes-file", "", "read release notes from a file")
	f.StringVar(&in.branch, "branch", "", "release branch (branch.name)")
	f.StringVar(&in.githubRepo, "github-repo", "", "load the release from GitHub (owner/repo)")
	f.StringVar(&in.githubTag, "github-tag", "", "release tag to load (default: latest release)")
	cmd.MarkFlagsMutuallyExclusive("notes", "notes-file")
	return cmd
}

func newFailCmd(o *globalOptions) *cobra.Command {
	var in failInput
	cmd := &cobra.Command{
		Use:   "fail",
		Short: "Report a failed release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := failData(in, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return o.runStep(cmd, core.StepFail, data)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.contextFile, "context", "", contextFlagUsage)
	f.StringArrayVar(&in.messages, "error", nil, "error message (repeatable)")
	f.StringVar(&in.branch, "branch", "", "release branch (branch.name)")
	return cmd
}
