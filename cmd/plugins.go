package cmd

import "github.com/spf13/cobra"

func newPluginsCmd(o *globalOptions) *cobra.Command {
	var showConfig bool
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List registered plugins and their status as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.manager.WriteDescription(cmd.OutOrStdout(), showConfig)
		},
	}
	cmd.Flags().BoolVar(&showConfig, "show-config", false, "include effective plugin config (secrets redacted)")
	return cmd
}
