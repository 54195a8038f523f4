package cmd

import (
	"github.com/spf13/cobra"

	"github.com/teemow/workspace-console/internal/directory"
	"github.com/teemow/workspace-console/internal/result"
)

func newUsersCmd(opts *globalOptions) *cobra.Command {
	var adminEmail, domain string

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List the users of a domain with masked addresses",
		Example: `  workspace-console users --admin admin@example.com --domain example.com`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc, err := newCLIContext(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer sc.Shutdown()

			records, err := sc.Lister().List(cmd.Context(), adminEmail, domain)
			if err != nil {
				return printResult(cmd.OutOrStdout(), result.Failure[directory.MaskResult](err), "")
			}
			masked := directory.Mask(records)
			return printResult(cmd.OutOrStdout(), result.Success(masked), masked.Message())
		},
	}

	cmd.Flags().StringVar(&adminEmail, "admin", "", "Workspace administrator to act as")
	cmd.Flags().StringVar(&domain, "domain", "", "Domain to list")

	return cmd
}
