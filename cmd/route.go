package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/workspace-console/internal/router"
)

func newRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <request>",
		Short: "Show which tools a request is routed to",
		Long: `Classifies a free-text request with the keyword router as an unverified
session would see it. Useful to check routing keywords.`,
		Example: `  workspace-console route "list the users of my domain"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), router.Decide(strings.Join(args, " "), nil))
		},
	}
}
