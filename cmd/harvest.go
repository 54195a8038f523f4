package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/workspace-console/internal/gmail"
	"github.com/teemow/workspace-console/internal/result"
)

func newHarvestCmd(opts *globalOptions) *cobra.Command {
	var (
		adminEmail string
		mailbox    string
		start      string
		end        string
		yesterday  bool
	)

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Retrieve the mail headers of a mailbox and classify them for spam",
		Long: `Lists every message of a mailbox received in a date range, fetches each one
raw and classifies its header block. Dates are YYYY/MM/DD; the start day is
inclusive and the end day exclusive.

Access is delegated: the service account acts as --admin.`,
		Example: `  workspace-console harvest --admin admin@example.com --mailbox user@example.com --start 2024/05/01 --end 2024/05/02
  workspace-console harvest --admin admin@example.com --mailbox user@example.com --yesterday`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var r gmail.DateRange
			if yesterday {
				r = gmail.YesterdayRange(time.Now())
			} else {
				var err error
				r, err = gmail.ParseDateRange(start, end)
				if err != nil {
					return printResult(cmd.OutOrStdout(), result.Failure[*gmail.HarvestReport](err), "")
				}
			}

			sc, err := newCLIContext(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer sc.Shutdown()

			report, err := sc.Harvester().Harvest(cmd.Context(), adminEmail, mailbox, r)
			if err != nil {
				return printResult(cmd.OutOrStdout(), result.Failure[*gmail.HarvestReport](err), "")
			}
			return printResult(cmd.OutOrStdout(), result.Success(report), report.Message())
		},
	}

	cmd.Flags().StringVar(&adminEmail, "admin", "", "Workspace administrator to act as")
	cmd.Flags().StringVar(&mailbox, "mailbox", "", "Mailbox to read, an email address or user id")
	cmd.Flags().StringVar(&start, "start", "", "First day of the range (YYYY/MM/DD)")
	cmd.Flags().StringVar(&end, "end", "", "Day after the last day of the range (YYYY/MM/DD)")
	cmd.Flags().BoolVar(&yesterday, "yesterday", false, "Use yesterday as the range")
	cmd.MarkFlagsMutuallyExclusive("yesterday", "start")
	cmd.MarkFlagsMutuallyExclusive("yesterday", "end")

	return cmd
}
