package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newJobsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect job records",
	}
	cmd.AddCommand(newJobsListCmd(configPath))
	return cmd
}

func newJobsListCmd(configPath *string) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs for a user, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			jobs, err := a.jobs.ListByUser(context.Background(), userID)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no jobs")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDOCUMENT\tSTATUS\tTOKEN\tSUBMITTED")
			for _, j := range jobs {
				token := j.DeviceToken
				if token == "" {
					token = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					j.ID, j.DocumentName, j.Status, token, humanize.Time(j.SubmittedAt))
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User ID to list jobs for")
	cmd.MarkFlagRequired("user")
	return cmd
}
