package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSweepCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run a retention sweep now",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			res := a.sweeper.RunAll(context.Background())
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d uploaded files, %d scanned files, %d job records\n",
				res.UploadedDeleted, res.ScannedDeleted, res.JobsDeleted)
			return nil
		},
	}
}
