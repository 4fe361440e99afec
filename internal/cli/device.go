package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newDeviceCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Query the print device",
	}
	cmd.AddCommand(newDeviceStatusCmd(configPath), newDeviceQueueCmd(configPath))
	return cmd
}

func newDeviceStatusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show device availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			res := a.gateway.Status(context.Background())
			fmt.Fprintf(cmd.OutOrStdout(), "available: %t\nstatus: %s\n", res.Available, res.Status)
			if res.Message != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "detail: %s\n", res.Message)
			}
			return nil
		},
	}
}

func newDeviceQueueCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show the device queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			listing := a.gateway.QueryQueue(context.Background())
			if listing.Message != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", listing.Message)
			}
			if len(listing.Jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "queue is empty")
				return nil
			}
			for _, qj := range listing.Jobs {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-12s %-8s %s\n", qj.Rank, qj.Owner, qj.Token, qj.File)
			}
			return nil
		},
	}
}
