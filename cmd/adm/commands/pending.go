// Package commands contains the adm CLI subcommands.
package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"servicelog/internal/observability"
	"servicelog/internal/services"
)

// PendingCommands returns the pending-submission command group.
func PendingCommands(logs *services.ServiceLogService, logger *observability.Logger) *cobra.Command {
	pendingCmd := &cobra.Command{
		Use:   "pending",
		Short: "Manage staged submissions awaiting approval",
	}

	var showAll bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List pending submissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := logs.Pending(cmd.Context(), !showAll)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("No pending submissions.")
				return nil
			}
			for _, row := range rows {
				status := "pending"
				if row.ReviewStatus != nil && *row.ReviewStatus != "" {
					status = *row.ReviewStatus
				}
				fmt.Printf("%s  %-10s  %-25s  %-20s  %s\n",
					row.CallID, status, row.CustomerName, row.InstrumentName,
					row.SubmittedAt.Format("2006-01-02 15:04"))
			}
			fmt.Printf("%d submission(s)\n", len(rows))
			return nil
		},
	}
	listCmd.Flags().BoolVar(&showAll, "all", false, "include already-reviewed submissions")

	approveCmd := &cobra.Command{
		Use:   "approve <call_id>",
		Short: "Approve a pending submission and promote it to the live table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callID := args[0]
			if err := logs.Approve(cmd.Context(), callID, time.Now()); err != nil {
				return err
			}
			fmt.Printf("Approved %s\n", callID)
			return nil
		},
	}

	rejectCmd := &cobra.Command{
		Use:   "reject <call_id>",
		Short: "Reject a pending submission without promoting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callID := args[0]
			if err := logs.Reject(cmd.Context(), callID, time.Now()); err != nil {
				return err
			}
			fmt.Printf("Rejected %s\n", callID)
			return nil
		},
	}

	pendingCmd.AddCommand(listCmd, approveCmd, rejectCmd)
	return pendingCmd
}
