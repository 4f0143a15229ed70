package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"servicelog/internal/models"
	"servicelog/internal/observability"
	"servicelog/internal/services"
)

// SummaryCommand returns the dashboard-summary command.
func SummaryCommand(data *services.DataService, reports *services.ReportService, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard KPI summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			calls, err := data.ServiceLogs(cmd.Context())
			if err != nil {
				return err
			}
			now := time.Now()
			summary := reports.Summary(calls, now)

			fmt.Printf("Total calls:        %d\n", summary.Total)
			for _, status := range models.AllStatuses {
				fmt.Printf("  %-18s %d\n", string(status)+":", summary.StatusCounts[status])
			}
			fmt.Printf("Last 30 days:       %d\n", summary.Last30Days)
			fmt.Printf("Prior 30 days:      %d\n", summary.Prior30Days)
			fmt.Printf("Trend delta:        %+d\n", summary.TrendDelta)
			fmt.Printf("Mean resolution:    %.1f days\n", summary.MeanResolutionDays)

			overdue := reports.OverdueCalls(calls, now)
			if len(overdue.Entries) > 0 {
				fmt.Printf("\nOverdue (open > threshold):\n")
				for _, e := range overdue.Entries {
					fmt.Printf("  %s  %-25s  %d days open\n", e.Call.CallID, e.Call.CustomerName, e.DaysOpen)
				}
				if overdue.Overflow > 0 {
					fmt.Printf("  ... and %d more\n", overdue.Overflow)
				}
			}
			return nil
		},
	}
}
