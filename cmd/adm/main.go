// Package main provides the entry point for the servicelog admin CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"servicelog/cmd/adm/commands"
	"servicelog/internal/config"
	"servicelog/internal/di"
	"servicelog/internal/observability"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Quiet logging and no telemetry exporters for the CLI
	cfg.Server.LogLevel = "error"
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	_, _, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "servicelog-adm")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}

	// The store API key may be absent from config and env on an operator
	// machine; prompt for it rather than failing.
	if cfg.TableStore.APIKey == "" {
		fmt.Fprint(os.Stderr, "Table store API key: ")
		keyBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read API key: %v\n", err)
			os.Exit(1)
		}
		cfg.TableStore.APIKey = strings.TrimSpace(string(keyBytes))
	}

	container := di.NewServiceContainer(cfg, logger)
	if err := container.Initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize services: %v\n", err)
		os.Exit(1)
	}

	logs, err := container.GetServiceLogService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get service log service: %v\n", err)
		os.Exit(1)
	}
	data, err := container.GetDataService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get data service: %v\n", err)
		os.Exit(1)
	}
	reports, err := container.GetReportService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get report service: %v\n", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "Servicelog Administration Tool",
		Long: `Servicelog Administration Tool

CLI for administering the service-call tracking backend. Provides the
approval queue for staged submissions and a dashboard summary.`,

		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(commands.PendingCommands(logs, logger))
	rootCmd.AddCommand(commands.SummaryCommand(data, reports, logger))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
