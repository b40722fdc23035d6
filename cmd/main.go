package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/quorumfed/aggregator/cmd/cli"
	"github.com/quorumfed/aggregator/internal/core/config"
	"github.com/quorumfed/aggregator/internal/core/logging"
)

var logMode string

var rootCmd = &cobra.Command{
	Use:   "aggregator",
	Short: "Federated aggregation server with quorum-gated commits",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch logMode {
		case "debug", "pretty", "info", "prod", "test":
			logging.InitWithMode(logging.LogMode(logMode))
		default:
			logging.InitWithMode(logging.LogModePretty)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cli.RunServer()
	},
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the aggregation server",
	Run: func(cmd *cobra.Command, args []string) {
		cli.RunServer()
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a trainer address with a running server",
	Run: func(cmd *cobra.Command, args []string) {
		address, _ := cmd.Flags().GetString("address")

		cfg, err := config.GetConfigManager().GetConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}

		if err := cli.RegisterTrainer(address, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register trainer: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Registered trainer %s\n", address)
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a weight delta on behalf of a trainer",
	Run: func(cmd *cobra.Command, args []string) {
		address, _ := cmd.Flags().GetString("address")
		values, _ := cmd.Flags().GetString("values")

		cfg, err := config.GetConfigManager().GetConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}

		outcome, err := cli.SubmitUpdate(address, values, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to submit update: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Submitted update for %s: %s\n", address, outcome)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logMode, "log", "pretty", "Log mode: debug, pretty, info, prod, test")

	registerCmd.Flags().String("address", "", "Trainer address in hex format")
	if err := registerCmd.MarkFlagRequired("address"); err != nil {
		log.Fatalf("Error marking flag required: %v", err)
	}

	submitCmd.Flags().String("address", "", "Trainer address in hex format")
	submitCmd.Flags().String("values", "", "Comma-separated delta values, one per model coordinate")
	if err := submitCmd.MarkFlagRequired("address"); err != nil {
		log.Fatalf("Error marking flag required: %v", err)
	}
	if err := submitCmd.MarkFlagRequired("values"); err != nil {
		log.Fatalf("Error marking flag required: %v", err)
	}

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(submitCmd)
}
