package main

import (
	"os"

	"github.com/aretw0/storefront/internal/cli"
	"github.com/spf13/cobra"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Query stored orders",
}

var ordersLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the orders of an actor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, _ := cmd.Flags().GetInt64("actor")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		records, closeRecords, err := cli.OpenRecords(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeRecords() }()

		return cli.ListOrders(cmd.Context(), records, actor, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersLsCmd)
	ordersLsCmd.Flags().Int64("actor", 0, "Actor whose orders to list")
	_ = ordersLsCmd.MarkFlagRequired("actor")
}
