package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/storefront"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of storefront",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("storefront version %s\n", strings.TrimSpace(storefront.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
