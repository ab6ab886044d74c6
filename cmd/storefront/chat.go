package main

import (
	"os"

	"github.com/aretw0/storefront/internal/cli"
	"github.com/aretw0/storefront/pkg/adapters/terminal"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the storefront from the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		actor, _ := cmd.Flags().GetInt64("actor")
		name, _ := cmd.Flags().GetString("name")
		plain, _ := cmd.Flags().GetBool("plain")
		debug, _ := cmd.Flags().GetBool("debug")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Chat(ctx, cfg, os.Stdin, os.Stdout, cli.ChatOptions{
			ActorID:  actor,
			Username: name,
			Pretty:   !plain && terminal.IsInteractive(os.Stdout),
			Debug:    debug,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Int64("actor", 1, "Actor ID to chat as (add it to admins for the admin menu)")
	chatCmd.Flags().String("name", "console", "Display name of the actor")
	chatCmd.Flags().Bool("plain", false, "Disable markdown rendering and the banner")
	chatCmd.Flags().Bool("debug", false, "Show info and debug logs on stderr")
}
