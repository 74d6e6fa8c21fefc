package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobfunnel-engine/internal/secrets"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage the Gemini API key in the OS keychain",
}

var apikeySetCmd = &cobra.Command{
	Use:   "set <key>",
	Short: "Store the API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, _, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := secrets.SetAPIKey(cfg.AI.KeyringAccount, args[0]); err != nil {
			return err
		}
		fmt.Println("API key stored.")
		return nil
	},
}

var apikeyDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the API key",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, db, _, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := secrets.DeleteAPIKey(cfg.AI.KeyringAccount); err != nil {
			return err
		}
		fmt.Println("API key removed.")
		return nil
	},
}

func init() {
	apikeyCmd.AddCommand(apikeySetCmd, apikeyDeleteCmd)
	rootCmd.AddCommand(apikeyCmd)
}
