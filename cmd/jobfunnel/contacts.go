package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobfunnel-engine/internal/dedup"
	"jobfunnel-engine/internal/domain"
)

var (
	contactTitle    string
	contactURL      string
	contactPriority bool
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage people associated with tracked companies",
}

var contactsAddCmd = &cobra.Command{
	Use:   "add <company-id> <name>",
	Short: "Record a contact, deduplicated on the normalized name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, log, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		companyID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid company id %q", args[0])
		}

		resolver := dedup.NewResolver(db, log)
		added, err := resolver.ResolveContact(context.Background(), domain.Contact{
			CompanyID:  companyID,
			Name:       args[1],
			Title:      contactTitle,
			ProfileURL: contactURL,
			Priority:   contactPriority,
			Confidence: "manual",
		})
		if err != nil {
			return err
		}
		if !added {
			log.Info("contact already known", zap.String("name", args[1]))
			return nil
		}
		log.Info("contact recorded", zap.String("name", args[1]), zap.Int64("company_id", companyID))
		return nil
	},
}

var contactsListCmd = &cobra.Command{
	Use:   "list <company-id>",
	Short: "List contacts for a company, decision-makers first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, _, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		companyID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid company id %q", args[0])
		}

		contacts, err := db.ListContacts(context.Background(), companyID)
		if err != nil {
			return err
		}
		if len(contacts) == 0 {
			fmt.Println("No contacts recorded.")
			return nil
		}
		for _, c := range contacts {
			marker := " "
			if c.Priority {
				marker = "*"
			}
			fmt.Printf("  %s %s", marker, c.Name)
			if c.Title != "" {
				fmt.Printf(" (%s)", c.Title)
			}
			if c.ProfileURL != "" {
				fmt.Printf("  %s", c.ProfileURL)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	contactsAddCmd.Flags().StringVar(&contactTitle, "title", "", "job title")
	contactsAddCmd.Flags().StringVar(&contactURL, "url", "", "profile url")
	contactsAddCmd.Flags().BoolVar(&contactPriority, "priority", false, "mark as a decision-maker")
	contactsCmd.AddCommand(contactsAddCmd, contactsListCmd)
	rootCmd.AddCommand(contactsCmd)
}
