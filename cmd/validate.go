package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/flashcards/internal/deck"
	"github.com/arcanaland/flashcards/internal/validator"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [path_or_url]",
	Short: "Validate a card set library",
	Long: `Validate checks that a resource directory or URL holds a well-formed catalog and that
every card set it lists can be read and matches its catalog entry.
Without an argument the configured resources are checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		location := cfg.Resources
		if len(args) == 1 {
			location = args[0]
		}

		if !isURL(location) {
			if _, err := os.Stat(location); os.IsNotExist(err) {
				return fmt.Errorf("resource directory not found: %s", location)
			}
		}

		timeout, err := cfg.Timeout()
		if err != nil {
			return err
		}

		// Create validator and run validation
		v := validator.NewValidator(deck.NewSource(location, timeout), cfg.Catalog)
		results, err := v.Validate(cmd.Context())
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}

		// Display validation results
		fmt.Println("Validation Results:")
		fmt.Println("-------------------")

		if results.Valid() {
			color.Green("✅ Library '%s' is valid.", location)
		} else {
			color.Red("❌ Library '%s' has %d validation errors:", location, len(results.Errors))
			for i, err := range results.Errors {
				fmt.Printf("%d. %s\n", i+1, err)
			}
		}

		if len(results.Warnings) > 0 {
			fmt.Println()
			color.Yellow("Warnings:")
			for i, warn := range results.Warnings {
				fmt.Printf("%d. %s\n", i+1, warn)
			}
		}

		if !results.Valid() {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(validateCmd)
}
