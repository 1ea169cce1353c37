package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexfirm/lex/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo dataset",
	Long: `Wipe the store and load the demo law firm dataset: team members,
clients with notes, cases, and tasks.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := store.Seed(cmd.Context(), st, logger); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	fmt.Println("Demo dataset loaded.")
	return nil
}
