package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zpam/nbspam/pkg/dataset"
	"github.com/zpam/nbspam/pkg/learning"
	"github.com/zpam/nbspam/pkg/store"
)

var updateData string

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fold new labeled messages into a saved model",
	Long: `Load the configured model, add the word counts of a CSV dataset to it
without discarding previous knowledge, and save it back.

Models saved by older versions lack message counts, so their priors are
estimated; a warning is logged when that happens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if updateData == "" {
			return fmt.Errorf("--data is required")
		}

		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		records, err := e.loadDataset(updateData)
		if err != nil {
			return err
		}

		c, st, err := e.loadClassifier(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		before, err := c.Info()
		if err != nil {
			return err
		}

		if err := fold(c, dataset.Examples(records, c.Preprocessor())); err != nil {
			return err
		}

		if err := store.SaveClassifier(cmd.Context(), st, e.cfg.Model.Name, c); err != nil {
			return fmt.Errorf("failed to save model: %w", err)
		}

		after, err := c.Info()
		if err != nil {
			return err
		}

		fmt.Printf("🔄 Model %q updated with %d messages\n", e.cfg.Model.Name, len(records))
		fmt.Printf("  Vocabulary: %d -> %d\n", before.VocabularySize, after.VocabularySize)
		fmt.Printf("  P(spam): %.4f -> %.4f\n", before.PriorSpam, after.PriorSpam)
		if !after.CountsExact {
			fmt.Printf("  ⚠️  Priors are estimated (model lacks message counts)\n")
		}
		return nil
	},
}

// fold merges examples into an already trained t
func fold(t learning.Trainer, examples []learning.Example) error {
	if err := t.IncrementalUpdateExamples(examples); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	return nil
}

func init() {
	updateCmd.Flags().StringVarP(&updateData, "data", "d", "", "CSV with the new labeled messages")
}
