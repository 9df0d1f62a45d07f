package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zpam/nbspam/pkg/dataset"
	"github.com/zpam/nbspam/pkg/evaluation"
)

var (
	evaluateData   string
	evaluateReport string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure the saved model against a labeled dataset",
	Long: `Classify every message of a CSV dataset with the saved model and print
accuracy, precision, recall, F1, the confusion matrix and an interpretation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		records, err := e.loadDataset(evaluateData)
		if err != nil {
			return err
		}

		c, st, err := e.loadClassifier(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		messages := dataset.Messages(records)
		labels := dataset.Labels(records)
		tokens := c.Preprocessor().PreprocessAll(messages)

		res, err := evaluation.Evaluate(c, tokens, labels)
		if err != nil {
			return err
		}
		dist, err := evaluation.AnalyzeDistribution(messages, labels)
		if err != nil {
			return err
		}
		errs, err := evaluation.AnalyzeErrors(c, tokens, labels, messages)
		if err != nil {
			return err
		}

		fmt.Printf("🧪 Evaluating model %q on %d messages\n", e.cfg.Model.Name, len(records))
		printMetrics(res)

		samples := e.cfg.Training.ErrorSamples
		printErrors("False positives (ham flagged as spam)", errs.FalsePositives, samples)
		printErrors("False negatives (spam missed)", errs.FalseNegatives, samples)

		printInterpretation(res, dist, errs)

		if evaluateReport == "" {
			return nil
		}
		return writeReport(c, evaluateReport, samples, res, dist, errs)
	},
}

func printErrors(title string, errs []evaluation.Misclassification, limit int) {
	fmt.Printf("\n%s: %d\n", title, len(errs))
	for i, mc := range errs {
		if i >= limit {
			fmt.Printf("  ... %d more\n", len(errs)-limit)
			break
		}
		fmt.Printf("  - %q (spam=%.4f)\n", mc.Message, mc.SpamProb)
	}
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateData, "data", "d", "", "Dataset CSV (defaults to training.dataset)")
	evaluateCmd.Flags().StringVarP(&evaluateReport, "report", "r", "", "Write a JSON evaluation report to this path")
}
