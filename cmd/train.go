package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/zpam/nbspam/pkg/dataset"
	"github.com/zpam/nbspam/pkg/evaluation"
	"github.com/zpam/nbspam/pkg/learning"
	"github.com/zpam/nbspam/pkg/store"
)

var (
	trainData   string
	trainRatio  float64
	trainSeed   int64
	trainReport string
	trainTop    int
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a Naive Bayes model from a labeled CSV dataset",
	Long: `Train the Naive Bayes classifier on a CSV dataset with id,mensaje,etiqueta
columns (message,label is also accepted).

The dataset is shuffled with a fixed seed and split into a training and a
held-out part. The model is fitted on the training part, saved to the
configured store and evaluated on the held-out part.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		cfg := e.cfg
		if cmd.Flags().Changed("ratio") {
			cfg.Training.TrainRatio = trainRatio
		}
		if cmd.Flags().Changed("seed") {
			cfg.Training.Seed = trainSeed
		}
		if cmd.Flags().Changed("top") {
			cfg.Training.TopWords = trainTop
		}
		if trainReport != "" {
			cfg.Training.ReportPath = trainReport
		}

		records, err := e.loadDataset(trainData)
		if err != nil {
			return err
		}

		train, test, err := dataset.Split(records, cfg.Training.TrainRatio, cfg.Training.Seed)
		if err != nil {
			return err
		}

		fmt.Printf("🧠 nbspam Training\n")
		fmt.Printf("═══════════════════════════════════════\n")
		fmt.Printf("📁 Dataset: %d messages\n", len(records))
		fmt.Printf("📚 Training: %d messages\n", len(train))
		fmt.Printf("🧪 Held out: %d messages\n", len(test))
		fmt.Printf("⚙️  Alpha: %.2f, language: %s\n", cfg.Model.Alpha, cfg.Model.Language)

		pre, err := e.preprocessor()
		if err != nil {
			return err
		}
		c, err := e.newClassifier(pre)
		if err != nil {
			return err
		}

		start := time.Now()
		if err := fit(c, dataset.Examples(train, pre)); err != nil {
			return err
		}
		fmt.Printf("⏱️  Trained in %v\n", time.Since(start).Round(time.Millisecond))

		st, err := e.openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		if err := store.SaveClassifier(cmd.Context(), st, cfg.Model.Name, c); err != nil {
			return fmt.Errorf("failed to save model: %w", err)
		}
		fmt.Printf("💾 Model %q saved to %s store\n", cfg.Model.Name, cfg.Store.Backend)

		if err := c.PrintStats(os.Stdout, cfg.Training.TopWords); err != nil {
			return err
		}

		if len(test) == 0 {
			fmt.Printf("⚠️  No held-out messages, skipping evaluation\n")
			return nil
		}

		testTokens := pre.PreprocessAll(dataset.Messages(test))
		testLabels := dataset.Labels(test)

		res, err := evaluation.Evaluate(c, testTokens, testLabels)
		if err != nil {
			return err
		}
		printMetrics(res)

		dist, err := evaluation.AnalyzeDistribution(dataset.Messages(records), dataset.Labels(records))
		if err != nil {
			return err
		}
		errs, err := evaluation.AnalyzeErrors(c, testTokens, testLabels, dataset.Messages(test))
		if err != nil {
			return err
		}
		printInterpretation(res, dist, errs)

		if cfg.Training.ReportPath == "" {
			return nil
		}
		return writeReport(c, cfg.Training.ReportPath, cfg.Training.ErrorSamples, res, dist, errs)
	},
}

// reportWords is how many words per class the JSON report lists
const reportWords = 20

func writeReport(c *learning.Classifier, path string, samples int, res *evaluation.Results, dist *evaluation.Distribution, errs *evaluation.ErrorAnalysis) error {
	info, err := c.Info()
	if err != nil {
		return err
	}
	ranking, err := c.RankDiscriminativeWords(reportWords)
	if err != nil {
		return err
	}

	report := evaluation.BuildReport(evaluation.ReportInput{
		Info:         info,
		Results:      res,
		Distribution: dist,
		Errors:       errs,
		Ranking:      ranking,
		ErrorSamples: samples,
	})
	if err := evaluation.WriteReport(path, report); err != nil {
		return err
	}
	fmt.Printf("\n📝 Report written to %s\n", path)
	return nil
}

func init() {
	trainCmd.Flags().StringVarP(&trainData, "data", "d", "", "Dataset CSV (defaults to training.dataset)")
	trainCmd.Flags().Float64Var(&trainRatio, "ratio", 0.8, "Fraction of messages used for training")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 42, "Shuffle seed")
	trainCmd.Flags().StringVarP(&trainReport, "report", "r", "", "Write a JSON evaluation report to this path")
	trainCmd.Flags().IntVar(&trainTop, "top", 15, "Top discriminative words to print per class")
}

// fit trains t from scratch on examples
func fit(t learning.Trainer, examples []learning.Example) error {
	if err := t.TrainExamples(examples); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	return nil
}
