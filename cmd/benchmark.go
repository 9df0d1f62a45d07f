package cmd

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
	"github.com/zpam/nbspam/pkg/dataset"
	"github.com/zpam/nbspam/pkg/learning"
	"github.com/zpam/nbspam/pkg/profiler"
)

var (
	benchmarkData       string
	benchmarkRuns       int
	benchmarkConcurrent int
	benchmarkGenerate   int
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Measure training and prediction latency",
	Long: `Time preprocessing, prediction and training on a dataset and print
latency percentiles per operation.

Messages come from --data, or are generated when --generate is set.
Prediction runs against a model trained on the same messages, so no saved
model is needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if benchmarkRuns <= 0 {
			return fmt.Errorf("runs must be greater than 0")
		}
		if benchmarkConcurrent <= 0 {
			return fmt.Errorf("concurrent must be greater than 0")
		}

		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		var records []dataset.Record
		if benchmarkGenerate > 0 {
			records = dataset.NewGenerator(e.cfg.Training.Seed).Generate(benchmarkGenerate)
		} else if records, err = e.loadDataset(benchmarkData); err != nil {
			return err
		}

		pre, err := e.preprocessor()
		if err != nil {
			return err
		}

		fmt.Printf("🚀 nbspam Benchmark\n")
		fmt.Printf("📧 Messages: %d\n", len(records))
		fmt.Printf("🔄 Runs: %d\n", benchmarkRuns)
		fmt.Printf("⚡ Concurrent workers: %d\n\n", benchmarkConcurrent)

		prof := profiler.NewProfiler()
		messages := dataset.Messages(records)
		labels := dataset.Labels(records)

		var c *learning.Classifier
		tokens := make([][]string, len(messages))
		for run := 0; run < benchmarkRuns; run++ {
			for i, msg := range messages {
				timer := prof.Start(profiler.OpPreprocess)
				tokens[i] = pre.Preprocess(msg)
				timer.Stop()
			}

			c, err = e.newClassifier(pre)
			if err != nil {
				return err
			}
			if err := prof.Measure(profiler.OpTrain, func() error {
				return c.Train(tokens, labels)
			}); err != nil {
				return err
			}
		}

		for _, seq := range tokens {
			if err := prof.Measure(profiler.OpPredict, func() error {
				_, err := c.Predict(learning.TokenSequence(seq))
				return err
			}); err != nil {
				return err
			}
		}

		if err := runPredictions(c, messages, prof); err != nil {
			return err
		}

		prof.WriteReport(os.Stdout)

		stats := prof.GetStats(profiler.OpClassify)
		fmt.Printf("\n📈 Classification throughput: %.0f messages/second per worker\n", stats.Throughput())
		return nil
	},
}

// runPredictions classifies every message benchmarkRuns times, spread over
// benchmarkConcurrent workers sharing one classifier
func runPredictions(c *learning.Classifier, messages []string, prof *profiler.Profiler) error {
	jobs := make(chan string)
	errs := make(chan error, benchmarkConcurrent)

	var wg sync.WaitGroup
	for i := 0; i < benchmarkConcurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range jobs {
				err := prof.Measure(profiler.OpClassify, func() error {
					_, _, err := c.Classify(learning.RawText(msg))
					return err
				})
				if err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	var sendErr error
send:
	for run := 0; run < benchmarkRuns; run++ {
		for _, msg := range messages {
			select {
			case jobs <- msg:
			case sendErr = <-errs:
				break send
			}
		}
	}
	close(jobs)
	wg.Wait()

	if sendErr != nil {
		return sendErr
	}
	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

func init() {
	benchmarkCmd.Flags().StringVarP(&benchmarkData, "data", "d", "", "Dataset CSV (defaults to training.dataset)")
	benchmarkCmd.Flags().IntVarP(&benchmarkRuns, "runs", "r", 3, "Number of benchmark runs")
	benchmarkCmd.Flags().IntVar(&benchmarkConcurrent, "concurrent", runtime.NumCPU(), "Concurrent prediction workers")
	benchmarkCmd.Flags().IntVarP(&benchmarkGenerate, "generate", "g", 0, "Benchmark on this many generated messages instead of --data")
}
