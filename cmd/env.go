package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/zpam/nbspam/pkg/config"
	"github.com/zpam/nbspam/pkg/dataset"
	"github.com/zpam/nbspam/pkg/evaluation"
	"github.com/zpam/nbspam/pkg/learning"
	"github.com/zpam/nbspam/pkg/store"
	"github.com/zpam/nbspam/pkg/textproc"
)

// env is the configuration and logger shared by a single command run
type env struct {
	cfg     *config.Config
	log     *slog.Logger
	logFile *os.File
}

func setup() (*env, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if modelName != "" {
		cfg.Model.Name = modelName
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	e := &env{cfg: cfg}
	if cfg.Logging.File == "" {
		e.log = cfg.Logging.NewLogger(os.Stderr)
		return e, nil
	}

	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	e.logFile = f
	e.log = cfg.Logging.NewLogger(f)
	return e, nil
}

func (e *env) Close() {
	if e.logFile != nil {
		e.logFile.Close()
	}
}

func (e *env) preprocessor() (*textproc.Preprocessor, error) {
	return textproc.New(textproc.Language(e.cfg.Model.Language))
}

func (e *env) openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, e.cfg.Store, e.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", e.cfg.Store.Backend, err)
	}
	return st, nil
}

func (e *env) newClassifier(pre *textproc.Preprocessor) (*learning.Classifier, error) {
	return learning.NewClassifier(e.cfg.Model.Alpha,
		learning.WithPreprocessor(pre),
		learning.WithLogger(e.log))
}

// loadClassifier opens the store and loads the configured model
func (e *env) loadClassifier(ctx context.Context) (*learning.Classifier, store.Store, error) {
	pre, err := e.preprocessor()
	if err != nil {
		return nil, nil, err
	}
	st, err := e.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	c, err := store.LoadClassifier(ctx, st, e.cfg.Model.Name,
		learning.WithPreprocessor(pre),
		learning.WithLogger(e.log))
	if errors.Is(err, store.ErrNotFound) {
		st.Close()
		return nil, nil, fmt.Errorf("model %q not found in %s store, run 'nbspam train' first",
			e.cfg.Model.Name, e.cfg.Store.Backend)
	}
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to load model: %w", err)
	}
	return c, st, nil
}

func (e *env) loadDataset(path string) ([]dataset.Record, error) {
	if path == "" {
		path = e.cfg.Training.Dataset
	}
	records, err := dataset.LoadCSV(path, e.log)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s has no usable rows", path)
	}
	return records, nil
}

func labelText(l learning.Label) string {
	if l == learning.Spam {
		return color.New(color.FgRed, color.OpBold).Sprint("SPAM")
	}
	return color.New(color.FgGreen, color.OpBold).Sprint("HAM")
}

func printMetrics(res *evaluation.Results) {
	fmt.Printf("\n📊 Evaluation Results\n")
	fmt.Printf("═══════════════════════════════════════\n")
	fmt.Printf("  Accuracy:  %.4f (%.2f%%)\n", res.Accuracy, res.Accuracy*100)
	fmt.Printf("  Precision: %.4f (%.2f%%)\n", res.Precision, res.Precision*100)
	fmt.Printf("  Recall:    %.4f (%.2f%%)\n", res.Recall, res.Recall*100)
	fmt.Printf("  F1-score:  %.4f (%.2f%%)\n", res.F1, res.F1*100)

	fmt.Printf("\n🔢 Confusion Matrix\n")
	m := res.Confusion
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"", "Predicted spam", "Predicted ham"})
	table.SetAutoFormatHeaders(false)
	table.Append([]string{"Actual spam", fmt.Sprintf("%d (TP)", m.TP), fmt.Sprintf("%d (FN)", m.FN)})
	table.Append([]string{"Actual ham", fmt.Sprintf("%d (FP)", m.FP), fmt.Sprintf("%d (TN)", m.TN)})
	table.Render()
}

func printInterpretation(res *evaluation.Results, d *evaluation.Distribution, e *evaluation.ErrorAnalysis) {
	in := evaluation.Interpret(res)
	fmt.Printf("\n🎯 Overall: %s\n", in.Level)
	for _, s := range in.Strengths {
		fmt.Printf("  ✅ %s\n", s)
	}
	for _, w := range in.Weaknesses {
		fmt.Printf("  ⚠️  %s\n", w)
	}

	fmt.Printf("\n💡 Recommendations:\n")
	for i, r := range evaluation.Recommend(res, d, e) {
		fmt.Printf("  %d. %s\n", i+1, r)
	}
}
