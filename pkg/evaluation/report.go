package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zpam/nbspam/pkg/learning"
)

// Report is the JSON document written after training
type Report struct {
	GeneratedAt     time.Time         `json:"generated_at"`
	Model           ModelSummary      `json:"model"`
	Data            *Distribution     `json:"data"`
	Results         *Results          `json:"results"`
	Errors          ErrorSummary      `json:"errors"`
	ImportantWords  *learning.Ranking `json:"important_words"`
	Interpretation  *Interpretation   `json:"interpretation"`
	Recommendations []string          `json:"recommendations"`
}

// ModelSummary names the model and its smoothing
type ModelSummary struct {
	Type  string              `json:"type"`
	Alpha float64             `json:"alpha"`
	Info  *learning.ModelInfo `json:"info,omitempty"`
}

// ErrorSummary counts misclassifications and keeps a few examples
type ErrorSummary struct {
	FalsePositives        int                 `json:"false_positives"`
	FalseNegatives        int                 `json:"false_negatives"`
	FalsePositiveShare    float64             `json:"false_positive_share"`
	FalseNegativeShare    float64             `json:"false_negative_share"`
	FalsePositiveExamples []Misclassification `json:"false_positive_examples"`
	FalseNegativeExamples []Misclassification `json:"false_negative_examples"`
}

// ReportInput gathers everything BuildReport needs
type ReportInput struct {
	Info         *learning.ModelInfo
	Results      *Results
	Distribution *Distribution
	Errors       *ErrorAnalysis
	Ranking      *learning.Ranking
	// ErrorSamples caps the examples kept per error kind
	ErrorSamples int
}

// BuildReport assembles a report from evaluation outputs
func BuildReport(in ReportInput) *Report {
	r := &Report{
		GeneratedAt:     time.Now().UTC(),
		Model:           ModelSummary{Type: "multinomial naive bayes", Info: in.Info},
		Data:            in.Distribution,
		Results:         in.Results,
		ImportantWords:  in.Ranking,
		Interpretation:  Interpret(in.Results),
		Recommendations: Recommend(in.Results, in.Distribution, in.Errors),
	}
	if in.Info != nil {
		r.Model.Alpha = in.Info.Alpha
	}
	if in.Errors != nil {
		total := in.Errors.Total()
		r.Errors = ErrorSummary{
			FalsePositives:        len(in.Errors.FalsePositives),
			FalseNegatives:        len(in.Errors.FalseNegatives),
			FalsePositiveShare:    ratio(len(in.Errors.FalsePositives), total),
			FalseNegativeShare:    ratio(len(in.Errors.FalseNegatives), total),
			FalsePositiveExamples: head(in.Errors.FalsePositives, in.ErrorSamples),
			FalseNegativeExamples: head(in.Errors.FalseNegatives, in.ErrorSamples),
		}
	}
	return r
}

func head[T any](xs []T, n int) []T {
	if n >= 0 && len(xs) > n {
		return xs[:n]
	}
	return xs
}

// WriteReport writes r as indented JSON, creating parent directories
func WriteReport(path string, r *Report) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
