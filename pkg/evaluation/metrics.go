// Package evaluation measures a trained classifier against labeled data.
package evaluation

import (
	"fmt"

	"github.com/zpam/nbspam/pkg/learning"
)

// ConfusionMatrix counts outcomes with spam as the positive class
type ConfusionMatrix struct {
	TP int `json:"tp"`
	TN int `json:"tn"`
	FP int `json:"fp"`
	FN int `json:"fn"`
}

// Add records one prediction
func (m *ConfusionMatrix) Add(actual, predicted learning.Label) {
	switch {
	case actual == learning.Spam && predicted == learning.Spam:
		m.TP++
	case actual == learning.Ham && predicted == learning.Ham:
		m.TN++
	case actual == learning.Ham && predicted == learning.Spam:
		m.FP++
	default:
		m.FN++
	}
}

// Total is the number of predictions recorded
func (m ConfusionMatrix) Total() int {
	return m.TP + m.TN + m.FP + m.FN
}

// Accuracy returns (TP+TN)/total, or 0 on an empty matrix
func Accuracy(m ConfusionMatrix) float64 {
	return ratio(m.TP+m.TN, m.Total())
}

// Precision returns TP/(TP+FP), or 0 when nothing was predicted spam
func Precision(m ConfusionMatrix) float64 {
	return ratio(m.TP, m.TP+m.FP)
}

// Recall returns TP/(TP+FN), or 0 when there is no actual spam
func Recall(m ConfusionMatrix) float64 {
	return ratio(m.TP, m.TP+m.FN)
}

// F1 is the harmonic mean of precision and recall
func F1(m ConfusionMatrix) float64 {
	p, r := Precision(m), Recall(m)
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Results holds the metrics of one evaluation run
type Results struct {
	Accuracy  float64         `json:"accuracy"`
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1        float64         `json:"f1_score"`
	Confusion ConfusionMatrix `json:"confusion_matrix"`
}

// Mean averages the four headline metrics
func (r *Results) Mean() float64 {
	return (r.Accuracy + r.Precision + r.Recall + r.F1) / 4
}

// ResultsFrom computes every metric from a confusion matrix
func ResultsFrom(m ConfusionMatrix) *Results {
	return &Results{
		Accuracy:  Accuracy(m),
		Precision: Precision(m),
		Recall:    Recall(m),
		F1:        F1(m),
		Confusion: m,
	}
}

// Evaluate predicts every example with p and scores the outcome
func Evaluate(p learning.Predictor, tokens [][]string, labels []learning.Label) (*Results, error) {
	if len(tokens) != len(labels) {
		return nil, fmt.Errorf("%w: %d token sequences but %d labels",
			learning.ErrInvalidArgument, len(tokens), len(labels))
	}

	var m ConfusionMatrix
	for i, seq := range tokens {
		predicted, err := p.Predict(learning.TokenSequence(seq))
		if err != nil {
			return nil, fmt.Errorf("failed to predict example %d: %w", i, err)
		}
		m.Add(labels[i], predicted)
	}
	return ResultsFrom(m), nil
}
