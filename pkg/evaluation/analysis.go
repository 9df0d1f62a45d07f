package evaluation

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"github.com/zpam/nbspam/pkg/learning"
)

// balanceTolerance is the largest |spam-ham|/total still called balanced
const balanceTolerance = 0.1

// ClassShare is the size of one class in a dataset
type ClassShare struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Distribution describes the class balance and message lengths of a dataset
type Distribution struct {
	Total        int        `json:"total_messages"`
	Spam         ClassShare `json:"spam"`
	Ham          ClassShare `json:"ham"`
	AvgWordsSpam float64    `json:"avg_words_spam"`
	AvgWordsHam  float64    `json:"avg_words_ham"`
	AvgWordsAll  float64    `json:"avg_words_all"`
	Balanced     bool       `json:"balanced"`
}

// AnalyzeDistribution summarizes raw messages and their labels
func AnalyzeDistribution(messages []string, labels []learning.Label) (*Distribution, error) {
	if len(messages) != len(labels) {
		return nil, fmt.Errorf("%w: %d messages but %d labels",
			learning.ErrInvalidArgument, len(messages), len(labels))
	}

	var spamWords, hamWords []int
	for i, msg := range messages {
		n := len(strings.Fields(msg))
		if labels[i] == learning.Spam {
			spamWords = append(spamWords, n)
		} else {
			hamWords = append(hamWords, n)
		}
	}

	total := len(messages)
	d := &Distribution{
		Total:        total,
		Spam:         ClassShare{Count: len(spamWords), Percent: 100 * ratio(len(spamWords), total)},
		Ham:          ClassShare{Count: len(hamWords), Percent: 100 * ratio(len(hamWords), total)},
		AvgWordsSpam: mean(spamWords),
		AvgWordsHam:  mean(hamWords),
		AvgWordsAll:  mean(append(append([]int{}, spamWords...), hamWords...)),
	}
	if total > 0 {
		d.Balanced = math.Abs(float64(d.Spam.Count-d.Ham.Count))/float64(total) < balanceTolerance
	}
	return d, nil
}

func mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	return float64(lo.Sum(xs)) / float64(len(xs))
}

// Misclassification is one wrongly predicted message
type Misclassification struct {
	Message   string         `json:"message"`
	Actual    learning.Label `json:"actual"`
	Predicted learning.Label `json:"predicted"`
	SpamProb  float64        `json:"spam_probability"`
	HamProb   float64        `json:"ham_probability"`
}

// ErrorAnalysis splits misclassifications into false positives (ham
// called spam) and false negatives (spam called ham).
type ErrorAnalysis struct {
	FalsePositives []Misclassification `json:"false_positives"`
	FalseNegatives []Misclassification `json:"false_negatives"`
}

// Total is the number of misclassified messages
func (e *ErrorAnalysis) Total() int {
	return len(e.FalsePositives) + len(e.FalseNegatives)
}

// AnalyzeErrors classifies every example and keeps the mistakes.
// originals are the raw messages reported alongside each mistake.
func AnalyzeErrors(p learning.Predictor, tokens [][]string, labels []learning.Label, originals []string) (*ErrorAnalysis, error) {
	if len(tokens) != len(labels) || len(tokens) != len(originals) {
		return nil, fmt.Errorf("%w: tokens, labels and messages differ in length",
			learning.ErrInvalidArgument)
	}

	errs := &ErrorAnalysis{
		FalsePositives: []Misclassification{},
		FalseNegatives: []Misclassification{},
	}
	for i, seq := range tokens {
		predicted, probs, err := p.Classify(learning.TokenSequence(seq))
		if err != nil {
			return nil, fmt.Errorf("failed to classify example %d: %w", i, err)
		}
		if predicted == labels[i] {
			continue
		}
		mc := Misclassification{
			Message:   originals[i],
			Actual:    labels[i],
			Predicted: predicted,
			SpamProb:  probs.Spam,
			HamProb:   probs.Ham,
		}
		if labels[i] == learning.Ham {
			errs.FalsePositives = append(errs.FalsePositives, mc)
		} else {
			errs.FalseNegatives = append(errs.FalseNegatives, mc)
		}
	}
	return errs, nil
}

// Level grades overall performance
type Level string

const (
	LevelExcellent  Level = "excellent"
	LevelGood       Level = "good"
	LevelAcceptable Level = "acceptable"
	LevelNeedsWork  Level = "needs improvement"
)

// Interpretation is a qualitative reading of evaluation results
type Interpretation struct {
	Level      Level    `json:"level"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// Interpret grades results by the mean of the four metrics
func Interpret(r *Results) *Interpretation {
	in := &Interpretation{Strengths: []string{}, Weaknesses: []string{}}

	switch avg := r.Mean(); {
	case avg >= 0.9:
		in.Level = LevelExcellent
	case avg >= 0.8:
		in.Level = LevelGood
	case avg >= 0.7:
		in.Level = LevelAcceptable
	default:
		in.Level = LevelNeedsWork
	}

	if r.Accuracy >= 0.85 {
		in.Strengths = append(in.Strengths, "High overall accuracy")
	}
	if r.Precision >= 0.85 {
		in.Strengths = append(in.Strengths, "Few legitimate messages flagged as spam")
	}
	if r.Recall >= 0.85 {
		in.Strengths = append(in.Strengths, "Catches most spam")
	}
	if r.F1 >= 0.85 {
		in.Strengths = append(in.Strengths, "Good balance between precision and recall")
	}
	if r.Precision < 0.7 {
		in.Weaknesses = append(in.Weaknesses, "Many legitimate messages flagged as spam")
	}
	if r.Recall < 0.7 {
		in.Weaknesses = append(in.Weaknesses, "Much spam goes undetected")
	}
	if r.Accuracy < 0.75 {
		in.Weaknesses = append(in.Weaknesses, "Low overall accuracy")
	}
	return in
}

// smallDataset is the message count below which more data is recommended
const smallDataset = 200

// Recommend suggests next steps from the results, data and errors
func Recommend(r *Results, d *Distribution, e *ErrorAnalysis) []string {
	var recs []string
	if d != nil && !d.Balanced {
		recs = append(recs, "Balance the dataset by adding examples of the minority class")
	}
	if r.Precision < 0.8 {
		recs = append(recs, "Improve precision: review preprocessing and add more ham examples")
	}
	if r.Recall < 0.8 {
		recs = append(recs, "Improve recall: add more spam examples to training")
	}
	if e != nil {
		if len(e.FalsePositives) > len(e.FalseNegatives) {
			recs = append(recs, "Reduce false positives: strengthen ham features")
		}
		if len(e.FalseNegatives) > len(e.FalsePositives) {
			recs = append(recs, "Reduce false negatives: improve detection of spam patterns")
		}
	}
	if d != nil && d.Total < smallDataset {
		recs = append(recs, "Grow the dataset to improve generalization")
	}
	recs = append(recs,
		"Consider word n-grams or TF-IDF weighting",
		"Manually validate dataset labels")
	return recs
}
