package evaluation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zpam/nbspam/pkg/learning"
)

func trainedClassifier(t *testing.T) *learning.Classifier {
	t.Helper()
	c, err := learning.NewClassifier(1.0)
	require.NoError(t, err)
	err = c.Train(
		[][]string{
			{"gana", "dinero", "gratis"},
			{"premio", "gratis"},
			{"gana", "premio"},
			{"reunión", "mañana"},
			{"informe", "proyecto"},
			{"reunión", "proyecto"},
		},
		[]learning.Label{learning.Spam, learning.Spam, learning.Spam, learning.Ham, learning.Ham, learning.Ham},
	)
	require.NoError(t, err)
	return c
}

// one of each outcome: TP, TN, FN, FP
var (
	evalTokens = [][]string{{"gratis"}, {"proyecto"}, {"reunión"}, {"premio"}}
	evalLabels = []learning.Label{learning.Spam, learning.Ham, learning.Spam, learning.Ham}
	evalRaw    = []string{"gratis", "proyecto", "reunión", "premio"}
)

func TestMetrics(t *testing.T) {
	m := ConfusionMatrix{TP: 8, TN: 5, FP: 2, FN: 1}

	assert.InDelta(t, 13.0/16.0, Accuracy(m), 1e-12)
	assert.InDelta(t, 0.8, Precision(m), 1e-12)
	assert.InDelta(t, 8.0/9.0, Recall(m), 1e-12)

	p, r := 0.8, 8.0/9.0
	assert.InDelta(t, 2*p*r/(p+r), F1(m), 1e-12)
}

func TestMetricsZeroDenominators(t *testing.T) {
	var empty ConfusionMatrix
	assert.Zero(t, Accuracy(empty))
	assert.Zero(t, Precision(empty))
	assert.Zero(t, Recall(empty))
	assert.Zero(t, F1(empty))

	allHam := ConfusionMatrix{TN: 10}
	assert.Equal(t, 1.0, Accuracy(allHam))
	assert.Zero(t, Precision(allHam))
	assert.Zero(t, Recall(allHam))
	assert.Zero(t, F1(allHam))
}

func TestConfusionMatrixAdd(t *testing.T) {
	var m ConfusionMatrix
	m.Add(learning.Spam, learning.Spam)
	m.Add(learning.Ham, learning.Ham)
	m.Add(learning.Ham, learning.Spam)
	m.Add(learning.Spam, learning.Ham)
	m.Add(learning.Spam, learning.Ham)

	assert.Equal(t, ConfusionMatrix{TP: 1, TN: 1, FP: 1, FN: 2}, m)
	assert.Equal(t, 5, m.Total())
}

func TestEvaluate(t *testing.T) {
	c := trainedClassifier(t)

	res, err := Evaluate(c, evalTokens, evalLabels)
	require.NoError(t, err)

	assert.Equal(t, ConfusionMatrix{TP: 1, TN: 1, FP: 1, FN: 1}, res.Confusion)
	assert.InDelta(t, 0.5, res.Accuracy, 1e-12)
	assert.InDelta(t, 0.5, res.Precision, 1e-12)
	assert.InDelta(t, 0.5, res.Recall, 1e-12)
	assert.InDelta(t, 0.5, res.F1, 1e-12)
}

func TestEvaluateErrors(t *testing.T) {
	c := trainedClassifier(t)
	_, err := Evaluate(c, evalTokens, evalLabels[:2])
	require.ErrorIs(t, err, learning.ErrInvalidArgument)

	untrained, err := learning.NewClassifier(1.0)
	require.NoError(t, err)
	_, err = Evaluate(untrained, evalTokens, evalLabels)
	require.ErrorIs(t, err, learning.ErrInvalidState)
}

func TestAnalyzeDistribution(t *testing.T) {
	d, err := AnalyzeDistribution(
		[]string{"gana dinero ya", "premio gratis", "reunión mañana a las diez"},
		[]learning.Label{learning.Spam, learning.Spam, learning.Ham},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, d.Total)
	assert.Equal(t, 2, d.Spam.Count)
	assert.Equal(t, 1, d.Ham.Count)
	assert.InDelta(t, 200.0/3.0, d.Spam.Percent, 1e-9)
	assert.InDelta(t, 2.5, d.AvgWordsSpam, 1e-12)
	assert.InDelta(t, 5.0, d.AvgWordsHam, 1e-12)
	assert.InDelta(t, 10.0/3.0, d.AvgWordsAll, 1e-12)
	assert.False(t, d.Balanced)

	balanced, err := AnalyzeDistribution([]string{"a", "b"}, []learning.Label{learning.Spam, learning.Ham})
	require.NoError(t, err)
	assert.True(t, balanced.Balanced)

	_, err = AnalyzeDistribution([]string{"a"}, nil)
	require.ErrorIs(t, err, learning.ErrInvalidArgument)
}

func TestAnalyzeErrors(t *testing.T) {
	c := trainedClassifier(t)

	e, err := AnalyzeErrors(c, evalTokens, evalLabels, evalRaw)
	require.NoError(t, err)
	require.Len(t, e.FalsePositives, 1)
	require.Len(t, e.FalseNegatives, 1)
	assert.Equal(t, 2, e.Total())

	fp := e.FalsePositives[0]
	assert.Equal(t, "premio", fp.Message)
	assert.Equal(t, learning.Ham, fp.Actual)
	assert.Equal(t, learning.Spam, fp.Predicted)
	assert.Greater(t, fp.SpamProb, fp.HamProb)
	assert.InDelta(t, 1.0, fp.SpamProb+fp.HamProb, 1e-9)

	fn := e.FalseNegatives[0]
	assert.Equal(t, "reunión", fn.Message)
	assert.Equal(t, learning.Ham, fn.Predicted)

	_, err = AnalyzeErrors(c, evalTokens, evalLabels, evalRaw[:1])
	require.ErrorIs(t, err, learning.ErrInvalidArgument)
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		name       string
		m          ConfusionMatrix
		level      Level
		strengths  int
		weaknesses int
	}{
		{"perfect", ConfusionMatrix{TP: 50, TN: 50}, LevelExcellent, 4, 0},
		{"good", ConfusionMatrix{TP: 42, TN: 42, FP: 8, FN: 8}, LevelGood, 0, 0},
		{"poor", ConfusionMatrix{TP: 10, TN: 10, FP: 40, FN: 40}, LevelNeedsWork, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Interpret(ResultsFrom(tt.m))
			assert.Equal(t, tt.level, in.Level)
			assert.Len(t, in.Strengths, tt.strengths)
			assert.Len(t, in.Weaknesses, tt.weaknesses)
		})
	}
}

func TestRecommend(t *testing.T) {
	res := ResultsFrom(ConfusionMatrix{TP: 50, TN: 50})
	d := &Distribution{Total: 1000, Balanced: true}
	e := &ErrorAnalysis{}

	recs := Recommend(res, d, e)
	assert.Equal(t, []string{
		"Consider word n-grams or TF-IDF weighting",
		"Manually validate dataset labels",
	}, recs)

	weak := ResultsFrom(ConfusionMatrix{TP: 10, TN: 30, FP: 20, FN: 5})
	small := &Distribution{Total: 65, Balanced: false}
	manyFP := &ErrorAnalysis{FalsePositives: make([]Misclassification, 20), FalseNegatives: make([]Misclassification, 5)}

	recs = Recommend(weak, small, manyFP)
	require.Len(t, recs, 7)
	assert.Contains(t, recs[0], "Balance")
	assert.Contains(t, recs[1], "precision")
	assert.Contains(t, recs[2], "recall")
	assert.Contains(t, recs[3], "Reduce false positives")
	assert.Contains(t, recs[4], "Grow the dataset")
	assert.Equal(t, "Manually validate dataset labels", recs[len(recs)-1])
}

func TestBuildAndWriteReport(t *testing.T) {
	c := trainedClassifier(t)

	res, err := Evaluate(c, evalTokens, evalLabels)
	require.NoError(t, err)
	dist, err := AnalyzeDistribution(evalRaw, evalLabels)
	require.NoError(t, err)
	errs, err := AnalyzeErrors(c, evalTokens, evalLabels, evalRaw)
	require.NoError(t, err)
	info, err := c.Info()
	require.NoError(t, err)
	ranking, err := c.RankDiscriminativeWords(3)
	require.NoError(t, err)

	report := BuildReport(ReportInput{
		Info:         info,
		Results:      res,
		Distribution: dist,
		Errors:       errs,
		Ranking:      ranking,
		ErrorSamples: 0,
	})
	assert.Equal(t, 1.0, report.Model.Alpha)
	assert.Equal(t, 1, report.Errors.FalsePositives)
	assert.InDelta(t, 0.5, report.Errors.FalsePositiveShare, 1e-12)
	assert.Empty(t, report.Errors.FalsePositiveExamples)
	assert.Equal(t, LevelNeedsWork, report.Interpretation.Level)

	path := filepath.Join(t.TempDir(), "reports", "evaluation.json")
	require.NoError(t, WriteReport(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "results")
	assert.Contains(t, decoded, "important_words")
	assert.Contains(t, decoded, "recommendations")
}
