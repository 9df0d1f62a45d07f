package learning

import (
	"fmt"
	"math"
	"sort"
)

// WordScore is a token and how strongly it leans toward one class
type WordScore struct {
	Token     string  `json:"token"`
	Magnitude float64 `json:"magnitude"`
	SpamCount int     `json:"spam_count"`
	HamCount  int     `json:"ham_count"`
}

// Ranking holds the most spam-like and most ham-like tokens
type Ranking struct {
	Spam []WordScore `json:"spam"`
	Ham  []WordScore `json:"ham"`
}

// RankDiscriminativeWords ranks every vocabulary token by
// P(token|spam) - P(token|ham). Positive differences go to the spam side,
// the rest to the ham side by absolute value. Ties break on the token so
// the order is stable. topN <= 0 returns everything.
func (c *Classifier) RankDiscriminativeWords(topN int) (*Ranking, error) {
	s, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	return s.Rank(topN), nil
}

// Rank is RankDiscriminativeWords on a fixed snapshot
func (s *ModelState) Rank(topN int) *Ranking {
	spam := make([]WordScore, 0, len(s.Vocabulary)/2)
	ham := make([]WordScore, 0, len(s.Vocabulary)/2)

	for tok := range s.Vocabulary {
		diff := math.Exp(s.CondLogSpam[tok]) - math.Exp(s.CondLogHam[tok])
		ws := WordScore{
			Token:     tok,
			Magnitude: math.Abs(diff),
			SpamCount: s.SpamWordCounts[tok],
			HamCount:  s.HamWordCounts[tok],
		}
		if diff > 0 {
			spam = append(spam, ws)
		} else {
			ham = append(ham, ws)
		}
	}

	return &Ranking{Spam: topScores(spam, topN), Ham: topScores(ham, topN)}
}

func topScores(scores []WordScore, n int) []WordScore {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Magnitude != scores[j].Magnitude {
			return scores[i].Magnitude > scores[j].Magnitude
		}
		return scores[i].Token < scores[j].Token
	})
	if n > 0 && len(scores) > n {
		scores = scores[:n]
	}
	return scores
}

// String renders a score the way the CLI prints it
func (w WordScore) String() string {
	return fmt.Sprintf("%s (%.6f, %d/%d)", w.Token, w.Magnitude, w.SpamCount, w.HamCount)
}
