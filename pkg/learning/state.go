package learning

import (
	"fmt"
	"math"
)

// priorTolerance bounds how far priors may drift from summing to one
const priorTolerance = 1e-9

// ModelState is a complete, immutable snapshot of a trained model. The
// classifier never mutates a published state; training builds a new one.
type ModelState struct {
	Alpha float64

	PriorSpam    float64
	PriorHam     float64
	LogPriorSpam float64
	LogPriorHam  float64

	SpamWordCounts map[string]int
	HamWordCounts  map[string]int
	TotalSpamWords int
	TotalHamWords  int

	Vocabulary map[string]struct{}

	CondLogSpam map[string]float64
	CondLogHam  map[string]float64

	// SpamMessages and HamMessages are the number of training messages per
	// class. CountsExact is false for models restored from blobs that did
	// not record them.
	SpamMessages int
	HamMessages  int
	CountsExact  bool

	Trained bool
}

// VocabularySize returns |V|
func (s *ModelState) VocabularySize() int {
	return len(s.Vocabulary)
}

// Prior returns P(label)
func (s *ModelState) Prior(label Label) float64 {
	if label == Spam {
		return s.PriorSpam
	}
	return s.PriorHam
}

// LogPrior returns ln P(label), -Inf for a class never seen
func (s *ModelState) LogPrior(label Label) float64 {
	if label == Spam {
		return s.LogPriorSpam
	}
	return s.LogPriorHam
}

// TotalWords returns the running token total of label
func (s *ModelState) TotalWords(label Label) int {
	if label == Spam {
		return s.TotalSpamWords
	}
	return s.TotalHamWords
}

// WordCount returns how often token was seen in label
func (s *ModelState) WordCount(label Label, token string) int {
	if label == Spam {
		return s.SpamWordCounts[token]
	}
	return s.HamWordCounts[token]
}

func (s *ModelState) condTable(label Label) map[string]float64 {
	if label == Spam {
		return s.CondLogSpam
	}
	return s.CondLogHam
}

// OOVLogProb is ln(alpha / (totalWords_c + alpha*|V|)). It depends on the
// current vocabulary size so it is never cached.
func (s *ModelState) OOVLogProb(label Label) float64 {
	return math.Log(s.Alpha / (float64(s.TotalWords(label)) + s.Alpha*float64(len(s.Vocabulary))))
}

// Score returns logPrior[c] plus the summed conditional log-probabilities
// of tokens, with OOV tokens scored on the fly.
func (s *ModelState) Score(tokens []string, label Label) float64 {
	table := s.condTable(label)
	score := s.LogPrior(label)
	oov := s.OOVLogProb(label)
	for _, tok := range tokens {
		if lp, ok := table[tok]; ok {
			score += lp
		} else {
			score += oov
		}
	}
	return score
}

// Probabilities normalizes both class scores with log-sum-exp
func (s *ModelState) Probabilities(tokens []string) Probabilities {
	spam := s.Score(tokens, Spam)
	ham := s.Score(tokens, Ham)

	m := math.Max(spam, ham)
	if math.IsInf(m, -1) {
		return Probabilities{Spam: 0.5, Ham: 0.5}
	}
	expSpam := math.Exp(spam - m)
	expHam := math.Exp(ham - m)
	total := expSpam + expHam
	if total == 0 {
		return Probabilities{Spam: 0.5, Ham: 0.5}
	}
	return Probabilities{Spam: expSpam / total, Ham: expHam / total}
}

// Clone deep-copies the state so it can be extended without touching the
// published snapshot.
func (s *ModelState) Clone() *ModelState {
	c := *s
	c.SpamWordCounts = cloneMap(s.SpamWordCounts)
	c.HamWordCounts = cloneMap(s.HamWordCounts)
	c.Vocabulary = cloneMap(s.Vocabulary)
	c.CondLogSpam = cloneMap(s.CondLogSpam)
	c.CondLogHam = cloneMap(s.CondLogHam)
	return &c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Validate checks the structural invariants of a trained state
func (s *ModelState) Validate() error {
	if !s.Trained {
		return fmt.Errorf("%w: model is not trained", ErrInvalidState)
	}
	if !validAlpha(s.Alpha) {
		return fmt.Errorf("%w: alpha must be a finite value > 0, got %v", ErrInvalidArgument, s.Alpha)
	}
	if s.PriorSpam < 0 || s.PriorHam < 0 || math.Abs(s.PriorSpam+s.PriorHam-1) > priorTolerance {
		return fmt.Errorf("%w: priors %v/%v do not sum to 1", ErrInvalidArgument, s.PriorSpam, s.PriorHam)
	}
	if s.TotalSpamWords < 0 || s.TotalHamWords < 0 || s.SpamMessages < 0 || s.HamMessages < 0 {
		return fmt.Errorf("%w: negative totals", ErrInvalidArgument)
	}
	for _, counts := range []map[string]int{s.SpamWordCounts, s.HamWordCounts} {
		for tok, n := range counts {
			if n < 0 {
				return fmt.Errorf("%w: negative count for %q", ErrInvalidArgument, tok)
			}
			if _, ok := s.Vocabulary[tok]; !ok {
				return fmt.Errorf("%w: counted token %q missing from vocabulary", ErrInvalidArgument, tok)
			}
		}
	}
	for _, table := range []map[string]float64{s.CondLogSpam, s.CondLogHam} {
		if len(table) != len(s.Vocabulary) {
			return fmt.Errorf("%w: conditional table covers %d tokens, vocabulary has %d",
				ErrInvalidArgument, len(table), len(s.Vocabulary))
		}
		for tok := range s.Vocabulary {
			if _, ok := table[tok]; !ok {
				return fmt.Errorf("%w: no conditional probability for %q", ErrInvalidArgument, tok)
			}
		}
	}
	return nil
}

func validAlpha(alpha float64) bool {
	return alpha > 0 && !math.IsInf(alpha, 1) && !math.IsNaN(alpha)
}

func logPrior(p float64) float64 {
	if p > 0 {
		return math.Log(p)
	}
	return math.Inf(-1)
}

// recomputeConditionals rebuilds both conditional tables over the whole
// vocabulary from the current counts.
func (s *ModelState) recomputeConditionals() {
	v := float64(len(s.Vocabulary))
	spamDenom := float64(s.TotalSpamWords) + s.Alpha*v
	hamDenom := float64(s.TotalHamWords) + s.Alpha*v

	s.CondLogSpam = make(map[string]float64, len(s.Vocabulary))
	s.CondLogHam = make(map[string]float64, len(s.Vocabulary))
	for tok := range s.Vocabulary {
		s.CondLogSpam[tok] = math.Log((float64(s.SpamWordCounts[tok]) + s.Alpha) / spamDenom)
		s.CondLogHam[tok] = math.Log((float64(s.HamWordCounts[tok]) + s.Alpha) / hamDenom)
	}
}

func (s *ModelState) setPriors(spam, ham float64) {
	s.PriorSpam = spam
	s.PriorHam = ham
	s.LogPriorSpam = logPrior(spam)
	s.LogPriorHam = logPrior(ham)
}

// accumulate merges a labeled batch into the counts and vocabulary
func (s *ModelState) accumulate(tokens [][]string, labels []Label) (newSpam, newHam int) {
	for i, seq := range tokens {
		counts := s.HamWordCounts
		if labels[i] == Spam {
			counts = s.SpamWordCounts
			s.TotalSpamWords += len(seq)
			newSpam++
		} else {
			s.TotalHamWords += len(seq)
			newHam++
		}
		for _, tok := range seq {
			counts[tok]++
			s.Vocabulary[tok] = struct{}{}
		}
	}
	return newSpam, newHam
}

// buildState performs a full fit on the batch
func buildState(alpha float64, tokens [][]string, labels []Label) *ModelState {
	s := &ModelState{
		Alpha:          alpha,
		SpamWordCounts: make(map[string]int),
		HamWordCounts:  make(map[string]int),
		Vocabulary:     make(map[string]struct{}),
		CountsExact:    true,
	}
	s.SpamMessages, s.HamMessages = s.accumulate(tokens, labels)
	total := float64(len(labels))
	s.setPriors(float64(s.SpamMessages)/total, float64(s.HamMessages)/total)
	s.recomputeConditionals()
	s.Trained = true
	return s
}

// extendState merges a batch into a copy of base. Priors come from the
// exact message counts when base has them; otherwise the historical
// message total is estimated from the spam prior and word total.
func extendState(base *ModelState, tokens [][]string, labels []Label) *ModelState {
	s := base.Clone()
	newSpam, newHam := s.accumulate(tokens, labels)

	if s.CountsExact {
		s.SpamMessages += newSpam
		s.HamMessages += newHam
		total := float64(s.SpamMessages + s.HamMessages)
		s.setPriors(float64(s.SpamMessages)/total, float64(s.HamMessages)/total)
	} else {
		spamEst, hamEst := estimateMessageCounts(base.PriorSpam, s.TotalSpamWords, s.TotalHamWords, newSpam, newHam)
		total := spamEst + hamEst
		if total > 0 {
			s.setPriors(float64(spamEst)/float64(total), float64(hamEst)/float64(total))
		} else {
			s.setPriors(0.5, 0.5)
		}
	}

	s.recomputeConditionals()
	return s
}

// estimateMessageCounts reconstructs per-class message counts for models
// that never recorded them. The word totals already include the new batch.
// The two estimates do not add up to the new message total when the batch
// holds spam, so callers normalize by their sum. Negative estimates clamp
// to zero.
func estimateMessageCounts(priorSpam float64, totalSpamWords, totalHamWords, newSpam, newHam int) (spam, ham int) {
	var totalOrig int
	if priorSpam > 0 {
		totalOrig = int(float64(totalSpamWords) / priorSpam)
	} else {
		totalOrig = totalSpamWords + totalHamWords
	}
	spam = int(float64(totalOrig)*priorSpam) + newSpam
	ham = totalOrig - spam + newHam
	return max(spam, 0), max(ham, 0)
}
