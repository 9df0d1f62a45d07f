package learning

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/zpam/nbspam/pkg/textproc"
)

// Probabilities is the normalized class distribution of one input
type Probabilities struct {
	Spam float64 `json:"spam"`
	Ham  float64 `json:"ham"`
}

// Of returns the probability of label
func (p Probabilities) Of(label Label) float64 {
	if label == Spam {
		return p.Spam
	}
	return p.Ham
}

// Label returns spam only when it is strictly more likely than ham
func (p Probabilities) Label() Label {
	if p.Spam > p.Ham {
		return Spam
	}
	return Ham
}

// Classifier is a multinomial Naive Bayes spam/ham model.
//
// Predictions read the current snapshot without locking. Train and
// IncrementalUpdate are serialized and publish a fresh snapshot when they
// finish, so readers never see a half-built vocabulary.
type Classifier struct {
	alpha        float64
	preprocessor *textproc.Preprocessor
	log          *slog.Logger

	writeMu sync.Mutex
	state   atomic.Pointer[ModelState]
}

// Option configures a Classifier
type Option func(*Classifier)

// WithPreprocessor sets the pipeline used for RawText input
func WithPreprocessor(p *textproc.Preprocessor) Option {
	return func(c *Classifier) {
		if p != nil {
			c.preprocessor = p
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(log *slog.Logger) Option {
	return func(c *Classifier) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClassifier creates an untrained classifier with smoothing alpha
func NewClassifier(alpha float64, opts ...Option) (*Classifier, error) {
	if !validAlpha(alpha) {
		return nil, fmt.Errorf("%w: alpha must be a finite value > 0, got %v", ErrInvalidArgument, alpha)
	}
	c := &Classifier{
		alpha:        alpha,
		preprocessor: textproc.Default(),
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FromState wraps an already trained state, e.g. one loaded from a store
func FromState(s *ModelState, opts ...Option) (*Classifier, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil model state", ErrInvalidArgument)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c, err := NewClassifier(s.Alpha, opts...)
	if err != nil {
		return nil, err
	}
	c.state.Store(s)
	return c, nil
}

// Alpha returns the smoothing constant
func (c *Classifier) Alpha() float64 {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.alpha
}

// Preprocessor returns the pipeline applied to RawText input
func (c *Classifier) Preprocessor() *textproc.Preprocessor {
	return c.preprocessor
}

// Trained reports whether a model has been fitted
func (c *Classifier) Trained() bool {
	return c.state.Load() != nil
}

// State returns the current snapshot. Callers must treat it as read-only.
func (c *Classifier) State() (*ModelState, error) {
	s := c.state.Load()
	if s == nil {
		return nil, fmt.Errorf("%w: model has not been trained", ErrInvalidState)
	}
	return s, nil
}

// Replace swaps in a different trained state
func (c *Classifier) Replace(s *ModelState) error {
	if s == nil {
		return fmt.Errorf("%w: nil model state", ErrInvalidArgument)
	}
	if err := s.Validate(); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.alpha = s.Alpha
	c.state.Store(s)
	c.log.Info("Model replaced", "vocabulary", s.VocabularySize())
	return nil
}

func checkBatch(tokens [][]string, labels []Label) error {
	if len(tokens) != len(labels) {
		return fmt.Errorf("%w: %d token sequences but %d labels", ErrInvalidArgument, len(tokens), len(labels))
	}
	if len(tokens) == 0 {
		return fmt.Errorf("%w: no training examples", ErrInvalidArgument)
	}
	for i, l := range labels {
		if !l.Valid() {
			return fmt.Errorf("%w: example %d has unknown label %q", ErrInvalidArgument, i, l)
		}
	}
	return nil
}

// Train fits the model from scratch, discarding any previous state.
// On error the previous state is left untouched.
func (c *Classifier) Train(tokens [][]string, labels []Label) error {
	if err := checkBatch(tokens, labels); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	s := buildState(c.alpha, tokens, labels)
	c.state.Store(s)

	c.log.Info("Model trained",
		"examples", len(labels),
		"spam", s.SpamMessages,
		"ham", s.HamMessages,
		"vocabulary", s.VocabularySize(),
		"prior_spam", s.PriorSpam)
	return nil
}

// TrainExamples is Train over labeled examples
func (c *Classifier) TrainExamples(examples []Example) error {
	tokens, labels := splitExamples(examples)
	return c.Train(tokens, labels)
}

// IncrementalUpdate merges new examples into a trained model. Counts only
// grow and the vocabulary never shrinks; both conditional tables are
// recomputed over the expanded vocabulary.
func (c *Classifier) IncrementalUpdate(tokens [][]string, labels []Label) error {
	if err := checkBatch(tokens, labels); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	base := c.state.Load()
	if base == nil {
		return fmt.Errorf("%w: train the model before updating it", ErrInvalidState)
	}

	s := extendState(base, tokens, labels)
	c.state.Store(s)

	if !s.CountsExact {
		c.log.Warn("Priors estimated from word totals; model has no message counts",
			"prior_spam", s.PriorSpam)
	}
	c.log.Info("Model updated",
		"examples", len(labels),
		"vocabulary", s.VocabularySize(),
		"new_tokens", s.VocabularySize()-base.VocabularySize(),
		"prior_spam", s.PriorSpam)
	return nil
}

// IncrementalUpdateExamples is IncrementalUpdate over labeled examples
func (c *Classifier) IncrementalUpdateExamples(examples []Example) error {
	tokens, labels := splitExamples(examples)
	return c.IncrementalUpdate(tokens, labels)
}

func splitExamples(examples []Example) ([][]string, []Label) {
	tokens := make([][]string, len(examples))
	labels := make([]Label, len(examples))
	for i, ex := range examples {
		tokens[i] = ex.Tokens
		labels[i] = ex.Label
	}
	return tokens, labels
}

func (c *Classifier) snapshot() (*ModelState, error) {
	s := c.state.Load()
	if s == nil {
		return nil, fmt.Errorf("%w: model has not been trained", ErrInvalidState)
	}
	return s, nil
}

// ScoreClass returns the unnormalized log score of tokens under label
func (c *Classifier) ScoreClass(tokens []string, label Label) (float64, error) {
	if !label.Valid() {
		return 0, fmt.Errorf("%w: unknown label %q", ErrInvalidArgument, label)
	}
	s, err := c.snapshot()
	if err != nil {
		return 0, err
	}
	return s.Score(tokens, label), nil
}

// OOVLogProb returns the log-probability an unseen token contributes to label
func (c *Classifier) OOVLogProb(label Label) (float64, error) {
	if !label.Valid() {
		return 0, fmt.Errorf("%w: unknown label %q", ErrInvalidArgument, label)
	}
	s, err := c.snapshot()
	if err != nil {
		return 0, err
	}
	return s.OOVLogProb(label), nil
}

// PredictProbabilities returns P(spam) and P(ham) for the input
func (c *Classifier) PredictProbabilities(in Input) (Probabilities, error) {
	s, err := c.snapshot()
	if err != nil {
		return Probabilities{}, err
	}
	return s.Probabilities(in.resolve(c.preprocessor)), nil
}

// Predict returns the more likely class; an exact tie is ham
func (c *Classifier) Predict(in Input) (Label, error) {
	p, err := c.PredictProbabilities(in)
	if err != nil {
		return "", err
	}
	return p.Label(), nil
}

// Classify returns the label and probabilities from one snapshot
func (c *Classifier) Classify(in Input) (Label, Probabilities, error) {
	p, err := c.PredictProbabilities(in)
	if err != nil {
		return "", Probabilities{}, err
	}
	return p.Label(), p, nil
}

// ModelInfo summarizes a trained model
type ModelInfo struct {
	Alpha          float64 `json:"alpha"`
	PriorSpam      float64 `json:"prior_spam"`
	PriorHam       float64 `json:"prior_ham"`
	SpamMessages   int     `json:"spam_messages"`
	HamMessages    int     `json:"ham_messages"`
	CountsExact    bool    `json:"counts_exact"`
	TotalSpamWords int     `json:"total_spam_words"`
	TotalHamWords  int     `json:"total_ham_words"`
	VocabularySize int     `json:"vocabulary_size"`
}

// Info returns summary statistics of the current model
func (c *Classifier) Info() (*ModelInfo, error) {
	s, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	return &ModelInfo{
		Alpha:          s.Alpha,
		PriorSpam:      s.PriorSpam,
		PriorHam:       s.PriorHam,
		SpamMessages:   s.SpamMessages,
		HamMessages:    s.HamMessages,
		CountsExact:    s.CountsExact,
		TotalSpamWords: s.TotalSpamWords,
		TotalHamWords:  s.TotalHamWords,
		VocabularySize: s.VocabularySize(),
	}, nil
}
