package store

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/zpam/nbspam/pkg/learning"
)

const (
	// FormatTag identifies a serialized nbspam model
	FormatTag = "nbspam-model"

	// SchemaV1 is the original layout without message counts
	SchemaV1 = 1
	// SchemaV2 adds exact per-class message counts
	SchemaV2 = 2

	// CurrentSchema is the version Encode writes
	CurrentSchema = SchemaV2
)

// Envelope is the versioned wrapper around a serialized model
type Envelope struct {
	Format  string          `json:"format"`
	Version int             `json:"version"`
	ID      string          `json:"id,omitempty"`
	SavedAt time.Time       `json:"saved_at,omitempty"`
	Model   json.RawMessage `json:"model"`
}

// logFloat encodes -Inf, which JSON numbers cannot represent
type logFloat float64

const negInf = "-Inf"

func (f logFloat) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(f), -1) {
		return json.Marshal(negInf)
	}
	return json.Marshal(float64(f))
}

func (f *logFloat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != negInf {
			return fmt.Errorf("unexpected log value %q", s)
		}
		*f = logFloat(math.Inf(-1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = logFloat(v)
	return nil
}

type modelDoc struct {
	Alpha          float64            `json:"alpha"`
	PriorSpam      float64            `json:"prior_spam"`
	PriorHam       float64            `json:"prior_ham"`
	LogPriorSpam   logFloat           `json:"log_prior_spam"`
	LogPriorHam    logFloat           `json:"log_prior_ham"`
	SpamWordCounts map[string]int     `json:"spam_word_counts"`
	HamWordCounts  map[string]int     `json:"ham_word_counts"`
	TotalSpamWords int                `json:"total_spam_words"`
	TotalHamWords  int                `json:"total_ham_words"`
	Vocabulary     []string           `json:"vocabulary"`
	CondLogSpam    map[string]float64 `json:"cond_log_spam"`
	CondLogHam     map[string]float64 `json:"cond_log_ham"`
	Trained        bool               `json:"trained"`

	// v2 only
	SpamMessages *int  `json:"spam_messages,omitempty"`
	HamMessages  *int  `json:"ham_messages,omitempty"`
	CountsExact  *bool `json:"counts_exact,omitempty"`
}

// Encode serializes a trained state into the current schema
func Encode(s *learning.ModelState) ([]byte, error) {
	if s == nil || !s.Trained {
		return nil, fmt.Errorf("%w: cannot save an untrained model", learning.ErrInvalidState)
	}

	vocab := make([]string, 0, len(s.Vocabulary))
	for tok := range s.Vocabulary {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)

	spamMsgs, hamMsgs, exact := s.SpamMessages, s.HamMessages, s.CountsExact
	doc := modelDoc{
		Alpha:          s.Alpha,
		PriorSpam:      s.PriorSpam,
		PriorHam:       s.PriorHam,
		LogPriorSpam:   logFloat(s.LogPriorSpam),
		LogPriorHam:    logFloat(s.LogPriorHam),
		SpamWordCounts: s.SpamWordCounts,
		HamWordCounts:  s.HamWordCounts,
		TotalSpamWords: s.TotalSpamWords,
		TotalHamWords:  s.TotalHamWords,
		Vocabulary:     vocab,
		CondLogSpam:    s.CondLogSpam,
		CondLogHam:     s.CondLogHam,
		Trained:        s.Trained,
		SpamMessages:   &spamMsgs,
		HamMessages:    &hamMsgs,
		CountsExact:    &exact,
	}

	model, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", err)
	}

	env := Envelope{
		Format:  FormatTag,
		Version: CurrentSchema,
		ID:      uuid.NewString(),
		SavedAt: time.Now().UTC(),
		Model:   model,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return data, nil
}

// Decode parses a blob written by any supported schema version
func Decode(data []byte) (*learning.ModelState, error) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}

	var doc modelDoc
	if err := json.Unmarshal(env.Model, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed model: %v", ErrDeserialization, err)
	}

	s := &learning.ModelState{
		Alpha:          doc.Alpha,
		PriorSpam:      doc.PriorSpam,
		PriorHam:       doc.PriorHam,
		LogPriorSpam:   float64(doc.LogPriorSpam),
		LogPriorHam:    float64(doc.LogPriorHam),
		SpamWordCounts: nonNil(doc.SpamWordCounts),
		HamWordCounts:  nonNil(doc.HamWordCounts),
		TotalSpamWords: doc.TotalSpamWords,
		TotalHamWords:  doc.TotalHamWords,
		Vocabulary:     make(map[string]struct{}, len(doc.Vocabulary)),
		CondLogSpam:    nonNil(doc.CondLogSpam),
		CondLogHam:     nonNil(doc.CondLogHam),
		Trained:        doc.Trained,
	}
	for _, tok := range doc.Vocabulary {
		s.Vocabulary[tok] = struct{}{}
	}

	if env.Version >= SchemaV2 {
		if doc.SpamMessages == nil || doc.HamMessages == nil {
			return nil, fmt.Errorf("%w: schema v%d requires message counts", ErrDeserialization, env.Version)
		}
		s.SpamMessages = *doc.SpamMessages
		s.HamMessages = *doc.HamMessages
		s.CountsExact = doc.CountsExact == nil || *doc.CountsExact
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	if len(s.Vocabulary) != len(doc.Vocabulary) {
		return nil, fmt.Errorf("%w: vocabulary contains duplicates", ErrDeserialization)
	}
	return s, nil
}

// DecodeEnvelope parses and checks only the envelope
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	if env.Format != FormatTag {
		return nil, fmt.Errorf("%w: unexpected format %q", ErrDeserialization, env.Format)
	}
	if env.Version < SchemaV1 || env.Version > CurrentSchema {
		return nil, fmt.Errorf("%w: unsupported schema version %d", ErrDeserialization, env.Version)
	}
	if len(env.Model) == 0 {
		return nil, fmt.Errorf("%w: missing model", ErrDeserialization)
	}
	return &env, nil
}

func nonNil[V any](m map[string]V) map[string]V {
	if m == nil {
		return make(map[string]V)
	}
	return m
}
