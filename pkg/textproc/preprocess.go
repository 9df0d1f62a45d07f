// Package textproc turns raw message text into the token sequences the
// classifier learns from.
package textproc

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"
)

// Language selects the stopword list applied after tokenization
type Language string

const (
	LanguageSpanish Language = "spanish"
	LanguageEnglish Language = "english"
	// LanguageAuto detects the language per message and falls back to Spanish
	LanguageAuto Language = "auto"
)

// minDetectConfidence is the whatlanggo confidence below which auto mode
// keeps the Spanish list.
const minDetectConfidence = 0.5

// Preprocessor applies normalize, tokenize and stopword filtering
type Preprocessor struct {
	language Language
}

var defaultPreprocessor = &Preprocessor{language: LanguageSpanish}

// Default returns the Spanish preprocessor
func Default() *Preprocessor {
	return defaultPreprocessor
}

// New creates a preprocessor for the given language
func New(language Language) (*Preprocessor, error) {
	switch language {
	case "":
		language = LanguageSpanish
	case LanguageSpanish, LanguageEnglish, LanguageAuto:
	default:
		return nil, fmt.Errorf("unsupported language: %q", language)
	}
	return &Preprocessor{language: language}, nil
}

// Language returns the configured language
func (p *Preprocessor) Language() Language {
	return p.language
}

// Normalize composes accents, lowercases, replaces every rune that is not a
// letter, digit, underscore or whitespace with a space, collapses runs of
// whitespace and trims.
func Normalize(text string) string {
	text = strings.ToLower(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		if !isWordRune(r) {
			// punctuation and whitespace both collapse into one separator
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeValue coerces v to text before normalizing it
func NormalizeValue(v any) string {
	if s, ok := v.(string); ok {
		return Normalize(s)
	}
	return Normalize(fmt.Sprint(v))
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Tokenize splits normalized text on whitespace
func Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}
	return strings.Fields(text)
}

// FilterStopwords drops Spanish stopwords, preserving order
func FilterStopwords(tokens []string) []string {
	return filter(tokens, spanishStopwords)
}

// Preprocess runs the Spanish pipeline on text
func Preprocess(text string) []string {
	return defaultPreprocessor.Preprocess(text)
}

// Preprocess runs normalize, tokenize and stopword filtering
func (p *Preprocessor) Preprocess(text string) []string {
	return p.FilterStopwordsFor(Tokenize(Normalize(text)), text)
}

// PreprocessValue coerces v to text and preprocesses it
func (p *Preprocessor) PreprocessValue(v any) []string {
	if s, ok := v.(string); ok {
		return p.Preprocess(s)
	}
	return p.Preprocess(fmt.Sprint(v))
}

// FilterStopwords drops the configured language's stopwords. In auto mode
// the language is detected from the joined tokens, so it may pick another
// list than Preprocess does for the raw text of the same message. Use
// FilterStopwordsFor when the raw text is at hand.
func (p *Preprocessor) FilterStopwords(tokens []string) []string {
	return filter(tokens, p.stopwordsFor(strings.Join(tokens, " ")))
}

// FilterStopwordsFor drops stopwords from tokens using the language of the
// raw text they came from, the same choice Preprocess makes
func (p *Preprocessor) FilterStopwordsFor(tokens []string, text string) []string {
	return filter(tokens, p.stopwordsFor(text))
}

// PreprocessAll preprocesses every message
func (p *Preprocessor) PreprocessAll(messages []string) [][]string {
	return lo.Map(messages, func(m string, _ int) []string {
		return p.Preprocess(m)
	})
}

func (p *Preprocessor) stopwordsFor(text string) map[string]struct{} {
	switch p.language {
	case LanguageEnglish:
		return englishStopwords
	case LanguageAuto:
		return stopwordsByDetection(text)
	default:
		return spanishStopwords
	}
}

func stopwordsByDetection(text string) map[string]struct{} {
	info := whatlanggo.Detect(text)
	if info.Lang == whatlanggo.Eng && info.Confidence >= minDetectConfidence {
		return englishStopwords
	}
	return spanishStopwords
}

func filter(tokens []string, stopwords map[string]struct{}) []string {
	return lo.Reject(tokens, func(t string, _ int) bool {
		_, stop := stopwords[t]
		return stop
	})
}
