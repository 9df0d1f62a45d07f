package textproc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"punctuation and case", "¡Gana dinero RÁPIDO!", "gana dinero rápido"},
		{"collapse whitespace", "  hola \t\n  mundo  ", "hola mundo"},
		{"only punctuation", "!!! ??? ...", ""},
		{"empty", "", ""},
		{"underscore kept", "mi_usuario, hola", "mi_usuario hola"},
		{"digits kept", "Gane 1000 euros!!!", "gane 1000 euros"},
		{"punctuation joins nothing", "dinero,fácil", "dinero fácil"},
		{"decomposed accent", "mañana", "mañana"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	require.Equal(t, "12345", NormalizeValue(12345))
	require.Equal(t, "3 5", NormalizeValue(3.5))
	require.Equal(t, "hola", NormalizeValue("HOLA"))
}

func TestPreprocessValue(t *testing.T) {
	p := Default()
	tests := []struct {
		name     string
		input    any
		expected []string
	}{
		{"string", "Gana DINERO ya", []string{"gana", "dinero"}},
		{"int", 12345, []string{"12345"}},
		{"float", 3.5, []string{"3", "5"}},
		{"bool", true, []string{"true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, p.PreprocessValue(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	require.Equal(t, []string{"gana", "dinero", "rápido"}, Tokenize("gana dinero rápido"))
	require.Empty(t, Tokenize(""))
	require.NotNil(t, Tokenize(""))
}

func TestFilterStopwords(t *testing.T) {
	require.Equal(t, []string{"dinero", "es", "fácil"}, FilterStopwords([]string{"el", "dinero", "es", "fácil"}))
	require.Empty(t, FilterStopwords([]string{"el", "la", "de"}))
	require.Empty(t, FilterStopwords(nil))
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"spam phrase", "¡Gana dinero RÁPIDO haciendo clic!", []string{"gana", "dinero", "rápido", "haciendo", "clic"}},
		{"stopwords removed", "La reunión de mañana", []string{"reunión", "mañana"}},
		{"empty", "", []string{}},
		{"all stopwords", "el la de que y", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Preprocess(tt.input))
		})
	}
}

func TestPreprocessIsIdempotent(t *testing.T) {
	inputs := []string{"¡Oferta EXCLUSIVA para ti!", "Reunión confirmada: martes 10am", "   "}
	for _, in := range inputs {
		first := Preprocess(in)
		second := Preprocess(in)
		require.Equal(t, first, second)
		for _, tok := range first {
			require.NotContains(t, tok, " ")
			require.NotEmpty(t, tok)
		}
	}
}

func TestPreprocessorLanguages(t *testing.T) {
	en, err := New(LanguageEnglish)
	require.NoError(t, err)
	require.Equal(t, []string{"win", "money", "now"}, en.Preprocess("Win the money NOW!"))

	es, err := New("")
	require.NoError(t, err)
	require.Equal(t, LanguageSpanish, es.Language())

	_, err = New("klingon")
	require.Error(t, err)
}

func TestPreprocessorAutoFallsBackToSpanish(t *testing.T) {
	auto, err := New(LanguageAuto)
	require.NoError(t, err)

	require.Equal(t, []string{"reunión", "mañana", "oficina"}, auto.Preprocess("La reunión de mañana en la oficina"))
	require.Equal(t,
		[]string{"please", "send", "invoice", "accounting", "department", "before", "end", "week"},
		auto.Preprocess("Please send the invoice to the accounting department before the end of the week"))
}

func TestFilterStopwordsForUsesRawTextLanguage(t *testing.T) {
	auto, err := New(LanguageAuto)
	require.NoError(t, err)

	text := "Please send the invoice to the accounting department before the end of the week"
	tokens := Tokenize(Normalize(text))
	require.Equal(t, auto.Preprocess(text), auto.FilterStopwordsFor(tokens, text))
	require.NotContains(t, auto.FilterStopwordsFor(tokens, text), "the")
}
