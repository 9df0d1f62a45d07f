package learning

import "github.com/zpam/nbspam/pkg/textproc"

// Input is what prediction accepts: raw text that still needs
// preprocessing, or a token sequence used as-is.
type Input struct {
	text      string
	tokens    []string
	tokenized bool
}

// RawText wraps a message that the classifier preprocesses
func RawText(text string) Input {
	return Input{text: text}
}

// TokenSequence wraps tokens that bypass preprocessing
func TokenSequence(tokens []string) Input {
	return Input{tokens: tokens, tokenized: true}
}

// IsTokenized reports whether the input carries tokens
func (in Input) IsTokenized() bool {
	return in.tokenized
}

func (in Input) resolve(p *textproc.Preprocessor) []string {
	if in.tokenized {
		return in.tokens
	}
	return p.Preprocess(in.text)
}
