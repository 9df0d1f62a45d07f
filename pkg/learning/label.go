package learning

import (
	"fmt"
	"strings"
)

// Label is one of the two classes the model separates
type Label string

const (
	Spam Label = "spam"
	Ham  Label = "ham"
)

// Labels lists both classes in scoring order
var Labels = []Label{Spam, Ham}

// Valid reports whether l is spam or ham
func (l Label) Valid() bool {
	return l == Spam || l == Ham
}

func (l Label) String() string {
	return string(l)
}

// ParseLabel trims and lowercases s before matching it to a class.
// Loaders call this; the classifier itself expects exact labels.
func ParseLabel(s string) (Label, error) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: unknown label %q", ErrInvalidArgument, s)
	}
	return l, nil
}

// Example is one labeled token sequence
type Example struct {
	Tokens []string
	Label  Label
}
