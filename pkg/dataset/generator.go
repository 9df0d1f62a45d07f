package dataset

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/zpam/nbspam/pkg/learning"
)

// DefaultGenerateCount is the size of a generated dataset when none is given
const DefaultGenerateCount = 1500

const (
	leadingWordChance = 0.3
	synonymChance     = 0.4
)

// Generator builds synthetic Spanish spam and ham messages by varying a
// fixed set of templates
type Generator struct {
	rand *rand.Rand
}

// NewGenerator returns a generator whose output is fixed by seed
func NewGenerator(seed int64) *Generator {
	return &Generator{rand: rand.New(rand.NewSource(seed))}
}

// Generate returns total records, half spam (rounded down) and the rest
// ham, shuffled and numbered from 1 in generation order
func (g *Generator) Generate(total int) []Record {
	if total <= 0 {
		return []Record{}
	}
	spamCount := total / 2

	records := make([]Record, 0, total)
	records = g.fill(records, spamTemplates, learning.Spam, spamCount)
	records = g.fill(records, hamTemplates, learning.Ham, total-spamCount)

	g.rand.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})
	return records
}

func (g *Generator) fill(records []Record, templates []string, label learning.Label, want int) []Record {
	made := 0
	for made < want {
		base := templates[g.rand.Intn(len(templates))]
		for _, msg := range g.Variations(base, 2+g.rand.Intn(3)) {
			if made >= want {
				break
			}
			records = append(records, Record{
				ID:      strconv.Itoa(len(records) + 1),
				Message: msg,
				Label:   label,
			})
			made++
		}
	}
	return records
}

// Variations returns base followed by n-1 altered copies. A copy may gain
// a leading word and may have one word swapped for a synonym.
func (g *Generator) Variations(base string, n int) []string {
	out := []string{base}
	words := strings.Fields(base)

	for i := 1; i < n; i++ {
		v := append([]string(nil), words...)

		if g.rand.Float64() < leadingWordChance {
			extra := leadingWords[g.rand.Intn(len(leadingWords))]
			v = append([]string{extra}, v...)
		}

		if g.rand.Float64() < synonymChance && len(v) > 2 {
			idx := g.rand.Intn(len(v))
			if alts, ok := synonyms[strings.ToLower(v[idx])]; ok {
				v[idx] = alts[g.rand.Intn(len(alts))]
			}
		}

		out = append(out, strings.Join(v, " "))
	}
	return out
}
