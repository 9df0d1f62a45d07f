package learning

import (
	"fmt"
	"io"
)

// PrintStats writes a human readable model summary and the topN most
// discriminative words of each class.
func (c *Classifier) PrintStats(w io.Writer, topN int) error {
	info, err := c.Info()
	if err != nil {
		return err
	}
	ranking, err := c.RankDiscriminativeWords(topN)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "🧠 Naive Bayes Model\n")
	fmt.Fprintf(w, "════════════════════════════════════════\n")
	fmt.Fprintf(w, "Training Data:\n")
	if info.CountsExact {
		fmt.Fprintf(w, "  Spam messages: %d\n", info.SpamMessages)
		fmt.Fprintf(w, "  Ham messages: %d\n", info.HamMessages)
	} else {
		fmt.Fprintf(w, "  Message counts: unknown (legacy model)\n")
	}
	fmt.Fprintf(w, "  Spam words: %d\n", info.TotalSpamWords)
	fmt.Fprintf(w, "  Ham words: %d\n", info.TotalHamWords)
	fmt.Fprintf(w, "  Vocabulary size: %d\n", info.VocabularySize)

	fmt.Fprintf(w, "\nParameters:\n")
	fmt.Fprintf(w, "  Alpha: %.2f\n", info.Alpha)
	fmt.Fprintf(w, "  P(spam): %.4f\n", info.PriorSpam)
	fmt.Fprintf(w, "  P(ham): %.4f\n", info.PriorHam)

	fmt.Fprintf(w, "\n📈 Top Spam Words:\n")
	for i, ws := range ranking.Spam {
		fmt.Fprintf(w, "  %2d. %-15s (%.6f, %d/%d)\n", i+1, ws.Token, ws.Magnitude, ws.SpamCount, ws.HamCount)
	}

	fmt.Fprintf(w, "\n📉 Top Ham Words:\n")
	for i, ws := range ranking.Ham {
		fmt.Fprintf(w, "  %2d. %-15s (%.6f, %d/%d)\n", i+1, ws.Token, ws.Magnitude, ws.SpamCount, ws.HamCount)
	}

	fmt.Fprintf(w, "\n")
	return nil
}
