package cmd

import (
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/zpam/nbspam/pkg/learning"
)

var wordsTop int

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Show the most discriminative words of the saved model",
	Long: `Rank every vocabulary word by P(word|spam) - P(word|ham) and print the
strongest words of each class.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		c, st, err := e.loadClassifier(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		top := e.cfg.Training.TopWords
		if cmd.Flags().Changed("top") {
			top = wordsTop
		}

		ranking, err := c.RankDiscriminativeWords(top)
		if err != nil {
			return err
		}

		color.Red.Printf("\n📈 Top spam words\n")
		renderWordTable(ranking.Spam)
		color.Green.Printf("\n📉 Top ham words\n")
		renderWordTable(ranking.Ham)
		return nil
	},
}

func renderWordTable(scores []learning.WordScore) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Word", "Difference", "Spam count", "Ham count"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	for i, ws := range scores {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			ws.Token,
			fmt.Sprintf("%.6f", ws.Magnitude),
			fmt.Sprintf("%d", ws.SpamCount),
			fmt.Sprintf("%d", ws.HamCount),
		})
	}
	table.Render()
}

func init() {
	wordsCmd.Flags().IntVarP(&wordsTop, "top", "n", 15, "Words per class (0 lists all)")
}
