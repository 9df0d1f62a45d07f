package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"github.com/zpam/nbspam/pkg/email"
	"github.com/zpam/nbspam/pkg/learning"
)

var (
	predictTokens      bool
	predictInteractive bool
	predictJSON        bool
	predictFiles       []string
)

var predictCmd = &cobra.Command{
	Use:   "predict [message...]",
	Short: "Classify messages with the saved model",
	Long: `Classify each argument as a separate message and print its label and
class probabilities.

With --tokens the arguments are taken as one already tokenized message and
bypass preprocessing. With --file each RFC 5322 message (.eml) is decoded
and its subject and text parts are classified. With --interactive messages
are read line by line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && len(predictFiles) == 0 && !predictInteractive {
			return fmt.Errorf("provide at least one message, --file or --interactive")
		}

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

		out := cmd.OutOrStdout()
		if predictTokens {
			return printPrediction(out, c, strings.Join(args, " "), learning.TokenSequence(args))
		}
		for _, msg := range args {
			if err := printPrediction(out, c, msg, learning.RawText(msg)); err != nil {
				return err
			}
		}
		for _, path := range predictFiles {
			msg, err := email.ParseFile(path)
			if err != nil {
				return err
			}
			e.log.Debug("Parsed message", "file", path, "from", msg.From, "attachments", len(msg.Attachments))
			text := msg.Text()
			if err := printPrediction(out, c, text, learning.RawText(text)); err != nil {
				return err
			}
		}

		if predictInteractive {
			return predictLoop(out, c)
		}
		return nil
	},
}

type predictionOutput struct {
	Message       string                 `json:"message"`
	Label         learning.Label         `json:"label"`
	Probabilities learning.Probabilities `json:"probabilities"`
	Tokens        []string               `json:"tokens,omitempty"`
}

func printPrediction(w io.Writer, c *learning.Classifier, msg string, in learning.Input) error {
	label, probs, err := c.Classify(in)
	if err != nil {
		return err
	}

	if predictJSON {
		var tokens []string
		if !in.IsTokenized() {
			tokens = c.Preprocessor().Preprocess(msg)
		}
		return json.NewEncoder(w).Encode(predictionOutput{
			Message:       msg,
			Label:         label,
			Probabilities: probs,
			Tokens:        tokens,
		})
	}

	fmt.Fprintf(w, "%-4s  spam=%.4f ham=%.4f  %s\n", labelText(label), probs.Spam, probs.Ham, msg)
	return nil
}

func predictLoop(w io.Writer, c *learning.Classifier) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	history := filepath.Join(os.TempDir(), "nbspam_history")
	if f, err := os.Open(history); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.OpenFile(history, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(w, "Type a message to classify, Ctrl+D to quit")
	for {
		input, err := line.Prompt("nbspam> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(w)
			return nil
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if err := printPrediction(w, c, input, learning.RawText(input)); err != nil {
			return err
		}
	}
}

func init() {
	predictCmd.Flags().BoolVarP(&predictTokens, "tokens", "t", false, "Treat arguments as one pre-tokenized message")
	predictCmd.Flags().BoolVarP(&predictInteractive, "interactive", "i", false, "Read messages interactively")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "Print one JSON object per message")
	predictCmd.Flags().StringSliceVarP(&predictFiles, "file", "f", nil, "Classify an email file (repeatable)")
}
