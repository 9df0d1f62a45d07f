package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	modelName  string
)

var rootCmd = &cobra.Command{
	Use:   "nbspam",
	Short: "nbspam - Naive Bayes spam filter for Spanish text",
	Long: `nbspam trains a multinomial Naive Bayes classifier on labeled messages
and uses it to tell spam from ham.

Models are persisted through a pluggable store (file, redis, badger or
sqlite) and can be served to an MTA through the milter command.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("nbspam - Naive Bayes spam filter")
		fmt.Println("Use 'nbspam --help' for usage information")
	},
}

// Execute runs the CLI until it finishes or receives SIGINT/SIGTERM
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file path (defaults + environment when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "Override the model name used in the store")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(wordsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(milterCmd)
	rootCmd.AddCommand(configCmd)
}
