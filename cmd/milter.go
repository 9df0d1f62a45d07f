package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zpam/nbspam/pkg/milter"
	"github.com/zpam/nbspam/pkg/store"
)

var (
	milterNetwork string
	milterAddress string
	milterWatch   bool
)

var milterCmd = &cobra.Command{
	Use:   "milter",
	Short: "Start milter server for Postfix/Sendmail integration",
	Long: `Start a milter server that classifies every message an MTA passes
through it with the saved model.

Each message is tagged with X-NBSpam-Status and X-NBSpam-Probability headers
and rejected with a 550 when its spam probability reaches the configured
reject threshold.

With --watch (file store only) the model is reloaded whenever its file is
replaced, without dropping connections.

For Postfix integration, add to main.cf:
  smtpd_milters = inet:127.0.0.1:7357
  non_smtpd_milters = inet:127.0.0.1:7357
  milter_default_action = accept`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		cfg := e.cfg
		if cmd.Flags().Changed("network") {
			cfg.Milter.Network = milterNetwork
		}
		if cmd.Flags().Changed("address") {
			cfg.Milter.Address = milterAddress
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		c, st, err := e.loadClassifier(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if milterWatch || (cfg.Store.File.Watch && cfg.Store.Backend == "file") {
			fs, ok := st.(*store.FileStore)
			if !ok {
				return fmt.Errorf("model watching needs the file store, configured backend is %s", cfg.Store.Backend)
			}
			w, err := store.NewWatcher(fs, cfg.Model.Name, c, e.log)
			if err != nil {
				return err
			}
			go func() {
				if err := w.Run(ctx); err != nil {
					e.log.Error("Model watcher stopped", "error", err)
				}
			}()
			fmt.Printf("👀 Watching %s for model updates\n", fs.Path(cfg.Model.Name))
		}

		server, err := milter.NewServer(cfg.Milter, c, e.log)
		if err != nil {
			return fmt.Errorf("failed to create milter server: %w", err)
		}
		listener, err := server.Listen()
		if err != nil {
			return err
		}
		defer listener.Close()

		fmt.Printf("📧 nbspam milter listening on %s://%s\n", cfg.Milter.Network, cfg.Milter.Address)
		if cfg.Milter.RejectThreshold > 0 {
			fmt.Printf("🎯 Rejecting messages with P(spam) >= %.2f\n", cfg.Milter.RejectThreshold)
		} else {
			fmt.Printf("🎯 Tagging only, rejection disabled\n")
		}
		fmt.Printf("🚀 Press Ctrl+C to stop\n\n")

		err = server.Serve(ctx, listener)
		if errors.Is(err, context.Canceled) {
			fmt.Printf("\n✅ Milter server stopped gracefully (%d sessions)\n", server.Stats().MilterCount)
			return nil
		}
		return err
	},
}

func init() {
	milterCmd.Flags().StringVarP(&milterNetwork, "network", "n", "", "Network type (tcp or unix)")
	milterCmd.Flags().StringVarP(&milterAddress, "address", "a", "", "Bind address (e.g., 127.0.0.1:7357 or /tmp/nbspam.sock)")
	milterCmd.Flags().BoolVarP(&milterWatch, "watch", "w", false, "Reload the model when its file changes")
}
