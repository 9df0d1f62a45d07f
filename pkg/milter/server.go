// Package milter exposes the classifier to MTAs (Postfix, Sendmail) over
// the milter protocol.
package milter

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/d--j/go-milter"
	"github.com/zpam/nbspam/pkg/config"
	"github.com/zpam/nbspam/pkg/learning"
)

// Server runs one Handler per SMTP connection, all sharing a classifier
type Server struct {
	config    config.MilterConfig
	log       *slog.Logger
	milterSrv *milter.Server
}

// NewServer builds a milter server around a trained classifier. The
// classifier may be swapped underneath by a store.Watcher while serving.
func NewServer(cfg config.MilterConfig, classifier learning.Predictor, log *slog.Logger) (*Server, error) {
	if classifier == nil {
		return nil, fmt.Errorf("%w: milter needs a classifier", learning.ErrInvalidArgument)
	}

	var milterOpts []milter.Option

	var skipProtocols milter.OptProtocol
	if cfg.SkipConnect {
		skipProtocols |= milter.OptNoConnect
	}
	if cfg.SkipHelo {
		skipProtocols |= milter.OptNoHelo
	}
	if cfg.SkipRcpt {
		skipProtocols |= milter.OptNoRcptTo
	}
	if skipProtocols != 0 {
		milterOpts = append(milterOpts, milter.WithProtocol(skipProtocols))
	}

	if cfg.AddSpamHeaders {
		milterOpts = append(milterOpts, milter.WithAction(milter.OptAddHeader))
	}

	if cfg.ReadTimeoutMs > 0 {
		milterOpts = append(milterOpts, milter.WithReadTimeout(
			time.Duration(cfg.ReadTimeoutMs)*time.Millisecond))
	}
	if cfg.WriteTimeoutMs > 0 {
		milterOpts = append(milterOpts, milter.WithWriteTimeout(
			time.Duration(cfg.WriteTimeoutMs)*time.Millisecond))
	}

	milterOpts = append(milterOpts, milter.WithMilter(func() milter.Milter {
		return NewHandler(cfg, classifier, log)
	}))

	return &Server{
		config:    cfg,
		log:       log,
		milterSrv: milter.NewServer(milterOpts...),
	}, nil
}

// Listen opens the configured socket
func (s *Server) Listen() (net.Listener, error) {
	l, err := net.Listen(s.config.Network, s.config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s:%s: %w", s.config.Network, s.config.Address, err)
	}
	return l, nil
}

// Serve accepts connections until ctx is cancelled, then shuts down
// within the configured grace period
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.milterSrv.Serve(listener)
	}()
	s.log.Info("Milter listening", "network", listener.Addr().Network(), "address", listener.Addr().String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(s.config.GracefulShutdownTimeoutMs)*time.Millisecond,
		)
		defer cancel()

		if err := s.milterSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown milter server: %w", err)
		}
		s.log.Info("Milter stopped", "sessions", s.milterSrv.MilterCount())
		return ctx.Err()

	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("milter server error: %w", err)
		}
		return nil
	}
}

// Close stops the server immediately
func (s *Server) Close() error {
	return s.milterSrv.Close()
}

// Stats returns server statistics
func (s *Server) Stats() ServerStats {
	return ServerStats{
		MilterCount: s.milterSrv.MilterCount(),
	}
}

// ServerStats contains server statistics
type ServerStats struct {
	MilterCount uint64 // handlers created so far
}
