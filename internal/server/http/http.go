// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/p2ppsr/generic-certifier-backend/internal/server"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Server runs the certifier HTTP API with graceful shutdown wired to the
// service context.
type Server struct {
	server.BaseServer
	srv *http.Server
}

var _ server.Server = (*Server)(nil)

func New(ctx context.Context, cancel context.CancelFunc, name string, cfg server.Config, handler http.Handler, logger *slog.Logger) server.Server {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	return &Server{
		BaseServer: server.BaseServer{
			Ctx:     ctx,
			Cancel:  cancel,
			Name:    name,
			Address: addr,
			Config:  cfg,
			Logger:  logger,
		},
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

func (s *Server) Start() error {
	errCh := make(chan error, 1)

	s.Protocol = "http"
	if s.tls() {
		s.Protocol = "https"
	}
	s.Logger.Info("server listening",
		slog.String("service", s.Name),
		slog.String("protocol", s.Protocol),
		slog.String("address", s.Address),
	)

	go func() {
		if s.tls() {
			errCh <- s.srv.ListenAndServeTLS(s.Config.CertFile, s.Config.KeyFile)
			return
		}
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-s.Ctx.Done():
		return s.Stop()
	case err := <-errCh:
		return err
	}
}

func (s *Server) Stop() error {
	defer s.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		s.Logger.Error("server shutdown failed",
			slog.String("service", s.Name),
			slog.String("address", s.Address),
			slog.Any("error", err),
		)
		return fmt.Errorf("%s server shutdown at %s: %w", s.Name, s.Address, err)
	}
	s.Logger.Info("server stopped",
		slog.String("service", s.Name),
		slog.String("address", s.Address),
	)

	return nil
}

func (s *Server) tls() bool {
	return s.Config.CertFile != "" || s.Config.KeyFile != ""
}
