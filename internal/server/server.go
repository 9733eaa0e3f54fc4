// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

type Server interface {
	Start() error
	Stop() error
}

type Config struct {
	Host     string `env:"HOST"           envDefault:""`
	Port     string `env:"PORT"           envDefault:""`
	CertFile string `env:"SERVER_CERT"    envDefault:""`
	KeyFile  string `env:"SERVER_KEY"     envDefault:""`
}

type BaseServer struct {
	Ctx      context.Context
	Cancel   context.CancelFunc
	Name     string
	Address  string
	Config   Config
	Logger   *slog.Logger
	Protocol string
}

func stopAll(servers ...Server) error {
	var err error
	for _, srv := range servers {
		if serr := srv.Stop(); serr != nil {
			err = errors.Join(err, serr)
		}
	}
	return err
}

// StopSignalHandler stops every server on SIGINT or SIGTERM and reports how
// the shutdown went.
func StopSignalHandler(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, svcName string, servers ...Server) error {
	c := make(chan os.Signal, 2)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-c:
		defer cancel()
		err := stopAll(servers...)
		if err != nil {
			logger.Error("shutdown failed",
				slog.String("service", svcName),
				slog.Any("error", err),
			)
			return err
		}
		logger.Info("shutdown by signal",
			slog.String("service", svcName),
			slog.String("signal", sig.String()),
		)
		return nil
	case <-ctx.Done():
		return nil
	}
}
