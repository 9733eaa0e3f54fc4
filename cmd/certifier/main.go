// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

// Package main contains certifier main function to start the certifier service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/p2ppsr/generic-certifier-backend/certs/api"
	"github.com/p2ppsr/generic-certifier-backend/certs/middleware"
	certspg "github.com/p2ppsr/generic-certifier-backend/certs/postgres"
	"github.com/p2ppsr/generic-certifier-backend/internal"
	"github.com/p2ppsr/generic-certifier-backend/internal/server"
	httpserver "github.com/p2ppsr/generic-certifier-backend/internal/server/http"
	gclog "github.com/p2ppsr/generic-certifier-backend/logger"
	"github.com/p2ppsr/generic-certifier-backend/pkg/postgres"
	"github.com/p2ppsr/generic-certifier-backend/pkg/verifier"
	"github.com/p2ppsr/generic-certifier-backend/pkg/wallet"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const (
	svcName        = "certifier"
	envPrefixDB    = "GC_CERTIFIER_DB_"
	envPrefixHTTP  = "GC_CERTIFIER_HTTP_"
	defDB          = "certifier"
	defSvcHTTPPort = "9100"
)

type config struct {
	LogLevel        string        `env:"GC_CERTIFIER_LOG_LEVEL"        envDefault:"info"`
	InstanceID      string        `env:"GC_CERTIFIER_INSTANCE_ID"      envDefault:""`
	ServerKey       string        `env:"GC_SERVER_PRIVATE_KEY,notEmpty"`
	Chain           string        `env:"GC_CHAIN"                      envDefault:"test"`
	CertTypes       string        `env:"GC_CERTIFICATE_TYPES"          envDefault:"{}"`
	VerifierURL     string        `env:"GC_VERIFIER_URL"               envDefault:""`
	VerifierKey     string        `env:"GC_VERIFIER_API_KEY"           envDefault:""`
	VerifierTimeout time.Duration `env:"GC_VERIFIER_TIMEOUT"           envDefault:"30s"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load %s configuration : %s", svcName, err)
	}

	logger, err := gclog.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %s", err)
	}
	var exitCode int
	defer gclog.ExitWithError(&exitCode)

	if cfg.InstanceID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			logger.Error(fmt.Sprintf("failed to generate instanceID: %s", err))
			exitCode = 1
			return
		}
		cfg.InstanceID = id.String()
	}

	var certTypes map[string][]string
	if err := json.Unmarshal([]byte(cfg.CertTypes), &certTypes); err != nil {
		logger.Error(fmt.Sprintf("failed to parse certificate types: %s", err))
		exitCode = 1
		return
	}

	dbConfig := postgres.Config{Name: defDB}
	if err := env.ParseWithOptions(&dbConfig, env.Options{Prefix: envPrefixDB}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s database configuration : %s", svcName, err))
		exitCode = 1
		return
	}
	db, err := postgres.Setup(dbConfig, certspg.Migration(cfg.Chain))
	if err != nil {
		logger.Error(err.Error())
		exitCode = 1
		return
	}
	defer db.Close()

	w, err := wallet.New(cfg.ServerKey)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to init wallet: %s", err))
		exitCode = 1
		return
	}

	svc, err := newService(ctx, db, w, cfg, certTypes, logger)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to create %s service: %s", svcName, err))
		exitCode = 1
		return
	}

	httpServerConfig := server.Config{Port: defSvcHTTPPort}
	if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration : %s", svcName, err))
		exitCode = 1
		return
	}

	httpSvr := httpserver.New(ctx, cancel, svcName, httpServerConfig, api.MakeHandler(svc, logger, cfg.InstanceID), logger)

	g.Go(func() error {
		return httpSvr.Start()
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, httpSvr)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service terminated: %s", svcName, err))
	}
}

func newService(ctx context.Context, db *sqlx.DB, w *wallet.Wallet, cfg config, certTypes map[string][]string, logger *slog.Logger) (certs.Service, error) {
	database := postgres.NewDatabase(db, otel.Tracer(svcName))
	repo := certspg.NewRepository(database)

	settings, err := repo.RetrieveSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings.Chain != cfg.Chain {
		return nil, fmt.Errorf("storage is bound to chain %q, configured chain is %q", settings.Chain, cfg.Chain)
	}

	var vrf certs.Verifier
	if cfg.VerifierURL != "" {
		vrf = verifier.NewProvider(cfg.VerifierURL, cfg.VerifierKey, cfg.VerifierTimeout)
	} else {
		vrf = verifier.NewStatic(true)
	}

	svc := certs.New(w, vrf, repo, certs.Config{CertificateTypes: certTypes})
	svc = middleware.Logging(svc, logger)
	counter, latency := internal.MakeMetrics(svcName, "api")
	svc = middleware.Metrics(counter, latency, svc)
	svc = middleware.Tracing(svc, otel.Tracer(svcName))

	return svc, nil
}
