// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/p2ppsr/generic-certifier-backend/certs"
)

var _ certs.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger  *slog.Logger
	service certs.Service
}

// Logging adds logging facilities to the certifier service.
func Logging(service certs.Service, logger *slog.Logger) certs.Service {
	return &loggingMiddleware{
		logger:  logger,
		service: service,
	}
}

func (lm *loggingMiddleware) SignCertificate(ctx context.Context, identityKey string, req certs.IssuanceRequest) (result certs.IssuanceResult, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("certificate",
				slog.String("type", req.Type),
				slog.String("subject", identityKey),
				slog.Int("fields", len(req.Fields)),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Sign certificate failed", args...)
			return
		}
		args = append(args, slog.String("serial_number", result.Certificate.SerialNumber))
		lm.logger.Info("Sign certificate completed successfully", args...)
	}(time.Now())

	return lm.service.SignCertificate(ctx, identityKey, req)
}

func (lm *loggingMiddleware) RevokeCertificate(ctx context.Context, identityKey, serialNumber string) (cert certs.Certificate, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("serial_number", serialNumber),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Revoke certificate failed", args...)
			return
		}
		args = append(args, slog.String("revocation_txid", cert.RevocationTxID))
		lm.logger.Info("Revoke certificate completed successfully", args...)
	}(time.Now())

	return lm.service.RevokeCertificate(ctx, identityKey, serialNumber)
}

func (lm *loggingMiddleware) ListCertificates(ctx context.Context, identityKey string, pm certs.PageMetadata) (page certs.CertificatePage, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("page",
				slog.Uint64("offset", pm.Offset),
				slog.Uint64("limit", pm.Limit),
				slog.Uint64("total", page.Total),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List certificates failed", args...)
			return
		}
		lm.logger.Info("List certificates completed successfully", args...)
	}(time.Now())

	return lm.service.ListCertificates(ctx, identityKey, pm)
}

func (lm *loggingMiddleware) Identify(ctx context.Context) (identity certs.Identity, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Identify failed", args...)
			return
		}
		lm.logger.Info("Identify completed successfully", args...)
	}(time.Now())

	return lm.service.Identify(ctx)
}

func (lm *loggingMiddleware) VerifyAttributes(ctx context.Context, identityKey string, attributes map[string]string) (verified bool, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("attributes", len(attributes)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Verify attributes failed", args...)
			return
		}
		lm.logger.Info("Verify attributes completed successfully", args...)
	}(time.Now())

	return lm.service.VerifyAttributes(ctx, identityKey, attributes)
}

func (lm *loggingMiddleware) CheckVerification(ctx context.Context, identityKey, verificationID string) (verified bool, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("verification_id", verificationID),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Check verification failed", args...)
			return
		}
		lm.logger.Info("Check verification completed successfully", args...)
	}(time.Now())

	return lm.service.CheckVerification(ctx, identityKey, verificationID)
}
