// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"context"

	"github.com/p2ppsr/generic-certifier-backend/certs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ certs.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    certs.Service
}

func Tracing(svc certs.Service, tracer trace.Tracer) certs.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) SignCertificate(ctx context.Context, identityKey string, req certs.IssuanceRequest) (res certs.IssuanceResult, err error) {
	ctx, span := tm.tracer.Start(ctx, "sign_certificate", trace.WithAttributes(
		attribute.String("subject", identityKey),
		attribute.String("type", req.Type),
	))
	defer span.End()

	return tm.svc.SignCertificate(ctx, identityKey, req)
}

func (tm *tracing) RevokeCertificate(ctx context.Context, identityKey, serialNumber string) (cert certs.Certificate, err error) {
	ctx, span := tm.tracer.Start(ctx, "revoke_certificate", trace.WithAttributes(
		attribute.String("serial_number", serialNumber),
	))
	defer span.End()

	return tm.svc.RevokeCertificate(ctx, identityKey, serialNumber)
}

func (tm *tracing) ListCertificates(ctx context.Context, identityKey string, pm certs.PageMetadata) (page certs.CertificatePage, err error) {
	ctx, span := tm.tracer.Start(ctx, "list_certificates", trace.WithAttributes(
		attribute.Int("limit", int(pm.Limit)),
		attribute.Int("offset", int(pm.Offset)),
		attribute.String("subject", pm.Subject),
		attribute.String("type", pm.Type),
	))
	defer span.End()

	return tm.svc.ListCertificates(ctx, identityKey, pm)
}

func (tm *tracing) Identify(ctx context.Context) (identity certs.Identity, err error) {
	ctx, span := tm.tracer.Start(ctx, "identify")
	defer span.End()

	return tm.svc.Identify(ctx)
}

func (tm *tracing) VerifyAttributes(ctx context.Context, identityKey string, attributes map[string]string) (verified bool, err error) {
	ctx, span := tm.tracer.Start(ctx, "verify_attributes", trace.WithAttributes(
		attribute.String("subject", identityKey),
	))
	defer span.End()

	return tm.svc.VerifyAttributes(ctx, identityKey, attributes)
}

func (tm *tracing) CheckVerification(ctx context.Context, identityKey, verificationID string) (verified bool, err error) {
	ctx, span := tm.tracer.Start(ctx, "check_verification", trace.WithAttributes(
		attribute.String("verification_id", verificationID),
	))
	defer span.End()

	return tm.svc.CheckVerification(ctx, identityKey, verificationID)
}
