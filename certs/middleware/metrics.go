// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/p2ppsr/generic-certifier-backend/certs"
)

var _ certs.Service = (*metricsmw)(nil)

type metricsmw struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     certs.Service
}

// Metrics instruments the certifier service with operation counters and
// latency histograms.
func Metrics(counter metrics.Counter, latency metrics.Histogram, svc certs.Service) certs.Service {
	return &metricsmw{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsmw) SignCertificate(ctx context.Context, identityKey string, req certs.IssuanceRequest) (certs.IssuanceResult, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "sign_certificate").Add(1)
		mm.latency.With("method", "sign_certificate").Observe(time.Since(begin).Seconds())
	}(time.Now())
	return mm.svc.SignCertificate(ctx, identityKey, req)
}

func (mm *metricsmw) RevokeCertificate(ctx context.Context, identityKey, serialNumber string) (certs.Certificate, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "revoke_certificate").Add(1)
		mm.latency.With("method", "revoke_certificate").Observe(time.Since(begin).Seconds())
	}(time.Now())
	return mm.svc.RevokeCertificate(ctx, identityKey, serialNumber)
}

func (mm *metricsmw) ListCertificates(ctx context.Context, identityKey string, pm certs.PageMetadata) (certs.CertificatePage, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list_certificates").Add(1)
		mm.latency.With("method", "list_certificates").Observe(time.Since(begin).Seconds())
	}(time.Now())
	return mm.svc.ListCertificates(ctx, identityKey, pm)
}

func (mm *metricsmw) Identify(ctx context.Context) (certs.Identity, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "identify").Add(1)
		mm.latency.With("method", "identify").Observe(time.Since(begin).Seconds())
	}(time.Now())
	return mm.svc.Identify(ctx)
}

func (mm *metricsmw) VerifyAttributes(ctx context.Context, identityKey string, attributes map[string]string) (bool, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "verify_attributes").Add(1)
		mm.latency.With("method", "verify_attributes").Observe(time.Since(begin).Seconds())
	}(time.Now())
	return mm.svc.VerifyAttributes(ctx, identityKey, attributes)
}

func (mm *metricsmw) CheckVerification(ctx context.Context, identityKey, verificationID string) (bool, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "check_verification").Add(1)
		mm.latency.With("method", "check_verification").Observe(time.Since(begin).Seconds())
	}(time.Now())
	return mm.svc.CheckVerification(ctx, identityKey, verificationID)
}
