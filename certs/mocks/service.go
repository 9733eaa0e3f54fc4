// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/stretchr/testify/mock"
)

var _ certs.Service = (*Service)(nil)

type Service struct {
	mock.Mock
}

func (m *Service) SignCertificate(ctx context.Context, identityKey string, req certs.IssuanceRequest) (certs.IssuanceResult, error) {
	ret := m.Called(ctx, identityKey, req)

	return ret.Get(0).(certs.IssuanceResult), ret.Error(1)
}

func (m *Service) RevokeCertificate(ctx context.Context, identityKey, serialNumber string) (certs.Certificate, error) {
	ret := m.Called(ctx, identityKey, serialNumber)

	return ret.Get(0).(certs.Certificate), ret.Error(1)
}

func (m *Service) ListCertificates(ctx context.Context, identityKey string, pm certs.PageMetadata) (certs.CertificatePage, error) {
	ret := m.Called(ctx, identityKey, pm)

	return ret.Get(0).(certs.CertificatePage), ret.Error(1)
}

func (m *Service) Identify(ctx context.Context) (certs.Identity, error) {
	ret := m.Called(ctx)

	return ret.Get(0).(certs.Identity), ret.Error(1)
}

func (m *Service) VerifyAttributes(ctx context.Context, identityKey string, attributes map[string]string) (bool, error) {
	ret := m.Called(ctx, identityKey, attributes)

	return ret.Bool(0), ret.Error(1)
}

func (m *Service) CheckVerification(ctx context.Context, identityKey, verificationID string) (bool, error) {
	ret := m.Called(ctx, identityKey, verificationID)

	return ret.Bool(0), ret.Error(1)
}
