// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/stretchr/testify/mock"
)

var _ certs.Repository = (*Repository)(nil)

type Repository struct {
	mock.Mock
}

func (m *Repository) Save(ctx context.Context, cert certs.Certificate, fields []certs.CertificateField) (uint64, error) {
	ret := m.Called(ctx, cert, fields)

	return ret.Get(0).(uint64), ret.Error(1)
}

func (m *Repository) Update(ctx context.Context, id uint64, patch certs.CertificatePatch) error {
	ret := m.Called(ctx, id, patch)

	return ret.Error(0)
}

func (m *Repository) UpdateField(ctx context.Context, id uint64, fieldName string, patch certs.FieldPatch) error {
	ret := m.Called(ctx, id, fieldName, patch)

	return ret.Error(0)
}

func (m *Repository) RetrieveAll(ctx context.Context, pm certs.PageMetadata) (certs.CertificatePage, error) {
	ret := m.Called(ctx, pm)

	return ret.Get(0).(certs.CertificatePage), ret.Error(1)
}

func (m *Repository) RetrieveBySerial(ctx context.Context, certifier, serialNumber string) (certs.Certificate, error) {
	ret := m.Called(ctx, certifier, serialNumber)

	return ret.Get(0).(certs.Certificate), ret.Error(1)
}

func (m *Repository) RetrieveFields(ctx context.Context, id uint64) ([]certs.CertificateField, error) {
	ret := m.Called(ctx, id)

	return ret.Get(0).([]certs.CertificateField), ret.Error(1)
}

func (m *Repository) RetrieveSettings(ctx context.Context) (certs.Settings, error) {
	ret := m.Called(ctx)

	return ret.Get(0).(certs.Settings), ret.Error(1)
}
