// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/stretchr/testify/mock"
)

var _ certs.Verifier = (*Verifier)(nil)

type Verifier struct {
	mock.Mock
}

func (m *Verifier) VerifyAttributes(ctx context.Context, attributes map[string]string) (bool, error) {
	ret := m.Called(ctx, attributes)

	return ret.Bool(0), ret.Error(1)
}

func (m *Verifier) CheckVerification(ctx context.Context, verificationID string) (bool, error) {
	ret := m.Called(ctx, verificationID)

	return ret.Bool(0), ret.Error(1)
}
