// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/stretchr/testify/mock"
)

var _ certs.Wallet = (*Wallet)(nil)

type Wallet struct {
	mock.Mock
}

func (m *Wallet) IdentityKey(ctx context.Context) (string, error) {
	ret := m.Called(ctx)

	return ret.String(0), ret.Error(1)
}

func (m *Wallet) CreateNonce(ctx context.Context, counterparty string) (string, error) {
	ret := m.Called(ctx, counterparty)

	return ret.String(0), ret.Error(1)
}

func (m *Wallet) VerifyNonce(ctx context.Context, nonce, counterparty string) error {
	ret := m.Called(ctx, nonce, counterparty)

	return ret.Error(0)
}

func (m *Wallet) CreateHMAC(ctx context.Context, args certs.HMACArgs) ([]byte, error) {
	ret := m.Called(ctx, args)

	return ret.Get(0).([]byte), ret.Error(1)
}

func (m *Wallet) Decrypt(ctx context.Context, args certs.DecryptArgs) ([]byte, error) {
	ret := m.Called(ctx, args)

	return ret.Get(0).([]byte), ret.Error(1)
}

func (m *Wallet) CreateSignature(ctx context.Context, args certs.SignatureArgs) ([]byte, error) {
	ret := m.Called(ctx, args)

	return ret.Get(0).([]byte), ret.Error(1)
}

func (m *Wallet) CreateLockingScript(ctx context.Context, args certs.LockArgs) (string, error) {
	ret := m.Called(ctx, args)

	return ret.String(0), ret.Error(1)
}

func (m *Wallet) CreateAction(ctx context.Context, args certs.CreateActionArgs) (certs.ActionResult, error) {
	ret := m.Called(ctx, args)

	return ret.Get(0).(certs.ActionResult), ret.Error(1)
}
