// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package certs

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubWallet is a deterministic in-memory wallet used by the unit tests of
// the issuance primitives. Keyed operations mix the protocol, key ID and
// counterparty into the result so distinct scopes never collide.
type stubWallet struct {
	identity   string
	decryptOut map[string][]byte
	actions    []CreateActionArgs
	actionErr  error
	txid       string
}

func newStubWallet() *stubWallet {
	return &stubWallet{
		identity:   "02a1c81d78f5c404fd34c418525ba4a3b52be35328c30e67234bfcf30eb8a064d8",
		decryptOut: make(map[string][]byte),
		txid:       "3f8a61a2094e2a4314f1b1b7a5d11dcbbea6bf1f1c9dc55dd9c459c9f39ed92e",
	}
}

func (s *stubWallet) IdentityKey(ctx context.Context) (string, error) {
	return s.identity, nil
}

func (s *stubWallet) CreateNonce(ctx context.Context, counterparty string) (string, error) {
	return base64.StdEncoding.EncodeToString(make([]byte, 32)), nil
}

func (s *stubWallet) VerifyNonce(ctx context.Context, nonce, counterparty string) error {
	return nil
}

func (s *stubWallet) CreateHMAC(ctx context.Context, args HMACArgs) ([]byte, error) {
	mac := hmac.New(sha256.New, []byte(args.ProtocolID.Protocol+"|"+args.KeyID+"|"+args.Counterparty))
	mac.Write(args.Data)
	return mac.Sum(nil), nil
}

func (s *stubWallet) Decrypt(ctx context.Context, args DecryptArgs) ([]byte, error) {
	if len(args.Ciphertext) == 0 {
		return nil, ErrFieldDecryption
	}
	if out, ok := s.decryptOut[args.KeyID]; ok {
		return out, nil
	}
	return nil, ErrFieldDecryption
}

func (s *stubWallet) CreateSignature(ctx context.Context, args SignatureArgs) ([]byte, error) {
	mac := hmac.New(sha256.New, []byte("sig|"+args.ProtocolID.Protocol+"|"+args.KeyID))
	mac.Write(args.Data)
	return mac.Sum(nil), nil
}

func (s *stubWallet) CreateLockingScript(ctx context.Context, args LockArgs) (string, error) {
	return "51", nil
}

func (s *stubWallet) CreateAction(ctx context.Context, args CreateActionArgs) (ActionResult, error) {
	s.actions = append(s.actions, args)
	if s.actionErr != nil {
		return ActionResult{}, s.actionErr
	}
	return ActionResult{TxID: s.txid}, nil
}

func nonceB64(seed byte) string {
	buf := make([]byte, 32)
	for i := range buf {
		buf[i] = seed
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func TestDeriveSerialNumber(t *testing.T) {
	w := newStubWallet()
	ctx := context.Background()
	subject := "028d3a9c6a43d2f144b6a4e67b46e8a5a6b3e617d2aa35c7e2fca1e79c8a6b3d11"

	clientNonce := nonceB64(1)
	serverNonce := nonceB64(2)

	first, err := deriveSerialNumber(ctx, w, subject, clientNonce, serverNonce)
	require.NoError(t, err)
	second, err := deriveSerialNumber(ctx, w, subject, clientNonce, serverNonce)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same nonces must derive the same serial")

	raw, err := base64.StdEncoding.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, raw, sha256.Size)
	assert.Len(t, first, 44)

	other, err := deriveSerialNumber(ctx, w, subject, clientNonce, nonceB64(3))
	require.NoError(t, err)
	assert.NotEqual(t, first, other, "different server nonce must derive a different serial")

	otherParty, err := deriveSerialNumber(ctx, w, "03"+subject[2:], clientNonce, serverNonce)
	require.NoError(t, err)
	assert.NotEqual(t, first, otherParty, "different counterparty must derive a different serial")

	_, err = deriveSerialNumber(ctx, w, subject, "not base64!!", serverNonce)
	assert.Error(t, err)
}
