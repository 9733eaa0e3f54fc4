// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	becdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProtocol = certs.Protocol{SecurityLevel: 2, Protocol: "certificate field encryption"}

func testKeyHex(seed byte) string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = seed + byte(i)
	}
	return hex.EncodeToString(raw)
}

func testPair(t *testing.T) (*Wallet, string, *Wallet, string) {
	t.Helper()
	ctx := context.Background()

	a, err := New(testKeyHex(1))
	require.NoError(t, err)
	b, err := New(testKeyHex(101))
	require.NoError(t, err)

	aID, err := a.IdentityKey(ctx)
	require.NoError(t, err)
	bID, err := b.IdentityKey(ctx)
	require.NoError(t, err)

	return a, aID, b, bID
}

func TestNew(t *testing.T) {
	w, err := New(testKeyHex(1))
	require.NoError(t, err)

	id, err := w.IdentityKey(context.Background())
	require.NoError(t, err)
	assert.Len(t, id, 66)
	_, err = hex.DecodeString(id)
	assert.NoError(t, err)

	cases := []string{"", "zz", "abcd", hex.EncodeToString(make([]byte, 32))}
	for _, key := range cases {
		_, err := New(key)
		assert.Error(t, err, "key %q must be rejected", key)
	}
}

func TestHMACAgreement(t *testing.T) {
	a, aID, b, bID := testPair(t)
	ctx := context.Background()
	data := []byte("attribute payload")

	fromA, err := a.CreateHMAC(ctx, certs.HMACArgs{
		Data: data, ProtocolID: testProtocol, KeyID: "serial field", Counterparty: bID,
	})
	require.NoError(t, err)
	fromB, err := b.CreateHMAC(ctx, certs.HMACArgs{
		Data: data, ProtocolID: testProtocol, KeyID: "serial field", Counterparty: aID,
	})
	require.NoError(t, err)
	assert.Equal(t, fromA, fromB, "both parties must derive the same keyed HMAC")

	otherKey, err := a.CreateHMAC(ctx, certs.HMACArgs{
		Data: data, ProtocolID: testProtocol, KeyID: "serial other", Counterparty: bID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, fromA, otherKey, "key IDs must partition the derivation space")

	otherProto, err := a.CreateHMAC(ctx, certs.HMACArgs{
		Data:         data,
		ProtocolID:   certs.Protocol{SecurityLevel: 2, Protocol: "revocation output tagging"},
		KeyID:        "serial field",
		Counterparty: bID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, fromA, otherProto, "protocols must partition the derivation space")
}

func TestEncryptDecryptAcrossWallets(t *testing.T) {
	a, aID, b, bID := testPair(t)
	ctx := context.Background()
	plaintext := []byte("field revelation key material")

	ciphertext, err := a.Encrypt(ctx, plaintext, testProtocol, "serial field", bID)
	require.NoError(t, err)
	assert.NotContains(t, string(ciphertext), string(plaintext))

	decrypted, err := b.Decrypt(ctx, certs.DecryptArgs{
		Ciphertext: ciphertext, ProtocolID: testProtocol, KeyID: "serial field", Counterparty: aID,
	})
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)

	_, err = b.Decrypt(ctx, certs.DecryptArgs{
		Ciphertext: ciphertext, ProtocolID: testProtocol, KeyID: "serial other", Counterparty: aID,
	})
	assert.Error(t, err, "a different key ID must not decrypt")

	tampered := append([]byte{}, ciphertext...)
	tampered[len(tampered)-1] ^= 0xff
	_, err = b.Decrypt(ctx, certs.DecryptArgs{
		Ciphertext: tampered, ProtocolID: testProtocol, KeyID: "serial field", Counterparty: aID,
	})
	assert.Error(t, err, "tampered ciphertext must not decrypt")
}

func TestNonceLifecycle(t *testing.T) {
	a, aID, b, bID := testPair(t)
	ctx := context.Background()

	nonce, err := a.CreateNonce(ctx, bID)
	require.NoError(t, err)
	assert.Len(t, nonce, 44)

	require.NoError(t, b.VerifyNonce(ctx, nonce, aID))

	err = b.VerifyNonce(ctx, nonce, aID)
	assert.ErrorIs(t, err, ErrNonceConsumed)

	second, err := a.CreateNonce(ctx, bID)
	require.NoError(t, err)
	assert.NotEqual(t, nonce, second)

	stranger, err := New(testKeyHex(201))
	require.NoError(t, err)
	strangerID, err := stranger.IdentityKey(ctx)
	require.NoError(t, err)
	err = b.VerifyNonce(ctx, second, strangerID)
	assert.ErrorIs(t, err, ErrNonceVerification)

	err = b.VerifyNonce(ctx, "tooshort", aID)
	assert.ErrorIs(t, err, ErrNonceFormat)
}

func TestCreateSignature(t *testing.T) {
	a, _, _, _ := testPair(t)
	ctx := context.Background()
	data := []byte("certificate payload")

	raw, err := a.CreateSignature(ctx, certs.SignatureArgs{
		Data:         data,
		ProtocolID:   certs.Protocol{SecurityLevel: 2, Protocol: "certificate signature"},
		KeyID:        "serial",
		Counterparty: certs.AnyoneCounterparty,
	})
	require.NoError(t, err)

	sig, err := becdsa.ParseDERSignature(raw)
	require.NoError(t, err)

	priv, err := a.derivePrivateKey(certs.Protocol{SecurityLevel: 2, Protocol: "certificate signature"}, "serial", certs.AnyoneCounterparty)
	require.NoError(t, err)
	digest := sha256.Sum256(data)
	assert.True(t, sig.Verify(digest[:], priv.PubKey()), "signature must verify under the derived key")

	digest = sha256.Sum256([]byte("something else"))
	assert.False(t, sig.Verify(digest[:], priv.PubKey()))
}

func TestDerivedKeyAgreement(t *testing.T) {
	a, aID, b, bID := testPair(t)

	// The child public key B derives for A must match the child private key
	// A derives for itself against B.
	priv, err := a.derivePrivateKey(testProtocol, "serial", bID)
	require.NoError(t, err)
	pub, err := b.derivePublicKey(testProtocol, "serial", aID)
	require.NoError(t, err)

	assert.Equal(t, priv.PubKey().SerializeCompressed(), pub.SerializeCompressed())
}

func TestCreateLockingScript(t *testing.T) {
	a, _, _, bID := testPair(t)
	ctx := context.Background()

	args := certs.LockArgs{
		Fields:       [][]byte{[]byte("serial number")},
		ProtocolID:   certs.Protocol{SecurityLevel: 2, Protocol: "certificate revocation"},
		KeyID:        "prefix suffix",
		Counterparty: bID,
	}

	script, err := a.CreateLockingScript(ctx, args)
	require.NoError(t, err)

	raw, err := hex.DecodeString(script)
	require.NoError(t, err)
	require.Greater(t, len(raw), 35)
	assert.Equal(t, byte(33), raw[0], "script starts with a 33 byte key push")
	assert.Equal(t, byte(opCheckSig), raw[34])
	assert.Equal(t, byte(opDrop), raw[len(raw)-1], "single field ends with one drop")

	again, err := a.CreateLockingScript(ctx, args)
	require.NoError(t, err)
	assert.Equal(t, script, again, "same args derive the same script")

	other := args
	other.KeyID = "other suffix"
	otherScript, err := a.CreateLockingScript(ctx, other)
	require.NoError(t, err)
	assert.NotEqual(t, script, otherScript, "fresh derivation components change the key")
}

func TestCreateActionLedger(t *testing.T) {
	a, _, _, bID := testPair(t)
	ctx := context.Background()

	script, err := a.CreateLockingScript(ctx, certs.LockArgs{
		Fields:       [][]byte{[]byte("serial number")},
		ProtocolID:   certs.Protocol{SecurityLevel: 2, Protocol: "certificate revocation"},
		KeyID:        "prefix suffix",
		Counterparty: bID,
	})
	require.NoError(t, err)

	created, err := a.CreateAction(ctx, certs.CreateActionArgs{
		Description: "commitment",
		Outputs:     []certs.ActionOutput{{LockingScript: script, Satoshis: 1}},
	})
	require.NoError(t, err)
	assert.Len(t, created.TxID, 64)
	_, err = hex.DecodeString(created.TxID)
	require.NoError(t, err)

	outpoint := certs.Outpoint(created.TxID, 0)

	spent, err := a.CreateAction(ctx, certs.CreateActionArgs{
		Description: "revocation",
		Inputs:      []certs.ActionInput{{Outpoint: outpoint}},
	})
	require.NoError(t, err)
	assert.NotEqual(t, created.TxID, spent.TxID)

	_, err = a.CreateAction(ctx, certs.CreateActionArgs{
		Inputs: []certs.ActionInput{{Outpoint: outpoint}},
	})
	assert.True(t, errors.Contains(err, ErrOutpointSpent), "double spend must be rejected")

	_, err = a.CreateAction(ctx, certs.CreateActionArgs{
		Inputs: []certs.ActionInput{{Outpoint: certs.Outpoint(spent.TxID, 0)}},
	})
	assert.True(t, errors.Contains(err, ErrUnknownOutpoint), "spending a non-existent output must be rejected")

	_, err = a.CreateAction(ctx, certs.CreateActionArgs{})
	assert.ErrorIs(t, err, ErrEmptyAction)
}
