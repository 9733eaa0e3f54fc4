// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package certs

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sealField(t *testing.T, key, plaintext []byte) string {
	t.Helper()
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)
	nonce := make([]byte, gcm.NonceSize())
	_, err = rand.Read(nonce)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(gcm.Seal(nonce, nonce, plaintext, nil))
}

func TestDecryptFields(t *testing.T) {
	w := newStubWallet()
	ctx := context.Background()
	subject := "028d3a9c6a43d2f144b6a4e67b46e8a5a6b3e617d2aa35c7e2fca1e79c8a6b3d11"
	serial := nonceB64(7)

	firstKey := make([]byte, 32)
	_, err := rand.Read(firstKey)
	require.NoError(t, err)
	lastKey := make([]byte, 32)
	_, err = rand.Read(lastKey)
	require.NoError(t, err)

	fields := map[string]string{
		"firstName": sealField(t, firstKey, []byte("John")),
		"lastName":  sealField(t, lastKey, []byte("Smith")),
	}
	keyring := map[string]string{
		"firstName": base64.StdEncoding.EncodeToString([]byte("wrapped-first")),
		"lastName":  base64.StdEncoding.EncodeToString([]byte("wrapped-last")),
	}
	w.decryptOut[fieldKeyID(serial, "firstName")] = firstKey
	w.decryptOut[fieldKeyID(serial, "lastName")] = lastKey

	decrypted, err := decryptFields(ctx, w, subject, serial, fields, keyring)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"firstName": "John", "lastName": "Smith"}, decrypted)

	t.Run("missing keyring entry", func(t *testing.T) {
		partial := map[string]string{"firstName": keyring["firstName"]}
		_, err := decryptFields(ctx, w, subject, serial, fields, partial)
		require.Error(t, err)
		assert.True(t, errors.Contains(err, errNoKeyringEntry))
	})

	t.Run("keyring scoped to another serial", func(t *testing.T) {
		_, err := decryptFields(ctx, w, subject, nonceB64(8), fields, keyring)
		assert.Error(t, err)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		tampered := map[string]string{
			"firstName": sealField(t, lastKey, []byte("John")),
			"lastName":  fields["lastName"],
		}
		_, err := decryptFields(ctx, w, subject, serial, tampered, keyring)
		assert.Error(t, err)
	})

	t.Run("malformed base64 field", func(t *testing.T) {
		bad := map[string]string{"firstName": "not base64!!", "lastName": fields["lastName"]}
		_, err := decryptFields(ctx, w, subject, serial, bad, keyring)
		assert.Error(t, err)
	})
}

func TestSymmetricDecryptRejectsShortPayload(t *testing.T) {
	key := make([]byte, 32)
	_, err := symmetricDecrypt(key, []byte{1, 2, 3})
	assert.Error(t, err)

	_, err = symmetricDecrypt([]byte{1}, make([]byte, 64))
	assert.Error(t, err)
}
