// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package certs

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"

	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
)

var (
	errNoKeyringEntry = errors.New("no keyring entry for field")
	errKeyringEntry   = errors.New("keyring entry failed to decrypt")
	errFieldCipher  = errors.New("field ciphertext failed to decrypt")
	errShortCipher  = errors.New("ciphertext shorter than nonce")
	errBadEncoding  = errors.New("malformed base64 payload")
	errBadFieldKey  = errors.New("revelation key has wrong length")
)

const (
	fieldKeySize = 32
	gcmNonceSize = 12
)

// fieldKeyID scopes a per-field key to one serial number so that keyring
// entries issued for one certificate can never decrypt another's fields.
func fieldKeyID(serialNumber, fieldName string) string {
	return serialNumber + " " + fieldName
}

// decryptFields recovers the plaintext of every certificate field. For each
// field the wrapped revelation key is decrypted through the wallet under the
// field-encryption protocol bound to (serialNumber, fieldName), then the
// field ciphertext is decrypted with the revealed key. Any failure aborts the
// whole batch.
func decryptFields(ctx context.Context, w Wallet, counterparty, serialNumber string, fields, keyring map[string]string) (map[string]string, error) {
	decrypted := make(map[string]string, len(fields))

	for fieldName, fieldValue := range fields {
		entry, ok := keyring[fieldName]
		if !ok {
			return nil, errors.Wrap(errNoKeyringEntry, errors.New(fieldName))
		}
		wrapped, err := base64.StdEncoding.DecodeString(entry)
		if err != nil {
			return nil, errors.Wrap(errBadEncoding, err)
		}

		revelationKey, err := w.Decrypt(ctx, DecryptArgs{
			Ciphertext:   wrapped,
			ProtocolID:   ProtocolFieldEncryption,
			KeyID:        fieldKeyID(serialNumber, fieldName),
			Counterparty: counterparty,
		})
		if err != nil {
			return nil, errors.Wrap(errKeyringEntry, err)
		}

		ciphertext, err := base64.StdEncoding.DecodeString(fieldValue)
		if err != nil {
			return nil, errors.Wrap(errBadEncoding, err)
		}

		plaintext, err := symmetricDecrypt(revelationKey, ciphertext)
		if err != nil {
			return nil, errors.Wrap(errFieldCipher, err)
		}
		decrypted[fieldName] = string(plaintext)
	}

	return decrypted, nil
}

// symmetricDecrypt opens an AES-256-GCM payload laid out as nonce || ciphertext.
func symmetricDecrypt(key, payload []byte) ([]byte, error) {
	if len(key) != fieldKeySize {
		return nil, errBadFieldKey
	}
	if len(payload) < gcmNonceSize {
		return nil, errShortCipher
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return gcm.Open(nil, payload[:gcmNonceSize], payload[gcmNonceSize:], nil)
}
