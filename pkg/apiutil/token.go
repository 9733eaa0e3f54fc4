// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package apiutil

import (
	"encoding/hex"
	"net/http"
)

// IdentityKeyHeader carries the mutually authenticated caller identity key.
// The auth middleware terminating the BSV auth handshake sets it; the service
// itself never re-verifies the handshake.
const IdentityKeyHeader = "x-bsv-auth-identity-key"

// identityKeyLen is the length of a hex-encoded compressed secp256k1 public key.
const identityKeyLen = 66

// ExtractIdentityKey returns the authenticated caller identity key. If the
// header is absent or malformed - an empty value is returned.
func ExtractIdentityKey(r *http.Request) string {
	key := r.Header.Get(IdentityKeyHeader)

	if len(key) != identityKeyLen {
		return ""
	}
	if _, err := hex.DecodeString(key); err != nil {
		return ""
	}

	return key
}
