// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package certs

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCertificate() Certificate {
	return Certificate{
		Type:               "dGVzdC10eXBl",
		SerialNumber:       nonceB64(7),
		Subject:            "028d3a9c6a43d2f144b6a4e67b46e8a5a6b3e617d2aa35c7e2fca1e79c8a6b3d11",
		Certifier:          "02a1c81d78f5c404fd34c418525ba4a3b52be35328c30e67234bfcf30eb8a064d8",
		RevocationOutpoint: "3f8a61a2094e2a4314f1b1b7a5d11dcbbea6bf1f1c9dc55dd9c459c9f39ed92e.0",
		Fields: map[string]string{
			"firstName": "ciphertext-a",
			"lastName":  "ciphertext-b",
		},
	}
}

func TestSigningPayloadDeterministic(t *testing.T) {
	cert := testCertificate()

	first := signingPayload(cert)
	second := signingPayload(cert)
	assert.Equal(t, first, second)

	reordered := testCertificate()
	reordered.Fields = map[string]string{
		"lastName":  "ciphertext-b",
		"firstName": "ciphertext-a",
	}
	assert.Equal(t, first, signingPayload(reordered), "field insertion order must not affect the payload")
}

func TestSigningPayloadCoversEveryMember(t *testing.T) {
	base := signingPayload(testCertificate())

	mutations := map[string]func(*Certificate){
		"type":     func(c *Certificate) { c.Type = "b3RoZXI=" },
		"serial":   func(c *Certificate) { c.SerialNumber = nonceB64(9) },
		"subject":  func(c *Certificate) { c.Subject = "03" + c.Subject[2:] },
		"outpoint": func(c *Certificate) { c.RevocationOutpoint = c.RevocationOutpoint[:64] + ".1" },
		"field":    func(c *Certificate) { c.Fields["firstName"] = "altered" },
	}
	for name, mutate := range mutations {
		cert := testCertificate()
		mutate(&cert)
		assert.NotEqual(t, base, signingPayload(cert), "mutation of %s must change the payload", name)
	}

	// The signature itself is excluded so signing can be applied afterwards.
	signed := testCertificate()
	signed.Signature = "3045deadbeef"
	assert.Equal(t, base, signingPayload(signed))
}

func TestSignCertificate(t *testing.T) {
	w := newStubWallet()
	cert := testCertificate()

	require.NoError(t, signCertificate(context.Background(), w, &cert))
	require.NotEmpty(t, cert.Signature)

	_, err := hex.DecodeString(cert.Signature)
	assert.NoError(t, err, "signature must be hex encoded")
}
