// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package certs

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"sort"
)

// signingPayload serializes a certificate into the canonical byte sequence
// covered by its signature: length-prefixed chunks for the identifying
// members followed by the encrypted fields in lexical name order. The
// signature itself is never part of the payload.
func signingPayload(cert Certificate) []byte {
	chunks := []string{
		cert.Type,
		cert.SerialNumber,
		cert.Subject,
		cert.Certifier,
		cert.RevocationOutpoint,
	}

	names := make([]string, 0, len(cert.Fields))
	for name := range cert.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		chunks = append(chunks, name, cert.Fields[name])
	}

	var payload []byte
	var size [4]byte
	for _, chunk := range chunks {
		binary.BigEndian.PutUint32(size[:], uint32(len(chunk)))
		payload = append(payload, size[:]...)
		payload = append(payload, chunk...)
	}

	return payload
}

// signCertificate signs the canonical payload under the certificate
// signature protocol keyed by the serial number. The anyone counterparty
// makes the signature verifiable by any holder of the certificate.
func signCertificate(ctx context.Context, w Wallet, cert *Certificate) error {
	sig, err := w.CreateSignature(ctx, SignatureArgs{
		Data:         signingPayload(*cert),
		ProtocolID:   ProtocolCertificateSignature,
		KeyID:        cert.SerialNumber,
		Counterparty: AnyoneCounterparty,
	})
	if err != nil {
		return err
	}

	cert.Signature = hex.EncodeToString(sig)
	return nil
}
