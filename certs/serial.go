// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package certs

import (
	"context"
	"encoding/base64"

	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
)

var errMalformedNonce = errors.New("malformed nonce encoding")

// deriveSerialNumber computes the certificate serial number from the client
// and server nonces of a single issuance exchange. The HMAC is keyed to the
// counterparty identity, so the result is reproducible by either party of the
// exchange and unpredictable to everyone else. Replaying a request with a
// stale server nonce cannot reproduce it.
func deriveSerialNumber(ctx context.Context, w Wallet, counterparty, clientNonce, serverNonce string) (string, error) {
	client, err := base64.StdEncoding.DecodeString(clientNonce)
	if err != nil {
		return "", errors.Wrap(errMalformedNonce, err)
	}
	server, err := base64.StdEncoding.DecodeString(serverNonce)
	if err != nil {
		return "", errors.Wrap(errMalformedNonce, err)
	}

	mac, err := w.CreateHMAC(ctx, HMACArgs{
		Data:         append(client, server...),
		ProtocolID:   ProtocolCertificateIssuance,
		KeyID:        serverNonce + clientNonce,
		Counterparty: counterparty,
	})
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(mac), nil
}
