// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package certs

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"sort"

	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
)

const (
	revocationBasket    = "certificate revocation"
	revocationTagPrefix = "certificate-revocation-for-"
	derivationEntropy   = 10
	revocationOutputIdx = 0
)

var errCommitmentEntropy = errors.New("failed to draw derivation entropy")

// Spend failures that mean the commitment is not revocable, as opposed to
// infrastructure failures. Messages match the wallet's ledger errors.
var (
	errUnknownOutpoint = errors.New("unknown outpoint")
	errOutpointSpent   = errors.New("outpoint already spent")
)

func spendNotRevocable(err error) bool {
	return errors.Contains(err, ErrInvalidOutpoint) ||
		errors.Contains(err, errUnknownOutpoint) ||
		errors.Contains(err, errOutpointSpent)
}

// revocationInstructions travel with the commitment output so the certifier
// can re-derive the unlocking key when the certificate is later revoked.
type revocationInstructions struct {
	DerivationPrefix string `json:"derivationPrefix"`
	DerivationSuffix string `json:"derivationSuffix"`
}

// buildRevocationCommitment creates the on-chain revocation commitment for a
// certificate: a single 1-satoshi pushdrop output committing the serial
// number, locked to a key derived from fresh random prefix/suffix components
// so the key is never reused across certificates. The output carries one
// opaque HMAC tag per decrypted attribute field for later lookup. The output
// stays unspent while the certificate is valid; spending it is the public
// revocation signal. Returns the outpoint reference of the commitment.
func buildRevocationCommitment(ctx context.Context, w Wallet, subject, serialNumber string, decryptedFields map[string]string) (string, error) {
	prefix, err := derivationComponent()
	if err != nil {
		return "", err
	}
	suffix, err := derivationComponent()
	if err != nil {
		return "", err
	}

	tags, err := fieldTags(ctx, w, subject, serialNumber, decryptedFields)
	if err != nil {
		return "", err
	}

	script, err := w.CreateLockingScript(ctx, LockArgs{
		Fields:       [][]byte{[]byte(serialNumber)},
		ProtocolID:   ProtocolCertificateRevocation,
		KeyID:        prefix + " " + suffix,
		Counterparty: subject,
	})
	if err != nil {
		return "", err
	}

	instructions, err := json.Marshal(revocationInstructions{
		DerivationPrefix: prefix,
		DerivationSuffix: suffix,
	})
	if err != nil {
		return "", err
	}

	result, err := w.CreateAction(ctx, CreateActionArgs{
		Description: "new certificate revocation output",
		Outputs: []ActionOutput{
			{
				LockingScript:      script,
				Satoshis:           1,
				OutputDescription:  "certificate revocation output",
				Basket:             revocationBasket,
				Tags:               append([]string{revocationTagPrefix + subject}, tags...),
				CustomInstructions: string(instructions),
			},
		},
	})
	if err != nil {
		return "", err
	}

	return Outpoint(result.TxID, revocationOutputIdx), nil
}

// spendRevocationCommitment consumes the commitment output, turning the
// revocation into a permanent on-chain fact. Returns the revoking
// transaction ID.
func spendRevocationCommitment(ctx context.Context, w Wallet, serialNumber, outpoint string) (string, error) {
	if _, _, err := ParseOutpoint(outpoint); err != nil {
		return "", err
	}

	result, err := w.CreateAction(ctx, CreateActionArgs{
		Description: "revoke certificate " + serialNumber,
		Inputs: []ActionInput{
			{
				Outpoint:         outpoint,
				InputDescription: "certificate revocation output",
			},
		},
	})
	if err != nil {
		return "", err
	}

	return result.TxID, nil
}

// fieldTags derives one opaque HMAC tag per attribute field, sorted by field
// name so the tag set is deterministic for a given certificate.
func fieldTags(ctx context.Context, w Wallet, subject, serialNumber string, fields map[string]string) ([]string, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	tags := make([]string, 0, len(names))
	for _, name := range names {
		mac, err := w.CreateHMAC(ctx, HMACArgs{
			Data:         []byte(fields[name]),
			ProtocolID:   ProtocolRevocationTagging,
			KeyID:        fieldKeyID(serialNumber, name),
			Counterparty: subject,
		})
		if err != nil {
			return nil, err
		}
		tags = append(tags, name+" "+base64.StdEncoding.EncodeToString(mac))
	}

	return tags, nil
}

func derivationComponent() (string, error) {
	buf := make([]byte, derivationEntropy)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(errCommitmentEntropy, err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
