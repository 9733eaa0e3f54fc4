// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package certs

import "context"

// AnyoneCounterparty is the well-known counterparty used for operations whose
// results must be verifiable by any party, such as certificate signatures.
// SelfCounterparty scopes an operation to the wallet's own identity, used for
// outputs only the certifier may later spend.
const (
	AnyoneCounterparty = "anyone"
	SelfCounterparty   = "self"
)

// Protocol namespaces a derived key so that results of distinct logical
// operations can never be confused or cross-used. Derived keys are always
// protocol-scoped, never shared raw.
type Protocol struct {
	SecurityLevel int
	Protocol      string
}

// Protocol identifiers used throughout certificate issuance and revocation.
var (
	ProtocolCertificateIssuance   = Protocol{SecurityLevel: 2, Protocol: "certificate issuance"}
	ProtocolFieldEncryption       = Protocol{SecurityLevel: 2, Protocol: "certificate field encryption"}
	ProtocolRevocationTagging     = Protocol{SecurityLevel: 2, Protocol: "revocation output tagging"}
	ProtocolCertificateRevocation = Protocol{SecurityLevel: 2, Protocol: "certificate revocation"}
	ProtocolCertificateSignature  = Protocol{SecurityLevel: 2, Protocol: "certificate signature"}
)

// HMACArgs parameterize a keyed HMAC computation.
type HMACArgs struct {
	Data         []byte
	ProtocolID   Protocol
	KeyID        string
	Counterparty string
}

// DecryptArgs parameterize decryption of a ciphertext produced for the
// wallet's identity by the given counterparty.
type DecryptArgs struct {
	Ciphertext   []byte
	ProtocolID   Protocol
	KeyID        string
	Counterparty string
}

// SignatureArgs parameterize an ECDSA signature under a derived key.
type SignatureArgs struct {
	Data         []byte
	ProtocolID   Protocol
	KeyID        string
	Counterparty string
}

// LockArgs parameterize construction of a pushdrop locking script committing
// the given data fields under a derived key.
type LockArgs struct {
	Fields       [][]byte
	ProtocolID   Protocol
	KeyID        string
	Counterparty string
}

// ActionOutput describes a transaction output requested from the wallet.
type ActionOutput struct {
	LockingScript      string   `json:"lockingScript"`
	Satoshis           uint64   `json:"satoshis"`
	OutputDescription  string   `json:"outputDescription"`
	Basket             string   `json:"basket,omitempty"`
	Tags               []string `json:"tags,omitempty"`
	CustomInstructions string   `json:"customInstructions,omitempty"`
}

// ActionInput references a previously created output to be spent.
type ActionInput struct {
	Outpoint         string `json:"outpoint"`
	InputDescription string `json:"inputDescription"`
}

// CreateActionArgs describe a value transfer requested from the wallet.
type CreateActionArgs struct {
	Description string         `json:"description"`
	Outputs     []ActionOutput `json:"outputs,omitempty"`
	Inputs      []ActionInput  `json:"inputs,omitempty"`
}

// ActionResult reports the transaction produced by CreateAction.
type ActionResult struct {
	TxID string `json:"txid"`
}

// Wallet is the cryptographic capability interface consumed by the service.
// All keyed operations are scoped by protocol, key ID and counterparty; the
// wallet owns key management and never exposes raw key material.
//
//go:generate mockery --name Wallet --output=./mocks --filename wallet.go --quiet --note "Copyright (c) P2PPSR"
type Wallet interface {
	// IdentityKey returns the wallet's public identity key in compressed hex.
	IdentityKey(ctx context.Context) (string, error)

	// CreateNonce creates a nonce bound to the given counterparty identity.
	CreateNonce(ctx context.Context, counterparty string) (string, error)

	// VerifyNonce checks that the nonce was created for the given
	// counterparty and has not been consumed before. A successful
	// verification consumes the nonce.
	VerifyNonce(ctx context.Context, nonce, counterparty string) error

	// CreateHMAC computes a keyed HMAC under a derived key.
	CreateHMAC(ctx context.Context, args HMACArgs) ([]byte, error)

	// Decrypt decrypts a ciphertext produced by the counterparty for this
	// wallet under the same protocol and key ID.
	Decrypt(ctx context.Context, args DecryptArgs) ([]byte, error)

	// CreateSignature signs data under a derived key and returns the DER
	// encoded signature.
	CreateSignature(ctx context.Context, args SignatureArgs) ([]byte, error)

	// CreateLockingScript builds a pushdrop locking script committing the
	// given fields, spendable by the key derived from the lock arguments.
	CreateLockingScript(ctx context.Context, args LockArgs) (string, error)

	// CreateAction constructs a transaction with the requested inputs and
	// outputs and returns its ID. Broadcast and confirmation are outside
	// this interface.
	CreateAction(ctx context.Context, args CreateActionArgs) (ActionResult, error)
}

// Verifier is the external attribute verification capability. The service
// only consumes verification outcomes; how attributes are verified (KYC,
// biometric, third-party API) is not its concern.
//
//go:generate mockery --name Verifier --output=./mocks --filename verifier.go --quiet --note "Copyright (c) P2PPSR"
type Verifier interface {
	// VerifyAttributes attempts verification of the submitted attributes.
	VerifyAttributes(ctx context.Context, attributes map[string]string) (bool, error)

	// CheckVerification reports whether a previously submitted verification
	// has completed successfully.
	CheckVerification(ctx context.Context, verificationID string) (bool, error)
}
