// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

// Package wallet provides the in-process cryptographic wallet backing the
// certifier: protocol-scoped key derivation rooted at a single secp256k1
// private key, nonce management, keyed HMACs, symmetric encryption and
// transaction construction. Key derivation follows the BRC-42 scheme: a
// shared secret between the wallet and a counterparty keys an HMAC over an
// invoice number naming the protocol and key ID, and the result offsets the
// root key.
package wallet

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	becdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
)

var (
	// ErrInvalidKey indicates a malformed private or public key.
	ErrInvalidKey = errors.New("invalid key material")

	// ErrNonceFormat indicates a nonce that is not 32 bytes of base64.
	ErrNonceFormat = errors.New("malformed nonce")

	// ErrNonceVerification indicates a nonce this wallet did not create for
	// the given counterparty.
	ErrNonceVerification = errors.New("nonce verification failed")

	// ErrNonceConsumed indicates a nonce that was already used.
	ErrNonceConsumed = errors.New("nonce already consumed")
)

// nonceProtocol scopes the keys guarding nonce integrity.
var nonceProtocol = certs.Protocol{SecurityLevel: 2, Protocol: "server hmac"}

const (
	nonceEntropy = 16
	nonceTagSize = 16
	gcmNonceSize = 12
)

var _ certs.Wallet = (*Wallet)(nil)

// Wallet is rooted at a single private key. All derived keys are offsets of
// the root, scoped by protocol, key ID and counterparty.
type Wallet struct {
	rootKey *btcec.PrivateKey
	rootPub *btcec.PublicKey

	mu       sync.Mutex
	consumed map[string]struct{}
	ledger   *ledger
}

// New returns a wallet rooted at the given hex-encoded private key.
func New(rootKeyHex string) (*Wallet, error) {
	raw, err := hex.DecodeString(rootKeyHex)
	if err != nil || len(raw) != 32 {
		return nil, ErrInvalidKey
	}
	priv, pub := btcec.PrivKeyFromBytes(raw)
	if priv.Key.IsZero() {
		return nil, ErrInvalidKey
	}

	return &Wallet{
		rootKey:  priv,
		rootPub:  pub,
		consumed: make(map[string]struct{}),
		ledger:   newLedger(),
	}, nil
}

// IdentityKey returns the wallet's public identity key in compressed hex.
func (w *Wallet) IdentityKey(ctx context.Context) (string, error) {
	return hex.EncodeToString(w.rootPub.SerializeCompressed()), nil
}

// CreateNonce creates a self-verifiable nonce bound to the counterparty:
// 16 random bytes followed by 16 bytes of keyed HMAC over them. The creator
// can later verify authorship without storing the nonce.
func (w *Wallet) CreateNonce(ctx context.Context, counterparty string) (string, error) {
	entropy := make([]byte, nonceEntropy)
	if _, err := rand.Read(entropy); err != nil {
		return "", err
	}

	tag, err := w.nonceTag(entropy, counterparty)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(append(entropy, tag...)), nil
}

// VerifyNonce checks that the nonce was created by the counterparty's wallet
// for this one and consumes it. A nonce verifies successfully at most once.
func (w *Wallet) VerifyNonce(ctx context.Context, nonce, counterparty string) error {
	raw, err := base64.StdEncoding.DecodeString(nonce)
	if err != nil || len(raw) != nonceEntropy+nonceTagSize {
		return ErrNonceFormat
	}

	tag, err := w.nonceTag(raw[:nonceEntropy], counterparty)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(tag, raw[nonceEntropy:]) != 1 {
		return ErrNonceVerification
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.consumed[nonce]; ok {
		return ErrNonceConsumed
	}
	w.consumed[nonce] = struct{}{}

	return nil
}

// CreateHMAC computes HMAC-SHA256 under the symmetric key derived for the
// protocol, key ID and counterparty. Both parties of the exchange derive the
// same key, so either can reproduce the result.
func (w *Wallet) CreateHMAC(ctx context.Context, args certs.HMACArgs) ([]byte, error) {
	key, err := w.symmetricKey(args.ProtocolID, args.KeyID, args.Counterparty)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(args.Data)

	return mac.Sum(nil), nil
}

// Encrypt encrypts plaintext for the counterparty under the derived
// symmetric key using AES-256-GCM. The random nonce prefixes the ciphertext.
func (w *Wallet) Encrypt(ctx context.Context, plaintext []byte, protocolID certs.Protocol, keyID, counterparty string) ([]byte, error) {
	key, err := w.symmetricKey(protocolID, keyID, counterparty)
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt decrypts a ciphertext produced by the counterparty under the same
// protocol and key ID.
func (w *Wallet) Decrypt(ctx context.Context, args certs.DecryptArgs) ([]byte, error) {
	key, err := w.symmetricKey(args.ProtocolID, args.KeyID, args.Counterparty)
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(args.Ciphertext) < gcmNonceSize {
		return nil, errors.New("ciphertext shorter than nonce")
	}

	return gcm.Open(nil, args.Ciphertext[:gcmNonceSize], args.Ciphertext[gcmNonceSize:], nil)
}

// CreateSignature signs the SHA-256 digest of the data with the private key
// derived for the protocol, key ID and counterparty, returning the DER
// encoded ECDSA signature.
func (w *Wallet) CreateSignature(ctx context.Context, args certs.SignatureArgs) ([]byte, error) {
	priv, err := w.derivePrivateKey(args.ProtocolID, args.KeyID, args.Counterparty)
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(args.Data)
	sig := becdsa.Sign(priv, digest[:])

	return sig.Serialize(), nil
}

// invoiceNumber names a derived key. Distinct protocols or key IDs always
// produce distinct derivations.
func invoiceNumber(protocolID certs.Protocol, keyID string) string {
	return fmt.Sprintf("%d-%s-%s", protocolID.SecurityLevel, protocolID.Protocol, keyID)
}

// symmetricKey derives the 32-byte symmetric key shared with the
// counterparty for a protocol and key ID.
func (w *Wallet) symmetricKey(protocolID certs.Protocol, keyID, counterparty string) ([]byte, error) {
	pub, err := w.counterpartyKey(counterparty)
	if err != nil {
		return nil, err
	}

	secret, err := sharedSecret(w.rootKey, pub)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(invoiceNumber(protocolID, keyID)))

	return mac.Sum(nil), nil
}

// derivePrivateKey derives the child private key for a protocol, key ID and
// counterparty: root plus the derivation scalar, mod n.
func (w *Wallet) derivePrivateKey(protocolID certs.Protocol, keyID, counterparty string) (*btcec.PrivateKey, error) {
	offset, err := w.derivationScalar(protocolID, keyID, counterparty)
	if err != nil {
		return nil, err
	}

	var child secp256k1.ModNScalar
	child.Add2(&w.rootKey.Key, offset)
	if child.IsZero() {
		return nil, ErrInvalidKey
	}

	return secp256k1.NewPrivateKey(&child), nil
}

// derivePublicKey derives the child public key of the counterparty for a
// protocol and key ID: counterparty public key plus the derivation scalar
// times the generator.
func (w *Wallet) derivePublicKey(protocolID certs.Protocol, keyID, counterparty string) (*btcec.PublicKey, error) {
	offset, err := w.derivationScalar(protocolID, keyID, counterparty)
	if err != nil {
		return nil, err
	}
	pub, err := w.counterpartyKey(counterparty)
	if err != nil {
		return nil, err
	}

	var offsetPoint, base, sum secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(offset, &offsetPoint)
	pub.AsJacobian(&base)
	secp256k1.AddNonConst(&offsetPoint, &base, &sum)
	if (sum.X.IsZero() && sum.Y.IsZero()) || sum.Z.IsZero() {
		return nil, ErrInvalidKey
	}
	sum.ToAffine()

	return secp256k1.NewPublicKey(&sum.X, &sum.Y), nil
}

// derivationScalar computes the BRC-42 offset: HMAC of the invoice number
// keyed by the ECDH shared secret with the counterparty.
func (w *Wallet) derivationScalar(protocolID certs.Protocol, keyID, counterparty string) (*secp256k1.ModNScalar, error) {
	pub, err := w.counterpartyKey(counterparty)
	if err != nil {
		return nil, err
	}
	secret, err := sharedSecret(w.rootKey, pub)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(invoiceNumber(protocolID, keyID)))

	var scalar secp256k1.ModNScalar
	scalar.SetByteSlice(mac.Sum(nil))
	if scalar.IsZero() {
		return nil, ErrInvalidKey
	}

	return &scalar, nil
}

// counterpartyKey resolves a counterparty reference into a public key. The
// well-known "anyone" counterparty is the public key of the scalar one, and
// "self" is the wallet's own identity key.
func (w *Wallet) counterpartyKey(counterparty string) (*btcec.PublicKey, error) {
	switch counterparty {
	case certs.AnyoneCounterparty:
		var one secp256k1.ModNScalar
		one.SetInt(1)
		return secp256k1.NewPrivateKey(&one).PubKey(), nil
	case certs.SelfCounterparty:
		return w.rootPub, nil
	}

	raw, err := hex.DecodeString(counterparty)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidKey, err)
	}
	pub, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidKey, err)
	}

	return pub, nil
}

// sharedSecret computes the compressed ECDH point between a private and a
// public key. Symmetric: both parties derive the same secret.
func sharedSecret(priv *btcec.PrivateKey, pub *btcec.PublicKey) ([]byte, error) {
	var point, shared secp256k1.JacobianPoint
	pub.AsJacobian(&point)
	secp256k1.ScalarMultNonConst(&priv.Key, &point, &shared)
	if shared.Z.IsZero() {
		return nil, ErrInvalidKey
	}
	shared.ToAffine()

	return secp256k1.NewPublicKey(&shared.X, &shared.Y).SerializeCompressed(), nil
}

func (w *Wallet) nonceTag(entropy []byte, counterparty string) ([]byte, error) {
	mac, err := w.CreateHMAC(context.Background(), certs.HMACArgs{
		Data:         entropy,
		ProtocolID:   nonceProtocol,
		KeyID:        base64.StdEncoding.EncodeToString(entropy),
		Counterparty: counterparty,
	})
	if err != nil {
		return nil, err
	}

	return mac[:nonceTagSize], nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}
