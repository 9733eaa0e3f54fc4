// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package certs

import (
	"context"

	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
	svcerr "github.com/p2ppsr/generic-certifier-backend/pkg/errors/service"
)

var (
	// ErrNonceInvalid indicates a client nonce that was not created by the
	// caller or has already been consumed.
	ErrNonceInvalid = errors.New("invalid or reused client nonce")

	// ErrFieldDecryption indicates that one or more certificate fields could
	// not be decrypted with the supplied keyring.
	ErrFieldDecryption = errors.New("failed to decrypt all certificate fields")

	// ErrCommitmentConstruction indicates the revocation commitment output
	// could not be constructed.
	ErrCommitmentConstruction = errors.New("failed to construct revocation commitment")

	// ErrRevocationDataMissing indicates no revocable certificate exists for
	// the given serial number.
	ErrRevocationDataMissing = errors.New("insufficient data to revoke certificate")

	// ErrPartialIssuance indicates the revocation commitment was created but
	// the certificate could not be persisted. The commitment outpoint needs
	// operator reconciliation.
	ErrPartialIssuance = errors.New("certificate issuance left partial state")

	// ErrUnsupportedCertificateType indicates a request for a certificate
	// type this certifier does not issue.
	ErrUnsupportedCertificateType = errors.New("unsupported certificate type")
)

// IssuanceRequest is a certificate signing request: the subject's nonce, the
// desired type, the subject-encrypted fields and the keyring wrapping the
// per-field revelation keys for this certifier.
type IssuanceRequest struct {
	ClientNonce string            `json:"clientNonce"`
	Type        string            `json:"type"`
	Fields      map[string]string `json:"fields"`
	Keyring     map[string]string `json:"keyring"`
}

// IssuanceResult carries the signed certificate together with the server
// nonce the subject needs to reproduce the serial number derivation.
type IssuanceResult struct {
	Certificate Certificate `json:"certificate"`
	ServerNonce string      `json:"serverNonce"`
}

// Identity describes the certifier to prospective subjects.
type Identity struct {
	PublicKey        string              `json:"certifierPublicKey"`
	CertificateTypes map[string][]string `json:"certificateTypes"`
}

// Config holds the certificate types this certifier issues, mapping each
// type identifier to the attribute field names it certifies.
type Config struct {
	CertificateTypes map[string][]string
}

// Service specifies an API that must be fulfilled by the domain service
// implementation, and all of its decorators (e.g. logging & metrics).
//
//go:generate mockery --name Service --output=./mocks --filename service.go --quiet --note "Copyright (c) P2PPSR"
type Service interface {
	// SignCertificate validates a certificate signing request from the
	// subject identified by identityKey, creates the revocation commitment
	// and returns the signed certificate.
	SignCertificate(ctx context.Context, identityKey string, req IssuanceRequest) (IssuanceResult, error)

	// RevokeCertificate spends the revocation commitment of the certificate
	// with the given serial number. Only the certifier itself may revoke.
	RevokeCertificate(ctx context.Context, identityKey, serialNumber string) (Certificate, error)

	// ListCertificates returns a page of issued certificates. Subjects see
	// only their own certificates; the certifier sees all.
	ListCertificates(ctx context.Context, identityKey string, pm PageMetadata) (CertificatePage, error)

	// Identify returns the certifier public key and supported types.
	Identify(ctx context.Context) (Identity, error)

	// VerifyAttributes submits attributes to the verification provider.
	VerifyAttributes(ctx context.Context, identityKey string, attributes map[string]string) (bool, error)

	// CheckVerification reports whether a previously started verification
	// has completed.
	CheckVerification(ctx context.Context, identityKey, verificationID string) (bool, error)
}

var _ Service = (*service)(nil)

type service struct {
	wallet   Wallet
	verifier Verifier
	repo     Repository
	cfg      Config
}

// New returns a new certifier service backed by the given wallet,
// verification provider and repository.
func New(wallet Wallet, verifier Verifier, repo Repository, cfg Config) Service {
	return &service{
		wallet:   wallet,
		verifier: verifier,
		repo:     repo,
		cfg:      cfg,
	}
}

func (svc *service) SignCertificate(ctx context.Context, identityKey string, req IssuanceRequest) (IssuanceResult, error) {
	if _, ok := svc.cfg.CertificateTypes[req.Type]; !ok {
		return IssuanceResult{}, ErrUnsupportedCertificateType
	}

	if err := svc.wallet.VerifyNonce(ctx, req.ClientNonce, identityKey); err != nil {
		return IssuanceResult{}, errors.Wrap(ErrNonceInvalid, err)
	}

	serverNonce, err := svc.wallet.CreateNonce(ctx, identityKey)
	if err != nil {
		return IssuanceResult{}, err
	}

	serialNumber, err := deriveSerialNumber(ctx, svc.wallet, identityKey, req.ClientNonce, serverNonce)
	if err != nil {
		return IssuanceResult{}, err
	}

	decrypted, err := decryptFields(ctx, svc.wallet, identityKey, serialNumber, req.Fields, req.Keyring)
	if err != nil {
		return IssuanceResult{}, errors.Wrap(ErrFieldDecryption, err)
	}

	outpoint, err := buildRevocationCommitment(ctx, svc.wallet, identityKey, serialNumber, decrypted)
	if err != nil {
		return IssuanceResult{}, errors.Wrap(ErrCommitmentConstruction, err)
	}

	certifierKey, err := svc.wallet.IdentityKey(ctx)
	if err != nil {
		return IssuanceResult{}, err
	}

	cert := Certificate{
		Type:               req.Type,
		SerialNumber:       serialNumber,
		Subject:            identityKey,
		Certifier:          certifierKey,
		RevocationOutpoint: outpoint,
		Fields:             req.Fields,
	}
	if err := signCertificate(ctx, svc.wallet, &cert); err != nil {
		return IssuanceResult{}, err
	}

	fields := make([]CertificateField, 0, len(req.Fields))
	for name, value := range req.Fields {
		fields = append(fields, CertificateField{
			FieldName:  name,
			FieldValue: value,
			MasterKey:  req.Keyring[name],
		})
	}

	id, err := svc.repo.Save(ctx, cert, fields)
	if err != nil {
		if errors.Contains(err, svcerr.ErrConflict) {
			return IssuanceResult{}, err
		}
		// The commitment output already exists on chain at this point.
		return IssuanceResult{}, errors.Wrap(ErrPartialIssuance, err)
	}
	cert.ID = id

	return IssuanceResult{Certificate: cert, ServerNonce: serverNonce}, nil
}

func (svc *service) RevokeCertificate(ctx context.Context, identityKey, serialNumber string) (Certificate, error) {
	certifierKey, err := svc.wallet.IdentityKey(ctx)
	if err != nil {
		return Certificate{}, err
	}
	if identityKey != certifierKey {
		return Certificate{}, svcerr.ErrAuthorization
	}

	cert, err := svc.repo.RetrieveBySerial(ctx, certifierKey, serialNumber)
	if err != nil {
		if errors.Contains(err, svcerr.ErrNotFound) {
			return Certificate{}, errors.Wrap(ErrRevocationDataMissing, err)
		}
		return Certificate{}, err
	}
	if cert.Status() == Revoked {
		return Certificate{}, ErrRevocationDataMissing
	}

	txid, err := spendRevocationCommitment(ctx, svc.wallet, serialNumber, cert.RevocationOutpoint)
	if err != nil {
		if spendNotRevocable(err) {
			return Certificate{}, errors.Wrap(ErrRevocationDataMissing, err)
		}
		return Certificate{}, err
	}

	if err := svc.repo.Update(ctx, cert.ID, CertificatePatch{RevocationTxID: &txid}); err != nil {
		return Certificate{}, err
	}
	cert.RevocationTxID = txid

	return cert, nil
}

func (svc *service) ListCertificates(ctx context.Context, identityKey string, pm PageMetadata) (CertificatePage, error) {
	certifierKey, err := svc.wallet.IdentityKey(ctx)
	if err != nil {
		return CertificatePage{}, err
	}
	if identityKey != certifierKey {
		pm.Subject = identityKey
	}

	return svc.repo.RetrieveAll(ctx, pm)
}

func (svc *service) Identify(ctx context.Context) (Identity, error) {
	certifierKey, err := svc.wallet.IdentityKey(ctx)
	if err != nil {
		return Identity{}, err
	}

	return Identity{
		PublicKey:        certifierKey,
		CertificateTypes: svc.cfg.CertificateTypes,
	}, nil
}

func (svc *service) VerifyAttributes(ctx context.Context, identityKey string, attributes map[string]string) (bool, error) {
	return svc.verifier.VerifyAttributes(ctx, attributes)
}

func (svc *service) CheckVerification(ctx context.Context, identityKey, verificationID string) (bool, error) {
	return svc.verifier.CheckVerification(ctx, verificationID)
}
