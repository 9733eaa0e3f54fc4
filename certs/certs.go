// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

// Package certs contains the identity certificate domain: issuance,
// revocation and lookup of attribute certificates bound to a subject's
// public key.
package certs

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
)

// Chain identifies the network the certifier operates on.
const (
	ChainMain = "main"
	ChainTest = "test"
)

// ErrInvalidOutpoint indicates a malformed revocation outpoint reference.
var ErrInvalidOutpoint = errors.New("malformed outpoint reference")

// Certificate is an issued identity-attribute certificate. Wire field names
// follow the BSV certificate exchange protocol, hence the camelCase JSON.
type Certificate struct {
	ID                 uint64            `json:"-"`
	Type               string            `json:"type"`
	SerialNumber       string            `json:"serialNumber"`
	Subject            string            `json:"subject"`
	Certifier          string            `json:"certifier"`
	Verifier           string            `json:"verifier,omitempty"`
	RevocationOutpoint string            `json:"revocationOutpoint"`
	Signature          string            `json:"signature"`
	Fields             map[string]string `json:"fields"`
	RevocationTxID     string            `json:"-"`
	CreatedAt          time.Time         `json:"-"`
	UpdatedAt          time.Time         `json:"-"`
}

// Status reports the certificate lifecycle state. The transition is one-way:
// a revoked certificate never becomes valid again.
type Status uint8

const (
	Valid Status = iota
	Revoked
)

func (s Status) String() string {
	switch s {
	case Revoked:
		return "revoked"
	default:
		return "valid"
	}
}

// Status derives the lifecycle state from the recorded revocation spend.
func (c Certificate) Status() Status {
	if c.RevocationTxID != "" {
		return Revoked
	}
	return Valid
}

// MarshalJSON keeps the fields attachment non-nil on the wire.
func (c Certificate) MarshalJSON() ([]byte, error) {
	type Alias Certificate
	a := struct {
		Alias
	}{
		Alias: Alias(c),
	}

	if a.Fields == nil {
		a.Fields = make(map[string]string)
	}

	return json.Marshal(a)
}

// CertificateField is a single encrypted attribute owned by a certificate.
// MasterKey is the wrapped per-field revelation key the requester supplied.
type CertificateField struct {
	CertificateID uint64    `json:"-"`
	FieldName     string    `json:"fieldName"`
	FieldValue    string    `json:"fieldValue"`
	MasterKey     string    `json:"masterKey"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// Settings is the storage singleton created at initialization.
type Settings struct {
	Chain     string    `json:"chain"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// PageMetadata filters certificate retrieval.
type PageMetadata struct {
	Offset       uint64 `json:"offset" db:"offset"`
	Limit        uint64 `json:"limit" db:"limit"`
	Subject      string `json:"subject,omitempty" db:"subject"`
	Type         string `json:"type,omitempty" db:"type"`
	Certifier    string `json:"certifier,omitempty" db:"certifier"`
	SerialNumber string `json:"serialNumber,omitempty" db:"serial_number"`
}

// CertificatePage is a page of certificates with fields attached.
type CertificatePage struct {
	Total        uint64        `json:"total"`
	Offset       uint64        `json:"offset"`
	Limit        uint64        `json:"limit"`
	Certificates []Certificate `json:"certificates"`
}

// CertificatePatch carries partial certificate updates. Nil members are left
// untouched.
type CertificatePatch struct {
	Verifier           *string
	RevocationOutpoint *string
	RevocationTxID     *string
}

// FieldPatch carries partial certificate field updates.
type FieldPatch struct {
	FieldValue *string
	MasterKey  *string
}

// Repository specifies the certificate persistence API.
//
// Retrieval always attaches the owned fields: no caller ever observes a
// certificate without its fields.
type Repository interface {
	// Save persists a certificate together with all of its fields in a
	// single transaction and returns the storage ID.
	Save(ctx context.Context, cert Certificate, fields []CertificateField) (uint64, error)

	// Update applies a partial update to a certificate.
	Update(ctx context.Context, id uint64, patch CertificatePatch) error

	// UpdateField applies a partial update to a single certificate field.
	UpdateField(ctx context.Context, id uint64, fieldName string, patch FieldPatch) error

	// RetrieveAll returns a page of certificates matching the filter, each
	// with its fields eagerly attached.
	RetrieveAll(ctx context.Context, pm PageMetadata) (CertificatePage, error)

	// RetrieveBySerial returns the certificate issued by the given certifier
	// under the given serial number, with fields attached.
	RetrieveBySerial(ctx context.Context, certifier, serialNumber string) (Certificate, error)

	// RetrieveFields returns the fields owned by a certificate.
	RetrieveFields(ctx context.Context, id uint64) ([]CertificateField, error)

	// RetrieveSettings returns the storage settings singleton.
	RetrieveSettings(ctx context.Context) (Settings, error)
}

// ParseOutpoint splits a "<txid>.<index>" outpoint reference.
func ParseOutpoint(outpoint string) (string, uint32, error) {
	txid, idx, ok := strings.Cut(outpoint, ".")
	if !ok || len(txid) != 64 {
		return "", 0, ErrInvalidOutpoint
	}
	index, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return "", 0, errors.Wrap(ErrInvalidOutpoint, err)
	}
	return txid, uint32(index), nil
}

// Outpoint formats a "<txid>.<index>" outpoint reference.
func Outpoint(txid string, index uint32) string {
	return txid + "." + strconv.FormatUint(uint64(index), 10)
}
