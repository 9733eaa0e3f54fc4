// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/p2ppsr/generic-certifier-backend/pkg/apiutil"
)

const maxLimitSize = 100

type signCertificateReq struct {
	identityKey string
	certs.IssuanceRequest
}

func (req signCertificateReq) validate() error {
	if req.identityKey == "" {
		return apiutil.ErrMissingIdentityKey
	}
	if req.ClientNonce == "" {
		return apiutil.ErrMissingClientNonce
	}
	if req.Type == "" {
		return apiutil.ErrMissingCertType
	}
	if len(req.Fields) == 0 {
		return apiutil.ErrMissingFields
	}
	if len(req.Keyring) == 0 {
		return apiutil.ErrMissingKeyring
	}
	if len(req.Keyring) != len(req.Fields) {
		return apiutil.ErrKeyringMismatch
	}
	for name := range req.Fields {
		if _, ok := req.Keyring[name]; !ok {
			return apiutil.ErrKeyringMismatch
		}
	}

	return nil
}

type revokeCertificateReq struct {
	identityKey  string
	SerialNumber string `json:"serialNumber"`
}

func (req revokeCertificateReq) validate() error {
	if req.identityKey == "" {
		return apiutil.ErrMissingIdentityKey
	}
	if req.SerialNumber == "" {
		return apiutil.ErrMissingSerialNumber
	}

	return nil
}

type listCertificatesReq struct {
	identityKey string
	certs.PageMetadata
}

func (req listCertificatesReq) validate() error {
	if req.identityKey == "" {
		return apiutil.ErrMissingIdentityKey
	}
	if req.Limit > maxLimitSize {
		return apiutil.ErrLimitSize
	}

	return nil
}

type identifyReq struct{}

type verifyAttributesReq struct {
	identityKey string
	Attributes  map[string]string `json:"attributes"`
}

func (req verifyAttributesReq) validate() error {
	if req.identityKey == "" {
		return apiutil.ErrMissingIdentityKey
	}
	if len(req.Attributes) == 0 {
		return apiutil.ErrMissingAttributes
	}

	return nil
}

type checkVerificationReq struct {
	identityKey    string
	VerificationID string `json:"verificationId"`
}

func (req checkVerificationReq) validate() error {
	if req.identityKey == "" {
		return apiutil.ErrMissingIdentityKey
	}
	if req.VerificationID == "" {
		return apiutil.ErrMissingVerificationID
	}

	return nil
}
