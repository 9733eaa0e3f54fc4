// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"net/http"

	certifier "github.com/p2ppsr/generic-certifier-backend"
	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/p2ppsr/generic-certifier-backend/pkg/apiutil"
	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
	svcerr "github.com/p2ppsr/generic-certifier-backend/pkg/errors/service"
)

const (
	OffsetKey    = "offset"
	LimitKey     = "limit"
	SubjectKey   = "subject"
	TypeKey      = "type"
	SerialKey    = "serialNumber"
	DefOffset    = 0
	DefLimit     = 10
	MaxLimitSize = 100

	// ContentType represents JSON content type.
	ContentType = "application/json"
)

// EncodeResponse encodes successful response.
func EncodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	if ar, ok := response.(certifier.Response); ok {
		for k, v := range ar.Headers() {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", ContentType)
		w.WriteHeader(ar.Code())

		if ar.Empty() {
			return nil
		}
	}

	return json.NewEncoder(w).Encode(response)
}

// EncodeError encodes an error response.
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	var wrapper error
	if errors.Contains(err, apiutil.ErrValidation) {
		wrapper, err = errors.Unwrap(err)
	}

	w.Header().Set("Content-Type", ContentType)
	switch {
	case errors.Contains(err, svcerr.ErrAuthorization):
		err = unwrap(err)
		w.WriteHeader(http.StatusForbidden)

	case errors.Contains(err, svcerr.ErrAuthentication),
		errors.Contains(err, apiutil.ErrMissingIdentityKey):
		err = unwrap(err)
		w.WriteHeader(http.StatusUnauthorized)

	case errors.Contains(err, svcerr.ErrMalformedEntity),
		errors.Contains(err, apiutil.ErrValidation),
		errors.Contains(err, apiutil.ErrMissingClientNonce),
		errors.Contains(err, apiutil.ErrMissingCertType),
		errors.Contains(err, apiutil.ErrMissingFields),
		errors.Contains(err, apiutil.ErrMissingKeyring),
		errors.Contains(err, apiutil.ErrKeyringMismatch),
		errors.Contains(err, apiutil.ErrMissingSerialNumber),
		errors.Contains(err, apiutil.ErrMissingVerificationID),
		errors.Contains(err, apiutil.ErrMissingAttributes),
		errors.Contains(err, apiutil.ErrLimitSize),
		errors.Contains(err, apiutil.ErrInvalidQueryParams),
		errors.Contains(err, certs.ErrNonceInvalid),
		errors.Contains(err, certs.ErrFieldDecryption),
		errors.Contains(err, certs.ErrRevocationDataMissing),
		errors.Contains(err, certs.ErrUnsupportedCertificateType):
		err = unwrap(err)
		w.WriteHeader(http.StatusBadRequest)

	case errors.Contains(err, certs.ErrPartialIssuance):
		err = unwrap(err)
		w.WriteHeader(http.StatusInternalServerError)

	case errors.Contains(err, certs.ErrCommitmentConstruction),
		errors.Contains(err, svcerr.ErrCreateEntity),
		errors.Contains(err, svcerr.ErrUpdateEntity):
		err = unwrap(err)
		w.WriteHeader(http.StatusUnprocessableEntity)

	case errors.Contains(err, svcerr.ErrNotFound):
		err = unwrap(err)
		w.WriteHeader(http.StatusNotFound)

	case errors.Contains(err, svcerr.ErrConflict):
		err = unwrap(err)
		w.WriteHeader(http.StatusConflict)

	case errors.Contains(err, apiutil.ErrUnsupportedContentType):
		err = unwrap(err)
		w.WriteHeader(http.StatusUnsupportedMediaType)

	default:
		w.WriteHeader(http.StatusInternalServerError)
	}

	if wrapper != nil {
		err = errors.Wrap(wrapper, err)
	}

	if errorVal, ok := err.(errors.Error); ok {
		if err := json.NewEncoder(w).Encode(errorVal); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
}

func unwrap(err error) error {
	wrapper, err := errors.Unwrap(err)
	if wrapper != nil {
		return wrapper
	}
	return err
}
