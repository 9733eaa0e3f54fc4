// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package apiutil

import "github.com/p2ppsr/generic-certifier-backend/pkg/errors"

// Errors defined in this file are used by the LoggingErrorEncoder decorator
// to distinguish and log API request validation errors and avoid that service
// errors are logged twice.
var (
	// ErrValidation indicates that an error was returned by the API.
	ErrValidation = errors.New("something went wrong with the request")

	// ErrMissingIdentityKey indicates a missing or malformed caller identity key.
	ErrMissingIdentityKey = errors.New("missing or invalid caller identity key")

	// ErrMissingClientNonce indicates a missing client nonce.
	ErrMissingClientNonce = errors.New("missing client nonce")

	// ErrMissingCertType indicates a missing certificate type.
	ErrMissingCertType = errors.New("missing certificate type")

	// ErrMissingFields indicates missing certificate fields to sign.
	ErrMissingFields = errors.New("missing certificate fields to sign")

	// ErrMissingKeyring indicates a missing keyring to decrypt fields.
	ErrMissingKeyring = errors.New("missing keyring to decrypt fields")

	// ErrKeyringMismatch indicates that keyring keys do not match field names.
	ErrKeyringMismatch = errors.New("keyring entries do not match certificate fields")

	// ErrMissingSerialNumber indicates a missing certificate serial number.
	ErrMissingSerialNumber = errors.New("missing certificate serial number")

	// ErrMissingVerificationID indicates a missing verification ID.
	ErrMissingVerificationID = errors.New("missing verification id")

	// ErrMissingAttributes indicates missing attributes to verify.
	ErrMissingAttributes = errors.New("missing attributes to verify")

	// ErrLimitSize indicates that an invalid limit.
	ErrLimitSize = errors.New("invalid limit size")

	// ErrInvalidQueryParams indicates invalid query parameters.
	ErrInvalidQueryParams = errors.New("invalid query parameters")

	// ErrUnsupportedContentType indicates invalid content type.
	ErrUnsupportedContentType = errors.New("invalid content type")
)
