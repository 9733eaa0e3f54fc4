// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	certifier "github.com/p2ppsr/generic-certifier-backend"
	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/p2ppsr/generic-certifier-backend/internal/api"
	"github.com/p2ppsr/generic-certifier-backend/pkg/apiutil"
	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// MakeHandler returns a HTTP handler for the certifier API endpoints.
func MakeHandler(svc certs.Service, logger *slog.Logger, instanceID string) http.Handler {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(apiutil.LoggingErrorEncoder(logger, api.EncodeError)),
	}

	mux := chi.NewRouter()

	mux.Post("/signCertificate", otelhttp.NewHandler(kithttp.NewServer(
		signCertificateEndpoint(svc),
		decodeSignCertificateReq,
		api.EncodeResponse,
		opts...,
	), "sign_certificate").ServeHTTP)
	mux.Post("/revokeCertificate", otelhttp.NewHandler(kithttp.NewServer(
		revokeCertificateEndpoint(svc),
		decodeRevokeCertificateReq,
		api.EncodeResponse,
		opts...,
	), "revoke_certificate").ServeHTTP)
	mux.Post("/identify", otelhttp.NewHandler(kithttp.NewServer(
		identifyEndpoint(svc),
		decodeIdentifyReq,
		api.EncodeResponse,
		opts...,
	), "identify").ServeHTTP)
	mux.Post("/verifyAttributes", otelhttp.NewHandler(kithttp.NewServer(
		verifyAttributesEndpoint(svc),
		decodeVerifyAttributesReq,
		api.EncodeResponse,
		opts...,
	), "verify_attributes").ServeHTTP)
	mux.Post("/checkVerification", otelhttp.NewHandler(kithttp.NewServer(
		checkVerificationEndpoint(svc),
		decodeCheckVerificationReq,
		api.EncodeResponse,
		opts...,
	), "check_verification").ServeHTTP)
	mux.Get("/certificates", otelhttp.NewHandler(kithttp.NewServer(
		listCertificatesEndpoint(svc),
		decodeListCertificatesReq,
		api.EncodeResponse,
		opts...,
	), "list_certificates").ServeHTTP)

	mux.Get("/health", certifier.Health("certifier", instanceID))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func decodeSignCertificateReq(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Wrap(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	req := signCertificateReq{identityKey: apiutil.ExtractIdentityKey(r)}
	if err := json.NewDecoder(r.Body).Decode(&req.IssuanceRequest); err != nil {
		return nil, errors.Wrap(apiutil.ErrValidation, errors.Wrap(errors.ErrMalformedEntity, err))
	}

	return req, nil
}

func decodeRevokeCertificateReq(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Wrap(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	req := revokeCertificateReq{identityKey: apiutil.ExtractIdentityKey(r)}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(apiutil.ErrValidation, errors.Wrap(errors.ErrMalformedEntity, err))
	}

	return req, nil
}

func decodeIdentifyReq(_ context.Context, r *http.Request) (interface{}, error) {
	return identifyReq{}, nil
}

func decodeVerifyAttributesReq(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Wrap(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	req := verifyAttributesReq{identityKey: apiutil.ExtractIdentityKey(r)}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(apiutil.ErrValidation, errors.Wrap(errors.ErrMalformedEntity, err))
	}

	return req, nil
}

func decodeCheckVerificationReq(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Wrap(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	req := checkVerificationReq{identityKey: apiutil.ExtractIdentityKey(r)}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(apiutil.ErrValidation, errors.Wrap(errors.ErrMalformedEntity, err))
	}

	return req, nil
}

func decodeListCertificatesReq(_ context.Context, r *http.Request) (interface{}, error) {
	offset, err := apiutil.ReadNumQuery[uint64](r, api.OffsetKey, api.DefOffset)
	if err != nil {
		return nil, errors.Wrap(apiutil.ErrValidation, err)
	}
	limit, err := apiutil.ReadNumQuery[uint64](r, api.LimitKey, api.DefLimit)
	if err != nil {
		return nil, errors.Wrap(apiutil.ErrValidation, err)
	}
	subject, err := apiutil.ReadStringQuery(r, api.SubjectKey, "")
	if err != nil {
		return nil, errors.Wrap(apiutil.ErrValidation, err)
	}
	certType, err := apiutil.ReadStringQuery(r, api.TypeKey, "")
	if err != nil {
		return nil, errors.Wrap(apiutil.ErrValidation, err)
	}
	serialNumber, err := apiutil.ReadStringQuery(r, api.SerialKey, "")
	if err != nil {
		return nil, errors.Wrap(apiutil.ErrValidation, err)
	}

	req := listCertificatesReq{
		identityKey: apiutil.ExtractIdentityKey(r),
		PageMetadata: certs.PageMetadata{
			Offset:       offset,
			Limit:        limit,
			Subject:      subject,
			Type:         certType,
			SerialNumber: serialNumber,
		},
	}

	return req, nil
}
