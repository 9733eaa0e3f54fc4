// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"github.com/go-kit/kit/endpoint"
	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/p2ppsr/generic-certifier-backend/pkg/apiutil"
	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
)

func signCertificateEndpoint(svc certs.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(signCertificateReq)
		if err := req.validate(); err != nil {
			return nil, errors.Wrap(apiutil.ErrValidation, err)
		}

		result, err := svc.SignCertificate(ctx, req.identityKey, req.IssuanceRequest)
		if err != nil {
			return nil, err
		}

		return signCertificateRes{IssuanceResult: result}, nil
	}
}

func revokeCertificateEndpoint(svc certs.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(revokeCertificateReq)
		if err := req.validate(); err != nil {
			return nil, errors.Wrap(apiutil.ErrValidation, err)
		}

		cert, err := svc.RevokeCertificate(ctx, req.identityKey, req.SerialNumber)
		if err != nil {
			return nil, err
		}

		return revokeCertificateRes{
			Status:       "success",
			SerialNumber: cert.SerialNumber,
		}, nil
	}
}

func listCertificatesEndpoint(svc certs.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(listCertificatesReq)
		if err := req.validate(); err != nil {
			return nil, errors.Wrap(apiutil.ErrValidation, err)
		}

		page, err := svc.ListCertificates(ctx, req.identityKey, req.PageMetadata)
		if err != nil {
			return nil, err
		}

		return listCertificatesRes{CertificatePage: page}, nil
	}
}

func identifyEndpoint(svc certs.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		identity, err := svc.Identify(ctx)
		if err != nil {
			return nil, err
		}

		return identifyRes{Identity: identity}, nil
	}
}

func verifyAttributesEndpoint(svc certs.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(verifyAttributesReq)
		if err := req.validate(); err != nil {
			return nil, errors.Wrap(apiutil.ErrValidation, err)
		}

		verified, err := svc.VerifyAttributes(ctx, req.identityKey, req.Attributes)
		if err != nil {
			return nil, err
		}

		res := verifyAttributesRes{Status: "failed"}
		if verified {
			res.Status = "passed"
			res.VerifiedAttributes = req.Attributes
		}

		return res, nil
	}
}

func checkVerificationEndpoint(svc certs.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(checkVerificationReq)
		if err := req.validate(); err != nil {
			return nil, errors.Wrap(apiutil.ErrValidation, err)
		}

		verified, err := svc.CheckVerification(ctx, req.identityKey, req.VerificationID)
		if err != nil {
			return nil, err
		}

		res := checkVerificationRes{Status: "notVerified"}
		if verified {
			res.Status = "verified"
		}

		return res, nil
	}
}
