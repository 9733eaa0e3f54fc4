// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

// Package verifier implements the attribute verification capability against
// an external verification provider's REST API. When no provider is
// configured the static verifier stands in, approving everything, which is
// only suitable for development setups.
package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
)

var errProvider = errors.New("verification provider request failed")

var _ certs.Verifier = (*provider)(nil)

type provider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewProvider returns a verifier backed by an external verification provider.
func NewProvider(baseURL, apiKey string, timeout time.Duration) certs.Verifier {
	return &provider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type verificationReq struct {
	Attributes map[string]string `json:"attributes"`
}

type verificationRes struct {
	Status string `json:"status"`
}

func (p *provider) VerifyAttributes(ctx context.Context, attributes map[string]string) (bool, error) {
	body, err := json.Marshal(verificationReq{Attributes: attributes})
	if err != nil {
		return false, errors.Wrap(errProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/verifications", bytes.NewReader(body))
	if err != nil {
		return false, errors.Wrap(errProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	return p.do(req)
}

func (p *provider) CheckVerification(ctx context.Context, verificationID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/verifications/"+verificationID, nil)
	if err != nil {
		return false, errors.Wrap(errProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	return p.do(req)
}

func (p *provider) do(req *http.Request) (bool, error) {
	res, err := p.client.Do(req)
	if err != nil {
		return false, errors.Wrap(errProvider, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return false, nil
	}

	var vr verificationRes
	if err := json.NewDecoder(res.Body).Decode(&vr); err != nil {
		return false, errors.Wrap(errProvider, err)
	}

	return vr.Status == "passed" || vr.Status == "verified", nil
}

var _ certs.Verifier = (*static)(nil)

type static struct {
	verified bool
}

// NewStatic returns a verifier with a fixed outcome.
func NewStatic(verified bool) certs.Verifier {
	return &static{verified: verified}
}

func (s *static) VerifyAttributes(ctx context.Context, attributes map[string]string) (bool, error) {
	return s.verified, nil
}

func (s *static) CheckVerification(ctx context.Context, verificationID string) (bool, error) {
	return s.verified, nil
}
