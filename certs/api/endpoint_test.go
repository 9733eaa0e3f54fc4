// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package api_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/p2ppsr/generic-certifier-backend/certs/api"
	"github.com/p2ppsr/generic-certifier-backend/certs/mocks"
	gclog "github.com/p2ppsr/generic-certifier-backend/logger"
	"github.com/p2ppsr/generic-certifier-backend/pkg/apiutil"
	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
	repoerr "github.com/p2ppsr/generic-certifier-backend/pkg/errors/repository"
	svcerr "github.com/p2ppsr/generic-certifier-backend/pkg/errors/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	validIdentity = "028d3a9c6a43d2f144b6a4e67b46e8a5a6b3e617d2aa35c7e2fca1e79c8a6b3d11"
	contentType   = "application/json"
	validSerial   = "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="
)

type testRequest struct {
	client      *http.Client
	method      string
	url         string
	identityKey string
	contentType string
	body        io.Reader
}

func (tr testRequest) make() (*http.Response, error) {
	req, err := http.NewRequest(tr.method, tr.url, tr.body)
	if err != nil {
		return nil, err
	}

	if tr.identityKey != "" {
		req.Header.Set(apiutil.IdentityKeyHeader, tr.identityKey)
	}
	if tr.contentType != "" {
		req.Header.Set("Content-Type", tr.contentType)
	}

	return tr.client.Do(req)
}

func newCertifierServer() (*httptest.Server, *mocks.Service) {
	svc := new(mocks.Service)
	mux := api.MakeHandler(svc, gclog.NewMock(), "test")
	return httptest.NewServer(mux), svc
}

func validSignBody() string {
	return `{
		"clientNonce": "VhQ3UUGl4L76T9v3M2YLd/Es25CEwAAoGTowblLtM3s=",
		"type": "dGVzdC10eXBl",
		"fields": {"firstName": "cipher"},
		"keyring": {"firstName": "wrapped"}
	}`
}

func TestSignCertificateEndpoint(t *testing.T) {
	server, svc := newCertifierServer()
	defer server.Close()

	cases := []struct {
		desc        string
		identityKey string
		contentType string
		body        string
		svcRes      certs.IssuanceResult
		svcErr      error
		status      int
	}{
		{
			desc:        "valid request",
			identityKey: validIdentity,
			contentType: contentType,
			body:        validSignBody(),
			svcRes: certs.IssuanceResult{
				Certificate: certs.Certificate{SerialNumber: validSerial},
				ServerNonce: "UFX3UUGl4L76T9v3M2YLd/Es25CEwAAoGTowblLtM3s=",
			},
			status: http.StatusOK,
		},
		{
			desc:        "missing identity key",
			identityKey: "",
			contentType: contentType,
			body:        validSignBody(),
			status:      http.StatusUnauthorized,
		},
		{
			desc:        "wrong content type",
			identityKey: validIdentity,
			contentType: "text/plain",
			body:        validSignBody(),
			status:      http.StatusUnsupportedMediaType,
		},
		{
			desc:        "malformed body",
			identityKey: validIdentity,
			contentType: contentType,
			body:        "{",
			status:      http.StatusBadRequest,
		},
		{
			desc:        "missing client nonce",
			identityKey: validIdentity,
			contentType: contentType,
			body:        `{"type": "dGVzdC10eXBl", "fields": {"a": "b"}, "keyring": {"a": "c"}}`,
			status:      http.StatusBadRequest,
		},
		{
			desc:        "keyring not matching fields",
			identityKey: validIdentity,
			contentType: contentType,
			body:        `{"clientNonce": "bm9uY2U=", "type": "dGVzdC10eXBl", "fields": {"a": "b"}, "keyring": {"z": "c"}}`,
			status:      http.StatusBadRequest,
		},
		{
			desc:        "invalid nonce",
			identityKey: validIdentity,
			contentType: contentType,
			body:        validSignBody(),
			svcErr:      certs.ErrNonceInvalid,
			status:      http.StatusBadRequest,
		},
		{
			desc:        "duplicate certificate",
			identityKey: validIdentity,
			contentType: contentType,
			body:        validSignBody(),
			svcErr:      svcerr.ErrConflict,
			status:      http.StatusConflict,
		},
		{
			desc:        "commitment construction failure",
			identityKey: validIdentity,
			contentType: contentType,
			body:        validSignBody(),
			svcErr:      certs.ErrCommitmentConstruction,
			status:      http.StatusUnprocessableEntity,
		},
		{
			desc:        "partial issuance",
			identityKey: validIdentity,
			contentType: contentType,
			body:        validSignBody(),
			svcErr:      errors.Wrap(certs.ErrPartialIssuance, repoerr.ErrCreateEntity),
			status:      http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			svcCall := svc.On("SignCertificate", mock.Anything, tc.identityKey, mock.Anything).Return(tc.svcRes, tc.svcErr)
			defer svcCall.Unset()

			res, err := testRequest{
				client:      server.Client(),
				method:      http.MethodPost,
				url:         server.URL + "/signCertificate",
				identityKey: tc.identityKey,
				contentType: tc.contentType,
				body:        strings.NewReader(tc.body),
			}.make()
			require.NoError(t, err)
			defer res.Body.Close()

			assert.Equal(t, tc.status, res.StatusCode)

			if tc.status == http.StatusOK {
				var result certs.IssuanceResult
				require.NoError(t, json.NewDecoder(res.Body).Decode(&result))
				assert.Equal(t, tc.svcRes.ServerNonce, result.ServerNonce)
				assert.Equal(t, validSerial, result.Certificate.SerialNumber)
			}
		})
	}
}

func TestRevokeCertificateEndpoint(t *testing.T) {
	server, svc := newCertifierServer()
	defer server.Close()

	cases := []struct {
		desc        string
		identityKey string
		body        string
		svcErr      error
		status      int
	}{
		{
			desc:        "valid request",
			identityKey: validIdentity,
			body:        fmt.Sprintf(`{"serialNumber": "%s"}`, validSerial),
			status:      http.StatusOK,
		},
		{
			desc:        "missing serial number",
			identityKey: validIdentity,
			body:        `{}`,
			status:      http.StatusBadRequest,
		},
		{
			desc:        "not the certifier",
			identityKey: validIdentity,
			body:        fmt.Sprintf(`{"serialNumber": "%s"}`, validSerial),
			svcErr:      svcerr.ErrAuthorization,
			status:      http.StatusForbidden,
		},
		{
			desc:        "nothing to revoke",
			identityKey: validIdentity,
			body:        fmt.Sprintf(`{"serialNumber": "%s"}`, validSerial),
			svcErr:      errors.Wrap(certs.ErrRevocationDataMissing, svcerr.ErrNotFound),
			status:      http.StatusBadRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			svcCall := svc.On("RevokeCertificate", mock.Anything, tc.identityKey, mock.Anything).
				Return(certs.Certificate{SerialNumber: validSerial}, tc.svcErr)
			defer svcCall.Unset()

			res, err := testRequest{
				client:      server.Client(),
				method:      http.MethodPost,
				url:         server.URL + "/revokeCertificate",
				identityKey: tc.identityKey,
				contentType: contentType,
				body:        strings.NewReader(tc.body),
			}.make()
			require.NoError(t, err)
			defer res.Body.Close()

			assert.Equal(t, tc.status, res.StatusCode)

			if tc.status == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
				assert.Equal(t, "success", body["status"])
			}
		})
	}
}

func TestListCertificatesEndpoint(t *testing.T) {
	server, svc := newCertifierServer()
	defer server.Close()

	page := certs.CertificatePage{
		Total: 1,
		Limit: 10,
		Certificates: []certs.Certificate{
			{SerialNumber: validSerial, Subject: validIdentity, Fields: map[string]string{}},
		},
	}

	cases := []struct {
		desc        string
		identityKey string
		query       string
		status      int
	}{
		{
			desc:        "valid request",
			identityKey: validIdentity,
			status:      http.StatusOK,
		},
		{
			desc:        "with filters",
			identityKey: validIdentity,
			query:       "?offset=0&limit=10&type=dGVzdC10eXBl",
			status:      http.StatusOK,
		},
		{
			desc:        "limit too large",
			identityKey: validIdentity,
			query:       "?limit=1000",
			status:      http.StatusBadRequest,
		},
		{
			desc:        "invalid offset",
			identityKey: validIdentity,
			query:       "?offset=bee",
			status:      http.StatusBadRequest,
		},
		{
			desc:        "missing identity key",
			identityKey: "",
			status:      http.StatusUnauthorized,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			svcCall := svc.On("ListCertificates", mock.Anything, tc.identityKey, mock.Anything).Return(page, nil)
			defer svcCall.Unset()

			res, err := testRequest{
				client:      server.Client(),
				method:      http.MethodGet,
				url:         server.URL + "/certificates" + tc.query,
				identityKey: tc.identityKey,
			}.make()
			require.NoError(t, err)
			defer res.Body.Close()

			assert.Equal(t, tc.status, res.StatusCode)

			if tc.status == http.StatusOK {
				var got certs.CertificatePage
				require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
				assert.Equal(t, page.Total, got.Total)
				require.Len(t, got.Certificates, 1)
				assert.Equal(t, validSerial, got.Certificates[0].SerialNumber)
			}
		})
	}
}

func TestIdentifyEndpoint(t *testing.T) {
	server, svc := newCertifierServer()
	defer server.Close()

	identity := certs.Identity{
		PublicKey:        "02a1c81d78f5c404fd34c418525ba4a3b52be35328c30e67234bfcf30eb8a064d8",
		CertificateTypes: map[string][]string{"dGVzdC10eXBl": {"firstName"}},
	}
	svc.On("Identify", mock.Anything).Return(identity, nil)

	res, err := testRequest{
		client: server.Client(),
		method: http.MethodPost,
		url:    server.URL + "/identify",
	}.make()
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)

	var got certs.Identity
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, identity, got)
}

func TestVerificationEndpoints(t *testing.T) {
	server, svc := newCertifierServer()
	defer server.Close()

	svc.On("VerifyAttributes", mock.Anything, validIdentity, map[string]string{"firstName": "John"}).Return(true, nil)
	svc.On("CheckVerification", mock.Anything, validIdentity, "ver-1").Return(true, nil)

	res, err := testRequest{
		client:      server.Client(),
		method:      http.MethodPost,
		url:         server.URL + "/verifyAttributes",
		identityKey: validIdentity,
		contentType: contentType,
		body:        strings.NewReader(`{"attributes": {"firstName": "John"}}`),
	}.make()
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var verifyBody struct {
		Status             string            `json:"status"`
		VerifiedAttributes map[string]string `json:"verifiedAttributes"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&verifyBody))
	assert.Equal(t, "passed", verifyBody.Status)
	assert.Equal(t, "John", verifyBody.VerifiedAttributes["firstName"])

	res, err = testRequest{
		client:      server.Client(),
		method:      http.MethodPost,
		url:         server.URL + "/checkVerification",
		identityKey: validIdentity,
		contentType: contentType,
		body:        strings.NewReader(`{"verificationId": "ver-1"}`),
	}.make()
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var checkBody struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&checkBody))
	assert.Equal(t, "verified", checkBody.Status)

	res, err = testRequest{
		client:      server.Client(),
		method:      http.MethodPost,
		url:         server.URL + "/checkVerification",
		identityKey: validIdentity,
		contentType: contentType,
		body:        strings.NewReader(`{}`),
	}.make()
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
