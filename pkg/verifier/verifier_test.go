// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package verifier_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/p2ppsr/generic-certifier-backend/pkg/verifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyAttributes(t *testing.T) {
	cases := []struct {
		desc     string
		status   int
		body     string
		verified bool
	}{
		{
			desc:     "passed verification",
			status:   http.StatusOK,
			body:     `{"status": "passed"}`,
			verified: true,
		},
		{
			desc:     "verified verification",
			status:   http.StatusOK,
			body:     `{"status": "verified"}`,
			verified: true,
		},
		{
			desc:     "failed verification",
			status:   http.StatusOK,
			body:     `{"status": "failed"}`,
			verified: false,
		},
		{
			desc:     "provider rejects request",
			status:   http.StatusForbidden,
			body:     `{}`,
			verified: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/verifications", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				var req struct {
					Attributes map[string]string `json:"attributes"`
				}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "John", req.Attributes["firstName"])

				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			vrf := verifier.NewProvider(ts.URL, "test-key", time.Second)
			verified, err := vrf.VerifyAttributes(context.Background(), map[string]string{"firstName": "John"})
			require.NoError(t, err)
			assert.Equal(t, tc.verified, verified)
		})
	}
}

func TestVerifyAttributesUnreachableProvider(t *testing.T) {
	vrf := verifier.NewProvider("http://127.0.0.1:1", "test-key", 100*time.Millisecond)
	_, err := vrf.VerifyAttributes(context.Background(), map[string]string{"firstName": "John"})
	assert.Error(t, err)
}

func TestCheckVerification(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/verifications/ver-1", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"status": "passed"}`))
	}))
	defer ts.Close()

	vrf := verifier.NewProvider(ts.URL, "test-key", time.Second)
	verified, err := vrf.CheckVerification(context.Background(), "ver-1")
	require.NoError(t, err)
	assert.True(t, verified)
}

func TestStatic(t *testing.T) {
	vrf := verifier.NewStatic(true)

	verified, err := vrf.VerifyAttributes(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, verified)

	verified, err = vrf.CheckVerification(context.Background(), "ver-1")
	require.NoError(t, err)
	assert.True(t, verified)
}
