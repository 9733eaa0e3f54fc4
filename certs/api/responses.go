// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	certifier "github.com/p2ppsr/generic-certifier-backend"
	"github.com/p2ppsr/generic-certifier-backend/certs"
)

var (
	_ certifier.Response = (*signCertificateRes)(nil)
	_ certifier.Response = (*revokeCertificateRes)(nil)
	_ certifier.Response = (*listCertificatesRes)(nil)
	_ certifier.Response = (*identifyRes)(nil)
	_ certifier.Response = (*verifyAttributesRes)(nil)
	_ certifier.Response = (*checkVerificationRes)(nil)
)

type signCertificateRes struct {
	certs.IssuanceResult `json:",inline"`
}

func (res signCertificateRes) Code() int {
	return http.StatusOK
}

func (res signCertificateRes) Headers() map[string]string {
	return map[string]string{}
}

func (res signCertificateRes) Empty() bool {
	return false
}

type revokeCertificateRes struct {
	Status       string `json:"status"`
	SerialNumber string `json:"serialNumber"`
}

func (res revokeCertificateRes) Code() int {
	return http.StatusOK
}

func (res revokeCertificateRes) Headers() map[string]string {
	return map[string]string{}
}

func (res revokeCertificateRes) Empty() bool {
	return false
}

type listCertificatesRes struct {
	certs.CertificatePage `json:",inline"`
}

func (res listCertificatesRes) Code() int {
	return http.StatusOK
}

func (res listCertificatesRes) Headers() map[string]string {
	return map[string]string{}
}

func (res listCertificatesRes) Empty() bool {
	return false
}

type identifyRes struct {
	certs.Identity `json:",inline"`
}

func (res identifyRes) Code() int {
	return http.StatusOK
}

func (res identifyRes) Headers() map[string]string {
	return map[string]string{}
}

func (res identifyRes) Empty() bool {
	return false
}

type verifyAttributesRes struct {
	Status             string            `json:"status"`
	VerifiedAttributes map[string]string `json:"verifiedAttributes,omitempty"`
}

func (res verifyAttributesRes) Code() int {
	return http.StatusOK
}

func (res verifyAttributesRes) Headers() map[string]string {
	return map[string]string{}
}

func (res verifyAttributesRes) Empty() bool {
	return false
}

type checkVerificationRes struct {
	Status string `json:"status"`
}

func (res checkVerificationRes) Code() int {
	return http.StatusOK
}

func (res checkVerificationRes) Headers() map[string]string {
	return map[string]string{}
}

func (res checkVerificationRes) Empty() bool {
	return false
}
