// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package certifier

import (
	"encoding/json"
	"net/http"
)

const (
	contentType = "Content-Type"
	contentJSON = "application/json"
	svcStatus   = "pass"
	// Version of the certifier service.
	Version = "0.2.0"
)

// HealthInfo contains version endpoint response.
type HealthInfo struct {
	// Status contains service status.
	Status string `json:"status"`

	// Version contains current service version.
	Version string `json:"version"`

	// Description contains service description.
	Description string `json:"description"`

	// InstanceID contains the ID of the current service instance.
	InstanceID string `json:"instance_id"`
}

// Health exposes an HTTP handler for retrieving service health.
func Health(service, instanceID string) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		res := HealthInfo{
			Status:      svcStatus,
			Version:     Version,
			Description: service + " service",
			InstanceID:  instanceID,
		}

		rw.Header().Set(contentType, contentJSON)
		rw.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(rw).Encode(res); err != nil {
			http.Error(rw, err.Error(), http.StatusInternalServerError)
		}
	}
}
