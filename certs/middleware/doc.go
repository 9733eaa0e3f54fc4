// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

// Package middleware contains the middleware for the certifier service.
// It is responsible for the following:
// - Logging
// - Metrics
// - Tracing
package middleware
