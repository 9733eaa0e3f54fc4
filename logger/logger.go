// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

// Package logger provides a structured logger based on log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON slog logger writing to the given writer with the given
// minimum level. Supported levels: debug, info, warn, error.
func New(w io.Writer, levelText string) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelText)); err != nil {
		return nil, err
	}

	logHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})

	return slog.New(logHandler), nil
}

// ExitWithError exits the process with the given code after deferred cleanup
// has run. Use with defer in main.
func ExitWithError(code *int) {
	os.Exit(*code)
}
