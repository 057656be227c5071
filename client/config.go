// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package client

import "time"

// Config holds the options of an HTTP client.
type Config struct {
	// Endpoint is the server base URL, without the /v1 suffix.
	Endpoint string
	WalletID string
	Secret   string
	Timeout  time.Duration
}

// NewDefaultConfig returns a config pointing at a local server.
func NewDefaultConfig() Config {
	return Config{
		Endpoint: "http://localhost:8080",
		Timeout:  15 * time.Second,
	}
}
