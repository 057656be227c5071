// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

type httpTransport struct {
	base     string
	walletID string
	secret   string
	hc       *http.Client
}

// NewHTTP returns a client for the server at cfg.Endpoint.
func NewHTTP(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if base == "" {
		return nil, fmt.Errorf("client: endpoint is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("client: invalid endpoint: %w", err)
	}
	if cfg.WalletID == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("client: wallet id and secret are required")
	}
	return &Client{t: &httpTransport{
		base:     base,
		walletID: cfg.WalletID,
		secret:   cfg.Secret,
		hc:       &http.Client{Timeout: cfg.Timeout},
	}}, nil
}

func (t *httpTransport) call(ctx context.Context, op string, params []byte) ([]byte, error) {
	u := t.base + "/v1/wallets/" + url.PathEscape(t.walletID) + "/" + url.PathEscape(op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(params))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+t.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}
	if resp.StatusCode == http.StatusOK {
		return body, nil
	}
	e := &Error{Status: resp.StatusCode}
	if err := json.Unmarshal(body, &e.Body); err != nil || e.Body.Code == "" {
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}
	return nil, e
}

// Operations fetches the operation names the server accepts.
func Operations(ctx context.Context, endpoint string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(endpoint, "/")+"/v1/operations", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("operations: unexpected status %d", resp.StatusCode)
	}
	var out struct {
		Operations []string `json:"operations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Operations, nil
}
