// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package client

import (
	"context"
	"encoding/json"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/core"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/security"
)

// Handler is the in-process request surface. *core.Service satisfies it.
type Handler interface {
	Handle(ctx context.Context, req core.Request) core.Response
}

type localTransport struct {
	h        Handler
	walletID string
	secret   string
}

// NewLocal returns a client that calls h directly. Requests still carry the
// secret so authentication runs exactly as it does over HTTP.
func NewLocal(h Handler, walletID, secret string) *Client {
	return &Client{t: &localTransport{h: h, walletID: walletID, secret: secret}}
}

func (t *localTransport) call(ctx context.Context, op string, params []byte) ([]byte, error) {
	resp := t.h.Handle(ctx, core.Request{
		WalletID:  t.walletID,
		Secret:    security.FromString(t.secret),
		Operation: op,
		Params:    params,
	})
	if !resp.OK() {
		return nil, &Error{Body: *resp.Err}
	}
	return json.Marshal(resp)
}
