// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package submit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload() model.TxPayload {
	return model.TxPayload{Type: model.TxPayment, Destination: "GDEST", Asset: "native", Amount: decimal.RequireFromString("10")}
}

func TestHTTPSubmitter_Success(t *testing.T) {
	var got submitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "p-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"ledgerTxId": "abc123"})
	}))
	defer srv.Close()

	s, err := NewHTTPSubmitter(Config{Endpoint: srv.URL})
	require.NoError(t, err)
	id, err := s.Submit(context.Background(), "p-1", payload())
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Equal(t, "p-1", got.ProposalID)
	assert.True(t, got.TxPayload.Amount.Equal(decimal.NewFromInt(10)))
}

func TestHTTPSubmitter_HashFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hash":"deadbeef"}`))
	}))
	defer srv.Close()

	s, err := NewHTTPSubmitter(Config{Endpoint: srv.URL})
	require.NoError(t, err)
	id, err := s.Submit(context.Background(), "p-1", payload())
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", id)
}

func TestHTTPSubmitter_RejectionDoesNotTripBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad destination"}`))
	}))
	defer srv.Close()

	s, err := NewHTTPSubmitter(Config{Endpoint: srv.URL, Breaker: BreakerConfig{ConsecutiveFailures: 2}})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := s.Submit(context.Background(), "p-1", payload())
		require.ErrorIs(t, err, model.ErrSubmissionFailed)
		assert.Contains(t, err.Error(), "bad destination")
	}
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	assert.Equal(t, "closed", s.State())
}

func TestHTTPSubmitter_ServerErrorsOpenBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s, err := NewHTTPSubmitter(Config{Endpoint: srv.URL, Breaker: BreakerConfig{ConsecutiveFailures: 2, Timeout: time.Hour}})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := s.Submit(context.Background(), "p-1", payload())
		require.ErrorIs(t, err, model.ErrSubmissionFailed)
	}
	assert.Equal(t, "open", s.State())

	_, err = s.Submit(context.Background(), "p-1", payload())
	require.ErrorIs(t, err, model.ErrSubmissionFailed)
	var me *model.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "open", me.Details["breaker"])
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "open breaker must not reach the gateway")
}

func TestHTTPSubmitter_MissingTxID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s, err := NewHTTPSubmitter(Config{Endpoint: srv.URL})
	require.NoError(t, err)
	_, err = s.Submit(context.Background(), "p-1", payload())
	require.ErrorIs(t, err, model.ErrSubmissionFailed)
}

func TestNewHTTPSubmitter_Validation(t *testing.T) {
	_, err := NewHTTPSubmitter(Config{})
	assert.Error(t, err)
	_, err = NewHTTPSubmitter(Config{Endpoint: "ftp://gateway"})
	assert.Error(t, err)
}

func TestDryRun(t *testing.T) {
	id, err := DryRun{}.Submit(context.Background(), "p-9", payload())
	require.NoError(t, err)
	assert.Equal(t, "dryrun-p-9", id)
}
