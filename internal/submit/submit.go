// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package submit hands executed proposals to the ledger gateway.
package submit // import "github.com/kaankacar/soroban-trader-skill-sub000/internal/submit"

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/logging"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// BreakerConfig tunes the circuit breaker in front of the gateway.
type BreakerConfig struct {
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32 `mapstructure:"max_requests" yaml:"max_requests"`
	// Interval clears the failure counts while closed. Zero never clears.
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	// Timeout is how long the breaker stays open.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32 `mapstructure:"consecutive_failures" yaml:"consecutive_failures"`
}

// DefaultBreakerConfig returns the breaker defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: 30 * time.Second, ConsecutiveFailures: 5}
}

// Config configures an HTTPSubmitter.
type Config struct {
	Endpoint string
	Timeout  time.Duration
	Breaker  BreakerConfig
	// Client overrides the HTTP client. Timeout is ignored when set.
	Client *http.Client
}

// HTTPSubmitter posts payloads as JSON to a gateway endpoint behind a
// circuit breaker.
type HTTPSubmitter struct {
	endpoint string
	client   *http.Client
	cb       *gobreaker.CircuitBreaker
}

type submitRequest struct {
	ProposalID string          `json:"proposalId"`
	TxPayload  model.TxPayload `json:"txPayload"`
}

type submitResponse struct {
	LedgerTxID string `json:"ledgerTxId"`
	Hash       string `json:"hash"`
	Error      string `json:"error"`
}

// errRejected marks a gateway answer that says the payload itself is bad.
// It does not count against the breaker.
var errRejected = errors.New("rejected by gateway")

// NewHTTPSubmitter validates cfg and builds the submitter.
func NewHTTPSubmitter(cfg Config) (*HTTPSubmitter, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("submit: endpoint is required")
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("submit: endpoint %q must be an http(s) URL", endpoint)
	}
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	bc := cfg.Breaker
	def := DefaultBreakerConfig()
	if bc.MaxRequests == 0 {
		bc.MaxRequests = def.MaxRequests
	}
	if bc.Timeout <= 0 {
		bc.Timeout = def.Timeout
	}
	if bc.ConsecutiveFailures == 0 {
		bc.ConsecutiveFailures = def.ConsecutiveFailures
	}
	settings := gobreaker.Settings{
		Name:        "ledger-gateway",
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logging.Warnf("circuit breaker %s: %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errRejected)
		},
	}
	return &HTTPSubmitter{endpoint: endpoint, client: client, cb: gobreaker.NewCircuitBreaker(settings)}, nil
}

// State reports the breaker state ("closed", "open" or "half-open").
func (s *HTTPSubmitter) State() string { return s.cb.State().String() }

// Submit posts the payload and returns the ledger transaction id. Every
// failure matches model.ErrSubmissionFailed.
func (s *HTTPSubmitter) Submit(ctx context.Context, proposalID string, payload model.TxPayload) (string, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.post(ctx, proposalID, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", model.WrapError(model.CodeSubmissionFailed, err, "ledger gateway unavailable (circuit breaker %s)", s.State()).
				With("breaker", s.State())
		}
		return "", model.WrapError(model.CodeSubmissionFailed, err, "ledger submission failed").With("proposalId", proposalID)
	}
	return out.(string), nil
}

func (s *HTTPSubmitter) post(ctx context.Context, proposalID string, payload model.TxPayload) (string, error) {
	body, err := json.Marshal(submitRequest{ProposalID: proposalID, TxPayload: payload})
	if err != nil {
		return "", fmt.Errorf("%w: encode payload: %v", errRejected, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", proposalID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read gateway response: %w", err)
	}
	logging.Debugf("submit: proposal %s -> HTTP %d in %s", proposalID, resp.StatusCode, time.Since(start))

	var decoded submitResponse
	_ = json.Unmarshal(raw, &decoded)
	switch {
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("gateway returned HTTP %d: %s", resp.StatusCode, gatewayMessage(decoded, raw))
	case resp.StatusCode >= 400:
		return "", fmt.Errorf("%w: HTTP %d: %s", errRejected, resp.StatusCode, gatewayMessage(decoded, raw))
	}
	id := decoded.LedgerTxID
	if id == "" {
		id = decoded.Hash
	}
	if id == "" {
		return "", fmt.Errorf("gateway response carries no transaction id")
	}
	return id, nil
}

func gatewayMessage(r submitResponse, raw []byte) string {
	if r.Error != "" {
		return r.Error
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// DryRun accepts every payload without contacting a ledger.
type DryRun struct{}

// Submit returns a synthetic transaction id derived from the proposal id.
func (DryRun) Submit(_ context.Context, proposalID string, payload model.TxPayload) (string, error) {
	logging.Infof("dry run: proposal %s (%s) not submitted", proposalID, payload.Type)
	return "dryrun-" + proposalID, nil
}
