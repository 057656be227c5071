// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package server exposes the governance request surface over HTTP.
//
// Every operation is reached as POST /v1/wallets/{wallet}/{operation} with
// the operation parameters as the JSON body and the caller secret as a
// bearer token.
package server // import "github.com/kaankacar/soroban-trader-skill-sub000/internal/server"

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/core"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/logging"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/security"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Handler is the request surface served over HTTP. *core.Service satisfies it.
type Handler interface {
	Handle(ctx context.Context, req core.Request) core.Response
}

// NewRouter builds the HTTP routes around h.
func NewRouter(h Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(api chi.Router) {
		api.Get("/operations", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"operations": core.Operations()})
		})

		api.Post("/wallets/{wallet}/{operation}", func(w http.ResponseWriter, r *http.Request) {
			token, ok := parseBearer(r.Header.Get("Authorization"))
			if !ok {
				writeResponse(w, core.ErrorResponse(model.NewError(model.CodeUnauthenticated, "bearer token is required")))
				return
			}
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
			if err != nil {
				writeResponse(w, core.ErrorResponse(model.WrapError(model.CodeInvalidRequest, err, "request body could not be read")))
				return
			}
			if len(body) > 0 && !json.Valid(body) {
				writeResponse(w, core.ErrorResponse(model.NewError(model.CodeInvalidRequest, "request body is not valid JSON")))
				return
			}
			resp := h.Handle(r.Context(), core.Request{
				WalletID:  chi.URLParam(r, "wallet"),
				Secret:    security.FromString(token),
				Operation: chi.URLParam(r, "operation"),
				Params:    body,
			})
			writeResponse(w, resp)
		})
	})
	return r
}

// StatusFor maps an error body onto an HTTP status.
func StatusFor(body *core.ErrorBody) int {
	if body == nil {
		return http.StatusOK
	}
	switch body.Code {
	case model.CodeUnauthenticated:
		return http.StatusUnauthorized
	case model.CodeUnknownOperation:
		return http.StatusNotFound
	case model.CodeSubmissionFailed:
		return http.StatusBadGateway
	}
	switch body.Kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindAuthorization:
		return http.StatusForbidden
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindState:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func writeResponse(w http.ResponseWriter, resp core.Response) {
	writeJSON(w, StatusFor(resp.Err), resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseBearer(authorization string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authorization, prefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(authorization, prefix))
	if tok == "" {
		return "", false
	}
	return tok, true
}

// RequestIDFrom returns the request id stored by the router.
func RequestIDFrom(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}

// echoRequestID returns the id chosen by middleware.RequestID to the caller.
func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := RequestIDFrom(r.Context()); id != "" {
			w.Header().Set(RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Debugf("http %s %s -> %d in %s (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start), RequestIDFrom(r.Context()))
	})
}

// Run serves h on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logging.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
