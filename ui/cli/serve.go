// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/charmbracelet/log"
	"github.com/kaankacar/soroban-trader-skill-sub000/buildvars"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/server"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/telemetry"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON request surface over HTTP",
		Long: `Starts the HTTP server and the background sweeper. Requests are
POST /v1/wallets/{wallet}/{operation} with the credential secret as a
bearer token. Tracing is exported when telemetry.endpoint is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdown, err := telemetry.Setup(ctx, appConfig.Telemetry.Endpoint, buildvars.Resolve(nil).Version)
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(sctx); err != nil {
					log.Warnf("telemetry shutdown: %v", err)
				}
			}()

			svc, cleanup, err := buildService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			go svc.RunSweeper(ctx, appConfig.Sweep.Interval)
			log.Info("serving", "addr", appConfig.Server.Addr, "db", appStore.Type(), "lock", appConfig.Lock.Backend)
			return server.Run(ctx, appConfig.Server.Addr, server.NewRouter(svc))
		},
	}
	cmd.Flags().String("server.addr", ":8080", "Listen address")
	cmd.Flags().Duration("sweep.interval", time.Minute, "Sweep interval (0 disables the sweeper)")
	return cmd
}
