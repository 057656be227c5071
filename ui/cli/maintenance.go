// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/backup"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/db"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/i18n"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/logging"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire overdue proposals and reset elapsed usage windows once",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			rep, err := svc.Sweep(cmd.Context())
			if !textOutput() {
				if perr := printJSON(cmd.OutOrStdout(), rep); perr != nil {
					return perr
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.swept", rep.Expired, rep.WindowsReset))
			}
			return err
		},
	}
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [output-file]",
		Short: "Write a compressed JSON backup of the database",
		Long: `Exports every wallet, credential and audit entry into a
Zstandard-compressed JSON file. Without an output file the name
soroban-trader-backup-YYYY-MM-DD.json.zst is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("soroban-trader-backup-%s.json.zst", time.Now().Format("2006-01-02"))
			if len(args) > 0 {
				path = args[0]
			}
			data, err := backup.Backup(cmd.Context(), appStore)
			if err != nil {
				return err
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return fmt.Errorf("create backup file: %w", err)
			}
			if err := backup.WriteBackup(cmd.Context(), data, f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.backup_written", len(data.Wallets), path))
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "restore <backup-file.zst>",
		Short: "Restore the database from a compressed JSON backup",
		Long: `By default the restore integrates: wallets and credentials that
already exist are kept and only missing ones are added.

With --full every table is wiped before the import. This is destructive
and not reversible.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open backup: %w", err)
			}
			defer func() { _ = f.Close() }()
			data, err := backup.ReadBackup(f)
			if err != nil {
				return err
			}
			if full {
				logging.Warnf("full restore: wiping existing data")
			}
			if err := backup.Apply(cmd.Context(), data, backup.RestoreOptions{Full: full}, appStore); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.restore_done", len(data.Wallets)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Wipe all existing data before importing")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var targetType, targetDSN string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy the whole database to another backend",
		Long: `Copies every record from the configured database into the target
database, replacing the target's contents. Use it to move between
sqlite, postgres and mysql.`,
		Example: `  soroban-trader migrate --to-type postgres --to-dsn postgres://user:pw@localhost/trader`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if targetType == "" || targetDSN == "" {
				return fmt.Errorf("--to-type and --to-dsn are required")
			}
			dst, err := db.NewStoreFromDSN(targetType, targetDSN)
			if err != nil {
				return fmt.Errorf("open target database: %w", err)
			}
			defer func() { _ = dst.Close() }()
			if err := backup.Migrate(cmd.Context(), appStore, dst); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database to %s\n", appStore.Type(), targetType)
			return nil
		},
	}
	cmd.Flags().StringVar(&targetType, "to-type", "", "Target database type (sqlite, postgres, mysql)")
	cmd.Flags().StringVar(&targetDSN, "to-dsn", "", "Target database DSN")
	return cmd
}

func newAuditCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit log of governance changes",
		Long:  `Lists recorded governance actions, newest first. With --wallet only that wallet's entries are shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := appStore.GetAuditLogEntries(cmd.Context(), appConfig.Wallet, limit)
			if err != nil {
				return err
			}
			if !textOutput() {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No audit entries.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tWALLET\tACTOR\tACTION\tOUTCOME\tDETAILS")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Timestamp.Format(time.RFC3339), e.WalletID, e.Actor, e.Action, e.Outcome, e.Details)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries (0 for all)")
	return cmd
}

func newDBMaintainCmd() *cobra.Command {
	var timeoutSec int
	cmd := &cobra.Command{
		Use:   "db-maintain",
		Short: "Run database maintenance (VACUUM/OPTIMIZE) for the configured DB",
		Long:  `Runs engine-specific maintenance tasks (VACUUM, OPTIMIZE TABLE, PRAGMA optimize).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			done := make(chan error, 1)
			go func() { done <- db.RunDBMaintenance(appConfig.Database.Type, appConfig.Database.Dsn) }()

			var timeout <-chan time.Time
			if timeoutSec > 0 {
				timeout = time.After(time.Duration(timeoutSec) * time.Second)
			}
			select {
			case err := <-done:
				if err != nil {
					return fmt.Errorf("maintenance failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.maintenance_done"))
				return nil
			case <-timeout:
				return fmt.Errorf("maintenance timed out after %ds", timeoutSec)
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
		},
	}
	cmd.Flags().IntVar(&timeoutSec, "timeout", 0, "Timeout in seconds (0 means no timeout)")
	return cmd
}

