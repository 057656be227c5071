// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup writes and reads zstd-compressed JSON dumps of the database.
package backup // import "github.com/kaankacar/soroban-trader-skill-sub000/internal/backup"

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/klauspost/compress/zstd"
)

// Exporter produces the full contents of a database.
type Exporter interface {
	ExportDataForBackup(ctx context.Context) (*model.BackupData, error)
}

// Importer restores backup data, either destructively or by integration.
type Importer interface {
	ImportDataFromBackup(ctx context.Context, data *model.BackupData) error
	IntegrateDataFromBackup(ctx context.Context, data *model.BackupData) error
}

// RestoreOptions selects how a backup is applied.
type RestoreOptions struct {
	// Full wipes the target before importing. Otherwise only missing
	// wallets and credentials are added.
	Full bool
}

// Backup exports the DB into BackupData using the store.
func Backup(ctx context.Context, st Exporter) (*model.BackupData, error) {
	data, err := st.ExportDataForBackup(ctx)
	if err != nil {
		return nil, fmt.Errorf("export backup: %w", err)
	}
	return data, nil
}

// WriteBackup writes compressed JSON backup data to w.
func WriteBackup(ctx context.Context, data *model.BackupData, w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush backup: %w", err)
	}
	return nil
}

// ReadBackup decodes a zstd-compressed JSON backup.
func ReadBackup(r io.Reader) (*model.BackupData, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()
	var data model.BackupData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	return &data, nil
}

// Restore reads a backup from r and imports it into st.
func Restore(ctx context.Context, r io.Reader, opts RestoreOptions, st Importer) error {
	data, err := ReadBackup(r)
	if err != nil {
		return err
	}
	return Apply(ctx, data, opts, st)
}

// Apply imports already decoded backup data into st.
func Apply(ctx context.Context, data *model.BackupData, opts RestoreOptions, st Importer) error {
	if opts.Full {
		return st.ImportDataFromBackup(ctx, data)
	}
	return st.IntegrateDataFromBackup(ctx, data)
}

// Migrate copies every record of src into dst, replacing whatever dst held.
func Migrate(ctx context.Context, src Exporter, dst Importer) error {
	data, err := Backup(ctx, src)
	if err != nil {
		return err
	}
	if err := dst.ImportDataFromBackup(ctx, data); err != nil {
		return fmt.Errorf("import to target: %w", err)
	}
	return nil
}
