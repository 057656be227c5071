// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package backup

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/db"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	exported   *model.BackupData
	exportErr  error
	imported   *model.BackupData
	integrated *model.BackupData
}

func (f *fakeStore) ExportDataForBackup(context.Context) (*model.BackupData, error) {
	return f.exported, f.exportErr
}

func (f *fakeStore) ImportDataFromBackup(_ context.Context, d *model.BackupData) error {
	f.imported = d
	return nil
}

func (f *fakeStore) IntegrateDataFromBackup(_ context.Context, d *model.BackupData) error {
	f.integrated = d
	return nil
}

func sampleData() *model.BackupData {
	snap := model.NewSnapshot("treasury")
	snap.Registry = &model.SignerRegistry{Signers: []model.Signer{{PublicKeyID: "GALICE", Weight: 1}}, Threshold: 1}
	return &model.BackupData{
		SchemaVersion: model.BackupSchemaVersion,
		CreatedAt:     time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Wallets:       []*model.Snapshot{snap},
		Credentials:   []model.Credential{{ID: "c1", WalletID: "treasury", PublicKeyID: "GALICE", SecretHash: "h"}},
	}
}

func TestWriteAndReadBackup(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBackup(context.Background(), sampleData(), &buf))

	// The output is a zstd frame.
	zr, err := zstd.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	zr.Close()

	got, err := ReadBackup(&buf)
	require.NoError(t, err)
	require.Len(t, got.Wallets, 1)
	assert.Equal(t, "treasury", got.Wallets[0].WalletID)
	assert.Equal(t, 1, got.Wallets[0].Registry.Threshold)
	assert.Equal(t, "c1", got.Credentials[0].ID)
}

func TestReadBackup_RejectsGarbage(t *testing.T) {
	_, err := ReadBackup(bytes.NewReader([]byte("not zstd at all")))
	assert.Error(t, err)
}

func TestRestore_FullAndIntegrate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBackup(context.Background(), sampleData(), &buf))
	raw := buf.Bytes()

	full := &fakeStore{}
	require.NoError(t, Restore(context.Background(), bytes.NewReader(raw), RestoreOptions{Full: true}, full))
	assert.NotNil(t, full.imported)
	assert.Nil(t, full.integrated)

	partial := &fakeStore{}
	require.NoError(t, Restore(context.Background(), bytes.NewReader(raw), RestoreOptions{}, partial))
	assert.Nil(t, partial.imported)
	assert.NotNil(t, partial.integrated)
}

func TestBackup_PropagatesExportError(t *testing.T) {
	_, err := Backup(context.Background(), &fakeStore{exportErr: errors.New("boom")})
	assert.ErrorContains(t, err, "boom")
}

func TestMigrate_BetweenSqliteStores(t *testing.T) {
	ctx := context.Background()
	src, err := db.NewStoreFromDSN("sqlite", "file:TestMigrate_src?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = src.Close() }()
	dst, err := db.NewStoreFromDSN("sqlite", "file:TestMigrate_dst?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = dst.Close() }()

	require.NoError(t, src.SaveSnapshot(ctx, "treasury", sampleData().Wallets[0]))
	require.NoError(t, Migrate(ctx, src, dst))

	wallets, err := dst.ListWallets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"treasury"}, wallets)
	snap, err := dst.LoadSnapshot(ctx, "treasury")
	require.NoError(t, err)
	require.NotNil(t, snap.Registry)
	assert.Equal(t, "GALICE", snap.Registry.Signers[0].PublicKeyID)
}
