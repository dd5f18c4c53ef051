package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salespos-api/internal/domain/repository"
	infraRepo "github.com/sangkips/salespos-api/internal/infrastructure/repository"
	"github.com/sangkips/salespos-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLedger(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	rice := env.addItem(t, "Rice", amt("100"), amt("150"))
	require.NoError(t, env.settings.Save(ctx, &entity.StoreSettings{SellerName: "Corner Shop", ReturnPolicy: "No returns"}))
	_, err := env.ledger.Create(ctx, &CreateTransactionInput{
		Lines:       []CartLineInput{{ItemID: rice.ID, Quantity: 1}, {Item: &entity.CatalogItem{Name: "Bag", SellPrice: amt("5")}, Quantity: 1}},
		PaymentMode: enum.PaymentModePartial,
		Tendered:    amtPtr("55"),
		Customer:    &entity.CustomerInfo{Name: "Ana"},
	})
	require.NoError(t, err)
}

func newBackupService(env *testEnv) *BackupService {
	return NewBackupService(env.store, env.catalog, env.txs, env.settings, nil)
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestEnv(t)
	seedLedger(t, src)

	backup, err := newBackupService(src).Export(ctx)
	require.NoError(t, err)
	raw, err := json.Marshal(backup)
	require.NoError(t, err)

	dst := newTestEnv(t)
	dst.addItem(t, "Stale", 0, amt("1"))
	summary, err := newBackupService(dst).Import(ctx, bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, &ImportSummary{Items: 1, Transactions: 1}, summary)

	items, err := dst.catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Rice", items[0].Name)

	wantTxs, err := src.txs.List(ctx)
	require.NoError(t, err)
	gotTxs, err := dst.txs.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantTxs, gotTxs)

	settings, err := dst.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", settings.SellerName)
	assert.Equal(t, "No returns", settings.ReturnPolicy)
}

func TestBackupImportRejectsBadDocuments(t *testing.T) {
	ctx := context.Background()
	src := newTestEnv(t)
	seedLedger(t, src)
	backup, err := newBackupService(src).Export(ctx)
	require.NoError(t, err)

	encode := func(b *entity.Backup) string {
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		return string(raw)
	}
	tampered := func(mutate func(b *entity.Backup)) string {
		var clone entity.Backup
		require.NoError(t, json.Unmarshal([]byte(encode(backup)), &clone))
		mutate(&clone)
		return encode(&clone)
	}

	cases := map[string]string{
		"malformed":     `{"format":`,
		"unknown field": strings.Replace(encode(backup), `"format"`, `"surprise":1,"format"`, 1),
		"trailing data": encode(backup) + `{}`,
		"wrong version": tampered(func(b *entity.Backup) { b.Version = 2 }),
		"wrong format":  tampered(func(b *entity.Backup) { b.Format = "other" }),
		"bad balance":   tampered(func(b *entity.Backup) { b.Data.Transactions[0].RemainingBalance += 1 }),
		"bad total":     tampered(func(b *entity.Backup) { b.Data.Transactions[0].Total += 100 }),
		"credit without customer": tampered(func(b *entity.Backup) {
			b.Data.Transactions[0].Customer = nil
		}),
		"duplicate item": tampered(func(b *entity.Backup) {
			b.Data.Items = append(b.Data.Items, b.Data.Items[0])
		}),
		"history mismatch": tampered(func(b *entity.Backup) {
			b.Data.Transactions[0].PaymentHistory[0].Amount -= 1
		}),
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			dst := newTestEnv(t)
			keep := dst.addItem(t, "Keep", 0, amt("1"))

			_, err := newBackupService(dst).Import(ctx, strings.NewReader(doc))
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err), err.Error())

			items, err := dst.catalog.List(ctx)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, keep.ID, items[0].ID)
		})
	}
}

func TestBackupClearAll(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	seedLedger(t, env)

	require.NoError(t, newBackupService(env).ClearAll(ctx))

	items, err := env.catalog.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	txs, err := env.txs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
	settings, err := env.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultReturnPolicy, settings.ReturnPolicy)
}

// gatedStore parks the next transaction write until release is closed
type gatedStore struct {
	domainRepo.RecordStore
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Put(ctx context.Context, collection, key string, value []byte) error {
	if collection == domainRepo.CollectionTransactions && g.armed.CompareAndSwap(true, false) {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.RecordStore.Put(ctx, collection, key, value)
}

func TestRestoreWaitsForInFlightRepayment(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{
		RecordStore: infraRepo.NewMemoryRecordStore(),
		entered:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
	txs := infraRepo.NewTransactionRepository(store)
	catalog := infraRepo.NewCatalogRepository(store)
	settings := infraRepo.NewSettingsRepository(store)
	ledger := NewLedgerService(txs, catalog, settings, nil)
	backups := NewBackupService(store, catalog, txs, settings, nil).GuardLedger(ledger)

	tx, err := ledger.Create(ctx, &CreateTransactionInput{
		Lines:       []CartLineInput{{Item: &entity.CatalogItem{ID: "rice", Name: "Rice", SellPrice: amt("400")}, Quantity: 1}},
		PaymentMode: enum.PaymentModeLoan,
		Customer:    &entity.CustomerInfo{Name: "Ana"},
	})
	require.NoError(t, err)

	backup, err := backups.Export(ctx)
	require.NoError(t, err)
	raw, err := json.Marshal(backup)
	require.NoError(t, err)

	store.armed.Store(true)
	repaid := make(chan error, 1)
	go func() {
		_, err := ledger.RecordRepayment(ctx, tx.ID, amt("150"))
		repaid <- err
	}()
	<-store.entered

	restored := make(chan error, 1)
	go func() {
		_, err := backups.Import(ctx, bytes.NewReader(raw))
		restored <- err
	}()

	time.Sleep(30 * time.Millisecond)
	select {
	case <-restored:
		t.Fatal("restore finished while a repayment was still being written")
	default:
	}

	close(store.release)
	require.NoError(t, <-repaid)
	require.NoError(t, <-restored)

	got, err := txs.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, amt("400"), got.RemainingBalance)
	assert.Empty(t, got.PaymentHistory)
}
