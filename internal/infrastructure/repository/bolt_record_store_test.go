package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salespos-api/internal/domain/repository"
	"github.com/sangkips/salespos-api/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func newTestStore(t *testing.T) domainRepo.RecordStore {
	t.Helper()
	db, err := bolt.Open(filepath.Join(t.TempDir(), "pos.db"), 0o600, &bolt.Options{Timeout: time.Second})
	require.NoError(t, err)
	store := NewBoltRecordStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltRecordStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	v, err := store.Get(ctx, "items", "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, store.Put(ctx, "items", "a", []byte("1")))
	require.NoError(t, store.Put(ctx, "items", "b", []byte("2")))
	require.NoError(t, store.Put(ctx, "items", "a", []byte("3")))

	v, err = store.Get(ctx, "items", "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), v)

	all, err := store.GetAll(ctx, "items")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.Delete(ctx, "items", "a"))
	all, err = store.GetAll(ctx, "items")
	require.NoError(t, err)
	assert.Equal(t, []domainRepo.Record{{Key: "b", Value: []byte("2")}}, all)

	require.NoError(t, store.Clear(ctx, "items"))
	all, err = store.GetAll(ctx, "items")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBoltRecordStoreReplaceAll(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Put(ctx, "items", "old", []byte("x")))
	require.NoError(t, store.Put(ctx, "settings", "sellerName", []byte("Old Shop")))

	err := store.ReplaceAll(ctx, map[string][]domainRepo.Record{
		"items":    {{Key: "new", Value: []byte("y")}},
		"settings": nil,
	})
	require.NoError(t, err)

	items, err := store.GetAll(ctx, "items")
	require.NoError(t, err)
	assert.Equal(t, []domainRepo.Record{{Key: "new", Value: []byte("y")}}, items)

	settings, err := store.GetAll(ctx, "settings")
	require.NoError(t, err)
	assert.Empty(t, settings)
}

func TestTransactionRepositoryOrdersByTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository(newTestStore(t))

	line := entity.CartLine{CatalogItem: entity.CatalogItem{ID: "i1", Name: "Rice", SellPrice: 15000}, Quantity: 1}
	later := &entity.Transaction{ID: "t2", Timestamp: 2000, Lines: []entity.CartLine{line}, Total: 15000, PaymentMode: enum.PaymentModeFull}
	earlier := &entity.Transaction{ID: "t1", Timestamp: 1000, Lines: []entity.CartLine{line}, Total: 15000, PaymentMode: enum.PaymentModeFull}
	require.NoError(t, repo.Save(ctx, later))
	require.NoError(t, repo.Save(ctx, earlier))

	txs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "t1", txs[0].ID)
	assert.Equal(t, "t2", txs[1].ID)

	got, err := repo.GetByID(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, money.Amount(15000), got.Lines[0].SellPrice)

	missing, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSettingsRepositoryDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(newTestStore(t))

	s, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultReturnPolicy, s.ReturnPolicy)

	s.SellerName = "Corner Shop"
	require.NoError(t, repo.Save(ctx, s))

	s, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", s.SellerName)
}

func TestIdempotencyRepositoryDeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewIdempotencyRepository(newTestStore(t))

	live := &entity.IdempotencyKey{Key: "k1", Client: "10.0.0.1", ExpiresAt: time.Now().Add(time.Hour)}
	stale := &entity.IdempotencyKey{Key: "k2", Client: "10.0.0.1", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, stale))

	require.NoError(t, repo.DeleteExpired(ctx))

	got, err := repo.GetByKey(ctx, "k1", "10.0.0.1")
	require.NoError(t, err)
	require.NotNil(t, got)
	got, err = repo.GetByKey(ctx, "k2", "10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
