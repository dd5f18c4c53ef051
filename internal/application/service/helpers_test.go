package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salespos-api/internal/domain/repository"
	infraRepo "github.com/sangkips/salespos-api/internal/infrastructure/repository"
	"github.com/sangkips/salespos-api/pkg/money"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store    domainRepo.RecordStore
	catalog  domainRepo.CatalogRepository
	txs      domainRepo.TransactionRepository
	settings domainRepo.SettingsRepository
	ledger   *LedgerService
	clock    *fakeClock
}

type fakeClock struct {
	now atomic.Value
}

func newFakeClock(t time.Time) *fakeClock {
	c := &fakeClock{}
	c.now.Store(t)
	return c
}

func (c *fakeClock) Now() time.Time      { return c.now.Load().(time.Time) }
func (c *fakeClock) Set(t time.Time)     { c.now.Store(t) }
func (c *fakeClock) Add(d time.Duration) { c.Set(c.Now().Add(d)) }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := infraRepo.NewMemoryRecordStore()
	env := &testEnv{
		store:    store,
		catalog:  infraRepo.NewCatalogRepository(store),
		txs:      infraRepo.NewTransactionRepository(store),
		settings: infraRepo.NewSettingsRepository(store),
		clock:    newFakeClock(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)),
	}
	env.ledger = NewLedgerService(env.txs, env.catalog, env.settings, nil)
	env.ledger.now = env.clock.Now

	var seq int64
	env.ledger.newID = func() (string, error) {
		n := atomic.AddInt64(&seq, 1)
		return fmt.Sprintf("18070612340000%04d", n), nil
	}
	return env
}

func (e *testEnv) addItem(t *testing.T, name string, cost, sell money.Amount) *entity.CatalogItem {
	t.Helper()
	item := &entity.CatalogItem{ID: "item-" + name, Name: name, CostPrice: cost, SellPrice: sell}
	require.NoError(t, e.catalog.Save(context.Background(), item))
	return item
}

func amt(s string) money.Amount {
	a, err := money.Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func amtPtr(s string) *money.Amount {
	a := amt(s)
	return &a
}
