package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salespos-api/internal/domain/repository"
)

type transactionRepository struct {
	store domainRepo.RecordStore
}

// NewTransactionRepository creates a new ledger repository
func NewTransactionRepository(store domainRepo.RecordStore) domainRepo.TransactionRepository {
	return &transactionRepository{store: store}
}

func (r *transactionRepository) Save(ctx context.Context, tx *entity.Transaction) error {
	raw, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("encode transaction %s: %w", tx.ID, err)
	}
	return r.store.Put(ctx, domainRepo.CollectionTransactions, tx.ID, raw)
}

// GetByID returns nil when the transaction does not exist
func (r *transactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	raw, err := r.store.Get(ctx, domainRepo.CollectionTransactions, id)
	if err != nil || raw == nil {
		return nil, err
	}
	var tx entity.Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("decode transaction %s: %w", id, err)
	}
	return &tx, nil
}

func (r *transactionRepository) List(ctx context.Context) ([]entity.Transaction, error) {
	records, err := r.store.GetAll(ctx, domainRepo.CollectionTransactions)
	if err != nil {
		return nil, err
	}
	txs := make([]entity.Transaction, 0, len(records))
	for _, rec := range records {
		var tx entity.Transaction
		if err := json.Unmarshal(rec.Value, &tx); err != nil {
			return nil, fmt.Errorf("decode transaction %s: %w", rec.Key, err)
		}
		txs = append(txs, tx)
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Timestamp != txs[j].Timestamp {
			return txs[i].Timestamp < txs[j].Timestamp
		}
		return txs[i].ID < txs[j].ID
	})
	return txs, nil
}

func (r *transactionRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, domainRepo.CollectionTransactions, id)
}
