package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salespos-api/internal/domain/repository"
)

type idempotencyRepository struct {
	store domainRepo.RecordStore
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(store domainRepo.RecordStore) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{store: store}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key, client string) (*entity.IdempotencyKey, error) {
	lookup := entity.IdempotencyKey{Key: key, Client: client}
	raw, err := r.store.Get(ctx, domainRepo.CollectionIdempotency, lookup.StoreKey())
	if err != nil || raw == nil {
		return nil, err
	}

	var ikey entity.IdempotencyKey
	if err := json.Unmarshal(raw, &ikey); err != nil {
		return nil, err
	}
	return &ikey, nil
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	raw, err := json.Marshal(ikey)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, domainRepo.CollectionIdempotency, ikey.StoreKey(), raw)
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) error {
	records, err := r.store.GetAll(ctx, domainRepo.CollectionIdempotency)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, rec := range records {
		var ikey entity.IdempotencyKey
		if err := json.Unmarshal(rec.Value, &ikey); err != nil || now.After(ikey.ExpiresAt) {
			if err := r.store.Delete(ctx, domainRepo.CollectionIdempotency, rec.Key); err != nil {
				return err
			}
		}
	}
	return nil
}
