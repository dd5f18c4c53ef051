package repository

import (
	"context"
	"fmt"

	domainRepo "github.com/sangkips/salespos-api/internal/domain/repository"
	bolt "go.etcd.io/bbolt"
)

type boltRecordStore struct {
	db *bolt.DB
}

// NewBoltRecordStore creates a record store with one bucket per collection
func NewBoltRecordStore(db *bolt.DB) domainRepo.RecordStore {
	return &boltRecordStore{db: db}
}

func (s *boltRecordStore) GetAll(ctx context.Context, collection string) ([]domainRepo.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var records []domainRepo.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			records = append(records, domainRepo.Record{Key: string(k), Value: copyBytes(v)})
			return nil
		})
	})
	return records, err
}

func (s *boltRecordStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value = copyBytes(v)
		}
		return nil
	})
	return value, err
}

func (s *boltRecordStore) Put(ctx context.Context, collection, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return fmt.Errorf("bucket %s: %w", collection, err)
		}
		return b.Put([]byte(key), value)
	})
}

func (s *boltRecordStore) Delete(ctx context.Context, collection, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

func (s *boltRecordStore) Clear(ctx context.Context, collection string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return resetBucket(tx, collection)
	})
}

func (s *boltRecordStore) ReplaceAll(ctx context.Context, snapshot map[string][]domainRepo.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		for collection, records := range snapshot {
			if err := resetBucket(tx, collection); err != nil {
				return err
			}
			b := tx.Bucket([]byte(collection))
			for _, r := range records {
				if err := b.Put([]byte(r.Key), r.Value); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *boltRecordStore) Close() error {
	return s.db.Close()
}

// resetBucket drops and recreates a bucket, which is cheaper than deleting keys one by one
func resetBucket(tx *bolt.Tx, name string) error {
	if tx.Bucket([]byte(name)) != nil {
		if err := tx.DeleteBucket([]byte(name)); err != nil {
			return fmt.Errorf("drop bucket %s: %w", name, err)
		}
	}
	if _, err := tx.CreateBucket([]byte(name)); err != nil {
		return fmt.Errorf("create bucket %s: %w", name, err)
	}
	return nil
}

// bolt values are only valid for the life of the transaction
func copyBytes(v []byte) []byte {
	out := make([]byte, len(v))
	copy(out, v)
	return out
}
