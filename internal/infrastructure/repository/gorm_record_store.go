package repository

import (
	"context"
	"errors"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salespos-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormRecordStore struct {
	db *gorm.DB
}

// NewGormRecordStore creates a record store on top of the store_records table
func NewGormRecordStore(db *gorm.DB) domainRepo.RecordStore {
	return &gormRecordStore{db: db}
}

func (s *gormRecordStore) GetAll(ctx context.Context, collection string) ([]domainRepo.Record, error) {
	var rows []entity.StoreRecord
	err := s.db.WithContext(ctx).
		Scopes(CollectionScope(collection)).
		Order("record_key ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]domainRepo.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, domainRepo.Record{Key: row.Key, Value: row.Value})
	}
	return records, nil
}

func (s *gormRecordStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	var row entity.StoreRecord
	err := s.db.WithContext(ctx).
		Scopes(CollectionScope(collection), KeyScope(key)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.Value, nil
}

func (s *gormRecordStore) Put(ctx context.Context, collection, key string, value []byte) error {
	row := entity.StoreRecord{Collection: collection, Key: key, Value: value}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "record_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
}

func (s *gormRecordStore) Delete(ctx context.Context, collection, key string) error {
	return s.db.WithContext(ctx).
		Scopes(CollectionScope(collection), KeyScope(key)).
		Delete(&entity.StoreRecord{}).Error
}

func (s *gormRecordStore) Clear(ctx context.Context, collection string) error {
	return s.db.WithContext(ctx).
		Scopes(CollectionScope(collection)).
		Delete(&entity.StoreRecord{}).Error
}

func (s *gormRecordStore) ReplaceAll(ctx context.Context, snapshot map[string][]domainRepo.Record) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for collection, records := range snapshot {
			if err := tx.Scopes(CollectionScope(collection)).Delete(&entity.StoreRecord{}).Error; err != nil {
				return err
			}
			if len(records) == 0 {
				continue
			}
			rows := make([]entity.StoreRecord, 0, len(records))
			for _, r := range records {
				rows = append(rows, entity.StoreRecord{Collection: collection, Key: r.Key, Value: r.Value})
			}
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *gormRecordStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
