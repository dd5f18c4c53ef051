package entity

import "time"

// StoreRecord is one keyed value of the relational record store
type StoreRecord struct {
	Collection string    `gorm:"primaryKey;size:64"`
	Key        string    `gorm:"primaryKey;column:record_key;size:255"`
	Value      []byte    `gorm:"type:bytea;not null"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the StoreRecord model
func (StoreRecord) TableName() string {
	return "store_records"
}
