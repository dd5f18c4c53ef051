package repository

import (
	"gorm.io/gorm"
)

// CollectionScope returns a GORM scope that restricts record queries to one
// collection. Every query against store_records must apply it.
func CollectionScope(collection string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("collection = ?", collection)
	}
}

// KeyScope narrows a collection-scoped query to a single record
func KeyScope(key string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("record_key = ?", key)
	}
}
