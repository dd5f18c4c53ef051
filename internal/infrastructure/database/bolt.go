package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sangkips/salespos-api/internal/config"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// NewBoltDB opens (or creates) the on-device store file and makes sure every
// collection bucket exists.
func NewBoltDB(cfg *config.StoreConfig, buckets []string) (*bolt.DB, error) {
	if dir := filepath.Dir(cfg.BoltPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = DefaultOpenTimeout
	}

	db, err := bolt.Open(cfg.BoltPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", cfg.BoltPath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	zap.L().Info("opened on-device store", zap.String("path", cfg.BoltPath))
	return db, nil
}

// DefaultOpenTimeout bounds how long Open waits for the file lock
const DefaultOpenTimeout = 2 * time.Second
