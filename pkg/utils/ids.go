package utils

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
	nodeErr  error
)

// InitIDNode sets the snowflake node used for transaction ids. It must be
// called before the first NewTransactionID; later calls are ignored.
func InitIDNode(nodeID int64) error {
	nodeOnce.Do(func() {
		node, nodeErr = snowflake.NewNode(nodeID)
	})
	return nodeErr
}

// NewTransactionID returns a time-ordered id. Its decimal form grows with
// creation time, so the last eight characters vary between sales.
func NewTransactionID() (string, error) {
	if err := InitIDNode(1); err != nil {
		return "", fmt.Errorf("snowflake node: %w", err)
	}
	return node.Generate().String(), nil
}

// NewUUID generates a new random id
func NewUUID() string {
	return uuid.NewString()
}
