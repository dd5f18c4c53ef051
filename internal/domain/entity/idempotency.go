package entity

import (
	"time"
)

// IdempotencyKey stores processed requests to prevent duplicates
type IdempotencyKey struct {
	Key          string    `json:"key"`           // The idempotency key from client
	Client       string    `json:"client"`        // Caller that made the request
	Endpoint     string    `json:"endpoint"`      // API endpoint (e.g., "POST /transactions")
	RequestHash  string    `json:"request_hash"`  // SHA256 hash of request body
	ResponseCode int       `json:"response_code"` // HTTP status code of original response
	ResponseBody string    `json:"response_body"` // JSON response body (cached)
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"` // Keys expire after 24 hours
}

// StoreKey is the record key under which the entry is persisted
func (i *IdempotencyKey) StoreKey() string {
	return i.Client + ":" + i.Key
}

// IsExpired checks if the idempotency key has expired
func (i *IdempotencyKey) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
