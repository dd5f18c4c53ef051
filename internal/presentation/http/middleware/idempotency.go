package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/internal/domain/repository"
	"github.com/sangkips/salespos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salespos-api/internal/presentation/http/handler"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	// Required rejects requests that carry no key
	Required bool
	// InFlight is shared by every route that stores keys in Repo. A new set
	// is made when nil.
	InFlight *KeyReservations
	Logger   *zap.Logger
}

// KeyReservations tracks keys whose first request is still running
type KeyReservations struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewKeyReservations creates an empty reservation set
func NewKeyReservations() *KeyReservations {
	return &KeyReservations{keys: make(map[string]struct{})}
}

// reserve claims key and reports false when another request holds it
func (r *KeyReservations) reserve(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.keys[key]; busy {
		return false
	}
	r.keys[key] = struct{}{}
	return true
}

func (r *KeyReservations) release(key string) {
	r.mu.Lock()
	delete(r.keys, key)
	r.mu.Unlock()
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a POST is retried with the
// same Idempotency-Key. Reusing a key with a different body is rejected, and
// so is a retry that arrives while the first request is still running.
// Only 2xx responses are stored.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	inFlight := config.InFlight
	if inFlight == nil {
		inFlight = NewKeyReservations()
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if config.Required {
				response.BadRequest(c, "Idempotency-Key header is required for this request")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Cannot read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		requestHash := hex.EncodeToString(sum[:])
		client := idempotencyClient(c)
		endpoint := c.Request.Method + " " + c.FullPath()

		// held from lookup until the response is stored
		reservation := client + ":" + key
		if !inFlight.reserve(reservation) {
			response.ErrorWithCode(c, http.StatusConflict, "A request with this Idempotency-Key is still being processed")
			c.Abort()
			return
		}
		defer inFlight.release(reservation)

		existing, err := config.Repo.GetByKey(c.Request.Context(), key, client)
		if err != nil {
			response.InternalServerError(c, "Failed to check idempotency key")
			c.Abort()
			return
		}

		if existing != nil && !existing.IsExpired() {
			if existing.RequestHash != requestHash || existing.Endpoint != endpoint {
				response.ErrorWithCode(c, http.StatusUnprocessableEntity, "Idempotency-Key was already used with a different request")
				c.Abort()
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		now := time.Now()
		ikey := &entity.IdempotencyKey{
			Key:          key,
			Client:       client,
			Endpoint:     endpoint,
			RequestHash:  requestHash,
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			CreatedAt:    now,
			ExpiresAt:    now.Add(IdempotencyKeyTTL),
		}
		if err := config.Repo.Create(c.Request.Context(), ikey); err != nil {
			log.Warn("store idempotency key", zap.String("key", key), zap.Error(err))
		}
	}
}

// idempotencyClient scopes keys to the authenticated subject, or to the
// client address for anonymous tills.
func idempotencyClient(c *gin.Context) string {
	if subject := handler.GetSubject(c); subject != "" {
		return "sub:" + subject
	}
	return "ip:" + c.ClientIP()
}
