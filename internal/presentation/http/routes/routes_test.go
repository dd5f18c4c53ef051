package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salespos-api/internal/application/service"
	"github.com/sangkips/salespos-api/internal/config"
	"github.com/sangkips/salespos-api/internal/infrastructure/repository"
	"github.com/sangkips/salespos-api/internal/presentation/http/handler"
	"github.com/sangkips/salespos-api/pkg/printer"
	"github.com/sangkips/salespos-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPIN = "4321"

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App:       config.AppConfig{Name: "salespos-test"},
		RateLimit: config.RateLimitConfig{Requests: 1000, Duration: 1},
	}
	store := repository.NewMemoryRecordStore()
	catalogRepo := repository.NewCatalogRepository(store)
	txRepo := repository.NewTransactionRepository(store)
	settingsRepo := repository.NewSettingsRepository(store)

	jwtManager := utils.NewJWTManager("test-secret", "salespos-test", time.Hour)
	authService, err := service.NewAuthService(testPIN, "", jwtManager)
	require.NoError(t, err)

	ledger := service.NewLedgerService(txRepo, catalogRepo, settingsRepo, nil)
	encoder := service.NewReceiptEncoder(service.ReceiptOptions{Location: time.UTC})
	transport := printer.NewTransport(nil, printer.Options{})
	printerService := service.NewPrinterService(transport, encoder, ledger, "none", true, nil)

	h := &Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Catalog:     handler.NewCatalogHandler(service.NewCatalogService(catalogRepo)),
		Transaction: handler.NewTransactionHandler(ledger, time.UTC),
		Report:      handler.NewReportHandler(service.NewReportService(txRepo, time.UTC)),
		Settings:    handler.NewSettingsHandler(service.NewSettingsService(settingsRepo)),
		Printer:     handler.NewPrinterHandler(printerService),
		Admin:       handler.NewAdminHandler(service.NewBackupService(store, catalogRepo, txRepo, settingsRepo, nil).GuardLedger(ledger)),
	}
	deps := &Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: repository.NewIdempotencyRepository(store),
	}
	router := Setup(h, deps)
	t.Cleanup(deps.RateLimiter.Close)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if into != nil {
		require.NoError(t, json.Unmarshal(env.Data, into))
	}
}

func login(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{"pin": testPIN}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, w, &out)
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

type txView struct {
	ID               string  `json:"id"`
	Total            float64 `json:"total"`
	AmountPaid       float64 `json:"amount_paid"`
	RemainingBalance float64 `json:"remaining_balance"`
	IsSettled        bool    `json:"is_settled"`
}

func loanSale() gin.H {
	return gin.H{
		"payment_mode": "loan",
		"customer":     gin.H{"name": "Ana"},
		"lines": []gin.H{{
			"item":     gin.H{"name": "Rice", "cost_price": 300, "sell_price": 400},
			"quantity": 1,
		}},
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "salespos-test")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/admin/reports/outstanding", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{"pin": "0000"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, router)
	w = doJSON(t, router, http.MethodGet, "/api/v1/admin/reports/outstanding", token, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCheckoutRepayAndReceipt(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", "", loanSale(), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tx txView
	decode(t, w, &tx)
	assert.Equal(t, 400.0, tx.Total)
	assert.Equal(t, 400.0, tx.RemainingBalance)
	assert.False(t, tx.IsSettled)

	w = doJSON(t, router, http.MethodPost, "/api/v1/transactions/"+tx.ID+"/repayments", "", gin.H{"amount": 150}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &tx)
	assert.Equal(t, 250.0, tx.RemainingBalance)

	w = doJSON(t, router, http.MethodPost, "/api/v1/transactions/"+tx.ID+"/repayments", "", gin.H{"amount": 300}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/transactions/"+tx.ID+"/receipt", "", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, w.Body.String(), "Remaining Balance: 250.00")

	w = doJSON(t, router, http.MethodGet, "/api/v1/transactions/"+tx.ID+"/receipt/escpos", "", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte{0x1B, 0x40}))

	w = doJSON(t, router, http.MethodGet, "/api/v1/transactions/missing", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckoutRejectsCreditWithoutCustomer(t *testing.T) {
	router := newTestRouter(t)
	sale := loanSale()
	delete(sale, "customer")

	w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", "", sale, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func TestCheckoutIdempotencyKey(t *testing.T) {
	router := newTestRouter(t)
	headers := map[string]string{"Idempotency-Key": "till-1-0001"}

	first := doJSON(t, router, http.MethodPost, "/api/v1/transactions", "", loanSale(), headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	var a txView
	decode(t, first, &a)

	replay := doJSON(t, router, http.MethodPost, "/api/v1/transactions", "", loanSale(), headers)
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	var b txView
	decode(t, replay, &b)
	assert.Equal(t, a.ID, b.ID)

	other := loanSale()
	other["customer"] = gin.H{"name": "Ben"}
	w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", "", other, headers)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/transactions", "", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []txView `json:"items"`
	}
	decode(t, w, &page)
	assert.Len(t, page.Items, 1)
}

func TestPrintFallsBackToBridgeWithoutPrinter(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", "", loanSale(), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var tx txView
	decode(t, w, &tx)

	w = doJSON(t, router, http.MethodPost, "/api/v1/transactions/"+tx.ID+"/print", "", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var outcome service.PrintOutcome
	decode(t, w, &outcome)
	assert.Equal(t, service.StrategyBridge, outcome.DeliveredBy)
	assert.True(t, strings.HasPrefix(outcome.BridgeURL, "rawbt:print?text="))

	w = doJSON(t, router, http.MethodPost, "/api/v1/transactions/"+tx.ID+"/print", "", gin.H{"skip_bridge": true}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &outcome)
	assert.Equal(t, service.StrategyDocument, outcome.DeliveredBy)
	assert.Contains(t, outcome.Document, "Total Due: 400.00")
}

func TestPrintRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", "", loanSale(), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var tx txView
	decode(t, w, &tx)

	for _, path := range []string{"/api/v1/transactions/" + tx.ID + "/print", "/api/v1/printer/test"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"skip_bridge":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestSettingsUpdateIsAdminOnly(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/v1/admin/settings", "", gin.H{"seller_name": "Corner Shop"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, router)
	w = doJSON(t, router, http.MethodPut, "/api/v1/admin/settings", token, gin.H{"seller_name": "Corner Shop"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/settings", "", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Corner Shop")
}
