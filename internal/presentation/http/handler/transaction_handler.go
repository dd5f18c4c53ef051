package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salespos-api/internal/application/service"
	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/internal/domain/enum"
	"github.com/sangkips/salespos-api/internal/domain/repository"
	"github.com/sangkips/salespos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salespos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salespos-api/pkg/apperror"
)

// TransactionHandler handles ledger HTTP requests
type TransactionHandler struct {
	ledger *service.LedgerService
	loc    *time.Location
}

// NewTransactionHandler creates a new transaction handler. Day filters are
// read in loc.
func NewTransactionHandler(ledger *service.LedgerService, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TransactionHandler{ledger: ledger, loc: loc}
}

// Create handles checkout
func (h *TransactionHandler) Create(c *gin.Context) {
	var req request.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	lines := make([]service.CartLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = service.CartLineInput{
			ItemID:      l.ItemID,
			Quantity:    l.Quantity,
			ManualTotal: l.ManualTotal,
		}
		if l.Item != nil {
			lines[i].Item = &entity.CatalogItem{
				ID:        l.Item.ID,
				Name:      l.Item.Name,
				CostPrice: l.Item.CostPrice,
				SellPrice: l.Item.SellPrice,
			}
		}
	}

	input := &service.CreateTransactionInput{
		Lines:       lines,
		PaymentMode: enum.PaymentMode(strings.ToLower(strings.TrimSpace(req.PaymentMode))),
		Tendered:    req.AmountTendered,
	}
	if req.Customer != nil {
		input.Customer = &entity.CustomerInfo{
			Name:    req.Customer.Name,
			Address: req.Customer.Address,
			Contact: req.Customer.Contact,
		}
	}

	tx, err := h.ledger.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Transaction recorded successfully", response.NewTransactionResponse(tx))
}

// List handles listing transactions, newest first
func (h *TransactionHandler) List(c *gin.Context) {
	var filter request.TransactionFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.TransactionFilterParams{
		Pagination:      pageParams(filter.Page, filter.PerPage),
		Search:          filter.Search,
		OutstandingOnly: filter.Outstanding,
	}
	if filter.PaymentMode != "" {
		mode, err := enum.ParsePaymentMode(filter.PaymentMode)
		if err != nil {
			response.Error(c, apperror.NewFieldError("payment_mode", "Payment mode must be one of full, partial, loan"))
			return
		}
		params.PaymentMode = &mode
	}
	if filter.StartDate != "" {
		start, err := time.ParseInLocation(DayLayout, filter.StartDate, h.loc)
		if err != nil {
			response.Error(c, apperror.NewFieldError("start_date", "Use the YYYY-MM-DD format"))
			return
		}
		params.StartDate = &start
	}
	if filter.EndDate != "" {
		end, err := time.ParseInLocation(DayLayout, filter.EndDate, h.loc)
		if err != nil {
			response.Error(c, apperror.NewFieldError("end_date", "Use the YYYY-MM-DD format"))
			return
		}
		// the end day is inclusive
		end = end.AddDate(0, 0, 1)
		params.EndDate = &end
	}

	result, err := h.ledger.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Transactions retrieved successfully", response.NewTransactionPage(result))
}

// Get handles getting a single transaction
func (h *TransactionHandler) Get(c *gin.Context) {
	tx, err := h.ledger.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transaction retrieved successfully", response.NewTransactionResponse(tx))
}

// Repay handles a repayment against an open balance
func (h *TransactionHandler) Repay(c *gin.Context) {
	var req request.RepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	tx, err := h.ledger.RecordRepayment(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Repayment recorded successfully", response.NewTransactionResponse(tx))
}

// Delete handles removing a transaction from the ledger
func (h *TransactionHandler) Delete(c *gin.Context) {
	if err := h.ledger.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
