package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/salespos-api/internal/application/service"
	"github.com/sangkips/salespos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salespos-api/pkg/apperror"
)

// ReportHandler handles the admin dashboard HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Daily handles the dashboard for ?date=YYYY-MM-DD, today by default
func (h *ReportHandler) Daily(c *gin.Context) {
	day, err := parseDay(c.Query("date"), h.reportService.Location())
	if err != nil {
		response.Error(c, apperror.NewFieldError("date", "Use the YYYY-MM-DD format"))
		return
	}

	summary, err := h.reportService.DailySummary(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Daily summary retrieved successfully", summary)
}

// Outstanding handles listing unsettled transactions by customer
func (h *ReportHandler) Outstanding(c *gin.Context) {
	loans, err := h.reportService.OutstandingLoans(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]*response.TransactionResponse, 0, len(loans))
	for i := range loans {
		out = append(out, response.NewTransactionResponse(&loans[i]))
	}
	response.OK(c, "Outstanding balances retrieved successfully", out)
}

// Customers handles the outstanding total per customer
func (h *ReportHandler) Customers(c *gin.Context) {
	balances, err := h.reportService.CustomerBalances(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer balances retrieved successfully", balances)
}
