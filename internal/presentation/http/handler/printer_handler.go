package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salespos-api/internal/application/service"
	"github.com/sangkips/salespos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salespos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salespos-api/pkg/apperror"
	"github.com/sangkips/salespos-api/pkg/printer"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer link status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status := h.printerService.GetStatus(c.Request.Context())
	response.OK(c, "Printer status retrieved", status)
}

// Connect discovers and links a printer. A connect still in flight is
// cancelled by a newer one.
func (h *PrinterHandler) Connect(c *gin.Context) {
	status, err := h.printerService.Connect(c.Request.Context())
	if err != nil {
		response.Error(c, printerError(err))
		return
	}

	response.OK(c, "Printer connected", status)
}

// Disconnect drops the printer link.
func (h *PrinterHandler) Disconnect(c *gin.Context) {
	status, err := h.printerService.Disconnect(c.Request.Context())
	if err != nil {
		response.Error(c, printerError(err))
		return
	}

	response.OK(c, "Printer disconnected", status)
}

// TestPrint dispatches a test page.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	req, err := bindPrintRequest(c)
	if err != nil {
		badBody(c, err)
		return
	}
	outcome := h.printerService.TestPrint(c.Request.Context(), req.SkipBridge)
	response.OK(c, printMessage(outcome), outcome)
}

// PrintTransaction dispatches the receipt of a transaction.
func (h *PrinterHandler) PrintTransaction(c *gin.Context) {
	req, err := bindPrintRequest(c)
	if err != nil {
		badBody(c, err)
		return
	}
	outcome, err := h.printerService.PrintTransaction(c.Request.Context(), c.Param("id"), req.SkipBridge)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, printMessage(outcome), outcome)
}

// ReceiptText returns the plain-text receipt.
func (h *PrinterHandler) ReceiptText(c *gin.Context) {
	text, err := h.printerService.ReceiptText(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Text(c, text)
}

// ReceiptBytes returns the ESC/POS command stream of the receipt.
func (h *PrinterHandler) ReceiptBytes(c *gin.Context) {
	data, err := h.printerService.ReceiptBytes(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, "receipt-"+c.Param("id")+".bin", "application/octet-stream", data)
}

// bindPrintRequest reads the optional body; an empty body means defaults.
func bindPrintRequest(c *gin.Context) (request.PrintRequest, error) {
	var req request.PrintRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, err
		}
	}
	if c.Query("skip_bridge") == "true" {
		req.SkipBridge = true
	}
	return req, nil
}

func printMessage(outcome *service.PrintOutcome) string {
	switch outcome.DeliveredBy {
	case service.StrategyTransport:
		return "Sent to printer"
	case service.StrategyBridge:
		return "Open the bridge link to print"
	case service.StrategyDocument:
		return "Print the returned document"
	default:
		return "No print method accepted the job"
	}
}

// printerError maps link failures to HTTP errors. A cancelled discovery is
// an expected outcome and is reported without alarm.
func printerError(err error) error {
	switch {
	case errors.Is(err, printer.ErrCancelled):
		return apperror.NewConflictError("Printer discovery cancelled")
	case errors.Is(err, printer.ErrUnsupported):
		return apperror.NewServiceUnavailableError("No printer link is available on this host")
	case errors.Is(err, printer.ErrNoWritableChannel):
		return apperror.NewServiceUnavailableError("Printer exposes no writable channel")
	case errors.Is(err, printer.ErrTimeout):
		return apperror.NewTimeoutError("Printer did not respond in time")
	case errors.Is(err, printer.ErrNotConnected):
		return apperror.NewConflictError("Printer is not connected")
	case errors.Is(err, printer.ErrPermissionDenied):
		return apperror.NewBadRequestError("Access to the printer was denied")
	}
	return err
}
