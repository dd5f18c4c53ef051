package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salespos-api/internal/application/service"
	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salespos-api/internal/presentation/http/dto/response"
)

// SpreadsheetContentType is the media type of .xlsx workbooks
const SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxUploadBytes caps catalog and backup uploads
const maxUploadBytes = 32 << 20

// CatalogHandler handles catalog item HTTP requests
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// List handles listing items, optionally filtered by name or alias
func (h *CatalogHandler) List(c *gin.Context) {
	var filter request.CatalogFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.catalogService.ListItems(c.Request.Context(), filter.Search, pageParams(filter.Page, filter.PerPage))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Items retrieved successfully", result)
}

// Get handles getting a single item
func (h *CatalogHandler) Get(c *gin.Context) {
	item, err := h.catalogService.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item retrieved successfully", item)
}

// Create handles creating an item
func (h *CatalogHandler) Create(c *gin.Context) {
	var req request.CatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	item, err := h.catalogService.CreateItem(c.Request.Context(), &service.CatalogItemInput{
		Name:      req.Name,
		Aliases:   req.Aliases,
		CostPrice: req.CostPrice,
		SellPrice: req.SellPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Item created successfully", item)
}

// Update handles updating an item
func (h *CatalogHandler) Update(c *gin.Context) {
	var req request.CatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	item, err := h.catalogService.UpdateItem(c.Request.Context(), c.Param("id"), &service.CatalogItemInput{
		Name:      req.Name,
		Aliases:   req.Aliases,
		CostPrice: req.CostPrice,
		SellPrice: req.SellPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item updated successfully", item)
}

// Delete handles deleting an item. Sold snapshots are not affected.
func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.catalogService.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Import handles a JSON list of items
func (h *CatalogHandler) Import(c *gin.Context) {
	var req request.CatalogImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	items := make([]entity.CatalogItem, len(req.Items))
	for i, in := range req.Items {
		items[i] = entity.CatalogItem{
			ID:        in.ID,
			Name:      in.Name,
			Aliases:   in.Aliases,
			CostPrice: in.CostPrice,
			SellPrice: in.SellPrice,
		}
	}

	n, err := h.catalogService.ImportItems(c.Request.Context(), items, req.Replace)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Items imported successfully", gin.H{"imported": n})
}

// Export returns the whole catalog as JSON
func (h *CatalogHandler) Export(c *gin.Context) {
	items, err := h.catalogService.ExportItems(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Items exported successfully", gin.H{"items": items})
}

// ImportSpreadsheet handles a multipart .xlsx upload in the "file" field.
// The "replace" form value clears the catalog first.
func (h *CatalogHandler) ImportSpreadsheet(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "A spreadsheet file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, "Cannot read the uploaded file")
		return
	}
	defer file.Close()

	replace, _ := strconv.ParseBool(c.DefaultPostForm("replace", "false"))
	n, err := h.catalogService.ImportSpreadsheet(c.Request.Context(), file, replace)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Items imported successfully", gin.H{"imported": n})
}

// ExportSpreadsheet returns the catalog as an .xlsx download
func (h *CatalogHandler) ExportSpreadsheet(c *gin.Context) {
	data, err := h.catalogService.ExportSpreadsheet(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, "catalog.xlsx", SpreadsheetContentType, data)
}
