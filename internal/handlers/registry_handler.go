package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"supplier-payment-backend/internal/services/matching"
	service "supplier-payment-backend/internal/services/reconciliation"
)

type RegistryHandler struct {
	service *service.Service
}

func NewRegistryHandler(s *service.Service) *RegistryHandler {
	return &RegistryHandler{service: s}
}

func (h *RegistryHandler) List(c *gin.Context) {
	suppliers, err := h.service.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": suppliers, "total": len(suppliers)})
}

func (h *RegistryHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q required"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(matching.DefaultLimit)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	matches, err := h.service.SearchSuppliers(c.Request.Context(), query, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": matches})
}

// Upload merges an auxiliary supplier file into the registry.
func (h *RegistryHandler) Upload(c *gin.Context) {
	table, ok := readUpload(c, h.service)
	if !ok {
		return
	}
	performedBy := c.PostForm("performed_by")
	if performedBy == "" {
		performedBy = c.GetHeader("X-Performed-By")
	}

	res, err := h.service.UpdateRegistry(c.Request.Context(), table, performedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": table.Name, "result": res})
}

func (h *RegistryHandler) Export(c *gin.Context) {
	format, ok := formatParam(c)
	if !ok {
		return
	}
	file, err := h.service.ExportRegistry(c.Request.Context(), format)
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, file)
}
