package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	service "supplier-payment-backend/internal/services/reconciliation"
)

type LedgerHandler struct {
	service *service.Service
}

func NewLedgerHandler(s *service.Service) *LedgerHandler {
	return &LedgerHandler{service: s}
}

func (h *LedgerHandler) Export(c *gin.Context) {
	format, ok := formatParam(c)
	if !ok {
		return
	}
	file, err := h.service.ExportLedger(c.Request.Context(), format)
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, file)
}

// Replace stores an operator-supplied ledger file in place of the current one.
func (h *LedgerHandler) Replace(c *gin.Context) {
	table, ok := readUpload(c, h.service)
	if !ok {
		return
	}
	n, err := h.service.ReplaceLedger(c.Request.Context(), table)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": table.Name, "entries": n})
}

func (h *LedgerHandler) Stats(c *gin.Context) {
	year := 0
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		year = y
	}
	stats, err := h.service.LedgerStats(c.Request.Context(), year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
