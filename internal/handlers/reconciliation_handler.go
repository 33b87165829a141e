package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"supplier-payment-backend/internal/logger"
	"supplier-payment-backend/internal/services/normalize"
	service "supplier-payment-backend/internal/services/reconciliation"
	"supplier-payment-backend/internal/tabular"
)

type ReconciliationHandler struct {
	service *service.Service
}

func NewReconciliationHandler(s *service.Service) *ReconciliationHandler {
	return &ReconciliationHandler{service: s}
}

// Upload runs a reconciliation pass over the uploaded sales file.
func (h *ReconciliationHandler) Upload(c *gin.Context) {
	table, ok := readUpload(c, h.service)
	if !ok {
		return
	}

	req := service.PassRequest{Filename: table.Name, Table: table}
	if raw := strings.TrimSpace(c.PostForm("threshold")); raw != "" {
		threshold, err := decimal.NewFromString(raw)
		if err != nil || threshold.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold"})
			return
		}
		req.Threshold = decimal.NewNullDecimal(threshold)
	}

	view, err := h.service.RunPass(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *ReconciliationHandler) ListPasses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	passes, err := h.service.ListPasses(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": passes})
}

func (h *ReconciliationHandler) GetPass(c *gin.Context) {
	id, ok := passID(c)
	if !ok {
		return
	}
	view, err := h.service.GetPass(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DownloadFile streams one bucket of a pass as CSV or XLSX.
func (h *ReconciliationHandler) DownloadFile(c *gin.Context) {
	id, ok := passID(c)
	if !ok {
		return
	}
	format, ok := formatParam(c)
	if !ok {
		return
	}
	file, err := h.service.Download(c.Request.Context(), id, c.Param("bucket"), format)
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, file)
}

func (h *ReconciliationHandler) CommitLedger(c *gin.Context) {
	id, ok := passID(c)
	if !ok {
		return
	}
	pass, err := h.service.CommitLedger(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ledger committed", "pass": pass})
}

func readUpload(c *gin.Context, s *service.Service) (tabular.Table, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return tabular.Table{}, false
	}
	defer file.Close()

	log := logger.FromContext(c.Request.Context())
	log.Info().
		Str("file", header.Filename).
		Int64("size", header.Size).
		Msg("received upload")

	table, err := s.ReadTable(header.Filename, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return tabular.Table{}, false
	}
	return table, true
}

func passID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("passId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pass ID"})
		return uuid.Nil, false
	}
	return id, true
}

func formatParam(c *gin.Context) (string, bool) {
	format := strings.ToLower(c.DefaultQuery("format", tabular.FormatCSV))
	if format != tabular.FormatCSV && format != tabular.FormatXLSX {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return "", false
	}
	return format, true
}

func sendFile(c *gin.Context, file *service.File) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// respondError maps service errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var serr *normalize.StructuralError
	switch {
	case errors.As(err, &serr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": serr.Error(), "missing": serr.Missing})
	case errors.Is(err, service.ErrPassInFlight),
		errors.Is(err, service.ErrLedgerChanged),
		errors.Is(err, service.ErrPassCommitted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPassNotFound), errors.Is(err, service.ErrUnknownBucket):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log := logger.FromContext(c.Request.Context())
		log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
