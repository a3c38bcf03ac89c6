package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/stwalsh4118/devrights/internal/errors"
	"github.com/stwalsh4118/devrights/internal/export"
	"github.com/stwalsh4118/devrights/internal/middleware"
	"github.com/stwalsh4118/devrights/internal/models"
	"github.com/stwalsh4118/devrights/internal/reconcile"
	"github.com/stwalsh4118/devrights/internal/services"
)

// Output formats for the reconcile endpoint.
const (
	FormatJSON    = "json"
	FormatCSV     = "csv"
	FormatGeoJSON = "geojson"
)

// TransferHandler handles development-right transfer reconciliation requests.
type TransferHandler struct {
	service services.TransferService
}

// NewTransferHandler creates a new TransferHandler instance.
func NewTransferHandler(service services.TransferService) *TransferHandler {
	RegisterValidations()
	return &TransferHandler{
		service: service,
	}
}

// ReconcileRequest is the body of POST /api/v1/transfers/reconcile.
type ReconcileRequest struct {
	Parcels      []models.Parcel        `json:"parcels" binding:"dive"`
	History      []models.ParcelHistory `json:"history" binding:"dive"`
	Transactions []models.Transaction   `json:"transactions" binding:"required,min=1,dive"`
	Where        string                 `json:"where" binding:"max=2048"`
}

// ReconcileQuery selects the response format.
type ReconcileQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=json csv geojson"`
}

// ReconcileResponse is the JSON response of the reconcile endpoint.
// Rows are keyed by output column name.
type ReconcileResponse struct {
	RunID   string            `json:"run_id"`
	Summary reconcile.Summary `json:"summary"`
	Rows    []map[string]any  `json:"rows"`
	Count   int               `json:"count"`
}

// RefreshResponse is the response of the refresh endpoint.
type RefreshResponse struct {
	RunID      string            `json:"run_id"`
	Summary    reconcile.Summary `json:"summary"`
	Stored     int64             `json:"stored"`
	DurationMS int64             `json:"duration_ms"`
}

// Reconcile handles POST /api/v1/transfers/reconcile.
// It enriches the uploaded tables and returns the rows as JSON, CSV or
// GeoJSON depending on the format query parameter.
func (h *TransferHandler) Reconcile(c *gin.Context) {
	var query ReconcileQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err, "Invalid query parameters")
		return
	}

	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Processing reconcile request", map[string]interface{}{
			"parcels":      len(req.Parcels),
			"history":      len(req.History),
			"transactions": len(req.Transactions),
			"where":        req.Where,
			"format":       query.Format,
		})
	}

	result, err := h.service.Reconcile(c.Request.Context(), services.Tables{
		Parcels:      req.Parcels,
		History:      req.History,
		Transactions: req.Transactions,
	}, req.Where)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoTransactions):
			apierrors.BadRequest(c, err.Error(), nil)
		case errors.Is(err, services.ErrInvalidFilter):
			apierrors.BadRequest(c, "Invalid row filter", map[string]interface{}{"where": err.Error()})
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			apierrors.Timeout(c, "Reconciliation did not finish")
		default:
			apierrors.InternalServerError(c, "Failed to reconcile transactions", err)
		}
		return
	}

	c.Header(middleware.RunIDHeader, result.RunID)

	switch query.Format {
	case FormatCSV:
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)
		if err := export.WriteCSV(c.Writer, result.Transactions); err != nil {
			_ = c.Error(err)
		}
	case FormatGeoJSON:
		c.Header("Content-Type", "application/geo+json")
		c.Status(http.StatusOK)
		if err := export.WriteGeoJSON(c.Writer, result.Transactions); err != nil {
			_ = c.Error(err)
		}
	default:
		rows := make([]map[string]any, 0, len(result.Transactions))
		for i := range result.Transactions {
			rows = append(rows, export.Record(&result.Transactions[i]))
		}
		c.JSON(http.StatusOK, ReconcileResponse{
			RunID:   result.RunID,
			Summary: result.Summary,
			Rows:    rows,
			Count:   len(rows),
		})
	}
}

// Refresh handles POST /api/v1/transfers/refresh.
// It reconciles the database tables and replaces the stored enriched table.
func (h *TransferHandler) Refresh(c *gin.Context) {
	result, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoTransactions):
			apierrors.NotFound(c, "No transactions stored in the database")
		case errors.Is(err, services.ErrStoreUnavailable):
			apierrors.DatabaseUnavailable(c, "Database is not reachable", err)
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			apierrors.Timeout(c, "Refresh did not finish")
		default:
			apierrors.InternalServerError(c, "Failed to refresh enriched transactions", err)
		}
		return
	}

	c.Header(middleware.RunIDHeader, result.RunID)
	c.JSON(http.StatusOK, RefreshResponse{
		RunID:      result.RunID,
		Summary:    result.Summary,
		Stored:     result.Stored,
		DurationMS: result.Duration.Milliseconds(),
	})
}

// bindError maps a gin binding failure to the error envelope.
func bindError(c *gin.Context, err error, message string) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		apierrors.ValidationError(c, validationErrors)
		return
	}
	apierrors.BadRequest(c, message, map[string]interface{}{"error": err.Error()})
}
