package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/stwalsh4118/devrights/internal/errors"
	"github.com/stwalsh4118/devrights/internal/middleware"
	"github.com/stwalsh4118/devrights/internal/services"
)

// ParcelHandler handles parcel-related HTTP requests.
type ParcelHandler struct {
	service services.ParcelService
}

// NewParcelHandler creates a new ParcelHandler instance.
func NewParcelHandler(service services.ParcelService) *ParcelHandler {
	RegisterValidations()
	return &ParcelHandler{
		service: service,
	}
}

// SuccessorsResponse is the body of the successors endpoint.
type SuccessorsResponse struct {
	Lookup *services.SuccessorLookup `json:"lookup"`
}

// GetSuccessors handles GET /api/v1/parcels/:apn/successors.
// It reports what the parcel history says an APN became and whether each
// successor is an active parcel.
func (h *ParcelHandler) GetSuccessors(c *gin.Context) {
	apn := c.Param("apn")

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Processing successors request", map[string]interface{}{
			"apn": apn,
		})
	}

	lookup, err := h.service.GetSuccessors(c.Request.Context(), apn)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAPN):
			apierrors.BadRequest(c, err.Error(), nil)
		case errors.Is(err, services.ErrParcelNotFound):
			apierrors.NotFound(c, "APN not found in parcel master or history")
		default:
			apierrors.InternalServerError(c, "Failed to resolve parcel successors", err)
		}
		return
	}

	c.JSON(http.StatusOK, SuccessorsResponse{Lookup: lookup})
}
