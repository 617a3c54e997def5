package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/kopahq/kopa-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// UnmatchedHandler exposes the reconciliation holding area over HTTP
type UnmatchedHandler struct {
	unmatchedService *service.UnmatchedService
}

// NewUnmatchedHandler creates a new UnmatchedHandler
func NewUnmatchedHandler(unmatchedService *service.UnmatchedService) *UnmatchedHandler {
	return &UnmatchedHandler{unmatchedService: unmatchedService}
}

// GetPending handles GET /api/v1/unmatched-payments
func (h *UnmatchedHandler) GetPending(c echo.Context) error {
	records, err := h.unmatchedService.GetPending()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list unmatched payments")
		return NewInternalError(c, "Failed to list unmatched payments")
	}

	return c.JSON(http.StatusOK, records)
}

// Resolve handles POST /api/v1/unmatched-payments/:id/resolve
func (h *UnmatchedHandler) Resolve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid unmatched payment ID", nil)
	}

	record, err := h.unmatchedService.Resolve(id)
	if err != nil {
		if errors.Is(err, domain.ErrUnmatchedNotFound) {
			return NewNotFoundError(c, "Unmatched payment not found")
		}
		log.Error().Err(err).Str("unmatched_id", id.String()).Msg("Failed to resolve unmatched payment")
		return NewInternalError(c, "Failed to resolve unmatched payment")
	}

	return c.JSON(http.StatusOK, record)
}
