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

// BorrowerHandler handles borrower-related HTTP requests
type BorrowerHandler struct {
	borrowerService *service.BorrowerService
}

// NewBorrowerHandler creates a new BorrowerHandler
func NewBorrowerHandler(borrowerService *service.BorrowerService) *BorrowerHandler {
	return &BorrowerHandler{borrowerService: borrowerService}
}

// CreateBorrowerRequest represents the create borrower request body
type CreateBorrowerRequest struct {
	OrganizationID string  `json:"organizationId"`
	BranchID       *string `json:"branchId,omitempty"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Phone          string  `json:"phone"`
}

// CreateBorrower handles POST /api/v1/borrowers
func (h *BorrowerHandler) CreateBorrower(c echo.Context) error {
	var req CreateBorrowerRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return NewValidationError(c, "Invalid organization ID", []ValidationError{
			{Field: "organizationId", Message: "must be a valid UUID"},
		})
	}

	borrower := &domain.Borrower{
		OrganizationID: orgID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
	}
	if req.BranchID != nil {
		if id, err := uuid.Parse(*req.BranchID); err == nil {
			borrower.BranchID = &id
		}
	}

	created, err := h.borrowerService.CreateBorrower(borrower)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBorrowerNameEmpty),
			errors.Is(err, domain.ErrBorrowerPhoneEmpty),
			errors.Is(err, domain.ErrBorrowerPhoneInvalid):
			return NewValidationError(c, err.Error(), nil)
		default:
			log.Error().Err(err).Msg("Failed to create borrower")
			return NewInternalError(c, "Failed to create borrower")
		}
	}

	return c.JSON(http.StatusCreated, created)
}

// GetBorrower handles GET /api/v1/borrowers/:id
func (h *BorrowerHandler) GetBorrower(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid borrower ID", nil)
	}

	borrower, err := h.borrowerService.GetBorrower(id)
	if err != nil {
		if errors.Is(err, domain.ErrBorrowerNotFound) {
			return NewNotFoundError(c, "Borrower not found")
		}
		log.Error().Err(err).Str("borrower_id", id.String()).Msg("Failed to get borrower")
		return NewInternalError(c, "Failed to get borrower")
	}

	return c.JSON(http.StatusOK, borrower)
}

// GetBorrowers handles GET /api/v1/borrowers?organizationId=...
func (h *BorrowerHandler) GetBorrowers(c echo.Context) error {
	orgID, err := uuid.Parse(c.QueryParam("organizationId"))
	if err != nil {
		return NewValidationError(c, "organizationId query parameter is required", nil)
	}

	borrowers, err := h.borrowerService.GetBorrowers(orgID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list borrowers")
		return NewInternalError(c, "Failed to list borrowers")
	}

	return c.JSON(http.StatusOK, borrowers)
}
