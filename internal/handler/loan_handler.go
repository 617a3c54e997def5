package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/kopahq/kopa-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LoanHandler handles loan-related HTTP requests
type LoanHandler struct {
	loanService     *service.LoanService
	scheduleService *service.ScheduleService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService *service.LoanService, scheduleService *service.ScheduleService) *LoanHandler {
	return &LoanHandler{
		loanService:     loanService,
		scheduleService: scheduleService,
	}
}

// CreateLoanRequest represents the create loan request body. Amounts arrive
// as strings to keep cent precision through JSON.
type CreateLoanRequest struct {
	OrganizationID string  `json:"organizationId"`
	BorrowerID     string  `json:"borrowerId"`
	ProductID      string  `json:"productId"`
	BranchID       *string `json:"branchId,omitempty"`
	OfficerID      *string `json:"officerId,omitempty"`
	Principal      string  `json:"principal"`
	TotalPayable   string  `json:"totalPayable"`
	Duration       int32   `json:"duration"`
	RepaymentCycle string  `json:"repaymentCycle"`
}

// CreateLoan handles POST /api/v1/loans
func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req CreateLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var validationErrors []ValidationError

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		validationErrors = append(validationErrors, ValidationError{Field: "organizationId", Message: "must be a valid UUID"})
	}
	borrowerID, err := uuid.Parse(req.BorrowerID)
	if err != nil {
		validationErrors = append(validationErrors, ValidationError{Field: "borrowerId", Message: "must be a valid UUID"})
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		validationErrors = append(validationErrors, ValidationError{Field: "productId", Message: "must be a valid UUID"})
	}
	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		validationErrors = append(validationErrors, ValidationError{Field: "principal", Message: "must be a valid amount"})
	}
	totalPayable, err := decimal.NewFromString(req.TotalPayable)
	if err != nil {
		validationErrors = append(validationErrors, ValidationError{Field: "totalPayable", Message: "must be a valid amount"})
	}
	if len(validationErrors) > 0 {
		return NewValidationError(c, "Invalid loan data", validationErrors)
	}

	loan := &domain.Loan{
		OrganizationID: orgID,
		BorrowerID:     borrowerID,
		ProductID:      productID,
		Principal:      principal,
		TotalPayable:   totalPayable,
		Duration:       req.Duration,
		RepaymentCycle: domain.RepaymentCycle(req.RepaymentCycle),
	}
	if req.BranchID != nil {
		if id, err := uuid.Parse(*req.BranchID); err == nil {
			loan.BranchID = &id
		}
	}
	if req.OfficerID != nil {
		if id, err := uuid.Parse(*req.OfficerID); err == nil {
			loan.OfficerID = &id
		}
	}

	created, err := h.loanService.CreateLoan(loan)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBorrowerNotFound):
			return NewNotFoundError(c, "Borrower not found")
		case errors.Is(err, domain.ErrLoanPrincipalInvalid),
			errors.Is(err, domain.ErrLoanTotalPayableInvalid),
			errors.Is(err, domain.ErrLoanDurationInvalid),
			errors.Is(err, domain.ErrLoanCycleInvalid):
			return NewValidationError(c, err.Error(), nil)
		default:
			log.Error().Err(err).Msg("Failed to create loan")
			return NewInternalError(c, "Failed to create loan")
		}
	}

	return c.JSON(http.StatusCreated, created)
}

// GetLoan handles GET /api/v1/loans/:id
func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	detail, err := h.loanService.GetLoan(id)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		log.Error().Err(err).Str("loan_id", id.String()).Msg("Failed to get loan")
		return NewInternalError(c, "Failed to get loan")
	}

	return c.JSON(http.StatusOK, detail)
}

// GetLoans handles GET /api/v1/loans?organizationId=...&status=...
func (h *LoanHandler) GetLoans(c echo.Context) error {
	orgID, err := uuid.Parse(c.QueryParam("organizationId"))
	if err != nil {
		return NewValidationError(c, "organizationId query parameter is required", nil)
	}

	var status *domain.LoanStatus
	if s := c.QueryParam("status"); s != "" {
		ls := domain.LoanStatus(s)
		status = &ls
	}

	loans, err := h.loanService.GetLoans(orgID, status)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list loans")
		return NewInternalError(c, "Failed to list loans")
	}

	return c.JSON(http.StatusOK, loans)
}

// ApproveLoan handles POST /api/v1/loans/:id/approve
func (h *LoanHandler) ApproveLoan(c echo.Context) error {
	return h.transition(c, h.loanService.Approve)
}

// RejectLoan handles POST /api/v1/loans/:id/reject
func (h *LoanHandler) RejectLoan(c echo.Context) error {
	return h.transition(c, h.loanService.Reject)
}

func (h *LoanHandler) transition(c echo.Context, fn func(uuid.UUID) (*domain.Loan, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	loan, err := fn(id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return NewNotFoundError(c, "Loan not found")
		case errors.Is(err, domain.ErrLoanStatusTransition):
			return NewConflictError(c, "Loan status does not allow this transition")
		default:
			log.Error().Err(err).Str("loan_id", id.String()).Msg("Failed to update loan status")
			return NewInternalError(c, "Failed to update loan status")
		}
	}

	return c.JSON(http.StatusOK, loan)
}

// DisburseLoan handles POST /api/v1/loans/:id/disburse
func (h *LoanHandler) DisburseLoan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	loan, err := h.scheduleService.Disburse(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return NewNotFoundError(c, "Loan not found")
		case errors.Is(err, domain.ErrLoanNotDisbursable):
			return NewConflictError(c, "Loan must be approved before disbursement")
		case errors.Is(err, domain.ErrScheduleExists):
			return NewConflictError(c, "Loan already has an installment schedule")
		default:
			log.Error().Err(err).Str("loan_id", id.String()).Msg("Failed to disburse loan")
			return NewInternalError(c, "Failed to disburse loan")
		}
	}

	return c.JSON(http.StatusOK, loan)
}

// GetRepayments handles GET /api/v1/loans/:id/repayments
func (h *LoanHandler) GetRepayments(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	repayments, err := h.loanService.GetRepayments(id)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		log.Error().Err(err).Str("loan_id", id.String()).Msg("Failed to list repayments")
		return NewInternalError(c, "Failed to list repayments")
	}

	return c.JSON(http.StatusOK, repayments)
}
