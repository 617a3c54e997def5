package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/kopahq/kopa-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// GatewayAck is the acknowledgment body the mobile-money gateway expects.
// ResultCode 0 accepts the delivery; anything else tells the gateway the
// payload itself was bad.
type GatewayAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// CallbackHandler handles the mobile-money C2B confirmation webhook
type CallbackHandler struct {
	callbackService *service.CallbackService
}

// NewCallbackHandler creates a new CallbackHandler
func NewCallbackHandler(callbackService *service.CallbackService) *CallbackHandler {
	return &CallbackHandler{callbackService: callbackService}
}

// HandleCallback handles POST /api/v1/payments/callback.
//
// The gateway is acknowledged with 200 on every outcome except a payload that
// fails schema validation: duplicates, unmatched payments and allocation
// failures are all internal concerns the gateway must not retry over. Only a
// missing TransID or an unparseable amount earns a 400, and even then the raw
// payload has already been archived.
func (h *CallbackHandler) HandleCallback(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read callback body")
		return c.JSON(http.StatusBadRequest, GatewayAck{ResultCode: 1, ResultDesc: "Invalid data"})
	}

	var req domain.CallbackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.callbackService.ArchiveRaw(c.Request().Context(), nil, body)
		log.Warn().Err(err).Msg("Callback body is not valid JSON")
		return c.JSON(http.StatusBadRequest, GatewayAck{ResultCode: 1, ResultDesc: "Invalid data"})
	}

	event, err := req.Validate(time.Now())
	if err != nil {
		h.callbackService.ArchiveRaw(c.Request().Context(), nil, body)
		log.Warn().Err(err).Str("trans_id", req.TransID).Msg("Callback failed validation")
		return c.JSON(http.StatusBadRequest, GatewayAck{ResultCode: 1, ResultDesc: "Invalid data"})
	}

	h.callbackService.ArchiveRaw(c.Request().Context(), event, body)

	outcome, err := h.callbackService.Process(c.Request().Context(), event, body)
	if err != nil {
		// Infrastructure failure. The gateway still gets its acknowledgment;
		// the transaction id makes a redelivery safe either way.
		log.Error().Err(err).Str("trans_id", event.TransID).Msg("Callback processing failed")
		return c.JSON(http.StatusOK, GatewayAck{ResultCode: 0, ResultDesc: "Accepted"})
	}

	log.Info().
		Str("trans_id", event.TransID).
		Str("outcome", string(outcome)).
		Str("amount", event.Amount.String()).
		Msg("Callback processed")

	return c.JSON(http.StatusOK, GatewayAck{ResultCode: 0, ResultDesc: "Accepted"})
}
