package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// APIKeyHeader is the header staff clients present their key in
const APIKeyHeader = "X-API-Key"

// APIKeyMiddleware guards the staff API with a single shared key. The
// comparison is constant time so the key cannot be probed byte by byte.
type APIKeyMiddleware struct {
	key string
}

// NewAPIKeyMiddleware creates a new APIKeyMiddleware
func NewAPIKeyMiddleware(key string) *APIKeyMiddleware {
	return &APIKeyMiddleware{key: key}
}

// Authenticate returns an Echo middleware that validates the staff API key
func (m *APIKeyMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			presented := c.Request().Header.Get(APIKeyHeader)
			if presented == "" {
				return unauthorizedError(c, "Missing API key")
			}
			if subtle.ConstantTimeCompare([]byte(presented), []byte(m.key)) != 1 {
				log.Debug().Str("path", c.Request().URL.Path).Msg("Rejected request with invalid API key")
				return unauthorizedError(c, "Invalid API key")
			}
			return next(c)
		}
	}
}

func unauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, map[string]interface{}{
		"type":     "https://kopa.app/errors/unauthorized",
		"title":    "Unauthorized",
		"status":   http.StatusUnauthorized,
		"detail":   detail,
		"instance": c.Request().URL.Path,
	})
}
