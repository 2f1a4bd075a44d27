package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/tech-arch1tect/archive-inspector/internal/logging"
)

// TokenMiddleware requires "Authorization: Bearer <accessToken>". With no
// token configured the service is open and requests pass straight through.
func TokenMiddleware(accessToken string, logger *logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if accessToken == "" {
			return next
		}

		return func(c echo.Context) error {
			sourceIP := c.RealIP()

			header := c.Request().Header.Get("Authorization")
			if header == "" {
				logger.Warn("authentication failed - missing authorization header",
					zap.String("source_ip", sourceIP))
				return unauthorized(c, "Authorization header required")
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				logger.Warn("authentication failed - invalid authorization format",
					zap.String("source_ip", sourceIP))
				return unauthorized(c, "Bearer token required")
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(accessToken)) != 1 {
				logger.Warn("authentication failed - invalid token",
					zap.String("source_ip", sourceIP),
					zap.String("token_hash", HashToken(token)))
				return unauthorized(c, "Invalid token")
			}

			return next(c)
		}
	}
}

func unauthorized(c echo.Context, reason string) error {
	return c.JSON(http.StatusUnauthorized, map[string]any{
		"success": false,
		"error":   reason,
	})
}

// HashToken returns a short, non-reversible fingerprint safe to log.
func HashToken(token string) string {
	if token == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])[:16]
}
