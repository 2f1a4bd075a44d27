package logging

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	RequestIDHeader     = "X-Request-ID"
	RequestIDContextKey = "request_id"
)

// RequestLoggingMiddleware tags every request with an X-Request-ID and logs
// its outcome once the handler returns.
func RequestLoggingMiddleware(logger *Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			path := c.Request().URL.Path

			requestID := c.Request().Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
				c.Request().Header.Set(RequestIDHeader, requestID)
			}
			c.Response().Header().Set(RequestIDHeader, requestID)
			c.Set(RequestIDContextKey, requestID)

			err := next(c)

			status := c.Response().Status
			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", c.Request().Method),
				zap.String("path", path),
				zap.String("source_ip", c.RealIP()),
				zap.Int64("response_size", c.Response().Size),
				zap.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000.0),
			}

			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					if status == 0 || !c.Response().Committed {
						status = he.Code
					}
					fields = append(fields, zap.String("error", fmt.Sprintf("%v", he.Message)))
				} else {
					if !c.Response().Committed {
						status = http.StatusInternalServerError
					}
					fields = append(fields, zap.Error(err))
				}
			}
			fields = append(fields, zap.Int("status_code", status))

			if !shouldLogRequest(path) {
				return err
			}

			switch {
			case status >= 500:
				logger.Error("request completed", fields...)
			case status >= 400:
				logger.Warn("request completed", fields...)
			default:
				logger.Info("request completed", fields...)
			}

			return err
		}
	}
}

func shouldLogRequest(path string) bool {
	return path != "/health" && path != "/api/health"
}

// RequestID returns the id assigned by RequestLoggingMiddleware, if any.
func RequestID(c echo.Context) string {
	if id, ok := c.Get(RequestIDContextKey).(string); ok {
		return id
	}
	return c.Request().Header.Get(RequestIDHeader)
}
