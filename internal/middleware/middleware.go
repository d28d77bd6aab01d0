package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LoopbackOnly rejects requests that do not come from the local machine.
// The bridge is a stand-in for the in-page script, not a remote API.
func LoopbackOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			host, _, err := net.SplitHostPort(c.Request().RemoteAddr)
			if err != nil {
				host = c.Request().RemoteAddr
			}

			ip := net.ParseIP(host)
			if ip == nil || !ip.IsLoopback() {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Local access only"})
			}

			return next(c)
		}
	}
}

// RequestLogger logs HTTP requests using zap
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			res := c.Response()

			err := next(c)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", res.Status),
				zap.Int64("bytes_out", res.Size),
				zap.Duration("duration", time.Since(start)),
			}

			if reqID := res.Header().Get(echo.HeaderXRequestID); reqID != "" {
				fields = append(fields, zap.String("request_id", reqID))
			}

			// Errors at error level, client errors at warn, the rest at debug
			// since the editor polls.
			switch {
			case err != nil:
				fields = append(fields, zap.Error(err))
				logger.Error("Request failed", fields...)
			case res.Status >= 500:
				logger.Error("Server error", fields...)
			case res.Status >= 400:
				logger.Warn("Client error", fields...)
			default:
				logger.Debug("Request completed", fields...)
			}

			return err
		}
	}
}
