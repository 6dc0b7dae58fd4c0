package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets response headers for a JSON API that returns patient
// data. Responses must never be cached by intermediaries.
//
// Strict-Transport-Security is only sent when hstsMaxAge is positive. The
// server listens on plain HTTP behind a TLS-terminating proxy by default.
func SecurityHeaders(hstsMaxAge int) echo.MiddlewareFunc {
	var hsts string
	if hstsMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(hstsMaxAge) + "; includeSubDomains"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cache-Control", "no-store")
			if hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			return next(c)
		}
	}
}
