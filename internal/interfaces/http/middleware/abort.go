package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// AbortRequestOption .
type AbortRequestOption struct {
	Skipper middleware.Skipper
	Timeout time.Duration
}

// AbortRequest cancel the request context once Timeout elapsed, handlers observe it
// through c.Request().Context(). Upgraded websocket requests are never aborted
func AbortRequest(option *AbortRequestOption) echo.MiddlewareFunc {
	skipper := option.Skipper
	if skipper == nil {
		skipper = func(c echo.Context) bool {
			return c.IsWebSocket()
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if option.Timeout <= 0 || skipper(c) {
				return next(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), option.Timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
