package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// NoRouteMatched answer unknown paths and methods with a bare status
func NoRouteMatched() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if v, ok := err.(*echo.HTTPError); ok && (v.Code == http.StatusNotFound || v.Code == http.StatusMethodNotAllowed) {
				return c.NoContent(v.Code)
			}
			return err
		}
	}
}
