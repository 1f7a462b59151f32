package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandlingOption options for error handling
type ErrorHandlingOption struct {
	Handler func(c echo.Context, err error)
	Logger  *zap.Logger
}

// ErrorHandling turn errors returned or panicked by handlers into a response
// **DO NOT return error anymore**
func ErrorHandling(options ...*ErrorHandlingOption) echo.MiddlewareFunc {
	custom := &ErrorHandlingOption{
		Handler: func(c echo.Context, err error) {
			c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		},
		Logger: zap.NewNop(),
	}
	if len(options) > 0 {
		option := options[0]
		if option.Handler != nil {
			custom.Handler = option.Handler
		}
		if option.Logger != nil {
			custom.Logger = option.Logger
		}
	}
	handler := custom.Handler
	logger := custom.Logger
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if any := recover(); any != nil {
					err, ok := any.(error)
					if !ok {
						err = fmt.Errorf("%v", any)
					}
					logger.Error(err.Error(),
						zap.String("trace.id", c.Response().Header().Get(echo.HeaderXRequestID)),
						zap.String("url.path", c.Request().RequestURI),
						zap.String("client.address", c.Request().RemoteAddr),
						zap.String("http.request.method", c.Request().Method),
						zap.Int64("http.request.body.bytes", c.Request().ContentLength),
						zap.Strings("route.params.name", c.ParamNames()),
						zap.Strings("route.params.value", c.ParamValues()),
						zap.Stack("error.stack_trace"),
					)
					if !c.Response().Committed {
						handler(c, err)
					}
				}
			}()
			if err := next(c); err != nil && !c.Response().Committed {
				handler(c, err)
			}
			return nil
		}
	}
}
