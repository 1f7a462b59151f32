package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/learniq-api/internal/infrastructure/auth"
	"github.com/pot-code/learniq-api/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// ValidateTokenOption ...
type ValidateTokenOption struct {
	InBlackList func(token string) (bool, error)
}

// VerifyToken validate JWT, the claims are stored in echo context and the user id is bound
// to the request logger
func VerifyToken(ju *auth.JWTUtil, options ...*ValidateTokenOption) echo.MiddlewareFunc {
	inBlacklist := func(string) (bool, error) { return false, nil }
	if len(options) > 0 && options[0].InBlackList != nil {
		inBlacklist = options[0].InBlackList
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr, err := ju.ExtractToken(c)
			if err != nil {
				return c.NoContent(http.StatusUnauthorized)
			}

			if ok, err := inBlacklist(tokenStr); err != nil {
				return err
			} else if ok {
				return c.NoContent(http.StatusUnauthorized)
			}

			token, err := ju.Validate(tokenStr)
			if err != nil {
				return c.NoContent(http.StatusUnauthorized)
			}
			ju.SetContextToken(c, token)

			r := c.Request()
			logger := logging.ExtractLoggerFromContext(r.Context()).With(zap.String("user.id", token.UserID()))
			c.SetRequest(r.WithContext(logging.SetLoggerInContext(r.Context(), logger)))
			return next(c)
		}
	}
}
