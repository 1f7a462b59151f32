package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/learniq-api/internal/infrastructure/auth"
	"github.com/pot-code/learniq-api/internal/infrastructure/driver"
	"github.com/pot-code/learniq-api/internal/user"
)

// UserHandler identity of the current learner
type UserHandler struct {
	JWTUtil *auth.JWTUtil
	KVStore driver.KeyValueDB
}

// NewUserHandler create an user controller instance
func NewUserHandler(
	JWTUtil *auth.JWTUtil,
	KVStore driver.KeyValueDB,
) *UserHandler {
	return &UserHandler{
		JWTUtil: JWTUtil,
		KVStore: KVStore,
	}
}

// currentUser learner of a request that passed VerifyToken
func currentUser(c echo.Context, ju *auth.JWTUtil) *user.UserModel {
	claims := ju.GetContextToken(c)
	return &user.UserModel{
		ID:    claims.UserID(),
		Email: claims.Email,
	}
}

// HandleMe ...
func (uh *UserHandler) HandleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c, uh.JWTUtil))
}

// HandleSignOut revoke the current token until it expires
func (uh *UserHandler) HandleSignOut(c echo.Context) (err error) {
	ju := uh.JWTUtil
	kv := uh.KVStore

	tokenStr, err := ju.ExtractToken(c)
	if err != nil {
		return c.NoContent(http.StatusUnauthorized)
	}
	token, err := ju.Validate(tokenStr)
	if err != nil {
		return c.NoContent(http.StatusUnauthorized)
	}
	if remaining := token.TimeRemaining(); remaining > 0 {
		if err := kv.SetEX(auth.RevokedKey(tokenStr), "", remaining); err != nil {
			return err
		}
	}
	ju.ClearClientToken(c)
	return c.NoContent(http.StatusNoContent)
}
