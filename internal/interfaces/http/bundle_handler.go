package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/learniq-api/internal/bundle"
	"github.com/pot-code/learniq-api/internal/infrastructure/auth"
)

type BundleHandler struct {
	bundleUseCase bundle.BundleUseCase
	jwtUtil       *auth.JWTUtil
}

func NewBundleHandler(BundleUseCase bundle.BundleUseCase, JWTUtil *auth.JWTUtil) *BundleHandler {
	return &BundleHandler{BundleUseCase, JWTUtil}
}

// bundleEnvelope null bundle is an empty state, not an error
type bundleEnvelope struct {
	Bundle interface{} `json:"bundle"`
}

func (bh *BundleHandler) HandleListBundles(c echo.Context) error {
	bundles, err := bh.bundleUseCase.ListBundles(c.Request().Context())
	if err != nil {
		return err
	}
	if bundles == nil {
		bundles = []*bundle.BundleModel{}
	}
	return c.JSON(http.StatusOK, bundles)
}

func (bh *BundleHandler) HandleGetBundle(c echo.Context) error {
	user := currentUser(c, bh.jwtUtil)
	detail, err := bh.bundleUseCase.GetBundleDetail(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

func (bh *BundleHandler) HandleResume(c echo.Context) error {
	user := currentUser(c, bh.jwtUtil)
	best, err := bh.bundleUseCase.Resume(c.Request().Context(), user)
	if err != nil {
		return err
	}
	if best == nil {
		return c.JSON(http.StatusOK, bundleEnvelope{})
	}
	return c.JSON(http.StatusOK, bundleEnvelope{best})
}

func (bh *BundleHandler) HandlePickup(c echo.Context) error {
	user := currentUser(c, bh.jwtUtil)
	last, err := bh.bundleUseCase.Pickup(c.Request().Context(), user)
	if err != nil {
		return err
	}
	if last == nil {
		return c.JSON(http.StatusOK, bundleEnvelope{})
	}
	return c.JSON(http.StatusOK, bundleEnvelope{last})
}
