package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"uniportal/internal/authflow"
	apperrors "uniportal/internal/errors"
	"uniportal/internal/service"
)

// ProfileHandler serves the signed-in user's profile.
type ProfileHandler struct {
	profiles service.ProfileStore
}

// NewProfileHandler creates a handler layer.
func NewProfileHandler(profiles service.ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Me godoc
// @Summary Current user's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserProfile
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	profile, err := h.profiles.Get(c.Request().Context(), claims.IdentityID)
	if err != nil {
		if errors.Is(err, authflow.ErrProfileNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, apperrors.ErrorResponse{
				Error: err.Error(),
				Code:  authflow.CodeProfileNotFound,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, apperrors.ErrorResponse{
			Error: "failed to load profile",
			Code:  authflow.CodeProfileReadFailed,
		})
	}
	return c.JSON(http.StatusOK, profile)
}
