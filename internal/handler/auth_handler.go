package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"uniportal/internal/auth"
	"uniportal/internal/authflow"
	apperrors "uniportal/internal/errors"
	"uniportal/internal/model"
	"uniportal/internal/service"
)

// DeviceHeader carries the caller's device key for the remembered role.
const DeviceHeader = "X-Device-ID"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	flow    *authflow.Flow
	gateway service.IdentityGateway
	roles   service.RoleCache
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(flow *authflow.Flow, gateway service.IdentityGateway, roles service.RoleCache) *AuthHandler {
	return &AuthHandler{flow: flow, gateway: gateway, roles: roles}
}

// ValidateRequest asks whether a form would pass validation.
type ValidateRequest struct {
	Mode   string             `json:"mode" validate:"required,oneof=signup signin"`
	Role   string             `json:"role"`
	Fields model.SignupFields `json:"fields"`
}

// ValidateResponse reports the first failing rule, if any.
type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// FlowRequest represents a sign-up or sign-in submission.
type FlowRequest struct {
	Role string `json:"role" validate:"required,oneof=student staff"`
	model.SignupFields
}

// FlowResponse tells the caller where to land.
type FlowResponse struct {
	Role         model.Role        `json:"role"`
	Destination  model.Destination `json:"destination"`
	Resumed      bool              `json:"resumed,omitempty"`
	AccessToken  string            `json:"access_token,omitempty"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time        `json:"expires_at,omitempty"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse represents a token response.
type AuthResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// DestinationResponse carries a landing destination.
type DestinationResponse struct {
	Destination model.Destination `json:"destination"`
}

// RoleResponse carries the role remembered for a device.
type RoleResponse struct {
	Role        model.Role        `json:"role"`
	Destination model.Destination `json:"destination"`
}

// Validate godoc
// @Summary Check a sign-up or sign-in form without submitting it
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ValidateRequest true "Form data"
// @Success 200 {object} ValidateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /auth/validate [post]
func (h *AuthHandler) Validate(c echo.Context) error {
	var req ValidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, _ := model.ParseRole(req.Role)
	res := h.flow.Validator().Validate(req.Fields, role, authflow.Mode(req.Mode))
	return c.JSON(http.StatusOK, ValidateResponse{
		Valid:   res.OK(),
		Code:    res.Code,
		Field:   res.Field,
		Message: res.Message,
	})
}

// SignUp godoc
// @Summary Create an account and its profile
// @Tags auth
// @Accept json
// @Produce json
// @Param X-Device-ID header string false "Device key for the remembered role"
// @Param request body FlowRequest true "Sign-up data"
// @Success 201 {object} FlowResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	return h.run(c, authflow.ModeSignUp, http.StatusCreated)
}

// SignIn godoc
// @Summary Sign in under a role
// @Tags auth
// @Accept json
// @Produce json
// @Param X-Device-ID header string false "Device key for the remembered role"
// @Param request body FlowRequest true "Credentials and selected role"
// @Success 200 {object} FlowResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	return h.run(c, authflow.ModeSignIn, http.StatusOK)
}

func (h *AuthHandler) run(c echo.Context, mode authflow.Mode, status int) error {
	var req FlowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, _ := model.ParseRole(req.Role)
	out, err := h.flow.Run(c.Request().Context(), authflow.Request{
		Mode:   mode,
		Role:   role,
		Fields: req.SignupFields,
		Device: device(c),
	})
	if err != nil {
		return errorResponse(err)
	}

	resp := FlowResponse{
		Role:        out.Role,
		Destination: out.Destination,
		Resumed:     out.Resumed,
	}
	if out.Session != nil {
		resp.AccessToken = out.Session.AccessToken
		resp.RefreshToken = out.Session.RefreshToken
		resp.ExpiresAt = &out.Session.ExpiresAt
	}
	return c.JSON(status, resp)
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sess, err := h.gateway.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: err.Error(),
				Code:  "INVALID_REFRESH_TOKEN",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, apperrors.ErrorResponse{
			Error: "failed to refresh token",
			Code:  "REFRESH_FAILED",
		})
	}

	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
	})
}

// SignOut godoc
// @Summary Sign out the current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	if err := h.gateway.SignOut(c.Request().Context(), claims.IdentityID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, apperrors.ErrorResponse{
			Error: "failed to sign out",
			Code:  "SIGNOUT_FAILED",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "signed out successfully",
	})
}

// Guest godoc
// @Summary Continue without an account
// @Tags auth
// @Produce json
// @Success 200 {object} DestinationResponse
// @Router /auth/guest [get]
func (h *AuthHandler) Guest(c echo.Context) error {
	return c.JSON(http.StatusOK, DestinationResponse{Destination: model.DestinationChooseRole})
}

// LastRole godoc
// @Summary Role last used on this device
// @Tags auth
// @Produce json
// @Param X-Device-ID header string false "Device key"
// @Success 200 {object} RoleResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /auth/role [get]
func (h *AuthHandler) LastRole(c echo.Context) error {
	role, err := h.roles.Role(c.Request().Context(), device(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, apperrors.ErrorResponse{
			Error: "role cache unavailable",
			Code:  "ROLE_CACHE_UNAVAILABLE",
		})
	}
	if !role.Valid() {
		return echo.NewHTTPError(http.StatusNotFound, apperrors.ErrorResponse{
			Error: "no role remembered for this device",
			Code:  "ROLE_NOT_CACHED",
		})
	}
	return c.JSON(http.StatusOK, RoleResponse{Role: role, Destination: role.Destination()})
}

func device(c echo.Context) string {
	if d := strings.TrimSpace(c.Request().Header.Get(DeviceHeader)); d != "" {
		return d
	}
	return service.DefaultDevice
}

func currentClaims(c echo.Context) (*auth.Claims, error) {
	claims, ok := c.Get(auth.ContextKey).(*auth.Claims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: "invalid token",
			Code:  "INVALID_TOKEN",
		})
	}
	return claims, nil
}

func errorResponse(err error) *echo.HTTPError {
	he := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}
