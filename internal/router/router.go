package router

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"uniportal/internal/auth"
	"uniportal/internal/handler"
	"uniportal/internal/service"
)

// Dependencies are the handlers and services the routes are built from.
type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	ProfileHandler *handler.ProfileHandler
	JWTService     *auth.JWTService
	Gateway        service.IdentityGateway
	Metrics        http.Handler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, deps Dependencies) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	if deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(deps.Metrics))
	}

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/validate", deps.AuthHandler.Validate)
	api.POST("/auth/signup", deps.AuthHandler.SignUp)
	api.POST("/auth/signin", deps.AuthHandler.SignIn)
	api.POST("/auth/refresh", deps.AuthHandler.Refresh)
	api.GET("/auth/guest", deps.AuthHandler.Guest)
	api.GET("/auth/role", deps.AuthHandler.LastRole)

	// Secured routes (require a live access token)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ContextKey:     auth.ContextKey,
		TokenLookup:    "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: accessTokenParser(deps.JWTService, deps.Gateway),
	}))

	secured.POST("/auth/signout", deps.AuthHandler.SignOut)
	secured.GET("/me", deps.ProfileHandler.Me)
}

// errTokenRevoked is returned for tokens invalidated by sign-out or refresh.
var errTokenRevoked = errors.New("token has been revoked")

func accessTokenParser(jwtService *auth.JWTService, gateway service.IdentityGateway) func(echo.Context, string) (interface{}, error) {
	return func(c echo.Context, token string) (interface{}, error) {
		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		revoked, err := gateway.IsRevoked(c.Request().Context(), claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, errTokenRevoked
		}
		return claims, nil
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
