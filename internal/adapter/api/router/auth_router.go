package router

import (
	"github.com/labstack/echo/v4"

	"unimarket/internal/adapter/api/handler"
)

func SetupAuthRouter(e *echo.Echo, authHandler *handler.AuthHandler) {
	// Public routes
	e.POST("/v1/auth/signup", authHandler.SignUp)
	e.POST("/v1/auth/signin", authHandler.SignIn)
	e.POST("/v1/auth/google", authHandler.GoogleSignIn)
	e.POST("/v1/auth/reset-password", authHandler.ResetPassword)
	e.POST("/v1/auth/resend-verification", authHandler.ResendVerification)
}
