package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ineedllc/ineed-api/internal/container"
	handlers "github.com/ineedllc/ineed-api/internal/interface/http"
	"github.com/ineedllc/ineed-api/internal/interface/middleware"
	"github.com/ineedllc/ineed-api/pkg/helpers"
)

// AuthModule wires the account flows:
// Public: signup, verify-email, resend-signup-otp, login, forgot-password,
// resend-forgot-password-otp, verify-reset-otp, refresh-token.
// Reset-scoped: reset-password.
// Protected: change-password, logout.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits. These are transport-level
	// limits; OTP resend throttling is enforced in the flow layer on top.
	signupLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	otpLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/verify-email", otpLimiter, m.Handler.VerifyEmail)
	rg.POST("/resend-signup-otp", otpLimiter, m.Handler.ResendSignupOTP)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/forgot-password", otpLimiter, m.Handler.ForgotPassword)
	rg.POST("/resend-forgot-password-otp", otpLimiter, m.Handler.ResendForgotPasswordOTP)
	rg.POST("/verify-reset-otp", otpLimiter, m.Handler.VerifyResetOTP)
	rg.POST("/refresh-token", refreshLimiter, m.Handler.Refresh)

	// Reset-password accepts only the short-lived token from verify-reset-otp.
	reset := rg.Group("/")
	reset.Use(middleware.AuthScope(m.JWT, helpers.ScopePasswordReset))
	{
		reset.POST("/reset-password", m.Handler.ResetPassword)
	}

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/change-password", m.Handler.ChangePassword)
		auth.POST("/logout", m.Handler.Logout)
	}
}
