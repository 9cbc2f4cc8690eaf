package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ineedllc/ineed-api/internal/application"
	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/internal/interface/middleware"
	"github.com/ineedllc/ineed-api/pkg/response"
	"github.com/ineedllc/ineed-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type signupRequest struct {
	FullName        string `json:"full_name" binding:"required"`
	Email           string `json:"email_address" binding:"required,email"`
	UserRole        string `json:"user_role" binding:"required,oneof=user provider"`
	Password        string `json:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

type emailRequest struct {
	Email string `json:"email_address" binding:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email_address" binding:"required,email"`
	Code  string `json:"otp_code" binding:"required,otp"`
}

type loginRequest struct {
	Email    string `json:"email_address" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type newPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Role:            entity.Role(req.UserRole),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"email_address":  res.Email,
		"user_role":      res.Role,
		"otp_expires_at": res.OTPExpiresAt,
	}, "signup_successful", nil)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.VerifyEmail(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":   userView(res.User),
		"tokens": tokensView(res.Tokens),
	}, "email_verified", nil)
}

func (h *AuthHandler) ResendSignupOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.ResendSignupOTP(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"email_address":  res.Email,
		"otp_expires_at": res.OTPExpiresAt,
	}, "otp_sent", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":   userView(res.User),
		"tokens": tokensView(res.Tokens),
	}, "login_successful", nil)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"email_address":  res.Email,
		"otp_expires_at": res.OTPExpiresAt,
	}, "otp_sent", nil)
}

func (h *AuthHandler) ResendForgotPasswordOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.ResendForgotPasswordOTP(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"email_address":  res.Email,
		"otp_expires_at": res.OTPExpiresAt,
	}, "otp_sent", nil)
}

func (h *AuthHandler) VerifyResetOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.VerifyResetOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
		"user":         userView(res.User),
	}, "otp_verified", nil)
}

// ResetPassword runs behind the reset-scoped Auth middleware: the bearer token
// is the one minted by VerifyResetOTP and is consumed here.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req newPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	token := c.GetString(middleware.CtxAccessTokenKey)
	res, err := h.Svc.ResetPassword(c.Request.Context(), uid, token, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
		"user":         userView(res.User),
	}, "password_reset_successful", nil)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req newPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	res, err := h.Svc.ChangePassword(c.Request.Context(), uid, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
		"user":         userView(res.User),
	}, "password_changed", nil)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Logout(c.Request.Context(), uid); err != nil {
		writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"message": "logged_out"}, "logged_out", nil)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	access, expiresAt, err := h.Svc.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"access": access},
		"token_refreshed", gin.H{"access_expires_at": expiresAt})
}
