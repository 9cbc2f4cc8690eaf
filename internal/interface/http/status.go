package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ineedllc/ineed-api/internal/application"
	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/pkg/response"
)

// statusFor maps the application error taxonomy onto HTTP status codes. Resend
// throttling surfaces as 400 validation errors, not 429: the transport-level
// limiter owns 429.
func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrEmailAlreadyExists),
		errors.Is(err, application.ErrPasswordMismatch),
		errors.Is(err, application.ErrUserNotFound),
		errors.Is(err, application.ErrEmailAlreadyVerified),
		errors.Is(err, application.ErrOTPNotFound),
		errors.Is(err, application.ErrOTPExpired),
		errors.Is(err, application.ErrInvalidOTP),
		errors.Is(err, application.ErrTooManyAttempts),
		errors.Is(err, application.ErrResendTooSoon),
		errors.Is(err, application.ErrResendLimitExceeded):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, application.ErrAuthenticationRequired),
		errors.Is(err, application.ErrToken):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrEmailNotVerified):
		return http.StatusForbidden
	case errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrEmailDelivery):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError translates an application error into the failure envelope,
// hiding internal detail for anything outside the taxonomy.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal_error"
	}
	response.Error[any](c, status, msg, nil)
}

func userView(u *entity.User) gin.H {
	return gin.H{
		"id":                u.ID,
		"full_name":         u.FullName,
		"email_address":     u.Email,
		"user_role":         u.Role,
		"profile_image":     u.ProfileImageURL,
		"is_active":         u.IsActive,
		"is_email_verified": u.IsEmailVerified,
		"created_at":        u.CreatedAt,
		"updated_at":        u.UpdatedAt,
	}
}

func tokensView(p application.TokenPair) gin.H {
	return gin.H{
		"access":             p.AccessToken,
		"refresh":            p.RefreshToken,
		"access_expires_at":  p.AccessExpiresAt,
		"refresh_expires_at": p.RefreshExpiresAt,
	}
}
