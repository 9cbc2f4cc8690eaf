package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ineedllc/ineed-api/config"
	"github.com/ineedllc/ineed-api/internal/application"
	"github.com/ineedllc/ineed-api/internal/interface/middleware"
	"github.com/ineedllc/ineed-api/internal/testutil"
	"github.com/ineedllc/ineed-api/pkg/helpers"
	"github.com/ineedllc/ineed-api/pkg/validation"
)

type authAPI struct {
	Router *gin.Engine
	Mail   *testutil.MailRecorder
	Clock  *testutil.FixedClock
}

func newAuthAPI() *authAPI {
	gin.SetMode(gin.TestMode)
	validation.Init()

	clock := testutil.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := helpers.NewLogger("test", "test")
	policy := config.OTPPolicy{
		TTL:            10 * time.Minute,
		MaxAttempts:    5,
		ResendCooldown: 30 * time.Second,
		HourlyCap:      5,
		ResetTokenTTL:  15 * time.Minute,
	}
	mail := &testutil.MailRecorder{}
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	otpSvc := application.NewOTPService(testutil.NewOTPRepo(), clock, policy, logger)
	tokenSvc := application.NewTokenService(jwt, testutil.NewTokenLedger(), clock, policy, logger)
	svc := application.NewAuthService(testutil.NewUserRepo(), testutil.NewResetRepo(),
		otpSvc, tokenSvc, mail, clock, policy, logger, "ineed")
	h := NewAuthHandler(svc, logger)

	r := gin.New()
	r.POST("/signup", h.Signup)
	r.POST("/verify-email", h.VerifyEmail)
	r.POST("/login", h.Login)
	r.POST("/forgot-password", h.ForgotPassword)
	r.POST("/verify-reset-otp", h.VerifyResetOTP)
	r.POST("/reset-password", middleware.AuthScope(jwt, helpers.ScopePasswordReset), h.ResetPassword)
	r.POST("/refresh-token", h.Refresh)
	r.POST("/logout", middleware.Auth(jwt), h.Logout)

	return &authAPI{Router: r, Mail: mail, Clock: clock}
}

func (a *authAPI) post(path string, body map[string]any, token string) (*httptest.ResponseRecorder, map[string]any) {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var envelope map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &envelope)
	return w, envelope
}

func signupBody() map[string]any {
	return map[string]any{
		"full_name":        "Alice",
		"email_address":    "alice@example.com",
		"user_role":        "user",
		"password":         "secret1",
		"confirm_password": "secret1",
	}
}

func TestSignupEndpoint(t *testing.T) {
	api := newAuthAPI()

	w, env := api.post("/signup", signupBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, true, env["success"])
	data := env["data"].(map[string]any)
	assert.Equal(t, "alice@example.com", data["email_address"])
	assert.Equal(t, "user", data["user_role"])
	assert.NotEmpty(t, data["otp_expires_at"])
	require.Len(t, api.Mail.Jobs, 1)
}

func TestSignupValidation(t *testing.T) {
	api := newAuthAPI()

	body := signupBody()
	body["confirm_password"] = "different"
	w, env := api.post("/signup", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, env["success"])

	body = signupBody()
	body["user_role"] = "admin" // not a signup role
	w, _ = api.post("/signup", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = signupBody()
	body["email_address"] = "not-an-email"
	w, _ = api.post("/signup", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupDuplicateEndpoint(t *testing.T) {
	api := newAuthAPI()

	w, _ := api.post("/signup", signupBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := api.post("/signup", signupBody(), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email_already_exists", env["message"])
}

func TestVerifyAndLoginEndpoints(t *testing.T) {
	api := newAuthAPI()

	w, _ := api.post("/signup", signupBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := api.post("/verify-email", map[string]any{
		"email_address": "alice@example.com",
		"otp_code":      api.Mail.LastCode(),
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := env["data"].(map[string]any)
	tokens := data["tokens"].(map[string]any)
	assert.NotEmpty(t, tokens["access"])
	assert.NotEmpty(t, tokens["refresh"])
	user := data["user"].(map[string]any)
	assert.Equal(t, true, user["is_email_verified"])

	w, env = api.post("/login", map[string]any{
		"email_address": "alice@example.com",
		"password":      "secret1",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "login_successful", env["message"])

	w, env = api.post("/login", map[string]any{
		"email_address": "alice@example.com",
		"password":      "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", env["message"])
}

func TestVerifyEmailBadCodeShape(t *testing.T) {
	api := newAuthAPI()

	w, _ := api.post("/verify-email", map[string]any{
		"email_address": "alice@example.com",
		"otp_code":      "12345", // must be 6 digits
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPasswordResetEndpoints(t *testing.T) {
	api := newAuthAPI()

	w, _ := api.post("/signup", signupBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = api.post("/verify-email", map[string]any{
		"email_address": "alice@example.com",
		"otp_code":      api.Mail.LastCode(),
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = api.post("/forgot-password", map[string]any{"email_address": "alice@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, env := api.post("/verify-reset-otp", map[string]any{
		"email_address": "alice@example.com",
		"otp_code":      api.Mail.LastCode(),
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := env["data"].(map[string]any)
	resetToken := data["accessToken"].(string)
	require.NotEmpty(t, resetToken)

	// the reset token opens reset-password and nothing else
	w, env = api.post("/reset-password", map[string]any{
		"new_password":     "newsecret",
		"confirm_password": "newsecret",
	}, resetToken)
	require.Equal(t, http.StatusOK, w.Code)
	data = env["data"].(map[string]any)
	assert.NotEmpty(t, data["accessToken"])

	// reuse of the consumed capability fails
	w, env = api.post("/reset-password", map[string]any{
		"new_password":     "another1",
		"confirm_password": "another1",
	}, resetToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_error", env["message"])

	w, _ = api.post("/login", map[string]any{
		"email_address": "alice@example.com",
		"password":      "newsecret",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshAndLogoutEndpoints(t *testing.T) {
	api := newAuthAPI()

	w, _ := api.post("/signup", signupBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)
	w, env := api.post("/verify-email", map[string]any{
		"email_address": "alice@example.com",
		"otp_code":      api.Mail.LastCode(),
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	data := env["data"].(map[string]any)
	tokens := data["tokens"].(map[string]any)
	access := tokens["access"].(string)
	refresh := tokens["refresh"].(string)

	w, env = api.post("/refresh-token", map[string]any{"refresh": refresh}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, env["data"].(map[string]any)["access"])

	w, _ = api.post("/logout", nil, access)
	require.Equal(t, http.StatusOK, w.Code)

	// logout blacklists the refresh token
	w, env = api.post("/refresh-token", map[string]any{"refresh": refresh}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_error", env["message"])
}
