package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ineedllc/ineed-api/internal/application"
	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/internal/testutil"
	"github.com/ineedllc/ineed-api/pkg/helpers"
)

type authHarness struct {
	Svc    *application.AuthService
	Users  *testutil.UserRepo
	OTPs   *testutil.OTPRepo
	Ledger *testutil.TokenLedger
	Mail   *testutil.MailRecorder
	Clock  *testutil.FixedClock
}

func newAuthHarness() *authHarness {
	clock := testutil.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := helpers.NewLogger("test", "test")
	policy := testPolicy()

	users := testutil.NewUserRepo()
	otps := testutil.NewOTPRepo()
	resets := testutil.NewResetRepo()
	ledger := testutil.NewTokenLedger()
	mail := &testutil.MailRecorder{}

	otpSvc := application.NewOTPService(otps, clock, policy, logger)
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	tokenSvc := application.NewTokenService(jwt, ledger, clock, policy, logger)
	svc := application.NewAuthService(users, resets, otpSvc, tokenSvc, mail, clock, policy, logger, "ineed")

	return &authHarness{Svc: svc, Users: users, OTPs: otps, Ledger: ledger, Mail: mail, Clock: clock}
}

func signupInput() application.SignupInput {
	return application.SignupInput{
		FullName:        "Alice",
		Email:           "Alice@Example.com",
		Role:            entity.RoleUser,
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func (h *authHarness) signupAndVerify(t *testing.T) *entity.User {
	t.Helper()
	ctx := context.Background()
	_, err := h.Svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	res, err := h.Svc.VerifyEmail(ctx, "alice@example.com", h.Mail.LastCode())
	require.NoError(t, err)
	return res.User
}

func TestSignup(t *testing.T) {
	h := newAuthHarness()
	ctx := context.Background()

	res, err := h.Svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", res.Email)
	assert.Equal(t, entity.RoleUser, res.Role)
	assert.Equal(t, h.Clock.Now().Add(10*time.Minute), res.OTPExpiresAt)

	u, err := h.Users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.False(t, u.IsActive)
	assert.False(t, u.IsEmailVerified)
	assert.NotEqual(t, "secret1", u.Password)

	require.Len(t, h.Mail.Jobs, 1)
	assert.Equal(t, "alice@example.com", h.Mail.Jobs[0].To)
	assert.Len(t, h.Mail.LastCode(), 6)
}

func TestSignupDuplicateEmail(t *testing.T) {
	h := newAuthHarness()
	ctx := context.Background()

	_, err := h.Svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	_, err = h.Svc.Signup(ctx, signupInput())
	assert.ErrorIs(t, err, application.ErrEmailAlreadyExists)
}

func TestSignupConcurrentDuplicateEmail(t *testing.T) {
	h := newAuthHarness()
	ctx := context.Background()

	_, err := h.Svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	// The existence check misses the committed row; the insert itself must
	// still surface the collision as email_already_exists.
	h.Users.StaleExists = true
	_, err = h.Svc.Signup(ctx, signupInput())
	assert.ErrorIs(t, err, application.ErrEmailAlreadyExists)
}

func TestSignupPasswordMismatch(t *testing.T) {
	h := newAuthHarness()

	in := signupInput()
	in.ConfirmPassword = "different"
	_, err := h.Svc.Signup(context.Background(), in)
	assert.ErrorIs(t, err, application.ErrPasswordMismatch)
}

func TestSignupMailFailureAborts(t *testing.T) {
	h := newAuthHarness()
	h.Mail.Err = assert.AnError

	_, err := h.Svc.Signup(context.Background(), signupInput())
	assert.ErrorIs(t, err, application.ErrEmailDelivery)
}

func TestVerifyEmailActivatesAndOpensSession(t *testing.T) {
	h := newAuthHarness()
	ctx := context.Background()

	_, err := h.Svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	res, err := h.Svc.VerifyEmail(ctx, "alice@example.com", h.Mail.LastCode())
	require.NoError(t, err)

	assert.True(t, res.User.IsActive)
	assert.True(t, res.User.IsEmailVerified)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.Equal(t, 1, h.Ledger.Outstanding(res.User.ID))
}

func TestVerifyEmailUnknownUser(t *testing.T) {
	h := newAuthHarness()

	_, err := h.Svc.VerifyEmail(context.Background(), "nobody@example.com", "123456")
	assert.ErrorIs(t, err, application.ErrUserNotFound)
}

func TestLoginBeforeVerification(t *testing.T) {
	h := newAuthHarness()
	ctx := context.Background()

	_, err := h.Svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	_, err = h.Svc.Login(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, application.ErrEmailNotVerified)
}

func TestLogin(t *testing.T) {
	h := newAuthHarness()
	h.signupAndVerify(t)
	ctx := context.Background()

	res, err := h.Svc.Login(ctx, "Alice@Example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Tokens.RefreshToken)

	_, err = h.Svc.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)

	_, err = h.Svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)
}

func TestResendSignupOTP(t *testing.T) {
	h := newAuthHarness()
	ctx := context.Background()

	_, err := h.Svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	// inside the cooldown
	_, err = h.Svc.ResendSignupOTP(ctx, "alice@example.com")
	assert.ErrorIs(t, err, application.ErrResendTooSoon)

	h.Clock.Advance(31 * time.Second)
	res, err := h.Svc.ResendSignupOTP(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.Email)
	assert.Len(t, h.Mail.Jobs, 2)
}

func TestResendSignupOTPAlreadyVerified(t *testing.T) {
	h := newAuthHarness()
	h.signupAndVerify(t)

	_, err := h.Svc.ResendSignupOTP(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, application.ErrEmailAlreadyVerified)
}

func TestForgotPasswordResetFlow(t *testing.T) {
	h := newAuthHarness()
	u := h.signupAndVerify(t)
	ctx := context.Background()

	// an old session that the reset must sweep away
	old, err := h.Svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = h.Svc.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)

	verified, err := h.Svc.VerifyResetOTP(ctx, "alice@example.com", h.Mail.LastCode())
	require.NoError(t, err)
	require.NotEmpty(t, verified.Tokens.AccessToken)

	res, err := h.Svc.ResetPassword(ctx, u.ID, verified.Tokens.AccessToken, "newsecret", "newsecret")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Tokens.AccessToken)

	// every pre-reset refresh token is blacklisted
	_, _, err = h.Svc.Refresh(ctx, old.Tokens.RefreshToken)
	assert.ErrorIs(t, err, application.ErrToken)

	// old password is gone, new one works
	_, err = h.Svc.Login(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)
	_, err = h.Svc.Login(ctx, "alice@example.com", "newsecret")
	assert.NoError(t, err)
}

func TestResetPasswordTokenSingleUse(t *testing.T) {
	h := newAuthHarness()
	u := h.signupAndVerify(t)
	ctx := context.Background()

	_, err := h.Svc.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	verified, err := h.Svc.VerifyResetOTP(ctx, "alice@example.com", h.Mail.LastCode())
	require.NoError(t, err)

	_, err = h.Svc.ResetPassword(ctx, u.ID, verified.Tokens.AccessToken, "newsecret", "newsecret")
	require.NoError(t, err)

	_, err = h.Svc.ResetPassword(ctx, u.ID, verified.Tokens.AccessToken, "another1", "another1")
	assert.ErrorIs(t, err, application.ErrToken)
}

func TestResetPasswordExpiredCapability(t *testing.T) {
	h := newAuthHarness()
	u := h.signupAndVerify(t)
	ctx := context.Background()

	_, err := h.Svc.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	verified, err := h.Svc.VerifyResetOTP(ctx, "alice@example.com", h.Mail.LastCode())
	require.NoError(t, err)

	h.Clock.Advance(15 * time.Minute)
	_, err = h.Svc.ResetPassword(ctx, u.ID, verified.Tokens.AccessToken, "newsecret", "newsecret")
	assert.ErrorIs(t, err, application.ErrToken)
}

func TestResetPasswordWrongUser(t *testing.T) {
	h := newAuthHarness()
	u := h.signupAndVerify(t)
	_ = u
	ctx := context.Background()

	_, err := h.Svc.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	verified, err := h.Svc.VerifyResetOTP(ctx, "alice@example.com", h.Mail.LastCode())
	require.NoError(t, err)

	_, err = h.Svc.ResetPassword(ctx, "someone-else", verified.Tokens.AccessToken, "newsecret", "newsecret")
	assert.ErrorIs(t, err, application.ErrToken)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	h := newAuthHarness()
	u := h.signupAndVerify(t)
	ctx := context.Background()

	old, err := h.Svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	res, err := h.Svc.ChangePassword(ctx, u.ID, "newsecret", "newsecret")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Tokens.RefreshToken)

	_, _, err = h.Svc.Refresh(ctx, old.Tokens.RefreshToken)
	assert.ErrorIs(t, err, application.ErrToken)
	_, _, err = h.Svc.Refresh(ctx, res.Tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestChangePasswordMismatch(t *testing.T) {
	h := newAuthHarness()
	u := h.signupAndVerify(t)

	_, err := h.Svc.ChangePassword(context.Background(), u.ID, "newsecret", "other")
	assert.ErrorIs(t, err, application.ErrPasswordMismatch)
}

func TestLogoutRevokesAllSessions(t *testing.T) {
	h := newAuthHarness()
	u := h.signupAndVerify(t)
	ctx := context.Background()

	pair, err := h.Svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, h.Svc.Logout(ctx, u.ID))
	_, _, err = h.Svc.Refresh(ctx, pair.Tokens.RefreshToken)
	assert.ErrorIs(t, err, application.ErrToken)
}

func TestUpdateProfileImage(t *testing.T) {
	h := newAuthHarness()
	u := h.signupAndVerify(t)

	got, err := h.Svc.UpdateProfileImage(context.Background(), u.ID, "https://cdn.example.com/p.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/p.png", got.ProfileImageURL)
}
