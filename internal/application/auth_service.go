package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ineedllc/ineed-api/config"
	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/internal/domain/repository"
	"github.com/ineedllc/ineed-api/pkg/helpers"
	"github.com/ineedllc/ineed-api/pkg/mailer"
	tpl "github.com/ineedllc/ineed-api/pkg/mailer/templates"
)

// AuthService orchestrates the account flows: signup, email verification,
// login, the password-reset chain, password changes, logout, and refresh.
// Input shape validation happens at the HTTP boundary; everything here works
// on already well-formed values.
type AuthService struct {
	Users  repository.UserRepository
	Resets repository.PasswordResetRepository
	OTP    *OTPService
	Tokens *TokenService
	Mail   mailer.Sender
	Clock  Clock
	Policy config.OTPPolicy
	Logger *logrus.Logger

	AppName string
}

func NewAuthService(
	users repository.UserRepository,
	resets repository.PasswordResetRepository,
	otp *OTPService,
	tokens *TokenService,
	mail mailer.Sender,
	clock Clock,
	policy config.OTPPolicy,
	logger *logrus.Logger,
	appName string,
) *AuthService {
	return &AuthService{
		Users:   users,
		Resets:  resets,
		OTP:     otp,
		Tokens:  tokens,
		Mail:    mail,
		Clock:   clock,
		Policy:  policy,
		Logger:  logger,
		AppName: appName,
	}
}

type SignupInput struct {
	FullName        string
	Email           string
	Role            entity.Role
	Password        string
	ConfirmPassword string
}

type SignupResult struct {
	Email        string
	Role         entity.Role
	OTPExpiresAt time.Time
}

// AuthResult is the user echo plus a freshly minted token pair.
type AuthResult struct {
	User   *entity.User
	Tokens TokenPair
}

// Signup creates an inactive, unverified account and issues the first
// email_verify code. No resend limits apply to this initial issuance.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	email := normalizeEmail(in.Email)

	exists, err := s.Users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	u := &entity.User{
		ID:        uuid.NewString(),
		FullName:  in.FullName,
		Email:     email,
		Role:      in.Role,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		// a concurrent signup can slip past the existence check
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	otp, err := s.OTP.Issue(ctx, u.ID, email, entity.PurposeEmailVerify)
	if err != nil {
		return nil, err
	}
	if err := s.sendOTPEmail(ctx, u, otp); err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("signup")
	return &SignupResult{Email: email, Role: u.Role, OTPExpiresAt: otp.ExpiresAt}, nil
}

// VerifyEmail runs the verification state machine for an email_verify code
// and, on success, activates the account and opens a session.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) (*AuthResult, error) {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := s.OTP.Verify(ctx, u.ID, u.Email, entity.PurposeEmailVerify, code); err != nil {
		return nil, err
	}
	if err := s.Users.SetVerified(ctx, u.ID); err != nil {
		return nil, err
	}
	u.IsActive = true
	u.IsEmailVerified = true

	pair, err := s.Tokens.IssuePair(ctx, u)
	if err != nil {
		return nil, err
	}
	s.Logger.WithField("user_id", u.ID).Info("email verified")
	return &AuthResult{User: u, Tokens: pair}, nil
}

// ResendSignupOTP issues a new email_verify code subject to the resend policy.
func (s *AuthService) ResendSignupOTP(ctx context.Context, email string) (*SignupResult, error) {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u.IsEmailVerified {
		return nil, ErrEmailAlreadyVerified
	}
	otp, err := s.OTP.Resend(ctx, u.ID, u.Email, entity.PurposeEmailVerify)
	if err != nil {
		return nil, err
	}
	if err := s.sendOTPEmail(ctx, u, otp); err != nil {
		return nil, err
	}
	return &SignupResult{Email: u.Email, Role: u.Role, OTPExpiresAt: otp.ExpiresAt}, nil
}

// Login authenticates a verified, active account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsEmailVerified || !u.IsActive {
		return nil, ErrEmailNotVerified
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	pair, err := s.Tokens.IssuePair(ctx, u)
	if err != nil {
		return nil, err
	}
	s.Logger.WithField("user_id", u.ID).Info("login")
	return &AuthResult{User: u, Tokens: pair}, nil
}

// ForgotPassword issues the first password_reset code for the account. The
// resend policy does not apply to this initial request.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*SignupResult, error) {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	otp, err := s.OTP.Issue(ctx, u.ID, u.Email, entity.PurposePasswordReset)
	if err != nil {
		return nil, err
	}
	if err := s.sendOTPEmail(ctx, u, otp); err != nil {
		return nil, err
	}
	return &SignupResult{Email: u.Email, Role: u.Role, OTPExpiresAt: otp.ExpiresAt}, nil
}

// ResendForgotPasswordOTP issues a new password_reset code subject to the
// resend policy.
func (s *AuthService) ResendForgotPasswordOTP(ctx context.Context, email string) (*SignupResult, error) {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	otp, err := s.OTP.Resend(ctx, u.ID, u.Email, entity.PurposePasswordReset)
	if err != nil {
		return nil, err
	}
	if err := s.sendOTPEmail(ctx, u, otp); err != nil {
		return nil, err
	}
	return &SignupResult{Email: u.Email, Role: u.Role, OTPExpiresAt: otp.ExpiresAt}, nil
}

// VerifyResetOTP verifies a password_reset code and mints a reset-scoped
// session. A PasswordReset record ties the verified code to the session's
// access token; reset-password consumes it exactly once.
func (s *AuthService) VerifyResetOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	otp, err := s.OTP.Verify(ctx, u.ID, u.Email, entity.PurposePasswordReset, code)
	if err != nil {
		return nil, err
	}

	pair, err := s.Tokens.IssueResetPair(ctx, u)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	rec := &entity.PasswordReset{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		OTPID:     otp.ID,
		TokenHash: helpers.HashToken(pair.AccessToken),
		ExpiresAt: now.Add(s.Policy.ResetTokenTTL),
		CreatedAt: now,
	}
	if err := s.Resets.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.Logger.WithField("user_id", u.ID).Info("reset otp verified")
	return &AuthResult{User: u, Tokens: pair}, nil
}

// ResetPassword consumes the reset capability proven by accessToken, sets the
// new password, blacklists every outstanding refresh token, and opens a fresh
// full-scope session.
func (s *AuthService) ResetPassword(ctx context.Context, userID, accessToken, newPassword, confirmPassword string) (*AuthResult, error) {
	if newPassword != confirmPassword {
		return nil, ErrPasswordMismatch
	}
	rec, err := s.Resets.GetByTokenHash(ctx, helpers.HashToken(accessToken))
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.UserID != userID || rec.IsUsed || rec.Expired(s.Clock.Now()) {
		return nil, ErrToken
	}

	u, err := s.setPassword(ctx, userID, newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.Resets.MarkUsed(ctx, rec.ID); err != nil {
		return nil, err
	}
	pair, err := s.Tokens.IssuePair(ctx, u)
	if err != nil {
		return nil, err
	}
	s.Logger.WithField("user_id", u.ID).Info("password reset")
	return &AuthResult{User: u, Tokens: pair}, nil
}

// ChangePassword sets a new password for an authenticated caller, blacklists
// every outstanding refresh token, and opens a fresh session.
func (s *AuthService) ChangePassword(ctx context.Context, userID, newPassword, confirmPassword string) (*AuthResult, error) {
	if newPassword != confirmPassword {
		return nil, ErrPasswordMismatch
	}
	u, err := s.setPassword(ctx, userID, newPassword)
	if err != nil {
		return nil, err
	}
	pair, err := s.Tokens.IssuePair(ctx, u)
	if err != nil {
		return nil, err
	}
	s.Logger.WithField("user_id", u.ID).Info("password changed")
	return &AuthResult{User: u, Tokens: pair}, nil
}

func (s *AuthService) setPassword(ctx context.Context, userID, newPassword string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrAuthenticationRequired
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return nil, err
	}
	u.Password = hash
	if err := s.Tokens.RevokeAllForUser(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// Logout blacklists every outstanding refresh token for the caller.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.Tokens.RevokeAllForUser(ctx, userID)
}

// Refresh mints a new access token from a valid refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	return s.Tokens.Refresh(ctx, refreshToken)
}

// GetProfile returns the account for an authenticated caller.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UpdateProfileImage stores the uploaded image URL on the account.
func (s *AuthService) UpdateProfileImage(ctx context.Context, userID, url string) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.ProfileImageURL = url
	u.UpdatedAt = s.Clock.Now()
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) userByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *AuthService) sendOTPEmail(ctx context.Context, u *entity.User, otp *entity.OTP) error {
	minutes := int(s.Policy.TTL.Minutes())
	job := mailer.EmailJob{
		To:       otp.Email,
		Template: tpl.OTP,
		Data:     tpl.OTPData(s.AppName, u.FullName, otp.Email, otp.Code, string(otp.Purpose), minutes),
	}
	if err := s.Mail.Send(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("otp email delivery failed")
		return ErrEmailDelivery
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
