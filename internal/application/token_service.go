package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ineedllc/ineed-api/config"
	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/internal/domain/repository"
	"github.com/ineedllc/ineed-api/pkg/helpers"
)

// TokenPair is one issued session: a short-lived access token and a
// longer-lived, revocable refresh token.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// TokenService mints and revokes session credentials. Every refresh token is
// recorded in the outstanding-token ledger by its jti at issuance; revocation
// blacklists ledger rows, never the JWT itself.
type TokenService struct {
	JWT    *helpers.JWTManager
	Ledger repository.RefreshTokenRepository
	Clock  Clock
	Policy config.OTPPolicy
	Logger *logrus.Logger
}

func NewTokenService(jwt *helpers.JWTManager, ledger repository.RefreshTokenRepository, clock Clock, policy config.OTPPolicy, logger *logrus.Logger) *TokenService {
	return &TokenService{JWT: jwt, Ledger: ledger, Clock: clock, Policy: policy, Logger: logger}
}

// IssuePair mints a full-scope session for the user.
func (s *TokenService) IssuePair(ctx context.Context, u *entity.User) (TokenPair, error) {
	return s.issue(ctx, u, helpers.ScopeFull, 0)
}

// IssueResetPair mints a session whose only power is calling reset-password.
// The access token expires with the reset window; the refresh token is
// recorded like any other so a later revoke-all sweeps it up, but the refresh
// operation refuses it.
func (s *TokenService) IssueResetPair(ctx context.Context, u *entity.User) (TokenPair, error) {
	return s.issue(ctx, u, helpers.ScopePasswordReset, s.Policy.ResetTokenTTL)
}

func (s *TokenService) issue(ctx context.Context, u *entity.User, scope string, accessTTL time.Duration) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, string(u.Role), scope, accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, jti, rexp, err := s.JWT.GenerateRefreshToken(u.ID, string(u.Role), scope)
	if err != nil {
		return TokenPair{}, err
	}
	rec := &entity.RefreshToken{
		ID:        jti,
		UserID:    u.ID,
		ExpiresAt: rexp,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Ledger.Create(ctx, rec); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  aexp,
		RefreshToken:     refresh,
		RefreshExpiresAt: rexp,
	}, nil
}

// Refresh validates a refresh token and mints a new access token. The refresh
// token itself is not rotated. Invalid, expired, reset-scoped, unknown, or
// blacklisted tokens all fail with token_error.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", time.Time{}, ErrToken
	}
	if claims.Scope == helpers.ScopePasswordReset {
		return "", time.Time{}, ErrToken
	}
	rec, err := s.Ledger.GetByID(ctx, claims.ID)
	if err != nil {
		return "", time.Time{}, err
	}
	if rec == nil || rec.Revoked() {
		return "", time.Time{}, ErrToken
	}
	access, exp, err := s.JWT.GenerateAccessToken(claims.UserID, claims.Role, helpers.ScopeFull, 0)
	if err != nil {
		return "", time.Time{}, err
	}
	return access, exp, nil
}

// RevokeOne blacklists a single refresh token. Re-revoking is a no-op.
func (s *TokenService) RevokeOne(ctx context.Context, refreshToken string) error {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return ErrToken
	}
	return s.Ledger.Revoke(ctx, claims.ID)
}

// RevokeAllForUser blacklists every outstanding refresh token for the user.
// Used by logout, change-password, and reset-password.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID string) error {
	if err := s.Ledger.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", userID).Info("refresh tokens revoked")
	}
	return nil
}
