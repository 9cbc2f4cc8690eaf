package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ineedllc/ineed-api/config"
	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/internal/domain/repository"
	"github.com/ineedllc/ineed-api/pkg/helpers"
)

// OTPService owns the one-time-code ledger: issuance, the resend policy, and
// the verification state machine. Issuance is serialized per (user, purpose)
// so concurrent resends cannot both slip past the cooldown check.
type OTPService struct {
	Repo   repository.OTPRepository
	Clock  Clock
	Policy config.OTPPolicy
	Logger *logrus.Logger

	locks keyedMutex
}

func NewOTPService(repo repository.OTPRepository, clock Clock, policy config.OTPPolicy, logger *logrus.Logger) *OTPService {
	return &OTPService{Repo: repo, Clock: clock, Policy: policy, Logger: logger}
}

// Issue creates a fresh code for the triple without consulting the resend
// policy. Used on initial signup and first forgot-password requests.
func (s *OTPService) Issue(ctx context.Context, userID, email string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	unlock := s.locks.lock(issueKey(userID, purpose))
	defer unlock()
	return s.create(ctx, userID, email, purpose)
}

// Resend creates a fresh code after the cooldown and hourly cap pass. Both
// checks and the insert run under the per-(user, purpose) lock.
func (s *OTPService) Resend(ctx context.Context, userID, email string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	unlock := s.locks.lock(issueKey(userID, purpose))
	defer unlock()

	now := s.Clock.Now()

	last, err := s.Repo.Latest(ctx, userID, email, purpose)
	if err != nil {
		return nil, err
	}
	if last != nil && now.Sub(last.CreatedAt) < s.Policy.ResendCooldown {
		return nil, ErrResendTooSoon
	}

	count, err := s.Repo.CountSince(ctx, userID, email, purpose, now.Add(-time.Hour))
	if err != nil {
		return nil, err
	}
	if count >= s.Policy.HourlyCap {
		return nil, ErrResendLimitExceeded
	}

	return s.create(ctx, userID, email, purpose)
}

func (s *OTPService) create(ctx context.Context, userID, email string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	code, err := helpers.GenOTPCode()
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	otp := &entity.OTP{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     strings.ToLower(email),
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: now.Add(s.Policy.TTL),
		CreatedAt: now,
	}
	if err := s.Repo.Create(ctx, otp); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"user_id": userID,
			"purpose": purpose,
		}).Debug("otp issued")
	}
	return otp, nil
}

// Verify runs the shared verification state machine for the latest active
// code of the triple:
//
//	expired        -> otp_expired (attempt not counted)
//	locked out     -> too_many_attempts (checked before the increment, so a
//	                  user gets exactly MaxAttempts guesses per issued code)
//	wrong code     -> invalid_otp (attempt already persisted)
//	match          -> code marked verified; later lookups return otp_not_found
func (s *OTPService) Verify(ctx context.Context, userID, email string, purpose entity.OTPPurpose, code string) (*entity.OTP, error) {
	otp, err := s.Repo.FindActive(ctx, userID, strings.ToLower(email), purpose)
	if err != nil {
		return nil, err
	}
	if otp == nil {
		return nil, ErrOTPNotFound
	}
	if otp.Expired(s.Clock.Now()) {
		return nil, ErrOTPExpired
	}
	if otp.AttemptCount >= s.Policy.MaxAttempts {
		return nil, ErrTooManyAttempts
	}

	attempts, err := s.Repo.IncrementAttempts(ctx, otp.ID)
	if err != nil {
		return nil, err
	}
	otp.AttemptCount = attempts
	// The increment is atomic, so a concurrent guess that raced past the read
	// above still lands beyond the cap here.
	if attempts > s.Policy.MaxAttempts {
		return nil, ErrTooManyAttempts
	}

	if otp.Code != code {
		return nil, ErrInvalidOTP
	}

	if err := s.Repo.MarkVerified(ctx, otp.ID); err != nil {
		return nil, err
	}
	otp.IsVerified = true
	return otp, nil
}

func issueKey(userID string, purpose entity.OTPPurpose) string {
	return userID + ":" + string(purpose)
}

// keyedMutex hands out one mutex per key. Entries are never evicted; the map
// is bounded by the number of (user, purpose) pairs seen by this process.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock
}
