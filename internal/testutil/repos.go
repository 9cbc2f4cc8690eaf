package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/internal/domain/repository"
	"github.com/ineedllc/ineed-api/pkg/mailer"
)

// In-memory repository fakes used by the service tests. They mirror the
// (nil, nil) not-found convention of the Postgres implementations.

type UserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User // by id

	// StaleExists makes EmailExists report false regardless of state,
	// standing in for a concurrent writer committing between the caller's
	// existence check and its insert.
	StaleExists bool
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: map[string]*entity.User{}}
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	if r.StaleExists {
		return false, nil
	}
	u, err := r.GetByEmail(ctx, email)
	return u != nil, err
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return errors.New("no such user")
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) SetVerified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.IsActive = true
	u.IsEmailVerified = true
	return nil
}

func (r *UserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.Password = passwordHash
	return nil
}

type OTPRepo struct {
	mu   sync.Mutex
	otps []*entity.OTP
}

func NewOTPRepo() *OTPRepo {
	return &OTPRepo{}
}

func (r *OTPRepo) Create(_ context.Context, o *entity.OTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.otps = append(r.otps, &cp)
	return nil
}

func (r *OTPRepo) FindActive(_ context.Context, userID, email string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *entity.OTP
	for _, o := range r.otps {
		if o.UserID != userID || o.Email != email || o.Purpose != purpose || o.IsVerified {
			continue
		}
		if best == nil || o.CreatedAt.After(best.CreatedAt) {
			best = o
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (r *OTPRepo) Latest(_ context.Context, userID, email string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *entity.OTP
	for _, o := range r.otps {
		if o.UserID != userID || o.Email != email || o.Purpose != purpose {
			continue
		}
		if best == nil || o.CreatedAt.After(best.CreatedAt) {
			best = o
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (r *OTPRepo) CountSince(_ context.Context, userID, email string, purpose entity.OTPPurpose, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.otps {
		if o.UserID == userID && o.Email == email && o.Purpose == purpose && !o.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *OTPRepo) IncrementAttempts(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.otps {
		if o.ID == id {
			o.AttemptCount++
			return o.AttemptCount, nil
		}
	}
	return 0, errors.New("no such otp")
}

func (r *OTPRepo) MarkVerified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.otps {
		if o.ID == id {
			o.IsVerified = true
			return nil
		}
	}
	return errors.New("no such otp")
}

type ResetRepo struct {
	mu     sync.Mutex
	resets map[string]*entity.PasswordReset // by id
}

func NewResetRepo() *ResetRepo {
	return &ResetRepo{resets: map[string]*entity.PasswordReset{}}
}

func (r *ResetRepo) Create(_ context.Context, rec *entity.PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.resets[rec.ID] = &cp
	return nil
}

func (r *ResetRepo) GetByTokenHash(_ context.Context, tokenHash string) (*entity.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.resets {
		if rec.TokenHash == tokenHash {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ResetRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.resets[id]
	if !ok {
		return errors.New("no such reset")
	}
	rec.IsUsed = true
	return nil
}

type TokenLedger struct {
	mu     sync.Mutex
	tokens map[string]*entity.RefreshToken // by jti
}

func NewTokenLedger() *TokenLedger {
	return &TokenLedger{tokens: map[string]*entity.RefreshToken{}}
}

func (r *TokenLedger) Create(_ context.Context, t *entity.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tokens[t.ID] = &cp
	return nil
}

func (r *TokenLedger) GetByID(_ context.Context, id string) (*entity.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *TokenLedger) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok || t.RevokedAt != nil {
		return nil
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (r *TokenLedger) RevokeAllForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

// Outstanding counts non-revoked tokens for a user.
func (r *TokenLedger) Outstanding(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

// MailRecorder captures outbound jobs so tests can assert on delivery.
type MailRecorder struct {
	mu   sync.Mutex
	Jobs []mailer.EmailJob
	Err  error // when set, Send fails with it
}

func (m *MailRecorder) Send(_ context.Context, job mailer.EmailJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Jobs = append(m.Jobs, job)
	return nil
}

// LastCode returns the OTP code carried by the most recent job, or "".
func (m *MailRecorder) LastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Jobs) == 0 {
		return ""
	}
	code, _ := m.Jobs[len(m.Jobs)-1].Data["Code"].(string)
	return code
}

var (
	_ repository.UserRepository          = (*UserRepo)(nil)
	_ repository.OTPRepository           = (*OTPRepo)(nil)
	_ repository.PasswordResetRepository = (*ResetRepo)(nil)
	_ repository.RefreshTokenRepository  = (*TokenLedger)(nil)
	_ mailer.Sender                      = (*MailRecorder)(nil)
)
