package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/internal/domain/repository"
)

type OTPRepository struct {
	pool *pgxpool.Pool
}

func NewOTPRepository(pool *pgxpool.Pool) *OTPRepository {
	return &OTPRepository{pool: pool}
}

const otpColumns = `id, user_id, email, purpose, code, attempt_count, resend_count,
	is_verified, expires_at, created_at`

func (r *OTPRepository) Create(ctx context.Context, o *entity.OTP) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO otps (id, user_id, email, purpose, code, attempt_count, resend_count,
			is_verified, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, o.ID, o.UserID, o.Email, o.Purpose, o.Code, o.AttemptCount, o.ResendCount,
		o.IsVerified, o.ExpiresAt, o.CreatedAt)
	return err
}

func (r *OTPRepository) FindActive(ctx context.Context, userID, email string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+otpColumns+`
		FROM otps
		WHERE user_id = $1 AND email = $2 AND purpose = $3 AND is_verified = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, email, purpose)
	return scanOTP(row)
}

func (r *OTPRepository) Latest(ctx context.Context, userID, email string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+otpColumns+`
		FROM otps
		WHERE user_id = $1 AND email = $2 AND purpose = $3
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, email, purpose)
	return scanOTP(row)
}

func (r *OTPRepository) CountSince(ctx context.Context, userID, email string, purpose entity.OTPPurpose, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM otps
		WHERE user_id = $1 AND email = $2 AND purpose = $3 AND created_at >= $4
	`, userID, email, purpose, since).Scan(&count)
	return count, err
}

// IncrementAttempts is a single UPDATE ... RETURNING so two concurrent
// guesses can never observe the same counter value.
func (r *OTPRepository) IncrementAttempts(ctx context.Context, id string) (int, error) {
	var attempts int
	err := r.pool.QueryRow(ctx, `
		UPDATE otps SET attempt_count = attempt_count + 1 WHERE id = $1
		RETURNING attempt_count
	`, id).Scan(&attempts)
	return attempts, err
}

func (r *OTPRepository) MarkVerified(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE otps SET is_verified = TRUE WHERE id = $1`, id)
	return err
}

func scanOTP(row pgx.Row) (*entity.OTP, error) {
	o := &entity.OTP{}
	err := row.Scan(&o.ID, &o.UserID, &o.Email, &o.Purpose, &o.Code, &o.AttemptCount,
		&o.ResendCount, &o.IsVerified, &o.ExpiresAt, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

var _ repository.OTPRepository = (*OTPRepository)(nil)
