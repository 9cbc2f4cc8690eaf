package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/internal/domain/repository"
)

type PasswordResetRepository struct {
	pool *pgxpool.Pool
}

func NewPasswordResetRepository(pool *pgxpool.Pool) *PasswordResetRepository {
	return &PasswordResetRepository{pool: pool}
}

func (r *PasswordResetRepository) Create(ctx context.Context, rec *entity.PasswordReset) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO password_resets (id, user_id, otp_id, token_hash, is_used, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.UserID, rec.OTPID, rec.TokenHash, rec.IsUsed, rec.ExpiresAt, rec.CreatedAt)
	return err
}

func (r *PasswordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordReset, error) {
	rec := &entity.PasswordReset{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, otp_id, token_hash, is_used, expires_at, created_at
		FROM password_resets
		WHERE token_hash = $1
	`, tokenHash).Scan(&rec.ID, &rec.UserID, &rec.OTPID, &rec.TokenHash,
		&rec.IsUsed, &rec.ExpiresAt, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *PasswordResetRepository) MarkUsed(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE password_resets SET is_used = TRUE WHERE id = $1`, id)
	return err
}

var _ repository.PasswordResetRepository = (*PasswordResetRepository)(nil)
