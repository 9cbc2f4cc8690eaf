package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/internal/domain/repository"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c *entity.ServiceCategory) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO service_categories (id, name, subtitle, icon_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.Name, c.Subtitle, c.IconURL, c.IsActive, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *CatalogRepository) GetCategory(ctx context.Context, id string) (*entity.ServiceCategory, error) {
	c := &entity.ServiceCategory{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, subtitle, icon_url, is_active, created_at, updated_at
		FROM service_categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Subtitle, &c.IconURL, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context, f repository.CategoryFilter) ([]*entity.ServiceCategory, int, error) {
	where, args := categoryWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM service_categories`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := ` ORDER BY created_at DESC`
	if f.ActiveOnly {
		// public listing is alphabetical
		order = ` ORDER BY name ASC`
	}
	q := `SELECT id, name, subtitle, icon_url, is_active, created_at, updated_at
		FROM service_categories` + where + order
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*entity.ServiceCategory{}
	for rows.Next() {
		c := &entity.ServiceCategory{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Subtitle, &c.IconURL, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func categoryWhere(f repository.CategoryFilter) (string, []any) {
	where := ""
	args := []any{}
	add := func(cond string) {
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}
	if f.ActiveOnly {
		add("is_active = TRUE")
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		add(fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	return where, args
}

func (r *CatalogRepository) UpdateCategory(ctx context.Context, c *entity.ServiceCategory) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE service_categories
		SET name = $1, subtitle = $2, icon_url = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`, c.Name, c.Subtitle, c.IconURL, c.IsActive, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *CatalogRepository) DeleteCategory(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM service_categories WHERE id = $1`, id)
	return err
}

const serviceColumns = `id, category_id, name, description, main_price, offer_price,
	discount, image_url, is_active, created_at, updated_at`

func (r *CatalogRepository) CreateService(ctx context.Context, s *entity.Service) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO services (id, category_id, name, description, main_price, offer_price,
			discount, image_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, s.ID, s.CategoryID, s.Name, s.Description, s.MainPrice, s.OfferPrice,
		s.Discount, s.ImageURL, s.IsActive, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *CatalogRepository) GetService(ctx context.Context, id string) (*entity.Service, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	return scanService(row)
}

func (r *CatalogRepository) ListServices(ctx context.Context, f repository.ServiceFilter) ([]*entity.Service, int, error) {
	where, args := serviceWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM services`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + serviceColumns + ` FROM services` + where + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*entity.Service{}
	for rows.Next() {
		s := &entity.Service{}
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description, &s.MainPrice,
			&s.OfferPrice, &s.Discount, &s.ImageURL, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func serviceWhere(f repository.ServiceFilter) (string, []any) {
	where := ""
	args := []any{}
	add := func(cond string) {
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}
	if f.ActiveOnly {
		add("is_active = TRUE")
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		add(fmt.Sprintf("category_id = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		add(fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	return where, args
}

func (r *CatalogRepository) UpdateService(ctx context.Context, s *entity.Service) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE services
		SET category_id = $1, name = $2, description = $3, main_price = $4,
			offer_price = $5, discount = $6, image_url = $7, is_active = $8, updated_at = $9
		WHERE id = $10
	`, s.CategoryID, s.Name, s.Description, s.MainPrice, s.OfferPrice,
		s.Discount, s.ImageURL, s.IsActive, s.UpdatedAt, s.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *CatalogRepository) DeleteService(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	return err
}

// UpsertHour inserts or overwrites the (service, day) row. A conflicting row
// keeps its original id, so a changed id on return means the row was updated
// rather than created.
func (r *CatalogRepository) UpsertHour(ctx context.Context, h *entity.ServiceHour) (bool, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO service_hours (id, service_id, day_of_week, from_time, to_time, is_closed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (service_id, day_of_week)
		DO UPDATE SET from_time = EXCLUDED.from_time, to_time = EXCLUDED.to_time,
			is_closed = EXCLUDED.is_closed
		RETURNING id
	`, h.ID, h.ServiceID, h.DayOfWeek, h.FromTime, h.ToTime, h.IsClosed, h.CreatedAt).Scan(&id)
	if err != nil {
		return false, err
	}
	created := id == h.ID
	h.ID = id
	return created, nil
}

// ReplaceHours deletes the submitted days and re-inserts them in one
// transaction so a bulk save is all-or-nothing.
func (r *CatalogRepository) ReplaceHours(ctx context.Context, serviceID string, hours []*entity.ServiceHour) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	days := make([]int, 0, len(hours))
	for _, h := range hours {
		days = append(days, h.DayOfWeek)
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM service_hours WHERE service_id = $1 AND day_of_week = ANY($2)
	`, serviceID, days); err != nil {
		return err
	}
	for _, h := range hours {
		if _, err := tx.Exec(ctx, `
			INSERT INTO service_hours (id, service_id, day_of_week, from_time, to_time, is_closed, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, h.ID, h.ServiceID, h.DayOfWeek, h.FromTime, h.ToTime, h.IsClosed, h.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *CatalogRepository) ListHours(ctx context.Context, serviceID string) ([]*entity.ServiceHour, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, service_id, day_of_week, from_time, to_time, is_closed, created_at
		FROM service_hours
		WHERE service_id = $1
		ORDER BY day_of_week ASC
	`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*entity.ServiceHour{}
	for rows.Next() {
		h := &entity.ServiceHour{}
		if err := rows.Scan(&h.ID, &h.ServiceID, &h.DayOfWeek, &h.FromTime, &h.ToTime, &h.IsClosed, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) CreateFeature(ctx context.Context, f *entity.ServiceFeature) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO service_features (id, service_id, title, subtitle, price, image_url,
			estimate_time, estimate_time_unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, f.ID, f.ServiceID, f.Title, f.Subtitle, f.Price, f.ImageURL,
		f.EstimateTime, f.EstimateTimeUnit, f.CreatedAt, f.UpdatedAt)
	return err
}

func (r *CatalogRepository) ListFeatures(ctx context.Context, serviceID string) ([]*entity.ServiceFeature, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, service_id, title, subtitle, price, image_url,
			estimate_time, estimate_time_unit, created_at, updated_at
		FROM service_features
		WHERE service_id = $1
		ORDER BY created_at DESC
	`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*entity.ServiceFeature{}
	for rows.Next() {
		f := &entity.ServiceFeature{}
		if err := rows.Scan(&f.ID, &f.ServiceID, &f.Title, &f.Subtitle, &f.Price, &f.ImageURL,
			&f.EstimateTime, &f.EstimateTimeUnit, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanService(row pgx.Row) (*entity.Service, error) {
	s := &entity.Service{}
	err := row.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description, &s.MainPrice,
		&s.OfferPrice, &s.Discount, &s.ImageURL, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)
