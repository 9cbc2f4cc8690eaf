package repository

import (
	"context"

	"github.com/ineedllc/ineed-api/internal/domain/entity"
)

// CategoryFilter narrows category listings.
type CategoryFilter struct {
	ActiveOnly bool
	Search     string // case-insensitive substring on name
	Offset     int
	Limit      int // 0 means no paging
}

// ServiceFilter narrows service listings.
type ServiceFilter struct {
	ActiveOnly bool
	CategoryID string
	Search     string
	Offset     int
	Limit      int
}

// CatalogRepository covers the service-catalog tables: categories, services,
// per-weekday hours, and priced add-on features.
type CatalogRepository interface {
	CreateCategory(ctx context.Context, c *entity.ServiceCategory) error
	GetCategory(ctx context.Context, id string) (*entity.ServiceCategory, error)
	ListCategories(ctx context.Context, f CategoryFilter) ([]*entity.ServiceCategory, int, error)
	UpdateCategory(ctx context.Context, c *entity.ServiceCategory) error
	DeleteCategory(ctx context.Context, id string) error

	CreateService(ctx context.Context, s *entity.Service) error
	GetService(ctx context.Context, id string) (*entity.Service, error)
	ListServices(ctx context.Context, f ServiceFilter) ([]*entity.Service, int, error)
	UpdateService(ctx context.Context, s *entity.Service) error
	DeleteService(ctx context.Context, id string) error

	// UpsertHour saves the window for (service, day), overwriting any existing
	// row. Returns true when a new row was created.
	UpsertHour(ctx context.Context, h *entity.ServiceHour) (bool, error)
	// ReplaceHours transactionally deletes the submitted days and re-inserts
	// them, so a bulk save is all-or-nothing.
	ReplaceHours(ctx context.Context, serviceID string, hours []*entity.ServiceHour) error
	ListHours(ctx context.Context, serviceID string) ([]*entity.ServiceHour, error)

	CreateFeature(ctx context.Context, f *entity.ServiceFeature) error
	ListFeatures(ctx context.Context, serviceID string) ([]*entity.ServiceFeature, error)
}
