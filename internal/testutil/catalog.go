package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/internal/domain/repository"
)

// CatalogRepo is the in-memory counterpart of the Postgres catalog store.
type CatalogRepo struct {
	mu         sync.Mutex
	categories map[string]*entity.ServiceCategory
	services   map[string]*entity.Service
	hours      map[string][]*entity.ServiceHour // by service id
	features   map[string][]*entity.ServiceFeature
}

func NewCatalogRepo() *CatalogRepo {
	return &CatalogRepo{
		categories: map[string]*entity.ServiceCategory{},
		services:   map[string]*entity.Service{},
		hours:      map[string][]*entity.ServiceHour{},
		features:   map[string][]*entity.ServiceFeature{},
	}
}

func (r *CatalogRepo) CreateCategory(_ context.Context, c *entity.ServiceCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *CatalogRepo) GetCategory(_ context.Context, id string) (*entity.ServiceCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CatalogRepo) ListCategories(_ context.Context, f repository.CategoryFilter) ([]*entity.ServiceCategory, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.ServiceCategory{}
	for _, c := range r.categories {
		if f.ActiveOnly && !c.IsActive {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := len(out)
	out = page(out, f.Offset, f.Limit)
	return out, total, nil
}

func (r *CatalogRepo) UpdateCategory(_ context.Context, c *entity.ServiceCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.ID]; !ok {
		return errors.New("no such category")
	}
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *CatalogRepo) DeleteCategory(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.categories, id)
	return nil
}

func (r *CatalogRepo) CreateService(_ context.Context, s *entity.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

func (r *CatalogRepo) GetService(_ context.Context, id string) (*entity.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *CatalogRepo) ListServices(_ context.Context, f repository.ServiceFilter) ([]*entity.Service, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.Service{}
	for _, s := range r.services {
		if f.ActiveOnly && !s.IsActive {
			continue
		}
		if f.CategoryID != "" && s.CategoryID != f.CategoryID {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(f.Search)) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	out = page(out, f.Offset, f.Limit)
	return out, total, nil
}

func (r *CatalogRepo) UpdateService(_ context.Context, s *entity.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[s.ID]; !ok {
		return errors.New("no such service")
	}
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

func (r *CatalogRepo) DeleteService(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.services, id)
	return nil
}

func (r *CatalogRepo) UpsertHour(_ context.Context, h *entity.ServiceHour) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.hours[h.ServiceID] {
		if e.DayOfWeek == h.DayOfWeek {
			e.FromTime = h.FromTime
			e.ToTime = h.ToTime
			e.IsClosed = h.IsClosed
			h.ID = e.ID
			return false, nil
		}
	}
	cp := *h
	r.hours[h.ServiceID] = append(r.hours[h.ServiceID], &cp)
	return true, nil
}

func (r *CatalogRepo) ReplaceHours(_ context.Context, serviceID string, hours []*entity.ServiceHour) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	days := map[int]bool{}
	for _, h := range hours {
		days[h.DayOfWeek] = true
	}
	kept := []*entity.ServiceHour{}
	for _, e := range r.hours[serviceID] {
		if !days[e.DayOfWeek] {
			kept = append(kept, e)
		}
	}
	for _, h := range hours {
		cp := *h
		kept = append(kept, &cp)
	}
	r.hours[serviceID] = kept
	return nil
}

func (r *CatalogRepo) ListHours(_ context.Context, serviceID string) ([]*entity.ServiceHour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.ServiceHour, 0, len(r.hours[serviceID]))
	for _, h := range r.hours[serviceID] {
		cp := *h
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out, nil
}

func (r *CatalogRepo) CreateFeature(_ context.Context, f *entity.ServiceFeature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *f
	r.features[f.ServiceID] = append(r.features[f.ServiceID], &cp)
	return nil
}

func (r *CatalogRepo) ListFeatures(_ context.Context, serviceID string) ([]*entity.ServiceFeature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.ServiceFeature, 0, len(r.features[serviceID]))
	for _, f := range r.features[serviceID] {
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func page[T any](in []T, offset, limit int) []T {
	if limit <= 0 {
		return in
	}
	if offset >= len(in) {
		return []T{}
	}
	end := offset + limit
	if end > len(in) {
		end = len(in)
	}
	return in[offset:end]
}

var _ repository.CatalogRepository = (*CatalogRepo)(nil)
