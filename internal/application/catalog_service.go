package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/internal/domain/repository"
)

// CatalogService is the thin CRUD layer over the service catalog. Services
// are mirrored into an optional Elasticsearch index on create/update; public
// search prefers the index and falls back to the database filter.
type CatalogService struct {
	Repo    repository.CatalogRepository
	ES      *elasticsearch.Client
	ESIndex string
	Clock   Clock
	Logger  *logrus.Logger
}

func NewCatalogService(repo repository.CatalogRepository, es *elasticsearch.Client, esIndex string, clock Clock, logger *logrus.Logger) *CatalogService {
	return &CatalogService{Repo: repo, ES: es, ESIndex: esIndex, Clock: clock, Logger: logger}
}

type CategoryInput struct {
	Name     string
	Subtitle string
	IconURL  string
	IsActive *bool
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*entity.ServiceCategory, error) {
	now := s.Clock.Now()
	c := &entity.ServiceCategory{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Subtitle:  in.Subtitle,
		IconURL:   in.IconURL,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*entity.ServiceCategory, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	c.Name = in.Name
	c.Subtitle = in.Subtitle
	if in.IconURL != "" {
		c.IconURL = in.IconURL
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.UpdatedAt = s.Clock.Now()
	if err := s.Repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	return s.Repo.DeleteCategory(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context, f repository.CategoryFilter) ([]*entity.ServiceCategory, int, error) {
	return s.Repo.ListCategories(ctx, f)
}

type ServiceInput struct {
	CategoryID  string
	Name        string
	Description string
	MainPrice   float64
	OfferPrice  *float64
	Discount    *float64
	ImageURL    string
	IsActive    *bool
}

func (s *CatalogService) CreateService(ctx context.Context, in ServiceInput) (*entity.Service, error) {
	cat, err := s.Repo.GetCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrNotFound
	}
	now := s.Clock.Now()
	svc := &entity.Service{
		ID:          uuid.NewString(),
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: in.Description,
		MainPrice:   in.MainPrice,
		OfferPrice:  in.OfferPrice,
		Discount:    in.Discount,
		ImageURL:    in.ImageURL,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsActive != nil {
		svc.IsActive = *in.IsActive
	}
	if err := s.Repo.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	s.indexService(ctx, svc)
	return svc, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, id string, in ServiceInput) (*entity.Service, error) {
	svc, err := s.Repo.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrNotFound
	}
	if in.CategoryID != "" && in.CategoryID != svc.CategoryID {
		cat, err := s.Repo.GetCategory(ctx, in.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, ErrNotFound
		}
		svc.CategoryID = in.CategoryID
	}
	svc.Name = in.Name
	svc.Description = in.Description
	svc.MainPrice = in.MainPrice
	svc.OfferPrice = in.OfferPrice
	svc.Discount = in.Discount
	if in.ImageURL != "" {
		svc.ImageURL = in.ImageURL
	}
	if in.IsActive != nil {
		svc.IsActive = *in.IsActive
	}
	svc.UpdatedAt = s.Clock.Now()
	if err := s.Repo.UpdateService(ctx, svc); err != nil {
		return nil, err
	}
	s.indexService(ctx, svc)
	return svc, nil
}

func (s *CatalogService) DeleteService(ctx context.Context, id string) error {
	svc, err := s.Repo.GetService(ctx, id)
	if err != nil {
		return err
	}
	if svc == nil {
		return ErrNotFound
	}
	return s.Repo.DeleteService(ctx, id)
}

func (s *CatalogService) ListServices(ctx context.Context, f repository.ServiceFilter) ([]*entity.Service, int, error) {
	return s.Repo.ListServices(ctx, f)
}

func (s *CatalogService) GetService(ctx context.Context, id string) (*entity.Service, error) {
	svc, err := s.Repo.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrNotFound
	}
	return svc, nil
}

type HourInput struct {
	ServiceID string
	DayOfWeek int
	FromTime  string
	ToTime    string
	IsClosed  bool
}

// SaveHour upserts the window for (service, day). Returns true when a new
// row was created rather than overwritten.
func (s *CatalogService) SaveHour(ctx context.Context, in HourInput) (*entity.ServiceHour, bool, error) {
	svc, err := s.Repo.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, false, err
	}
	if svc == nil {
		return nil, false, ErrNotFound
	}
	h := &entity.ServiceHour{
		ID:        uuid.NewString(),
		ServiceID: in.ServiceID,
		DayOfWeek: in.DayOfWeek,
		FromTime:  in.FromTime,
		ToTime:    in.ToTime,
		IsClosed:  in.IsClosed,
		CreatedAt: s.Clock.Now(),
	}
	created, err := s.Repo.UpsertHour(ctx, h)
	if err != nil {
		return nil, false, err
	}
	return h, created, nil
}

// SaveHoursBulk overwrites the submitted days for a service atomically.
func (s *CatalogService) SaveHoursBulk(ctx context.Context, serviceID string, hours []HourInput) error {
	svc, err := s.Repo.GetService(ctx, serviceID)
	if err != nil {
		return err
	}
	if svc == nil {
		return ErrNotFound
	}
	now := s.Clock.Now()
	rows := make([]*entity.ServiceHour, 0, len(hours))
	for _, in := range hours {
		from := in.FromTime
		if from == "" {
			from = "00:00:00"
		}
		to := in.ToTime
		if to == "" {
			to = "00:00:00"
		}
		rows = append(rows, &entity.ServiceHour{
			ID:        uuid.NewString(),
			ServiceID: serviceID,
			DayOfWeek: in.DayOfWeek,
			FromTime:  from,
			ToTime:    to,
			IsClosed:  in.IsClosed,
			CreatedAt: now,
		})
	}
	return s.Repo.ReplaceHours(ctx, serviceID, rows)
}

func (s *CatalogService) ListHours(ctx context.Context, serviceID string) ([]*entity.ServiceHour, error) {
	return s.Repo.ListHours(ctx, serviceID)
}

type FeatureInput struct {
	ServiceID        string
	Title            string
	Subtitle         string
	Price            float64
	ImageURL         string
	EstimateTime     *float64
	EstimateTimeUnit string
}

func (s *CatalogService) CreateFeature(ctx context.Context, in FeatureInput) (*entity.ServiceFeature, error) {
	svc, err := s.Repo.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrNotFound
	}
	unit := in.EstimateTimeUnit
	if unit == "" {
		unit = "hour"
	}
	now := s.Clock.Now()
	f := &entity.ServiceFeature{
		ID:               uuid.NewString(),
		ServiceID:        in.ServiceID,
		Title:            in.Title,
		Subtitle:         in.Subtitle,
		Price:            in.Price,
		ImageURL:         in.ImageURL,
		EstimateTime:     in.EstimateTime,
		EstimateTimeUnit: unit,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Repo.CreateFeature(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *CatalogService) ListFeatures(ctx context.Context, serviceID string) ([]*entity.ServiceFeature, error) {
	return s.Repo.ListFeatures(ctx, serviceID)
}

// SearchServices answers the public catalog search. With Elasticsearch
// configured it runs a multi_match on name and description; otherwise it is
// an ILIKE filter against the database.
func (s *CatalogService) SearchServices(ctx context.Context, query, categoryID string) ([]*entity.Service, error) {
	if s.ES == nil || s.ESIndex == "" || query == "" {
		return s.searchFromRepo(ctx, query, categoryID)
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  query,
						"fields": []string{"name^2", "description"},
					},
				},
				"filter": esFilters(categoryID),
			},
		},
		"size": 50,
	}
	b, _ := json.Marshal(body)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		// index down: serve from the database instead
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("es search failed, using database")
		}
		return s.searchFromRepo(ctx, query, categoryID)
	}
	defer func() { _ = res.Body.Close() }()

	// An error status (missing index, bad query) carries an error body with
	// no hits; treat it like an outage rather than an empty result.
	if res.IsError() {
		if s.Logger != nil {
			s.Logger.WithField("status", res.Status()).Warn("es search response error, using database")
		}
		return s.searchFromRepo(ctx, query, categoryID)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]*entity.Service, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		svc, err := s.Repo.GetService(ctx, h.ID)
		if err != nil {
			return nil, err
		}
		if svc != nil && svc.IsActive {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (s *CatalogService) searchFromRepo(ctx context.Context, query, categoryID string) ([]*entity.Service, error) {
	list, _, err := s.Repo.ListServices(ctx, repository.ServiceFilter{
		ActiveOnly: true,
		CategoryID: categoryID,
		Search:     query,
	})
	return list, err
}

func esFilters(categoryID string) []map[string]any {
	filters := []map[string]any{
		{"term": map[string]any{"is_active": true}},
	}
	if categoryID != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"category_id": categoryID}})
	}
	return filters
}

func (s *CatalogService) indexService(ctx context.Context, svc *entity.Service) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          svc.ID,
		"category_id": svc.CategoryID,
		"name":        svc.Name,
		"description": svc.Description,
		"is_active":   svc.IsActive,
		"updated_at":  svc.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: svc.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("service_id", svc.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("service_id", svc.ID).Warn("es index response error")
	}
}
