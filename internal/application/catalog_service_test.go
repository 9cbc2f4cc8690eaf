package application_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ineedllc/ineed-api/internal/application"
	"github.com/ineedllc/ineed-api/internal/domain/repository"
	"github.com/ineedllc/ineed-api/internal/testutil"
	"github.com/ineedllc/ineed-api/pkg/helpers"
)

func newCatalogService() (*application.CatalogService, *testutil.CatalogRepo, *testutil.FixedClock) {
	clock := testutil.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := testutil.NewCatalogRepo()
	// no Elasticsearch configured: search goes through the repository
	svc := application.NewCatalogService(repo, nil, "", clock, helpers.NewLogger("test", "test"))
	return svc, repo, clock
}

func seedCategory(t *testing.T, svc *application.CatalogService) string {
	t.Helper()
	cat, err := svc.CreateCategory(context.Background(), application.CategoryInput{Name: "Cleaning"})
	require.NoError(t, err)
	return cat.ID
}

func seedService(t *testing.T, svc *application.CatalogService, categoryID, name string) string {
	t.Helper()
	s, err := svc.CreateService(context.Background(), application.ServiceInput{
		CategoryID: categoryID,
		Name:       name,
		MainPrice:  50,
	})
	require.NoError(t, err)
	return s.ID
}

func TestCreateCategoryDefaultsActive(t *testing.T) {
	svc, _, _ := newCatalogService()

	cat, err := svc.CreateCategory(context.Background(), application.CategoryInput{Name: "Cleaning"})
	require.NoError(t, err)
	assert.True(t, cat.IsActive)
	assert.NotEmpty(t, cat.ID)
}

func TestUpdateCategoryNotFound(t *testing.T) {
	svc, _, _ := newCatalogService()

	_, err := svc.UpdateCategory(context.Background(), "missing", application.CategoryInput{Name: "x"})
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestCreateServiceRequiresCategory(t *testing.T) {
	svc, _, _ := newCatalogService()

	_, err := svc.CreateService(context.Background(), application.ServiceInput{
		CategoryID: "missing",
		Name:       "Deep clean",
		MainPrice:  80,
	})
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestServiceListingFilters(t *testing.T) {
	svc, _, _ := newCatalogService()
	ctx := context.Background()
	catID := seedCategory(t, svc)
	seedService(t, svc, catID, "Deep clean")
	id := seedService(t, svc, catID, "Window wash")

	inactive := false
	_, err := svc.UpdateService(ctx, id, application.ServiceInput{
		CategoryID: catID, Name: "Window wash", MainPrice: 50, IsActive: &inactive,
	})
	require.NoError(t, err)

	list, total, err := svc.ListServices(ctx, repository.ServiceFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Deep clean", list[0].Name)

	list, total, err = svc.ListServices(ctx, repository.ServiceFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 2)
}

func TestSearchServicesFallsBackToRepository(t *testing.T) {
	svc, _, _ := newCatalogService()
	catID := seedCategory(t, svc)
	seedService(t, svc, catID, "Deep clean")
	seedService(t, svc, catID, "Window wash")

	list, err := svc.SearchServices(context.Background(), "deep", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Deep clean", list[0].Name)
}

func TestSearchServicesErrorResponseFallsBack(t *testing.T) {
	// Simulate a lost index: the node answers, but every search returns an
	// error document instead of hits.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception","reason":"no such index [services]"},"status":404}`))
	}))
	defer srv.Close()

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	clock := testutil.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := testutil.NewCatalogRepo()
	svc := application.NewCatalogService(repo, es, "services", clock, helpers.NewLogger("test", "test"))

	catID := seedCategory(t, svc)
	seedService(t, svc, catID, "Deep clean")
	seedService(t, svc, catID, "Window wash")

	list, err := svc.SearchServices(context.Background(), "deep", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Deep clean", list[0].Name)
}

func TestSaveHourUpserts(t *testing.T) {
	svc, _, _ := newCatalogService()
	ctx := context.Background()
	catID := seedCategory(t, svc)
	id := seedService(t, svc, catID, "Deep clean")

	in := application.HourInput{ServiceID: id, DayOfWeek: 1, FromTime: "09:00:00", ToTime: "17:00:00"}
	_, created, err := svc.SaveHour(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)

	in.ToTime = "18:00:00"
	hr, created, err := svc.SaveHour(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "18:00:00", hr.ToTime)

	hours, err := svc.ListHours(ctx, id)
	require.NoError(t, err)
	require.Len(t, hours, 1)
	assert.Equal(t, "18:00:00", hours[0].ToTime)
}

func TestSaveHourUnknownService(t *testing.T) {
	svc, _, _ := newCatalogService()

	_, _, err := svc.SaveHour(context.Background(), application.HourInput{ServiceID: "missing", DayOfWeek: 1})
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestSaveHoursBulkDefaultsClosedWindows(t *testing.T) {
	svc, _, _ := newCatalogService()
	ctx := context.Background()
	catID := seedCategory(t, svc)
	id := seedService(t, svc, catID, "Deep clean")

	err := svc.SaveHoursBulk(ctx, id, []application.HourInput{
		{DayOfWeek: 0, IsClosed: true},
		{DayOfWeek: 1, FromTime: "09:00:00", ToTime: "17:00:00"},
	})
	require.NoError(t, err)

	hours, err := svc.ListHours(ctx, id)
	require.NoError(t, err)
	require.Len(t, hours, 2)
	assert.Equal(t, "00:00:00", hours[0].FromTime)
	assert.True(t, hours[0].IsClosed)
	assert.Equal(t, "09:00:00", hours[1].FromTime)
}

func TestCreateFeatureDefaultsUnit(t *testing.T) {
	svc, _, _ := newCatalogService()
	ctx := context.Background()
	catID := seedCategory(t, svc)
	id := seedService(t, svc, catID, "Deep clean")

	f, err := svc.CreateFeature(ctx, application.FeatureInput{ServiceID: id, Title: "Oven", Price: 15})
	require.NoError(t, err)
	assert.Equal(t, "hour", f.EstimateTimeUnit)

	features, err := svc.ListFeatures(ctx, id)
	require.NoError(t, err)
	assert.Len(t, features, 1)
}

func TestDeleteServiceNotFound(t *testing.T) {
	svc, _, _ := newCatalogService()

	err := svc.DeleteService(context.Background(), "missing")
	assert.ErrorIs(t, err, application.ErrNotFound)
}
