package handlers

import (
	"net/http"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ineedllc/ineed-api/internal/application"
	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/internal/domain/repository"
	"github.com/ineedllc/ineed-api/pkg/response"
	"github.com/ineedllc/ineed-api/pkg/validation"
)

type CatalogHandler struct {
	Svc    *application.CatalogService
	Images *UserHandler // shares the bucket upload path
	Logger *logrus.Logger
}

func NewCatalogHandler(svc *application.CatalogService, gcs *storage.Client, bucket string, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		Svc:    svc,
		Images: &UserHandler{GCS: gcs, Bucket: bucket, Logger: logger},
		Logger: logger,
	}
}

type categoryRequest struct {
	Name     string `json:"name" binding:"required"`
	Subtitle string `json:"subtitle"`
	IconURL  string `json:"icon_url" binding:"omitempty,url"`
	IsActive *bool  `json:"is_active"`
}

type serviceRequest struct {
	CategoryID  string   `json:"category_id" binding:"required,uuid"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	MainPrice   float64  `json:"main_price" binding:"required,gte=0"`
	OfferPrice  *float64 `json:"offer_price" binding:"omitempty,gte=0"`
	Discount    *float64 `json:"discount" binding:"omitempty,gte=0,lte=100"`
	ImageURL    string   `json:"image_url" binding:"omitempty,url"`
	IsActive    *bool    `json:"is_active"`
}

type hourRequest struct {
	DayOfWeek int    `json:"day_of_week" binding:"gte=0,lte=6"`
	FromTime  string `json:"from_time"`
	ToTime    string `json:"to_time"`
	IsClosed  bool   `json:"is_closed"`
}

type hoursBulkRequest struct {
	Hours []hourRequest `json:"hours" binding:"required,min=1,dive"`
}

type featureRequest struct {
	Title            string   `json:"title" binding:"required"`
	Subtitle         string   `json:"subtitle"`
	Price            float64  `json:"price" binding:"required,gte=0"`
	ImageURL         string   `json:"image_url" binding:"omitempty,url"`
	EstimateTime     *float64 `json:"estimate_time" binding:"omitempty,gte=0"`
	EstimateTimeUnit string   `json:"estimate_time_unit" binding:"omitempty,oneof=minute hour day"`
}

func categoryView(c *entity.ServiceCategory) gin.H {
	return gin.H{
		"id":         c.ID,
		"name":       c.Name,
		"subtitle":   c.Subtitle,
		"icon_url":   c.IconURL,
		"is_active":  c.IsActive,
		"created_at": c.CreatedAt,
		"updated_at": c.UpdatedAt,
	}
}

func serviceView(s *entity.Service) gin.H {
	return gin.H{
		"id":          s.ID,
		"category_id": s.CategoryID,
		"name":        s.Name,
		"description": s.Description,
		"main_price":  s.MainPrice,
		"offer_price": s.OfferPrice,
		"discount":    s.Discount,
		"image_url":   s.ImageURL,
		"is_active":   s.IsActive,
		"created_at":  s.CreatedAt,
		"updated_at":  s.UpdatedAt,
	}
}

func hourView(h *entity.ServiceHour) gin.H {
	return gin.H{
		"id":          h.ID,
		"service_id":  h.ServiceID,
		"day_of_week": h.DayOfWeek,
		"from_time":   h.FromTime,
		"to_time":     h.ToTime,
		"is_closed":   h.IsClosed,
	}
}

func featureView(f *entity.ServiceFeature) gin.H {
	return gin.H{
		"id":                 f.ID,
		"service_id":         f.ServiceID,
		"title":              f.Title,
		"subtitle":           f.Subtitle,
		"price":              f.Price,
		"image_url":          f.ImageURL,
		"estimate_time":      f.EstimateTime,
		"estimate_time_unit": f.EstimateTimeUnit,
		"created_at":         f.CreatedAt,
	}
}

// ---- public catalog ----

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	page, limit := response.PageParams(c)
	list, total, err := h.Svc.ListCategories(c.Request.Context(), repository.CategoryFilter{
		ActiveOnly: true,
		Search:     c.Query("search"),
		Offset:     (page - 1) * limit,
		Limit:      limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, cat := range list {
		out = append(out, categoryView(cat))
	}
	response.Success(c, http.StatusOK, out, "categories", response.NewPageMeta(page, limit, total))
}

func (h *CatalogHandler) ListServices(c *gin.Context) {
	page, limit := response.PageParams(c)
	list, total, err := h.Svc.ListServices(c.Request.Context(), repository.ServiceFilter{
		ActiveOnly: true,
		CategoryID: c.Query("category_id"),
		Search:     c.Query("search"),
		Offset:     (page - 1) * limit,
		Limit:      limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, s := range list {
		out = append(out, serviceView(s))
	}
	response.Success(c, http.StatusOK, out, "services", response.NewPageMeta(page, limit, total))
}

// SearchServices answers GET /services/search?q=...&category_id=...
func (h *CatalogHandler) SearchServices(c *gin.Context) {
	list, err := h.Svc.SearchServices(c.Request.Context(), c.Query("q"), c.Query("category_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, s := range list {
		out = append(out, serviceView(s))
	}
	response.Success(c, http.StatusOK, out, "services", nil)
}

// ServiceDetail returns a service with its hours and features.
func (h *CatalogHandler) ServiceDetail(c *gin.Context) {
	id := c.Param("id")
	svc, err := h.Svc.GetService(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	hours, err := h.Svc.ListHours(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	features, err := h.Svc.ListFeatures(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	hs := make([]gin.H, 0, len(hours))
	for _, hr := range hours {
		hs = append(hs, hourView(hr))
	}
	fs := make([]gin.H, 0, len(features))
	for _, f := range features {
		fs = append(fs, featureView(f))
	}
	out := serviceView(svc)
	out["hours"] = hs
	out["features"] = fs
	response.Success(c, http.StatusOK, out, "service", nil)
}

// ---- admin catalog ----

func (h *CatalogHandler) AdminListCategories(c *gin.Context) {
	page, limit := response.PageParams(c)
	list, total, err := h.Svc.ListCategories(c.Request.Context(), repository.CategoryFilter{
		Search: c.Query("search"),
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, cat := range list {
		out = append(out, categoryView(cat))
	}
	response.Success(c, http.StatusOK, out, "categories", response.NewPageMeta(page, limit, total))
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	cat, err := h.Svc.CreateCategory(c.Request.Context(), application.CategoryInput{
		Name:     req.Name,
		Subtitle: req.Subtitle,
		IconURL:  req.IconURL,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, categoryView(cat), "category_created", nil)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	cat, err := h.Svc.UpdateCategory(c.Request.Context(), c.Param("id"), application.CategoryInput{
		Name:     req.Name,
		Subtitle: req.Subtitle,
		IconURL:  req.IconURL,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, categoryView(cat), "category_updated", nil)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.Svc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "category_deleted", nil)
}

// UploadCategoryIcon stores a multipart "image" in the bucket and returns the
// URL for use in a subsequent create/update.
func (h *CatalogHandler) UploadCategoryIcon(c *gin.Context) {
	url, ok := h.Images.storeImage(c, "categories")
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url}, "icon_uploaded", nil)
}

func (h *CatalogHandler) AdminListServices(c *gin.Context) {
	page, limit := response.PageParams(c)
	list, total, err := h.Svc.ListServices(c.Request.Context(), repository.ServiceFilter{
		CategoryID: c.Query("category_id"),
		Search:     c.Query("search"),
		Offset:     (page - 1) * limit,
		Limit:      limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, s := range list {
		out = append(out, serviceView(s))
	}
	response.Success(c, http.StatusOK, out, "services", response.NewPageMeta(page, limit, total))
}

func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	svc, err := h.Svc.CreateService(c.Request.Context(), application.ServiceInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		MainPrice:   req.MainPrice,
		OfferPrice:  req.OfferPrice,
		Discount:    req.Discount,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, serviceView(svc), "service_created", nil)
}

func (h *CatalogHandler) UpdateService(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	svc, err := h.Svc.UpdateService(c.Request.Context(), c.Param("id"), application.ServiceInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		MainPrice:   req.MainPrice,
		OfferPrice:  req.OfferPrice,
		Discount:    req.Discount,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, serviceView(svc), "service_updated", nil)
}

func (h *CatalogHandler) DeleteService(c *gin.Context) {
	if err := h.Svc.DeleteService(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "service_deleted", nil)
}

func (h *CatalogHandler) UploadServiceImage(c *gin.Context) {
	url, ok := h.Images.storeImage(c, "services")
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url}, "image_uploaded", nil)
}

// SaveHour upserts one weekday window; 201 when the day had no row yet.
func (h *CatalogHandler) SaveHour(c *gin.Context) {
	var req hourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	hr, created, err := h.Svc.SaveHour(c.Request.Context(), application.HourInput{
		ServiceID: c.Param("id"),
		DayOfWeek: req.DayOfWeek,
		FromTime:  req.FromTime,
		ToTime:    req.ToTime,
		IsClosed:  req.IsClosed,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	msg := "hour_updated"
	if created {
		status = http.StatusCreated
		msg = "hour_created"
	}
	response.Success(c, status, hourView(hr), msg, nil)
}

func (h *CatalogHandler) SaveHoursBulk(c *gin.Context) {
	var req hoursBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	hours := make([]application.HourInput, 0, len(req.Hours))
	for _, in := range req.Hours {
		hours = append(hours, application.HourInput{
			DayOfWeek: in.DayOfWeek,
			FromTime:  in.FromTime,
			ToTime:    in.ToTime,
			IsClosed:  in.IsClosed,
		})
	}
	if err := h.Svc.SaveHoursBulk(c.Request.Context(), c.Param("id"), hours); err != nil {
		writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"saved": len(hours)}, "hours_saved", nil)
}

func (h *CatalogHandler) ListHours(c *gin.Context) {
	hours, err := h.Svc.ListHours(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(hours))
	for _, hr := range hours {
		out = append(out, hourView(hr))
	}
	response.Success(c, http.StatusOK, out, "hours", nil)
}

func (h *CatalogHandler) CreateFeature(c *gin.Context) {
	var req featureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", validation.ToDetails(err))
		return
	}
	f, err := h.Svc.CreateFeature(c.Request.Context(), application.FeatureInput{
		ServiceID:        c.Param("id"),
		Title:            req.Title,
		Subtitle:         req.Subtitle,
		Price:            req.Price,
		ImageURL:         req.ImageURL,
		EstimateTime:     req.EstimateTime,
		EstimateTimeUnit: req.EstimateTimeUnit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, featureView(f), "feature_created", nil)
}

func (h *CatalogHandler) ListFeatures(c *gin.Context) {
	features, err := h.Svc.ListFeatures(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(features))
	for _, f := range features {
		out = append(out, featureView(f))
	}
	response.Success(c, http.StatusOK, out, "features", nil)
}
