package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ineedllc/ineed-api/internal/container"
	"github.com/ineedllc/ineed-api/internal/domain/entity"
	handlers "github.com/ineedllc/ineed-api/internal/interface/http"
	"github.com/ineedllc/ineed-api/internal/interface/middleware"
	"github.com/ineedllc/ineed-api/pkg/helpers"
)

// CatalogModule wires the service catalog.
// Public: category/service listings, service detail, search.
// Admin: CRUD for categories, services, hours, and features.
type CatalogModule struct {
	Handler *handlers.CatalogHandler
	JWT     *helpers.JWTManager
}

func NewCatalogModule(h *handlers.CatalogHandler, jwt *helpers.JWTManager) *CatalogModule {
	return &CatalogModule{Handler: h, JWT: jwt}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	browseLimiter := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	pub := rg.Group("/catalog")
	pub.Use(browseLimiter)
	{
		pub.GET("/categories", m.Handler.ListCategories)
		pub.GET("/services", m.Handler.ListServices)
		pub.GET("/services/search", m.Handler.SearchServices)
		pub.GET("/services/:id", m.Handler.ServiceDetail)
	}

	admin := rg.Group("/admin/catalog")
	admin.Use(middleware.Auth(m.JWT), middleware.RequireRole(string(entity.RoleAdmin)))
	admin.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		admin.GET("/categories", m.Handler.AdminListCategories)
		admin.POST("/categories", m.Handler.CreateCategory)
		admin.PUT("/categories/:id", m.Handler.UpdateCategory)
		admin.DELETE("/categories/:id", m.Handler.DeleteCategory)
		admin.POST("/categories/icon", m.Handler.UploadCategoryIcon)

		admin.GET("/services", m.Handler.AdminListServices)
		admin.POST("/services", m.Handler.CreateService)
		admin.PUT("/services/:id", m.Handler.UpdateService)
		admin.DELETE("/services/:id", m.Handler.DeleteService)
		admin.POST("/services/image", m.Handler.UploadServiceImage)

		admin.GET("/services/:id/hours", m.Handler.ListHours)
		admin.PUT("/services/:id/hours", m.Handler.SaveHour)
		admin.PUT("/services/:id/hours/bulk", m.Handler.SaveHoursBulk)

		admin.GET("/services/:id/features", m.Handler.ListFeatures)
		admin.POST("/services/:id/features", m.Handler.CreateFeature)
	}
}
