package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ineedllc/ineed-api/internal/container"
	handlers "github.com/ineedllc/ineed-api/internal/interface/http"
	"github.com/ineedllc/ineed-api/internal/interface/middleware"
	"github.com/ineedllc/ineed-api/pkg/helpers"
)

// UserModule wires the authenticated account surface:
// GET /api/profile, POST /api/profile/image.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.POST("/profile/image", m.Handler.UploadProfileImage)
	}
}
