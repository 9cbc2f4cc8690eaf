package router

import (
	"github.com/ineedllc/ineed-api/internal/application"
	"github.com/ineedllc/ineed-api/internal/container"
	pginfra "github.com/ineedllc/ineed-api/internal/infrastructure/postgres"
	handlers "github.com/ineedllc/ineed-api/internal/interface/http"
	"github.com/ineedllc/ineed-api/internal/router/modules"
)

// InitModules wires repositories, services, and handlers from the container
// singletons and registers every feature module with the registry. Called once
// during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()
	clock := application.SystemClock()
	policy := cfg.OTP()

	users := pginfra.NewUserRepository(pool)
	otps := pginfra.NewOTPRepository(pool)
	resets := pginfra.NewPasswordResetRepository(pool)
	tokens := pginfra.NewRefreshTokenRepository(pool)
	catalog := pginfra.NewCatalogRepository(pool)

	otpSvc := application.NewOTPService(otps, clock, policy, logger)
	tokenSvc := application.NewTokenService(container.GetJWT(), tokens, clock, policy, logger)
	authSvc := application.NewAuthService(
		users, resets, otpSvc, tokenSvc,
		container.GetMailer(), clock, policy, logger, cfg.AppName,
	)
	catalogSvc := application.NewCatalogService(catalog, container.GetES(), cfg.ESServicesIndex, clock, logger)

	authHandler := handlers.NewAuthHandler(authSvc, logger)
	userHandler := handlers.NewUserHandler(authSvc, container.GetGCS(), cfg.GCSBucket, logger)
	catalogHandler := handlers.NewCatalogHandler(catalogSvc, container.GetGCS(), cfg.GCSBucket, logger)

	r.Add(modules.NewAuthModule(authHandler, container.GetJWT()))
	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewCatalogModule(catalogHandler, container.GetJWT()))
}
