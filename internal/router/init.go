package router

import (
	"github.com/cropshield/cropshield-api/internal/application"
	"github.com/cropshield/cropshield-api/internal/container"
	"github.com/cropshield/cropshield-api/internal/infrastructure/postgres"
	"github.com/cropshield/cropshield-api/internal/infrastructure/queue"
	handlers "github.com/cropshield/cropshield-api/internal/interface/http"
	"github.com/cropshield/cropshield-api/internal/router/modules"
)

// InitModules wires repositories, services and handlers from the container
// singletons and registers every feature module.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	accountRepo := postgres.NewAccountRepository(container.GetPGPool())
	notifier := queue.NewEmailNotifier(container.GetRabbitPub(), cfg.MailSendEnabled)

	regSvc := application.NewRegistrationService(
		accountRepo,
		notifier,
		logger,
		application.ResendPolicy{Lifetime: cfg.TokenLifetime, Grace: cfg.ResendGrace},
		cfg.VerifyEmailURL,
		cfg.ApproveExpertURL,
		cfg.AdminEmail,
	)
	loginSvc := application.NewLoginService(accountRepo, container.GetJWT(), logger)

	regHandler := handlers.NewRegistrationHandler(regSvc, logger)
	acctHandler := handlers.NewAccountHandler(loginSvc, accountRepo, notifier, container.GetRedis(), logger, cfg.ResetPasswordURL)
	adminHandler := handlers.NewAdminHandler(regSvc, logger)

	rdb := container.GetRedis()
	jwt := container.GetJWT()

	r.Add(modules.NewRegistrationModule(regHandler, rdb))
	r.Add(modules.NewAccountModule(acctHandler, rdb, jwt))
	r.Add(modules.NewAdminModule(adminHandler, rdb, jwt))
}
