package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/cropshield/cropshield-api/internal/interface/http"
	"github.com/cropshield/cropshield-api/internal/interface/middleware"
)

// RegistrationModule exposes the public signup and verification routes.
type RegistrationModule struct {
	H   *handlers.RegistrationHandler
	RDB *redis.Client
}

func NewRegistrationModule(h *handlers.RegistrationHandler, rdb *redis.Client) *RegistrationModule {
	return &RegistrationModule{H: h, RDB: rdb}
}

func (m *RegistrationModule) Register(rg *gin.RouterGroup) {
	byIP := middleware.KeyByIPAndPath()

	rg.POST("/register",
		middleware.RateLimit(m.RDB, 5, time.Minute, byIP), m.H.Register)
	rg.POST("/resend-verification-email",
		middleware.RateLimit(m.RDB, 5, time.Minute, byIP), m.H.Resend)
	rg.GET("/verify-email",
		middleware.RateLimit(m.RDB, 30, time.Minute, byIP), m.H.VerifyEmail)
	rg.GET("/approve-expert-email",
		middleware.RateLimit(m.RDB, 30, time.Minute, byIP), m.H.ApproveExpertEmail)
}
