package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/cropshield/cropshield-api/internal/interface/http"
	"github.com/cropshield/cropshield-api/internal/interface/middleware"
	"github.com/cropshield/cropshield-api/pkg/helpers"
)

// AccountModule exposes login, password reset, and the authenticated
// profile routes.
type AccountModule struct {
	H   *handlers.AccountHandler
	RDB *redis.Client
	JWT *helpers.JWTManager
}

func NewAccountModule(h *handlers.AccountHandler, rdb *redis.Client, jwt *helpers.JWTManager) *AccountModule {
	return &AccountModule{H: h, RDB: rdb, JWT: jwt}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	byIP := middleware.KeyByIPAndPath()

	rg.POST("/login",
		middleware.RateLimit(m.RDB, 10, time.Minute, byIP), m.H.DoLogin)
	rg.POST("/forgot-password",
		middleware.RateLimit(m.RDB, 5, time.Minute, byIP), m.H.ForgotPassword)
	rg.POST("/reset-password",
		middleware.RateLimit(m.RDB, 5, time.Minute, byIP), m.H.ResetPassword)

	auth := rg.Group("")
	auth.Use(middleware.Auth(m.JWT),
		middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByAccountID()))
	auth.GET("/profile", m.H.GetProfile)
	auth.GET("/admins", m.H.ListAdmins)
}
