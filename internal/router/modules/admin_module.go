package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/cropshield/cropshield-api/internal/domain/entity"
	handlers "github.com/cropshield/cropshield-api/internal/interface/http"
	"github.com/cropshield/cropshield-api/internal/interface/middleware"
	"github.com/cropshield/cropshield-api/pkg/helpers"
)

// AdminModule groups the admin-only approval routes behind Auth + role check.
type AdminModule struct {
	H   *handlers.AdminHandler
	RDB *redis.Client
	JWT *helpers.JWTManager
}

func NewAdminModule(h *handlers.AdminHandler, rdb *redis.Client, jwt *helpers.JWTManager) *AdminModule {
	return &AdminModule{H: h, RDB: rdb, JWT: jwt}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("")
	admin.Use(
		middleware.Auth(m.JWT),
		middleware.RequireRole(entity.RoleAdmin),
		middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByAccountID()),
	)
	admin.GET("/pending-experts", m.H.PendingExperts)
	admin.POST("/approve-field-expert", m.H.ApproveExpert)
	admin.POST("/reject-field-expert", m.H.RejectExpert)
}
