package router

import "github.com/gin-gonic/gin"

// Module is one feature area's slice of the HTTP surface: registration,
// accounts, or admin. Each mounts its own routes and per-route middleware on
// the shared group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
