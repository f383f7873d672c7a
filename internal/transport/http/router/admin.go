package router

import (
	"github.com/gin-gonic/gin"

	"realty-api/internal/domain"
	mdw "realty-api/internal/transport/http/middleware"
)

// mountAdmin 管理端统一要求 admin 角色
func mountAdmin(api *gin.RouterGroup, reg *Registry) {
	admin := api.Group("/admin")
	admin.Use(mdw.RequireRole(domain.RoleAdmin))
	reg.MountAllAdmin(admin)
}
