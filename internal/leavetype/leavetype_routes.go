package leavetype

import (
	"go-hrportal/internal/middleware"
	"go-hrportal/internal/permission"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	resolver permission.Service,
) {
	types := r.Group("/leave-types")
	types.Use(middleware.AuthMiddleware())
	{
		types.GET("", middleware.RequirePermission(resolver, permission.SlugLeavesView), handler.GetAll)
		types.GET("/:id", middleware.RequirePermission(resolver, permission.SlugLeavesView), handler.GetById)
		types.POST("", middleware.RequirePermission(resolver, permission.SlugLeavesManageTypes), handler.Create)
		types.PUT("/:id", middleware.RequirePermission(resolver, permission.SlugLeavesManageTypes), handler.Update)
	}
}
