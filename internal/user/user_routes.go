package user

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
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("", middleware.RequirePermission(resolver, permission.SlugUsersView), handler.GetAll)
		users.GET("/:id", middleware.RequirePermission(resolver, permission.SlugUsersView), handler.GetById)
		users.POST("", middleware.RequirePermission(resolver, permission.SlugUsersManage), handler.Create)
		users.PUT("/:id", middleware.RequirePermission(resolver, permission.SlugUsersManage), handler.Update)
		users.PUT("/:id/manager", middleware.RequirePermission(resolver, permission.SlugUsersManage), handler.SetManager)
		users.DELETE("/:id", middleware.RequirePermission(resolver, permission.SlugUsersManage), handler.Deactivate)
	}
}
