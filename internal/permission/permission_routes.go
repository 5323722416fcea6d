package permission

import (
	"go-hrportal/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, resolver Service) {
	roles := r.Group("/roles")
	roles.Use(middleware.AuthMiddleware())
	{
		roles.GET("", middleware.RequirePermission(resolver, SlugRolesManage), handler.ListRoles)
		roles.GET("/:id", middleware.RequirePermission(resolver, SlugRolesManage), handler.GetRole)
		roles.POST("", middleware.RequirePermission(resolver, SlugRolesManage), handler.CreateRole)
		roles.PUT("/:id", middleware.RequirePermission(resolver, SlugRolesManage), handler.UpdateRole)
		roles.DELETE("/:id", middleware.RequirePermission(resolver, SlugRolesManage), handler.DeleteRole)
	}

	perms := r.Group("/permissions")
	perms.Use(middleware.AuthMiddleware())
	{
		perms.GET("", middleware.RequirePermission(resolver, SlugRolesManage), handler.ListPermissions)
	}

	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.POST("/:id/roles", middleware.RequirePermission(resolver, SlugRolesManage), handler.AssignRole)
		users.DELETE("/:id/roles/:roleId", middleware.RequirePermission(resolver, SlugRolesManage), handler.UnassignRole)
		users.PUT("/:id/overrides", middleware.RequirePermission(resolver, SlugPermissionsManage), handler.SetOverride)
		users.DELETE("/:id/overrides/:slug", middleware.RequirePermission(resolver, SlugPermissionsManage), handler.ClearOverride)
		users.GET("/:id/permissions", middleware.RequirePermission(resolver, SlugPermissionsManage), handler.GetEffectivePermissions)
		users.GET("/:id/permissions/check", middleware.RequirePermission(resolver, SlugPermissionsManage), handler.Check)
	}
}
