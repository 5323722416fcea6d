package leavebalance

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
	balances := r.Group("/leave-balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.GET("/me", handler.GetMine)
		balances.GET("/users/:id", middleware.RequirePermission(resolver, permission.SlugBalancesView), handler.GetForUser)
		balances.POST("/initialize", middleware.RequirePermission(resolver, permission.SlugBalancesManage), handler.Initialize)
		balances.POST("/rollover", middleware.RequirePermission(resolver, permission.SlugBalancesManage), handler.Rollover)
	}
}
