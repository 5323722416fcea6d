package leaverequest

import (
	"go-hrportal/internal/middleware"
	"go-hrportal/internal/permission"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	resolver permission.Service,
	rdb *redis.Client,
) {
	leaves := r.Group("/leave-requests")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.GET("/me", middleware.RequirePermission(resolver, permission.SlugLeavesView), handler.GetMine)
		leaves.GET("", middleware.RequirePermission(resolver, permission.SlugLeavesViewAll), handler.GetAll)
		leaves.GET("/:id", middleware.RequirePermission(resolver, permission.SlugLeavesView), handler.GetById)

		leaves.POST("",
			middleware.RequirePermission(resolver, permission.SlugLeavesCreate),
			middleware.RateLimitByUser(rate.Limit(1), 5),
			middleware.Idempotency(rdb),
			handler.Create,
		)

		leaves.POST("/:id/approve", middleware.RequirePermission(resolver, permission.SlugLeavesApprove), handler.ApproveByManager)
		leaves.POST("/:id/reject", middleware.RequirePermission(resolver, permission.SlugLeavesApprove), handler.RejectByManager)
		leaves.POST("/:id/hr-approve", middleware.RequirePermission(resolver, permission.SlugLeavesHrApprove), handler.ApproveByHr)
		leaves.POST("/:id/hr-reject", middleware.RequirePermission(resolver, permission.SlugLeavesHrApprove), handler.RejectByHr)

		leaves.POST("/:id/cancel", middleware.RequirePermission(resolver, permission.SlugLeavesCreate), handler.Cancel)
		leaves.POST("/:id/request-cancellation", middleware.RequirePermission(resolver, permission.SlugLeavesCreate), handler.RequestCancellation)
		leaves.POST("/:id/approve-cancellation", middleware.RequirePermission(resolver, permission.SlugLeavesHrApprove), handler.ApproveCancellation)
		leaves.POST("/:id/reject-cancellation", middleware.RequirePermission(resolver, permission.SlugLeavesHrApprove), handler.RejectCancellation)
	}
}
