package calendar

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
	cal := r.Group("/calendar")
	cal.Use(middleware.AuthMiddleware())
	{
		cal.GET("/events", middleware.RequirePermission(resolver, permission.SlugCalendarView), handler.GetEvents)
		cal.GET("/holidays", middleware.RequirePermission(resolver, permission.SlugCalendarView), handler.ListHolidays)
		cal.POST("/holidays", middleware.RequirePermission(resolver, permission.SlugHolidaysManage), handler.CreateHoliday)
	}
}
