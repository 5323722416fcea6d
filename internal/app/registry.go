package app

import (
	"database/sql"

	"go-hrportal/internal/calendar"
	"go-hrportal/internal/leavebalance"
	"go-hrportal/internal/leaverequest"
	"go-hrportal/internal/leavetype"
	"go-hrportal/internal/messaging/kafka"
	"go-hrportal/internal/middleware"
	"go-hrportal/internal/permission"
	"go-hrportal/internal/shared/counter"
	"go-hrportal/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	permissionRepo := permission.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	leaveBalanceRepo := leavebalance.NewRepository(gormDB)
	leaveRequestRepo := leaverequest.NewRepository(gormDB)
	calendarRepo := calendar.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Permission Core ---
	enforcer, err := permission.NewEnforcer()
	if err != nil {
		return err
	}
	permissionService := permission.NewService(permissionRepo, enforcer, rdb)

	// --- Services ---
	userService := user.NewService(db, userRepo, counterRepo)
	leaveTypeService := leavetype.NewService(db, leaveTypeRepo, rdb)
	leaveBalanceService := leavebalance.NewService(db, leaveBalanceRepo, userRepo, leaveTypeRepo)
	leaveRequestService := leaverequest.NewServiceWithOutbox(
		db,
		leaveRequestRepo,
		leaveBalanceRepo,
		leaveTypeRepo,
		userRepo,
		counterRepo,
		outboxRepo,
	)
	calendarService := calendar.NewService(db, calendarRepo)

	// --- Handlers ---
	permissionHandler := permission.NewHandler(permissionService)
	userHandler := user.NewHandler(userService)
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService)
	leaveBalanceHandler := leavebalance.NewHandler(leaveBalanceService)
	leaveRequestHandler := leaverequest.NewHandler(leaveRequestService)
	calendarHandler := calendar.NewHandler(calendarService)

	// --- Routes Registration ---
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))
	router.Use(middleware.RateLimitByIP(rate.Limit(10), 30))

	api := router.Group("/api/v1")
	{
		permission.RegisterRoutes(api, permissionHandler, permissionService)
		user.RegisterRoutes(api, userHandler, permissionService)
		leavetype.RegisterRoutes(api, leaveTypeHandler, permissionService)
		leavebalance.RegisterRoutes(api, leaveBalanceHandler, permissionService)
		leaverequest.RegisterRoutes(api, leaveRequestHandler, permissionService, rdb)
		calendar.RegisterRoutes(api, calendarHandler, permissionService)
	}

	return nil
}
