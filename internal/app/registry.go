package app

import (
	"database/sql"
	"net/http"
	"time"

	"go-leavedesk/internal/auth"
	"go-leavedesk/internal/employee"
	"go-leavedesk/internal/holiday"
	"go-leavedesk/internal/leaverequest"
	"go-leavedesk/internal/messaging/kafka"
	"go-leavedesk/internal/middleware"
	"go-leavedesk/internal/shared/clock"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	clk := clock.System()

	router.Use(middleware.RequestID())

	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	leaveRequestRepo := leaverequest.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	employeeService := employee.NewService(db, employeeRepo, rdb)
	holidayService := holiday.NewService(db, holidayRepo, rdb)
	leaveRequestService := leaverequest.NewServiceWithOutbox(
		db, leaveRequestRepo, employeeRepo, holidayRepo, outboxRepo, rdb, clk,
	)
	authService := auth.NewService(db, authRepo, employeeRepo, employeeService, rdb, clk)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	employeeHandler := employee.NewHandler(employeeService)
	holidayHandler := holiday.NewHandler(holidayService)
	leaveRequestHandler := leaverequest.NewHandlerWithRedis(leaveRequestService, rdb)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		employee.RegisterRoutes(api, employeeHandler)
		holiday.RegisterRoutes(api, holidayHandler)
		leaverequest.RegisterRoutes(api, leaveRequestHandler, rdb)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": clk.Now().Format(time.RFC3339),
		})
	})

	return nil
}
