package leaverequest

import (
	"go-leavedesk/internal/employee"
	"go-leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	requests := r.Group("/leave-requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.GET("", handler.GetAll)
		requests.GET("/:id", handler.GetById)
		if rdb != nil {
			requests.POST("", middleware.Idempotency(rdb), handler.Submit)
		} else {
			requests.POST("", handler.Submit)
		}
		requests.PUT("/:id/status", middleware.RequireRole(employee.RoleAdmin), handler.Decide)
	}
}
