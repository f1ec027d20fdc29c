package holiday

import (
	"go-leavedesk/internal/employee"
	"go-leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	holidays := r.Group("/holidays")
	holidays.Use(middleware.AuthMiddleware())
	{
		holidays.GET("", handler.GetAll)
		holidays.POST("", middleware.RequireRole(employee.RoleAdmin), handler.Create)
		holidays.DELETE("/:id", middleware.RequireRole(employee.RoleAdmin), handler.Delete)
	}
}
