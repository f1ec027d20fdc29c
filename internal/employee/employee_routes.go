package employee

import (
	"go-leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("", handler.GetAll)
		employees.GET("/:id", handler.GetById)
		employees.POST("", middleware.RequireRole(RoleAdmin), handler.Create)
		employees.PUT("/:id", middleware.RequireRole(RoleAdmin), handler.Update)
		employees.DELETE("/:id", middleware.RequireRole(RoleAdmin), handler.Delete)
	}
}
