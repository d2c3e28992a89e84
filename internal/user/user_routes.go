package user

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.POST("", middleware.RoleMiddleware(RoleAdmin, RoleHR), h.Register)
		users.GET("", middleware.RoleMiddleware(RoleAdmin, RoleHR), h.GetAll)
		users.GET("/:id", h.GetByID)
		users.DELETE("/:id", middleware.RoleMiddleware(RoleAdmin), h.Delete)
	}
}
