package dashboard

import (
	"go-hrms/internal/middleware"
	"go-hrms/internal/user"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	board := r.Group("/dashboard")
	board.Use(middleware.AuthMiddleware())
	board.Use(middleware.RoleMiddleware(user.RoleAdmin, user.RoleHR))
	{
		board.GET("/roster", h.Roster)
		board.GET("/stats", h.Stats)
	}
}
