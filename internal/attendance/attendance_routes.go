package attendance

import (
	"go-hrms/internal/middleware"
	"go-hrms/internal/user"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, idempotency gin.HandlerFunc) {
	attendances := r.Group("/attendances")
	attendances.Use(middleware.AuthMiddleware())
	{
		attendances.POST("/mark-in", idempotency, h.MarkIn)
		attendances.POST("/mark-out", idempotency, h.MarkOut)
		attendances.POST("/leave", middleware.RoleMiddleware(user.RoleAdmin, user.RoleHR), h.MarkLeave)
		attendances.DELETE("/:id", middleware.RoleMiddleware(user.RoleAdmin), h.Delete)

		attendances.GET("", middleware.RoleMiddleware(user.RoleAdmin, user.RoleHR), h.GetAll)
		attendances.GET("/:id", h.GetByID)
		attendances.GET("/users/:userId", h.GetAllByUser)
		attendances.GET("/users/:userId/daily", h.GetDailySummaries)
		attendances.GET("/users/:userId/absences", h.GetAbsences)
		attendances.GET("/users/:userId/leaves", h.GetLeaves)
		attendances.GET("/users/:userId/short-leaves", h.GetShortLeaves)
	}
}
