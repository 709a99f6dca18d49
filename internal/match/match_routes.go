package match

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(rg *gin.RouterGroup, controller *MatchController, authMw gin.HandlerFunc) {
	matches := rg.Group("/matches")
	matches.Use(authMw)
	{
		matches.GET("", controller.ListMatches)
		matches.GET("/:id", controller.GetMatch)
		matches.POST("/:id/join", controller.Join)
		matches.POST("/:id/waitlist", controller.JoinWaitlist)
		matches.POST("/:id/cancel", controller.CancelJoin)
	}
}

func RegisterAdminRoutes(rg *gin.RouterGroup, controller *MatchController) {
	matches := rg.Group("/matches")
	{
		matches.POST("", controller.CreateMatch)
		matches.PUT("/:id", controller.UpdateMatch)
		matches.POST("/:id/cancel", controller.CancelMatch)
	}
}
