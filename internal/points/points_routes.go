package points

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(rg *gin.RouterGroup, controller *PointsController, authMw gin.HandlerFunc) {
	pts := rg.Group("/points")
	pts.Use(authMw)
	{
		pts.GET("/wallet", controller.GetWallet)
		pts.GET("/transactions", controller.ListTransactions)
		pts.POST("/charges", controller.CreateChargeRequest)
		pts.GET("/charges", controller.ListMyChargeRequests)
	}
}

func RegisterAdminRoutes(rg *gin.RouterGroup, controller *PointsController) {
	pts := rg.Group("/points")
	{
		pts.GET("/charges", controller.ListChargeRequestsForAdmin)
		pts.POST("/charges/:id/confirm", controller.ConfirmChargeRequest)
		pts.POST("/charges/:id/reject", controller.RejectChargeRequest)
		pts.POST("/adjust", controller.Adjust)
	}
}
