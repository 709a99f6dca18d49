package club

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(rg *gin.RouterGroup, controller *ClubController, authMw gin.HandlerFunc) {
	clubs := rg.Group("/clubs")
	clubs.Use(authMw)
	{
		clubs.POST("", controller.CreateClub)
		clubs.GET("", controller.ListClubs)
		clubs.POST("/:id/join", controller.JoinClub)
		clubs.GET("/:id/members", controller.ListMembers)
		clubs.POST("/:id/members/:memberId/approve", controller.ApproveMember)
		clubs.POST("/:id/members/:memberId/reject", controller.RejectMember)
	}
}
