package auth

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(rg *gin.RouterGroup, controller *AuthController, authMw gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", controller.Register)
		auth.POST("/login", controller.Login)
		auth.POST("/refresh", controller.RefreshToken)

		protected := auth.Group("")
		protected.Use(authMw)
		{
			protected.GET("/me", controller.Me)
			protected.POST("/logout", controller.Logout)
			protected.POST("/push-token", controller.RegisterPushToken)
		}
	}
}
