package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/hyunwoo-p/rinkmate/internal/auth"
	"github.com/hyunwoo-p/rinkmate/internal/club"
	"github.com/hyunwoo-p/rinkmate/internal/match"
	"github.com/hyunwoo-p/rinkmate/internal/middleware"
	"github.com/hyunwoo-p/rinkmate/internal/points"
)

// Controllers bundles the wired feature controllers so main owns all
// construction and the router only mounts them.
type Controllers struct {
	Auth   *auth.AuthController
	Points *points.PointsController
	Club   *club.ClubController
	Match  *match.MatchController
}

func SetupRoutes(db *gorm.DB, jwtSecret string, ctrl Controllers) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authMw := middleware.AuthMiddleware(jwtSecret, db)

	api := r.Group("/api")
	auth.RegisterRoutes(api, ctrl.Auth, authMw)
	points.RegisterRoutes(api, ctrl.Points, authMw)
	club.RegisterRoutes(api, ctrl.Club, authMw)
	match.RegisterRoutes(api, ctrl.Match, authMw)

	admin := api.Group("/admin")
	admin.Use(authMw, middleware.AdminMiddleware(db))
	points.RegisterAdminRoutes(admin, ctrl.Points)
	match.RegisterAdminRoutes(admin, ctrl.Match)

	return r
}
