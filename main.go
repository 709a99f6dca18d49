package main

import (
	"context"
	"log"

	"github.com/panjf2000/ants/v2"

	"github.com/hyunwoo-p/rinkmate/config"
	_ "github.com/hyunwoo-p/rinkmate/docs"
	"github.com/hyunwoo-p/rinkmate/internal/audit"
	"github.com/hyunwoo-p/rinkmate/internal/auth"
	"github.com/hyunwoo-p/rinkmate/internal/club"
	"github.com/hyunwoo-p/rinkmate/internal/logger"
	"github.com/hyunwoo-p/rinkmate/internal/match"
	"github.com/hyunwoo-p/rinkmate/internal/notification"
	"github.com/hyunwoo-p/rinkmate/internal/points"
	"github.com/hyunwoo-p/rinkmate/internal/user"
	"github.com/hyunwoo-p/rinkmate/pkg/cache"
	"github.com/hyunwoo-p/rinkmate/routes"
)

// @title Rinkmate REST API
// @version 1.0
// @description Ice-hockey pickup match scheduling, points wallet and waitlist backend.
// @host localhost:8090
// @BasePath /api
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	appLogger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(appLogger)
	defer appLogger.Sync()

	err = config.DB.AutoMigrate(
		&user.User{}, &user.RefreshToken{},
		&club.Club{}, &club.ClubMember{},
		&match.Match{}, &match.Participant{}, &match.RefundRule{},
		&points.Wallet{}, &points.PointTransaction{}, &points.ChargeRequest{},
		&notification.Notification{},
		&audit.AuditEvent{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	// Postgres can enforce one live participant row per (match, user)
	// even though canceled rows are only soft-deleted.
	if config.DB.Dialector.Name() == "postgres" {
		config.DB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_live
			ON participants (match_id, user_id) WHERE deleted_at IS NULL`)
	}

	matchRepo := match.NewGormMatchRepository(config.DB)
	if err := matchRepo.SeedRefundRules(match.DefaultRefundRules()); err != nil {
		log.Fatalf("Failed to seed refund rules: %v", err)
	}

	seatCache := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	var notifier notification.Notifier = notification.NoopNotifier{}
	if cfg.AMQP.URL != "" {
		notifier = notification.NewAMQPNotifier(cfg.AMQP.URL)

		consumer := notification.NewConsumer(cfg.AMQP.URL, config.DB)
		go consumer.Run(context.Background())
	}

	notifyPool, err := ants.NewPool(8)
	if err != nil {
		log.Fatalf("Failed to create notification pool: %v", err)
	}
	defer notifyPool.Release()

	auditor := audit.NewRecorder(config.DB)
	engine := match.NewEngine(config.DB, notifier, seatCache, notifyPool)

	pointsRepo := points.NewGormPointsRepository(config.DB)
	clubRepo := club.NewGormClubRepository(config.DB)
	authRepo := auth.NewGormAuthRepository(config.DB)

	ctrl := routes.Controllers{
		Auth:   auth.NewAuthController(authRepo, pointsRepo, cfg),
		Points: points.NewPointsController(pointsRepo, auditor, notifier),
		Club:   club.NewClubController(clubRepo, notifier),
		Match:  match.NewMatchController(matchRepo, engine, seatCache, auditor),
	}

	scheduler, err := match.StartScheduler(matchRepo, cfg.Scheduler.IntervalSeconds)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Warn("scheduler shutdown: %v", err)
		}
	}()

	r := routes.SetupRoutes(config.DB, cfg.JWT.AccessTokenSecret, ctrl)

	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

func buildLogger(cfg *config.Config) (*logger.Logger, error) {
	level := logger.ParseLogLevel(cfg.Log.Level)
	if cfg.Log.File != "" {
		return logger.NewWithFileRotation(level, cfg.Log.File)
	}
	return logger.New(level)
}
