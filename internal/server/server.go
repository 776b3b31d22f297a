package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"kanau.app/kanaupoints/internal/config"

	bonusHttp "kanau.app/kanaupoints/internal/modules/bonus/delivery/http"
	bonusService "kanau.app/kanaupoints/internal/modules/bonus/service"

	ledgerHttp "kanau.app/kanaupoints/internal/modules/ledger/delivery/http"
	ledgerRepo "kanau.app/kanaupoints/internal/modules/ledger/repository"
	ledgerService "kanau.app/kanaupoints/internal/modules/ledger/service"

	leaderboardHttp "kanau.app/kanaupoints/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "kanau.app/kanaupoints/internal/modules/leaderboard/repository"
	leaderboardService "kanau.app/kanaupoints/internal/modules/leaderboard/service"
)

type Server struct {
	engine        *gin.Engine
	db            *gorm.DB
	redisClient   *redis.Client
	LedgerService ledgerService.LedgerService
}

func NewServer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Server {
	ledgerRepository := ledgerRepo.NewLedgerRepository(db)
	ledgerSvc := ledgerService.NewLedgerService(ledgerRepository, redisClient, cfg.BalanceCacheTTL)
	ledgerHandler := ledgerHttp.NewLedgerHandler(ledgerSvc)

	bonusSvc := bonusService.NewBonusService(ledgerSvc, int64(cfg.LoginBonusPoints), int64(cfg.ShareBonusPoints))
	bonusHandler := bonusHttp.NewBonusHandler(bonusSvc)

	leaderboardRepository := leaderboardRepo.NewLeaderboardRepository(db)
	leaderboardSvc := leaderboardService.NewLeaderboardService(leaderboardRepository)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc)

	router := gin.New()
	setupCORS(router, cfg.AllowedOrigins)
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	api := router.Group("/api")
	{
		users := api.Group("/users/:user_id")
		{
			users.GET("/points", ledgerHandler.GetBalance)
			users.POST("/points/credit", ledgerHandler.Credit)
			users.POST("/points/debit", ledgerHandler.Debit)
			users.GET("/points/history", ledgerHandler.GetHistory)

			users.POST("/bonus/login", bonusHandler.ClaimLoginBonus)
			users.POST("/bonus/share", bonusHandler.ClaimShareBonus)
		}

		api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)

		admin := api.Group("/admin")
		{
			admin.POST("/reconcile/:user_id", ledgerHandler.Reconcile)
		}
	}

	return &Server{
		engine:        router,
		db:            db,
		redisClient:   redisClient,
		LedgerService: ledgerSvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
