package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/kitcsbs/go-tracker/internal/api/handlers"
	"github.com/kitcsbs/go-tracker/internal/config"
	"github.com/kitcsbs/go-tracker/internal/fetch"
	"github.com/kitcsbs/go-tracker/internal/models"
	"github.com/kitcsbs/go-tracker/internal/providers"
	"github.com/kitcsbs/go-tracker/internal/repository"
	"github.com/kitcsbs/go-tracker/internal/service"
	"github.com/kitcsbs/go-tracker/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Setup(router *gin.Engine, cfg *config.Config) {
	// Initialize database
	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Initialize components
	repo := repository.NewStudentRepository(db)
	client := fetch.NewClient(cfg.ScrapeTimeout, cfg.UserAgent)

	provs := []providers.Provider{
		providers.NewLeetCode(client),
		providers.NewCodeChef(client),
		providers.NewCodeforces(client),
		providers.NewGitHub(client, cfg.GitHubToken),
		providers.NewCodolio(client),
	}

	scraperService := service.NewScraperService(
		repo,
		provs,
		service.NewDelayLimiter(cfg.ScrapeDelay),
		cfg.ReportFile,
	)

	studentHandler := handlers.NewStudentHandler(scraperService, repo, db)

	// Health check
	router.GET("/health", studentHandler.HealthCheck)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Student routes
		v1.GET("/students", studentHandler.ListStudents)
		v1.POST("/students", studentHandler.CreateStudent)
		v1.GET("/students/:roll", studentHandler.GetStudent)

		// Scrape routes
		scrape := v1.Group("/scrape")
		{
			scrape.POST("/run", studentHandler.RunScrape)
			scrape.POST("/codechef-contests", studentHandler.RefreshCodeChefContests)
		}

		// Admin routes
		admin := v1.Group("/admin")
		{
			admin.GET("/stats", studentHandler.GetStats)
		}
	}
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if cfg.DatabaseURL == "" {
		logger.Info("No database URL configured, using local SQLite file")
		// Pure Go SQLite (no CGO required)
		db, err = gorm.Open(sqlite.Open("tracker.db"), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite database: %w", err)
		}
	} else {
		logger.Info("Connecting to PostgreSQL database")
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			return nil, err
		}
	}

	// Auto-migrate models
	err = db.AutoMigrate(
		&models.Student{},
		&models.PlatformSnapshot{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database initialized successfully")
	return db, nil
}
