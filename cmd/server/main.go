package main

import (
	"os"

	"github.com/dejoyjm/shreds-platform/internal/cache"
	"github.com/dejoyjm/shreds-platform/internal/config"
	"github.com/dejoyjm/shreds-platform/internal/events"
	"github.com/dejoyjm/shreds-platform/internal/export"
	"github.com/dejoyjm/shreds-platform/internal/handlers"
	"github.com/dejoyjm/shreds-platform/internal/models"
	"github.com/dejoyjm/shreds-platform/internal/repositories/postgres"
	"github.com/dejoyjm/shreds-platform/internal/services"
	"github.com/dejoyjm/shreds-platform/internal/utils"
	"github.com/dejoyjm/shreds-platform/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.QuestionCategory{},
		&models.Question{},
		&models.Test{},
		&models.TestSection{},
		&models.TestQuestionSet{},
		&models.Candidate{},
		&models.TestAssignment{},
		&models.ExamSession{},
		&models.SectionStatus{},
		&models.SectionQuestionOrder{},
		&models.Response{},
		&models.ArchivedResponse{},
		&models.ScoreReport{},
		&models.ProctoringEvent{},
	); err != nil {
		logger.LogError(err, "Failed to run migrations")
		os.Exit(1)
	}

	var timing cache.LiveTiming = cache.NopLiveTiming{}
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, live timing cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		timing = cache.NewRedisLiveTiming(redisClient, utils.ToSlogLogger(logger))
	}

	var publisher events.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.KafkaBrokers,
			TopicName:    cfg.KafkaTopic,
			Logger:       utils.ToSlogLogger(logger),
		})
		if err != nil {
			logger.LogError(err, "Failed to create Kafka publisher")
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		logger.Warn("No Kafka brokers configured, events stay in process")
		publisher = events.NewMockEventPublisher(utils.ToSlogLogger(logger))
	}

	repo := postgres.NewRepository(db)
	validator := utils.NewValidator()
	renderer := export.NewExcelRenderer(cfg.ReportDir, logger)

	serviceManager := services.NewServiceManager(services.ManagerConfig{
		Repo:      repo,
		Logger:    logger,
		Validator: validator,
		Publisher: publisher,
		Timing:    timing,
		Renderer:  renderer,
	})

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger)
	handlerManager.SetupRoutes(router)

	logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.LogError(err, "Server exited")
		os.Exit(1)
	}
}
