package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"account-service/internal/config"
	"account-service/internal/database/minio"
	"account-service/internal/database/postgres"
	"account-service/internal/event"
	"account-service/internal/handlers"
	"account-service/internal/repository"
	"account-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("log", "account_service")
	err := os.MkdirAll(logDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()

	// Repositories are only wired once a connection exists; startup blocks
	// here until the database answers.
	db, err := postgres.ConnectWithRetry(cfg.PostgresCfg, 30*time.Second, 0)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisCfg.Host, cfg.RedisCfg.Port),
		Password: cfg.RedisCfg.Password,
		DB:       cfg.RedisCfg.DB,
	})

	var minioClient *minio.MinioClient
	if cfg.MinioCfg.Endpoint != "" {
		minioClient, err = minio.NewMinioClient(cfg.MinioCfg)
		if err != nil {
			log.Printf("MinIO unavailable, profile pictures disabled: %s", err)
			minioClient = nil
		}
	}

	var eventPublisher *event.AccountEventPublisher
	if cfg.RabbitMQCfg.Username != "" {
		rabbitConn, err := event.NewRabbitMQConnection(cfg.RabbitMQCfg)
		if err != nil {
			log.Printf("RabbitMQ unavailable, account events disabled: %s", err)
		} else {
			defer rabbitConn.Close()
			eventPublisher = event.NewAccountEventPublisher(rabbitConn)
		}
	}

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	tokenRepo := repository.NewTokenRepository(redisClient)

	jwtService := services.NewJWTService(cfg.AuthCfg)
	roleService := services.NewRoleService(roleRepo, eventPublisher)
	sessionService := services.NewSessionService(jwtService, tokenRepo, userRepo, roleService)
	profileService := services.NewProfileService(userRepo, roleService, minioClient)
	userService := services.NewUserService(userRepo, roleService, sessionService, profileService, cfg, eventPublisher, redisClient)

	mw := handlers.NewMiddleware(jwtService)
	authHandler := handlers.NewAuthHandler(userService, sessionService)
	roleHandler := handlers.NewRoleHandler(roleService)
	profileHandler := handlers.NewProfileHandler(profileService)

	if err := roleHandler.InitDefaultRoles(); err != nil {
		log.Printf("default role seeding failed: %s", err)
	}

	router := gin.Default()
	authHandler.RegisterRoutes(router, mw)
	roleHandler.RegisterRoutes(router, mw)
	profileHandler.RegisterRoutes(router, mw)

	log.Printf("account-service listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
