package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/lumenbank/transfer-api/internal/command"
	"github.com/lumenbank/transfer-api/internal/config"
	"github.com/lumenbank/transfer-api/internal/events"
	"github.com/lumenbank/transfer-api/internal/handler"
	"github.com/lumenbank/transfer-api/internal/middleware"
	"github.com/lumenbank/transfer-api/internal/query"
	redisclient "github.com/lumenbank/transfer-api/internal/redis"
	"github.com/lumenbank/transfer-api/internal/repository"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Database connection
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	if err := ensureSchema(db); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Redis connection
	redis, err := redisclient.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	publisher := events.NewPublisher(redis.Client)

	// CQRS: write repos against Postgres, read repos backed by the Redis cache
	userWriteRepo := repository.NewUserWriteRepository(db)
	userReadRepo := repository.NewUserReadRepository(db, redis.Client)
	accountReadRepo := repository.NewAccountReadRepository(db, redis.Client)
	transferWriteRepo := repository.NewTransferWriteRepository(db)
	transferReadRepo := repository.NewTransferReadRepository(db, redis.Client)

	// Command + Query services
	userCommandSvc := command.NewUserCommandService(
		userWriteRepo, userReadRepo, accountReadRepo, publisher,
		cfg.Currency, cfg.StartingBalanceMoney(),
	)
	transferCommandSvc := command.NewTransferCommandService(
		transferWriteRepo, accountReadRepo, transferReadRepo, publisher,
	)
	authQuerySvc := query.NewAuthQueryService(
		userWriteRepo, []byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLHours)*time.Hour,
	)
	accountQuerySvc := query.NewAccountQueryService(accountReadRepo)
	transferQuerySvc := query.NewTransferQueryService(transferReadRepo, accountReadRepo)
	userQuerySvc := query.NewUserQueryService(userReadRepo)

	authHandler := handler.NewAuthHandler(userCommandSvc, authQuerySvc)
	accountHandler := handler.NewAccountHandler(accountQuerySvc, transferQuerySvc)
	transferHandler := handler.NewTransferHandler(transferCommandSvc, transferQuerySvc)
	userHandler := handler.NewUserHandler(userQuerySvc)

	// Activity projector: consumes transfer.completed into per-user counters
	subscriberCtx, stopSubscriber := context.WithCancel(context.Background())
	defer stopSubscriber()
	subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
		Group:    "activity-projector",
		Consumer: hostname(),
		Stream:   events.TransferEventsStream,
		Handler:  userCommandSvc.HandleTransferEvent,
	})
	go func() {
		if err := subscriber.Start(subscriberCtx); err != nil && err != context.Canceled {
			log.Printf("Subscriber stopped: %v", err)
		}
	}()

	// Setup router
	router := gin.Default()
	router.Use(middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := router.Group("/v1/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}

	v1 := router.Group("/v1", middleware.AuthMiddleware([]byte(cfg.JWTSecret)))
	{
		v1.GET("/users/me", userHandler.GetProfile)
		v1.GET("/accounts", accountHandler.ListAccounts)
		v1.GET("/accounts/:accountNumber", accountHandler.GetAccount)
		v1.GET("/accounts/:accountNumber/transfers", accountHandler.ListAccountTransfers)
		v1.POST("/transfers", transferHandler.CreateTransfer)
		v1.GET("/transfers", transferHandler.ListTransfers)
		v1.GET("/transfers/:transferId", transferHandler.GetTransfer)
	}

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Transfer API starting on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopSubscriber()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

// ensureSchema creates the tables on first start. Idempotent.
func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            id VARCHAR(50) PRIMARY KEY,
            email VARCHAR(255) NOT NULL UNIQUE,
            password_hash VARCHAR(255) NOT NULL,
            first_name VARCHAR(100) NOT NULL,
            last_name VARCHAR(100) NOT NULL,
            phone_number VARCHAR(30),
            country VARCHAR(100),
            role VARCHAR(20) NOT NULL DEFAULT 'USER',
            active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS accounts (
            account_number VARCHAR(13) PRIMARY KEY,
            user_id VARCHAR(50) NOT NULL REFERENCES users(id),
            balance NUMERIC(19,2) NOT NULL DEFAULT 0,
            currency VARCHAR(3) NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT balance_non_negative CHECK (balance >= 0)
        );
        CREATE TABLE IF NOT EXISTS transfers (
            id VARCHAR(50) PRIMARY KEY,
            from_account_number VARCHAR(13) NOT NULL REFERENCES accounts(account_number),
            to_account_number VARCHAR(13) NOT NULL REFERENCES accounts(account_number),
            amount NUMERIC(19,2) NOT NULL,
            description VARCHAR(255),
            status VARCHAR(20) NOT NULL DEFAULT 'COMPLETED',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT amount_positive CHECK (amount > 0)
        );
        CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id);
        CREATE INDEX IF NOT EXISTS idx_transfers_from_account ON transfers(from_account_number);
        CREATE INDEX IF NOT EXISTS idx_transfers_to_account ON transfers(to_account_number);
    `)
	return err
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "transfer-api"
	}
	return name
}
