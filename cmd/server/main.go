package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rcastellan/brokerage-api/internal/api"
	"github.com/rcastellan/brokerage-api/internal/cache"
	"github.com/rcastellan/brokerage-api/internal/config"
	"github.com/rcastellan/brokerage-api/internal/database"
	"github.com/rcastellan/brokerage-api/internal/kafka"
	"github.com/rcastellan/brokerage-api/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(cfg.Database.MigrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic)
	defer producer.Close()

	// Quote cache is optional; without Redis the services read the database
	// directly.
	var marketData service.MarketDataRepository = db
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		marketData = cache.NewQuoteCache(db, client, 1*time.Minute)
	}

	portfolioSvc := service.NewPortfolioService(db, db, db, marketData)
	orderSvc := service.NewOrderService(db, db, marketData, db, portfolioSvc, producer)
	instrumentSvc := service.NewInstrumentService(db, marketData)

	handler := api.NewHandler(orderSvc, portfolioSvc, instrumentSvc)
	router := api.SetupRoutes(handler)

	// Quote feed consumer runs until shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.QuoteTopic, cfg.Kafka.GroupID, db)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Printf("quote consumer stopped: %v", err)
		}
	}()

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	cancel()
}
