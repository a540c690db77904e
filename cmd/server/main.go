package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/rewear/rewear-exchange/internal/ai"
	"github.com/rewear/rewear-exchange/internal/config"
	"github.com/rewear/rewear-exchange/internal/database"
	"github.com/rewear/rewear-exchange/internal/handler"
	"github.com/rewear/rewear-exchange/internal/middleware"
	"github.com/rewear/rewear-exchange/internal/queue"
	"github.com/rewear/rewear-exchange/internal/repository"
	"github.com/rewear/rewear-exchange/internal/router"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	items := repository.NewItemRepo(db)
	requests := repository.NewRequestRepo(db)
	ledger := repository.NewLedgerRepo(db)

	assistant := ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey)

	authH := handler.NewAuthHandler(cfg, users, tokens, ledger)
	itemH := handler.NewItemHandler(items, assistant)
	catalogH := handler.NewCatalogHandler(items, assistant)
	requestH := handler.NewRequestHandler(requests, items, ledger)
	ledgerH := handler.NewLedgerHandler(ledger)
	adminH := handler.NewAdminHandler(users, items, requests)

	e := echo.New()
	e.HideBanner = true

	// Redis is optional. When it is reachable the public catalog gets a
	// response cache and every route gets a token-bucket rate limit.
	var publicMW []echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		publicMW = append(publicMW, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, catalogH, itemH, cfg.JWTSecret, publicMW...)
	router.RegisterUser(e, itemH, requestH, ledgerH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	go func() {
		if err := queue.StartSettlementConsumer(); err != nil {
			log.Printf("settlement consumer stopped: %v", err)
		}
	}()

	go func() {
		for range time.Tick(24 * time.Hour) {
			n, err := tokens.PurgeExpired(context.Background(), 7*24*time.Hour)
			if err != nil {
				log.Printf("token purge failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("purged %d expired refresh tokens", n)
			}
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
