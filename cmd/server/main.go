package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"hns_backend/internal/app/di"
	"hns_backend/internal/app/router"
	"hns_backend/internal/feature/prices/adapters"
	priceshandler "hns_backend/internal/feature/prices/transport/handler"
	"hns_backend/internal/feature/prices/usecase"
	"hns_backend/internal/platform/cache"
	platformdb "hns_backend/internal/platform/db"
	platformredis "hns_backend/internal/platform/redis"
	"hns_backend/internal/shared/ratelimiter"
)

// chunkFetchDelay is the minimum gap between provider chunk fetches.
const chunkFetchDelay = 1200 * time.Millisecond

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	// db
	dbCfg := platformdb.LoadConfig()
	db, err := platformdb.Open(dbCfg)
	if err != nil {
		log.Fatal(err)
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	priceRepo := adapters.NewPriceRepository(db)
	cachedPriceRepo := cache.NewCachingPriceRepository(rdb, 5*time.Minute, priceRepo, "prices")
	marketRepo := di.NewMarket()

	// Usecase
	limiter := ratelimiter.NewFixedDelayLimiter(chunkFetchDelay)
	ingestUC := usecase.NewIngestUsecase(marketRepo, cachedPriceRepo, limiter, nil)
	queryUC := usecase.NewQueryUsecase(cachedPriceRepo)

	// Handler
	pricesH := priceshandler.NewPriceHandler(queryUC, ingestUC)

	// The download endpoint only makes sense for the sqlite backend.
	sqlitePath := dbCfg.SQLitePath
	if dbCfg.PostgresURL != "" {
		sqlitePath = ""
	}
	r := router.NewRouter(pricesH, sqlitePath)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
