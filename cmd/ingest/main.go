package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"hns_backend/internal/app/di"
	"hns_backend/internal/feature/prices/adapters"
	"hns_backend/internal/feature/prices/usecase"
	platformdb "hns_backend/internal/platform/db"
	"hns_backend/internal/shared/ratelimiter"
)

func main() {
	_ = godotenv.Load()

	db, err := platformdb.Open(platformdb.LoadConfig())
	if err != nil {
		log.Fatal(err)
	}

	marketRepo := di.NewMarket()
	priceRepo := adapters.NewPriceRepository(db)
	limiter := ratelimiter.NewFixedDelayLimiter(1200 * time.Millisecond)
	uc := usecase.NewIngestUsecase(marketRepo, priceRepo, limiter, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := uc.IngestAll(ctx); err != nil {
		log.Fatal(err)
	}
	log.Println("ingest ok")
}
