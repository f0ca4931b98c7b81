package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hns_backend/internal/feature/prices/domain"
	"hns_backend/internal/feature/prices/domain/entity"
	"hns_backend/internal/feature/prices/transport/handler"
	"hns_backend/internal/feature/prices/usecase"
)

type mockQueryUsecase struct {
	GetHistoricalFunc func(ctx context.Context, fromDate, toDate, currency string) ([]entity.PricePoint, error)
	GetLatestFunc     func(ctx context.Context, currency string) (*entity.PricePoint, error)
	GetExtremeFunc    func(ctx context.Context, currency string, dir usecase.ExtremeDirection, sinceDate string) (*entity.PricePoint, error)
}

func (m *mockQueryUsecase) GetHistorical(ctx context.Context, fromDate, toDate, currency string) ([]entity.PricePoint, error) {
	if m.GetHistoricalFunc != nil {
		return m.GetHistoricalFunc(ctx, fromDate, toDate, currency)
	}
	return nil, errors.New("GetHistoricalFunc is not implemented")
}

func (m *mockQueryUsecase) GetLatest(ctx context.Context, currency string) (*entity.PricePoint, error) {
	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, currency)
	}
	return nil, errors.New("GetLatestFunc is not implemented")
}

func (m *mockQueryUsecase) GetExtreme(ctx context.Context, currency string, dir usecase.ExtremeDirection, sinceDate string) (*entity.PricePoint, error) {
	if m.GetExtremeFunc != nil {
		return m.GetExtremeFunc(ctx, currency, dir, sinceDate)
	}
	return nil, errors.New("GetExtremeFunc is not implemented")
}

type mockIngestUsecase struct {
	IngestAllFunc func(ctx context.Context) error
}

func (m *mockIngestUsecase) IngestAll(ctx context.Context) error {
	if m.IngestAllFunc != nil {
		return m.IngestAllFunc(ctx)
	}
	return nil
}

func float64Ptr(v float64) *float64 { return &v }

func serve(h *handler.PriceHandler, method, target string, header http.Header) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/ingest", h.Ingest)
	r.GET("/historical", h.Historical)
	r.GET("/latest", h.Latest)
	r.GET("/min", h.Min)
	r.GET("/max", h.Max)

	req := httptest.NewRequest(method, target, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPriceHandler_Ingest(t *testing.T) {
	t.Run("success: completed run returns a message", func(t *testing.T) {
		h := handler.NewPriceHandler(&mockQueryUsecase{}, &mockIngestUsecase{})

		w := serve(h, http.MethodPost, "/ingest", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Ingestion process completed."}`, w.Body.String())
	})

	t.Run("error: failed run returns 500 with detail", func(t *testing.T) {
		ingest := &mockIngestUsecase{
			IngestAllFunc: func(ctx context.Context) error {
				return errors.New("ingest usd: coingecko http 429: rate limited")
			},
		}
		h := handler.NewPriceHandler(&mockQueryUsecase{}, ingest)

		w := serve(h, http.MethodPost, "/ingest", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, body["detail"], "429")
	})
}

func TestPriceHandler_Historical(t *testing.T) {
	t.Run("success: returns points and forwards query params", func(t *testing.T) {
		query := &mockQueryUsecase{
			GetHistoricalFunc: func(ctx context.Context, fromDate, toDate, currency string) ([]entity.PricePoint, error) {
				assert.Equal(t, "2024-03-01", fromDate)
				assert.Equal(t, "2024-03-10", toDate)
				assert.Equal(t, "btc", currency)
				return []entity.PricePoint{
					{Timestamp: 2000, Currency: "btc", Price: 0.5, MarketCap: float64Ptr(9000)},
					{Timestamp: 1000, Currency: "btc", Price: 0.4},
				}, nil
			},
		}
		h := handler.NewPriceHandler(query, &mockIngestUsecase{})

		w := serve(h, http.MethodGet, "/historical?from=2024-03-01&to=2024-03-10&currency=btc", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[
			{"timestamp":2000,"currency":"btc","price":0.5,"market_cap":9000,"total_volume":null},
			{"timestamp":1000,"currency":"btc","price":0.4,"market_cap":null,"total_volume":null}
		]`, w.Body.String())
	})

	t.Run("success: missing currency defaults to usd", func(t *testing.T) {
		query := &mockQueryUsecase{
			GetHistoricalFunc: func(ctx context.Context, fromDate, toDate, currency string) ([]entity.PricePoint, error) {
				assert.Equal(t, usecase.DefaultCurrency, currency)
				return nil, nil
			},
		}
		h := handler.NewPriceHandler(query, &mockIngestUsecase{})

		w := serve(h, http.MethodGet, "/historical", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("success: empty result serializes as an empty array", func(t *testing.T) {
		query := &mockQueryUsecase{
			GetHistoricalFunc: func(ctx context.Context, fromDate, toDate, currency string) ([]entity.PricePoint, error) {
				return nil, nil
			},
		}
		h := handler.NewPriceHandler(query, &mockIngestUsecase{})

		w := serve(h, http.MethodGet, "/historical", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", w.Body.String())
	})

	t.Run("error: malformed date returns 400", func(t *testing.T) {
		query := &mockQueryUsecase{
			GetHistoricalFunc: func(ctx context.Context, fromDate, toDate, currency string) ([]entity.PricePoint, error) {
				return nil, domain.ErrInvalidDate
			},
		}
		h := handler.NewPriceHandler(query, &mockIngestUsecase{})

		w := serve(h, http.MethodGet, "/historical?from=bogus", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "detail")
	})

	t.Run("error: store failure returns 500", func(t *testing.T) {
		query := &mockQueryUsecase{
			GetHistoricalFunc: func(ctx context.Context, fromDate, toDate, currency string) ([]entity.PricePoint, error) {
				return nil, errors.New("database locked")
			},
		}
		h := handler.NewPriceHandler(query, &mockIngestUsecase{})

		w := serve(h, http.MethodGet, "/historical", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestPriceHandler_Latest(t *testing.T) {
	point := &entity.PricePoint{Timestamp: 3000, Currency: "usd", Price: 0.5, TotalVolume: float64Ptr(1234)}

	t.Run("success: plain text price by default", func(t *testing.T) {
		query := &mockQueryUsecase{
			GetLatestFunc: func(ctx context.Context, currency string) (*entity.PricePoint, error) {
				return point, nil
			},
		}
		h := handler.NewPriceHandler(query, &mockIngestUsecase{})

		w := serve(h, http.MethodGet, "/latest", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "0.500000000000000000", w.Body.String())
	})

	t.Run("success: JSON when the caller accepts it", func(t *testing.T) {
		query := &mockQueryUsecase{
			GetLatestFunc: func(ctx context.Context, currency string) (*entity.PricePoint, error) {
				return point, nil
			},
		}
		h := handler.NewPriceHandler(query, &mockIngestUsecase{})

		header := http.Header{"Accept": []string{"application/json"}}
		w := serve(h, http.MethodGet, "/latest", header)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"timestamp":3000,"currency":"usd","price":0.5,"market_cap":null,"total_volume":1234}`, w.Body.String())
	})

	t.Run("error: empty store returns 404", func(t *testing.T) {
		query := &mockQueryUsecase{
			GetLatestFunc: func(ctx context.Context, currency string) (*entity.PricePoint, error) {
				return nil, domain.ErrNoPriceData
			},
		}
		h := handler.NewPriceHandler(query, &mockIngestUsecase{})

		w := serve(h, http.MethodGet, "/latest", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPriceHandler_MinMax(t *testing.T) {
	t.Run("success: min and max dispatch their direction", func(t *testing.T) {
		var dirs []usecase.ExtremeDirection
		query := &mockQueryUsecase{
			GetExtremeFunc: func(ctx context.Context, currency string, dir usecase.ExtremeDirection, sinceDate string) (*entity.PricePoint, error) {
				dirs = append(dirs, dir)
				assert.Equal(t, "2024-03-05", sinceDate)
				return &entity.PricePoint{Timestamp: 100, Currency: currency, Price: 1}, nil
			},
		}
		h := handler.NewPriceHandler(query, &mockIngestUsecase{})

		w := serve(h, http.MethodGet, "/min?since=2024-03-05", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		w = serve(h, http.MethodGet, "/max?since=2024-03-05", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		require.Len(t, dirs, 2)
		assert.Equal(t, usecase.ExtremeMin, dirs[0])
		assert.Equal(t, usecase.ExtremeMax, dirs[1])
	})

	t.Run("error: malformed since returns 400", func(t *testing.T) {
		query := &mockQueryUsecase{
			GetExtremeFunc: func(ctx context.Context, currency string, dir usecase.ExtremeDirection, sinceDate string) (*entity.PricePoint, error) {
				return nil, domain.ErrInvalidDate
			},
		}
		h := handler.NewPriceHandler(query, &mockIngestUsecase{})

		w := serve(h, http.MethodGet, "/min?since=bogus", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("error: no matching data returns 404", func(t *testing.T) {
		query := &mockQueryUsecase{
			GetExtremeFunc: func(ctx context.Context, currency string, dir usecase.ExtremeDirection, sinceDate string) (*entity.PricePoint, error) {
				return nil, domain.ErrNoPriceData
			},
		}
		h := handler.NewPriceHandler(query, &mockIngestUsecase{})

		w := serve(h, http.MethodGet, "/max", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
