// Package handler provides the HTTP handlers for the prices feature.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hns_backend/internal/feature/prices/domain"
	"hns_backend/internal/feature/prices/domain/entity"
	"hns_backend/internal/feature/prices/transport/http/dto"
	"hns_backend/internal/feature/prices/usecase"
)

// QueryUsecase defines the read-side operations the handlers need.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type QueryUsecase interface {
	GetHistorical(ctx context.Context, fromDate, toDate, currency string) ([]entity.PricePoint, error)
	GetLatest(ctx context.Context, currency string) (*entity.PricePoint, error)
	GetExtreme(ctx context.Context, currency string, dir usecase.ExtremeDirection, sinceDate string) (*entity.PricePoint, error)
}

// IngestUsecase triggers a synchronization run against the provider.
type IngestUsecase interface {
	IngestAll(ctx context.Context) error
}

// PriceHandler processes the price query and ingestion HTTP requests.
type PriceHandler struct {
	query  QueryUsecase
	ingest IngestUsecase
}

// NewPriceHandler creates a PriceHandler over the given usecases.
func NewPriceHandler(query QueryUsecase, ingest IngestUsecase) *PriceHandler {
	return &PriceHandler{query: query, ingest: ingest}
}

// Ingest handles POST /ingest. The run is synchronous and blocks the
// caller until every currency is synchronized or the first chunk fails.
func (h *PriceHandler) Ingest(c *gin.Context) {
	if err := h.ingest.IngestAll(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Ingestion process completed."})
}

// Historical handles GET /historical?from=YYYY-MM-DD&to=YYYY-MM-DD&currency=usd.
// A single day (or no to) returns every granular point; a distinct
// from/to pair returns one latest point per day.
func (h *PriceHandler) Historical(c *gin.Context) {
	points, err := h.query.GetHistorical(c.Request.Context(),
		c.Query("from"), c.Query("to"), c.DefaultQuery("currency", usecase.DefaultCurrency))
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]dto.PricePointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, toResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

// Latest handles GET /latest?currency=usd.
func (h *PriceHandler) Latest(c *gin.Context) {
	p, err := h.query.GetLatest(c.Request.Context(), c.DefaultQuery("currency", usecase.DefaultCurrency))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writePricePoint(c, p)
}

// Min handles GET /min?currency=usd&since=YYYY-MM-DD.
func (h *PriceHandler) Min(c *gin.Context) {
	h.extreme(c, usecase.ExtremeMin)
}

// Max handles GET /max?currency=usd&since=YYYY-MM-DD.
func (h *PriceHandler) Max(c *gin.Context) {
	h.extreme(c, usecase.ExtremeMax)
}

func (h *PriceHandler) extreme(c *gin.Context, dir usecase.ExtremeDirection) {
	p, err := h.query.GetExtreme(c.Request.Context(),
		c.DefaultQuery("currency", usecase.DefaultCurrency), dir, c.Query("since"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writePricePoint(c, p)
}

// writePricePoint shapes a single-point response: full JSON when the
// caller accepts application/json, otherwise the bare price as
// fixed-point text with 18 fractional digits.
func (h *PriceHandler) writePricePoint(c *gin.Context, p *entity.PricePoint) {
	if strings.Contains(strings.ToLower(c.GetHeader("Accept")), "application/json") {
		c.JSON(http.StatusOK, toResponse(*p))
		return
	}
	c.String(http.StatusOK, strconv.FormatFloat(p.Price, 'f', 18, 64))
}

// writeError maps domain errors onto HTTP statuses: malformed dates to
// 400, missing data to 404, everything else (remote and store
// failures) to 500.
func (h *PriceHandler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidDate):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoPriceData):
		status = http.StatusNotFound
	}
	c.JSON(status, dto.ErrorResponse{Detail: err.Error()})
}

func toResponse(p entity.PricePoint) dto.PricePointResponse {
	return dto.PricePointResponse{
		Timestamp:   p.Timestamp,
		Currency:    p.Currency,
		Price:       p.Price,
		MarketCap:   p.MarketCap,
		TotalVolume: p.TotalVolume,
	}
}
