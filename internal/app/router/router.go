package router

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	priceshandler "hns_backend/internal/feature/prices/transport/handler"
	platformhandler "hns_backend/internal/platform/http/handler"
)

// NewRouter wires the HTTP surface. dbPath is the sqlite file exposed
// at /database.db; pass empty (Postgres deployments) to disable the
// download.
func NewRouter(prices *priceshandler.PriceHandler, dbPath string) *gin.Engine {
	r := gin.Default()

	r.GET("/health", platformhandler.Health)

	// Ingestion runs synchronously inside the request.
	r.POST("/ingest", prices.Ingest)

	r.GET("/historical", prices.Historical)
	r.GET("/latest", prices.Latest)
	r.GET("/min", prices.Min)
	r.GET("/max", prices.Max)

	r.GET("/database.db", func(c *gin.Context) {
		if dbPath == "" {
			c.Status(http.StatusNotFound)
			return
		}
		if _, err := os.Stat(dbPath); err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.FileAttachment(dbPath, "database.db")
	})

	// Static assets served verbatim.
	r.StaticFile("/", "./static/index.html")
	r.Static("/static", "./static")

	return r
}
