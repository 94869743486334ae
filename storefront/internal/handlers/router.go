package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"op_trader/pricing/rpc"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the HTTP API is built from. Labels may be nil,
// in which case only ZPL output is offered.
type Deps struct {
	Listings   ListingRepository
	Collection CollectionReader
	Pricing    rpc.PricingServiceClient
	Jobs       JobService
	Labels     Renderer
	Logger     *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Seller storefront ---
	listings := &ListingHandler{listings: d.Listings, collection: d.Collection, pricing: d.Pricing, renderer: d.Labels, logger: d.Logger}
	rules := &RulesHandler{pricing: d.Pricing}

	seller := r.Group("/api/sellers/:seller")
	seller.GET("/listings", listings.List)
	seller.PATCH("/listings/:id/price", listings.UpdatePrice)
	seller.DELETE("/listings/:id", listings.Delete)
	seller.POST("/listings/bulk", listings.BulkList)
	seller.GET("/collection", listings.Collection)
	seller.POST("/labels", listings.Labels)
	seller.GET("/rules", rules.Get)
	seller.PUT("/rules", rules.Put)

	// --- Import jobs ---
	jobHandler := NewJobHandler(d.Jobs, d.Logger)
	seller.POST("/jobs", jobHandler.Create)
	seller.GET("/jobs", jobHandler.List)
	seller.GET("/jobs/ws", jobHandler.Feed)
	seller.GET("/jobs/:id", jobHandler.Get)

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
