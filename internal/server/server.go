package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verdantcart/verdantcart-checkout-service/internal/config"
	"github.com/verdantcart/verdantcart-checkout-service/internal/handlers"
	"github.com/verdantcart/verdantcart-checkout-service/internal/middleware"
	"github.com/verdantcart/verdantcart-checkout-service/internal/repository"
)

type Server struct {
	httpServer *http.Server
	router     *gin.Engine
}

// New builds the router and wires the middleware chain. Health, readiness and
// metrics stay outside authentication; everything under /api/v1 requires a
// valid bearer token.
func New(h *handlers.Handlers, db *sql.DB, revocations repository.EphemeralStore, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	router.GET("/health", h.Health)
	router.GET("/ready", handlers.Ready(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.Auth.JWTSecret, revocations))
	{
		v1.POST("/checkout/initiate", h.InitiateCheckout)
		v1.POST("/checkout/verify", h.VerifyPayment)
		v1.GET("/orders", h.ListMyOrders)
		v1.GET("/orders/purchased/:product_id", h.HasPurchased)
	}

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Start runs the HTTP server until Shutdown.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
