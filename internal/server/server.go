package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rapPayne/online-store-server/internal/config"
	"github.com/rapPayne/online-store-server/internal/inventory"
	custommiddleware "github.com/rapPayne/online-store-server/internal/middleware"
	"github.com/rapPayne/online-store-server/internal/payment"
	"github.com/rapPayne/online-store-server/internal/service"
	"github.com/rapPayne/online-store-server/internal/store"
	"github.com/rapPayne/online-store-server/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, docStore store.DocumentStore) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Rate limiting is enabled only when Redis is configured.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 100,
			Window:            time.Minute,
			KeyPrefix:         "rate_limit",
		}, logger))
	}

	// Health check endpoint
	router.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "Server is running",
		})
	})

	// Static support-contact blob served to the storefront.
	router.Get("/api/help", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{
			"contact_info": "862-555-1212",
			"message":      "Go to somewhere to get instructions",
		})
	})

	// Initialize core components
	ledger := inventory.NewLedger(docStore)
	gateway := payment.NewStubGateway(cfg.Payment.FailureRate, time.Now().UnixNano())

	// Initialize services
	userService := service.NewUserService(docStore, cfg.JWT.Secret, logger)
	productService := service.NewProductService(docStore, logger)
	orderService := service.NewOrderService(docStore, logger)
	checkoutService := service.NewCheckoutService(docStore, ledger, gateway, logger)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	productHandler := transport.NewProductHandler(productService, logger)
	orderHandler := transport.NewOrderHandler(orderService, checkoutService, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)
	adminOrSelfMiddleware := custommiddleware.RequireAdminOrSelf(logger)

	// Register routes
	userHandler.RegisterRoutes(router, authMiddleware, adminMiddleware, adminOrSelfMiddleware)
	productHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware, adminMiddleware, adminOrSelfMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
