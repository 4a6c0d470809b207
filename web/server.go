package web

import (
	"fmt"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/storefront/pkg/cart"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/identity"
	"github.com/example/storefront/pkg/order"
	"github.com/example/storefront/pkg/session"
)

// Server is the storefront HTTP surface. All domain logic lives in the
// service packages; handlers only bind input, call through and render.
type Server struct {
	config   *config.Config
	logger   *zap.Logger
	router   *gin.Engine
	binder   session.Binder
	catalog  *catalog.Store
	carts    *cart.Store
	orders   *order.Service
	identity *identity.Service
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *gorm.DB, binder session.Binder, cat *catalog.Store) *Server {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Server{
		config:   cfg,
		logger:   logger,
		router:   router,
		binder:   binder,
		catalog:  cat,
		carts:    cart.NewStore(db, cat, binder, logger),
		orders:   order.NewService(db, logger),
		identity: identity.NewService(db, binder, logger),
	}
}

func (s *Server) SetupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/api/v1")
	v1.Use(s.sessionMiddleware())
	{
		v1.GET("/products", s.listProducts)
		v1.POST("/admin/seed", s.seedCatalog)

		carts := v1.Group("/cart")
		{
			carts.GET("", s.viewCart)
			carts.GET("/count", s.cartCount)
			carts.POST("/items", s.addItem)
			carts.POST("/items/:id/increase", s.increaseQuantity)
			carts.POST("/items/:id/decrease", s.decreaseQuantity)
		}

		auth := v1.Group("/auth")
		{
			auth.POST("/register", s.register)
			auth.POST("/login", s.login)
			auth.POST("/logout", s.logout)
		}

		checkout := v1.Group("/checkout", s.requireAuth())
		{
			checkout.GET("", s.checkoutView)
			checkout.POST("", s.checkoutSubmit)
		}

		orders := v1.Group("/orders", s.requireAuth())
		{
			orders.GET("", s.listOrders)
			orders.GET("/:id", s.getOrder)
		}
	}

	// Swagger
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("Storefront starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// Router exposes the engine for httptest.
func (s *Server) Router() *gin.Engine {
	return s.router
}
