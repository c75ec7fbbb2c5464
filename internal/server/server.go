package server

import (
	"context"
	"net/http"

	"github.com/Elite-tch/privacycart/internal/handler"
	appmiddleware "github.com/Elite-tch/privacycart/internal/middleware"
	"github.com/Elite-tch/privacycart/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	echo           *echo.Echo
	shopService    service.ShopService
	productHandler *handler.ProductHandler
	sessionHandler *handler.SessionHandler
	vaultHandler   *handler.VaultHandler
}

func NewServer(catalogService service.CatalogService, shopService service.ShopService, vaultService service.VaultService, logger *log.Logger, serviceName string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.HTTPErrorHandler = handler.ErrorHandler(e)

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowHeaders: []string{echo.HeaderContentType, appmiddleware.SessionHeader},
	}))
	e.Use(echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName)
	}))

	s := &Server{
		echo:           e,
		shopService:    shopService,
		productHandler: handler.NewProductHandler(catalogService),
		sessionHandler: handler.NewSessionHandler(shopService),
		vaultHandler:   handler.NewVaultHandler(vaultService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api.GET("/products", s.productHandler.ListProducts)
	api.GET("/products/:id", s.productHandler.GetProduct)
	api.GET("/vault/agents", s.vaultHandler.ListAgents)

	api.POST("/sessions", s.sessionHandler.CreateSession)

	// -------- per-session state, keyed by X-Session-Id --------
	sess := api.Group("/session", appmiddleware.SessionMiddleware(s.shopService))
	sess.GET("", s.sessionHandler.GetSession)
	sess.DELETE("", s.sessionHandler.CloseSession)

	sess.PUT("/product", s.sessionHandler.SelectProduct)
	sess.DELETE("/product", s.sessionHandler.CloseProduct)
	sess.POST("/cart", s.sessionHandler.AddToCart)
	sess.DELETE("/cart/:index", s.sessionHandler.RemoveFromCart)
	sess.PUT("/dashboard", s.sessionHandler.OpenDashboard)
	sess.DELETE("/dashboard", s.sessionHandler.CloseDashboard)

	sess.POST("/checkout", s.sessionHandler.StartCheckout)
	sess.POST("/checkout/confirm", s.sessionHandler.ConfirmPayment)
	sess.POST("/checkout/return", s.sessionHandler.ReturnToMarket)
	sess.DELETE("/checkout", s.sessionHandler.CloseCheckout)

	sess.POST("/intent", s.sessionHandler.OpenIntent)
	sess.POST("/intent/messages", s.sessionHandler.RefineIntent)
	sess.POST("/intent/select", s.sessionHandler.SelectSuggestion)
	sess.DELETE("/intent", s.sessionHandler.CloseIntent)

	sess.POST("/chat", s.sessionHandler.SendChat)

	sess.GET("/vault/receipts", s.vaultHandler.ListReceipts)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
