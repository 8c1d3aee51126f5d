package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"marketplace-settlement/internal/apperror"
	"marketplace-settlement/internal/handler"
	"marketplace-settlement/internal/middleware"
	"marketplace-settlement/internal/repository"
	"marketplace-settlement/internal/service"
)

type Server struct {
	echo            *echo.Echo
	checkoutHandler *handler.CheckoutHandler
	payoutHandler   *handler.PayoutHandler
	webhookHandler  *handler.WebhookHandler
	merchantHandler *handler.MerchantHandler
	jwtSecret       string
}

func NewServer(
	checkoutService service.CheckoutService,
	payoutService service.PayoutService,
	merchantRepo repository.MerchantRepository,
	productRepo repository.ProductRepository,
	jwtSecret string,
	logLevel string,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperror.HTTPErrorHandler
	if l, ok := e.Logger.(*log.Logger); ok {
		l.SetLevel(parseLevel(logLevel))
	}

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:            e,
		checkoutHandler: handler.NewCheckoutHandler(checkoutService),
		payoutHandler:   handler.NewPayoutHandler(payoutService),
		webhookHandler:  handler.NewWebhookHandler(checkoutService),
		merchantHandler: handler.NewMerchantHandler(merchantRepo, productRepo),
		jwtSecret:       jwtSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.GET("/products", s.merchantHandler.ListProducts)
	api.POST("/admin/merchants", s.merchantHandler.CreateMerchant)

	// -------- checkout --------
	checkout := api.Group("/checkout")
	checkout.POST("/split", s.checkoutHandler.Split, middleware.JWTAuth(s.jwtSecret))
	// gateway redirect callback; the buyer arrives here unauthenticated
	checkout.GET("/confirm", s.checkoutHandler.Confirm)

	// -------- merchant payouts --------
	merchant := api.Group("/merchant", middleware.JWTAuth(s.jwtSecret), middleware.RequireMerchant())
	merchant.GET("/payouts", s.payoutHandler.GetStatement)
	merchant.POST("/payouts", s.payoutHandler.RequestPayout)
	merchant.POST("/payouts/:id/paid", s.payoutHandler.MarkPaid)
	merchant.POST("/payouts/:id/failed", s.payoutHandler.MarkFailed)

	// -------- gateway notifications --------
	api.POST("/webhook/:gateway", s.webhookHandler.Handle)
}

func parseLevel(level string) log.Lvl {
	switch level {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
