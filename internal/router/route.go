package router

import (
	"net/http"
	"time"

	"ajebo-payments/internal/handler"
	"ajebo-payments/internal/middleware"

	"github.com/gin-gonic/gin"
)

type RouteConfig struct {
	App              *gin.Engine
	AuthHandler      handler.AuthHandler
	WalletHandler    handler.WalletHandler
	PaymentHandler   handler.PaymentHandler
	RuleHandler      handler.RuleHandler
	AuthMiddleware   *middleware.AuthMiddleware
	LoggerMiddleware gin.HandlerFunc
}

func (c *RouteConfig) SetupRoute() {
	c.App.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "ajebo-payments-api",
		})
	})

	c.App.Use(c.LoggerMiddleware)

	v1 := c.App.Group("/api/v1")
	{
		// Auth routes. The first operator registers with the bootstrap
		// token; afterwards only an authenticated operator can register.
		auth := v1.Group("/auth")
		{
			auth.POST("/register", c.AuthMiddleware.OptionalJWTAuth(), c.AuthHandler.Register)
			auth.POST("/login", c.AuthHandler.Login)
		}

		// Payment routes (public: the checkout page and the gateways call these)
		payments := v1.Group("/payments")
		{
			payments.POST("/initiate", c.PaymentHandler.Initiate)
			payments.GET("/verify/:gateway/:reference", c.PaymentHandler.Verify)
		}

		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/paystack", c.PaymentHandler.PaystackWebhook)
			webhooks.POST("/monnify", c.PaymentHandler.MonnifyWebhook)
		}

		// Operator routes
		admin := v1.Group("/admin")
		{
			admin.Use(c.AuthMiddleware.JWTAuth())

			wallets := admin.Group("/wallets")
			{
				wallets.GET("/", c.WalletHandler.Search)
				wallets.GET("/:userId", c.WalletHandler.GetBalance)
				wallets.GET("/:userId/ledger", c.WalletHandler.GetLedger)
				wallets.POST("/adjust", c.WalletHandler.Adjust)
			}

			rules := admin.Group("/rules")
			{
				rules.POST("/", c.RuleHandler.Create)
				rules.GET("/", c.RuleHandler.List)
				rules.PATCH("/:id/active", c.RuleHandler.SetActive)
				rules.POST("/run", c.RuleHandler.Run)
			}

			admin.GET("/transactions", c.PaymentHandler.ListTransactions)
		}
	}
}
