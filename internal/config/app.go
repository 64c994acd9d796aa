package config

import (
	"net/http"

	"ajebo-payments/internal/gateway"
	"ajebo-payments/internal/handler"
	"ajebo-payments/internal/middleware"
	"ajebo-payments/internal/notification"
	"ajebo-payments/internal/repository"
	"ajebo-payments/internal/router"
	"ajebo-payments/internal/usecase"
	"ajebo-payments/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type BootstrapConfig struct {
	DB       *gorm.DB
	Redis    *redis.Client
	App      *gin.Engine
	Log      *logrus.Logger
	Validate *validator.Validate
	Config   *Config
}

type App struct {
	RuleUsecase usecase.RuleUsecase
}

func Bootstrap(config *BootstrapConfig) *App {
	cfg := config.Config
	jwtManager := token.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.ExpirationTime)

	// setup repositories
	walletRepository := repository.NewWalletRepository(config.DB, config.Log)
	transactionRepository := repository.NewTransactionRepository(config.DB, config.Log)
	ruleRepository := repository.NewRuleRepository(config.DB, config.Log)
	operatorRepository := repository.NewOperatorRepository(config.DB, config.Log)

	// setup gateways
	httpClient := &http.Client{Timeout: cfg.Gateway.Timeout}
	paystack := gateway.NewPaystackGateway(cfg.Gateway.PaystackSecretKey, cfg.Gateway.PaystackBaseURL, httpClient, config.Log)
	monnify := gateway.NewMonnifyGateway(cfg.Gateway.MonnifyAPIKey, cfg.Gateway.MonnifySecretKey, cfg.Gateway.MonnifyContractCode, cfg.Gateway.MonnifyBaseURL, httpClient, config.Log)
	gateways := map[string]gateway.Gateway{
		paystack.Name(): paystack,
		monnify.Name():  monnify,
	}

	notifier := notification.NewLogNotifier(config.Log)

	// setup use cases
	ledgerUsecase := usecase.NewLedgerUsecase(walletRepository, config.Log, config.Redis, notifier)
	paymentUsecase := usecase.NewPaymentUsecase(gateways, transactionRepository, ledgerUsecase, config.Log)
	ruleUsecase := usecase.NewRuleUsecase(ruleRepository, ledgerUsecase, config.Log)
	authUsecase := usecase.NewAuthUsecase(operatorRepository, config.Log, jwtManager, cfg.Admin.BootstrapToken)

	// setup handlers
	walletHandler := handler.NewWalletHandler(ledgerUsecase, config.Log, config.Validate)
	paymentHandler := handler.NewPaymentHandler(paymentUsecase, config.Log, config.Validate)
	ruleHandler := handler.NewRuleHandler(ruleUsecase, config.Log, config.Validate)
	authHandler := handler.NewAuthHandler(authUsecase, config.Log, config.Validate)

	// setup middleware
	authMiddleware := middleware.NewAuthMiddleware(config.Log, jwtManager)

	routeConfig := router.RouteConfig{
		App:              config.App,
		AuthHandler:      authHandler,
		WalletHandler:    walletHandler,
		PaymentHandler:   paymentHandler,
		RuleHandler:      ruleHandler,
		AuthMiddleware:   authMiddleware,
		LoggerMiddleware: middleware.LoggerMiddleware(config.Log),
	}
	routeConfig.SetupRoute()

	return &App{RuleUsecase: ruleUsecase}
}
