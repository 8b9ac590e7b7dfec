package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/edforge/coursepay/internal/adapters/cybersource"
	"github.com/edforge/coursepay/internal/adapters/postgres"
	"github.com/edforge/coursepay/internal/adapters/secrets"
	"github.com/edforge/coursepay/internal/config"
	"github.com/edforge/coursepay/internal/domain/ports"
	paymentHandler "github.com/edforge/coursepay/internal/handlers/payment"
	"github.com/edforge/coursepay/internal/middleware"
	paymentService "github.com/edforge/coursepay/internal/services/payment"
	"github.com/edforge/coursepay/pkg/observability"
	"github.com/edforge/coursepay/pkg/timeutil"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("Starting coursepay",
		zap.String("version", "0.1.0"),
		zap.String("environment", cfg.CyberSource.Environment),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbPool, err := postgres.NewPool(ctx, cfg.Database.ConnectionString())
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbPool.Close()

	logger.Info("Database connection established",
		zap.String("database", cfg.Database.Database),
	)

	secretManager, err := initSecretManager(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize secret manager", zap.Error(err))
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	transactionKey, err := secretManager.GetSecret(startupCtx, cfg.CyberSource.TransactionKeyPath)
	if err != nil {
		logger.Fatal("Failed to load transaction key", zap.Error(err))
	}
	secretKey, err := secretManager.GetSecret(startupCtx, cfg.CyberSource.SecretKeyPath)
	if err != nil {
		logger.Fatal("Failed to load signing secret", zap.Error(err))
	}
	jwtSecret, err := secretManager.GetSecret(startupCtx, cfg.Auth.JWTSecretPath)
	if err != nil {
		logger.Fatal("Failed to load JWT secret", zap.Error(err))
	}

	soapConfig := cybersource.DefaultSOAPConfig(cfg.CyberSource.Environment)
	soapConfig.MerchantID = cfg.CyberSource.MerchantID
	soapConfig.TransactionKey = transactionKey.Value

	catalogRepo := postgres.NewCatalogRepository(dbPool)
	processor, err := cybersource.NewProcessor(cybersource.Config{
		SOAPAPIURL:     soapConfig.URL,
		MerchantID:     cfg.CyberSource.MerchantID,
		TransactionKey: transactionKey.Value,
		ProfileID:      cfg.CyberSource.ProfileID,
		AccessKey:      cfg.CyberSource.AccessKey,
		SecretKey:      secretKey.Value,
		PaymentPageURL: cfg.CyberSource.PaymentPageURL,
		ReceiptPageURL: cfg.CyberSource.ReceiptPageURL,
		CancelPageURL:  cfg.CyberSource.CancelPageURL,
		LanguageCode:   cfg.CyberSource.LanguageCode,
	}, catalogRepo, timeutil.SystemClock{}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize processor", zap.Error(err))
	}

	service := paymentService.NewService(
		processor,
		postgres.NewLedgerRepository(dbPool),
		postgres.NewAuditRepository(dbPool),
		cybersource.NewCreditClient(soapConfig, logger),
		logger,
	)
	handler := paymentHandler.NewHandler(service, logger)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	defer rateLimiter.Shutdown()
	authenticator := middleware.NewAuthenticator(jwtSecret.Value, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/checkout", handler.HandleCheckout)
	mux.HandleFunc("POST /api/v1/notifications/cybersource", handler.HandleNotification)
	mux.Handle("POST /api/v1/refunds",
		authenticator.Middleware(http.HandlerFunc(handler.HandleRefund)))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      observability.HTTPMiddleware(rateLimiter.Middleware(mux)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	healthChecker := observability.NewHealthChecker(dbPool)
	metricsServer := observability.StartMetricsServer(strconv.Itoa(cfg.Server.MetricsPort), healthChecker)

	go func() {
		logger.Info("HTTP server listening", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
		logger.Error("Metrics server shutdown error", zap.Error(err))
	}

	logger.Info("Servers stopped")
}

func initLogger(cfg config.LoggerConfig) *zap.Logger {
	if cfg.Development {
		logger, _ := zap.NewDevelopment()
		return logger
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	logger, _ := zapCfg.Build()
	return logger
}

// initSecretManager selects the secret backend from configuration.
func initSecretManager(cfg *config.Config, logger *zap.Logger) (ports.SecretManager, error) {
	switch cfg.Secrets.Backend {
	case "vault":
		vaultCfg := secrets.DefaultVaultConfig(cfg.Secrets.VaultAddress)
		vaultCfg.Token = cfg.Secrets.VaultToken
		vaultCfg.MountPath = cfg.Secrets.VaultMountPath
		return secrets.NewVaultAdapter(vaultCfg, logger)
	case "aws":
		awsCfg := secrets.DefaultAWSSecretsManagerConfig(cfg.Secrets.AWSRegion)
		awsCfg.Endpoint = cfg.Secrets.AWSEndpoint
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return secrets.NewAWSSecretsManagerAdapter(ctx, awsCfg, logger)
	default:
		return secrets.NewLocalSecretManager(logger), nil
	}
}
