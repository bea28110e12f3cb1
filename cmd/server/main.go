package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/auth"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/cache"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/config"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/database"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/events"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/handlers"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/middleware"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/router"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/logger"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/mailer"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/metrics"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/rate"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/service"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/storage"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/tenant"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Erro fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Variáveis de ambiente do arquivo .env local (conveniência para dev)
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found or failed to load; using system environment variables if present")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("falha ao carregar configuração: %w", err)
	}

	log := logger.New(cfg.App.Env)
	log.Info().Msgf("Iniciando %s em modo %s", cfg.App.Name, cfg.App.Env)

	ctx := context.Background()

	// Banco principal (diretório de tenants)
	log.Info().Msg("Conectando ao PostgreSQL principal...")
	mainDB, err := database.Connect(ctx, cfg.MainDSN(), cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("falha ao conectar ao postgres principal: %w", err)
	}
	defer mainDB.Close()
	mainStore := repository.NewMainStore(mainDB)
	log.Info().Msg("PostgreSQL principal conectado")

	// Resolver de datastores por tenant
	resolver := tenant.NewResolver(cfg.TenantDSNTemplate(), cfg.Database.TenantMaxConns, log)
	defer resolver.Close()

	// Redis
	log.Info().Msg("Conectando ao Redis...")
	redisClient, err := cache.NewRedis(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.TLSEnabled,
	)
	if err != nil {
		return fmt.Errorf("falha ao conectar ao redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("Redis conectado")

	// MinIO (arquivo de relatórios Z)
	log.Info().Msg("Conectando ao MinIO...")
	storageClient, err := storage.New(
		cfg.MinIO.Endpoint,
		cfg.MinIO.AccessKey,
		cfg.MinIO.SecretKey,
		cfg.MinIO.Bucket,
		cfg.MinIO.Region,
		cfg.MinIO.UseSSL,
		cfg.MinIO.PresignTTL,
	)
	if err != nil {
		return fmt.Errorf("falha ao conectar ao minio: %w", err)
	}
	if err := storageClient.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("falha ao garantir bucket do minio: %w", err)
	}
	log.Info().Msg("MinIO conectado")

	mailClient := mailer.NewSMTPClient(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.FromAddress,
		cfg.SMTP.TLSRequired,
	)

	tokenManager := auth.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenDuration,
		cfg.JWT.RefreshTokenDuration,
	)

	limiter := rate.NewLimiter(redisClient)
	metricsRegistry := metrics.NewRegistry()
	emitter := events.NewEmitter(redisClient, log)

	services := service.NewServices(service.Dependencies{
		Config:       cfg,
		MainStore:    mainStore,
		Resolver:     resolver,
		Logger:       log,
		Redis:        redisClient,
		TokenManager: tokenManager,
		Storage:      storageClient,
		Mailer:       mailClient,
		RateLimiter:  limiter,
		Metrics:      metricsRegistry,
		Emitter:      emitter,
	})

	httpLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Requests, &log)

	r := router.New(&router.Config{
		Logger:             &log,
		TokenManager:       tokenManager,
		Resolver:           resolver,
		AuthHandler:        handlers.NewAuthHandler(services.Auth, resolver, &log),
		TillHandler:        handlers.NewTillHandler(services.Tills, &log),
		OrderHandler:       handlers.NewOrderHandler(services.Orders, &log),
		InventoryHandler:   handlers.NewInventoryHandler(services.Inventory, &log),
		RecipeHandler:      handlers.NewRecipeHandler(services.Recipes, &log),
		MenuHandler:        handlers.NewMenuHandler(services.Menu, &log),
		StaffHandler:       handlers.NewStaffHandler(services.Staff, &log),
		MeasurementHandler: handlers.NewMeasurementHandler(services.Measurements, &log),
		RateLimiter:        httpLimiter,
		AllowedOrigins:     allowedOrigins(),
		MetricsEnabled:     cfg.Observability.PrometheusEnabled,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("servidor HTTP no ar")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("servidor HTTP falhou: %w", err)
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("desligando...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("falha no desligamento gracioso: %w", err)
	}

	log.Info().Msg("servidor encerrado")
	return nil
}

func allowedOrigins() []string {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	if raw == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
