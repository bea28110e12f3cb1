package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/auth"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/handlers"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/middleware"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/tenant"
)

// Router configura todas as rotas da aplicação.
type Router struct {
	mux                *http.ServeMux
	logger             *zerolog.Logger
	tokenManager       *auth.Manager
	resolver           *tenant.Resolver
	authHandler        *handlers.AuthHandler
	tillHandler        *handlers.TillHandler
	orderHandler       *handlers.OrderHandler
	inventoryHandler   *handlers.InventoryHandler
	recipeHandler      *handlers.RecipeHandler
	menuHandler        *handlers.MenuHandler
	staffHandler       *handlers.StaffHandler
	measurementHandler *handlers.MeasurementHandler
	rateLimiter        *middleware.RateLimiter
	allowedOrigins     []string
	metricsEnabled     bool
}

// Config contém as dependências necessárias para criar o router.
type Config struct {
	Logger             *zerolog.Logger
	TokenManager       *auth.Manager
	Resolver           *tenant.Resolver
	AuthHandler        *handlers.AuthHandler
	TillHandler        *handlers.TillHandler
	OrderHandler       *handlers.OrderHandler
	InventoryHandler   *handlers.InventoryHandler
	RecipeHandler      *handlers.RecipeHandler
	MenuHandler        *handlers.MenuHandler
	StaffHandler       *handlers.StaffHandler
	MeasurementHandler *handlers.MeasurementHandler
	RateLimiter        *middleware.RateLimiter
	AllowedOrigins     []string
	MetricsEnabled     bool
}

// New cria um novo router configurado.
func New(cfg *Config) *Router {
	r := &Router{
		mux:                http.NewServeMux(),
		logger:             cfg.Logger,
		tokenManager:       cfg.TokenManager,
		resolver:           cfg.Resolver,
		authHandler:        cfg.AuthHandler,
		tillHandler:        cfg.TillHandler,
		orderHandler:       cfg.OrderHandler,
		inventoryHandler:   cfg.InventoryHandler,
		recipeHandler:      cfg.RecipeHandler,
		menuHandler:        cfg.MenuHandler,
		staffHandler:       cfg.StaffHandler,
		measurementHandler: cfg.MeasurementHandler,
		rateLimiter:        cfg.RateLimiter,
		allowedOrigins:     cfg.AllowedOrigins,
		metricsEnabled:     cfg.MetricsEnabled,
	}

	r.setupRoutes()
	return r
}

// ServeHTTP implementa http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := middleware.RecoverPanic(r.logger)(
		middleware.CORS(r.allowedOrigins)(
			middleware.SecurityHeaders()(
				middleware.Logger(*r.logger)(r.mux),
			),
		),
	)
	if r.rateLimiter != nil {
		handler = r.rateLimiter.Middleware()(handler)
	}
	handler.ServeHTTP(w, req)
}

// setupRoutes configura todas as rotas da API.
func (r *Router) setupRoutes() {
	// Health check (sem autenticação)
	r.mux.HandleFunc("GET /health", r.handleHealth)

	if r.metricsEnabled {
		r.mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Rotas públicas de autenticação
	r.mux.HandleFunc("POST /api/v1/auth/login", r.authHandler.Login)
	r.mux.HandleFunc("POST /api/v1/auth/pin-login", r.authHandler.PinLogin)
	r.mux.HandleFunc("POST /api/v1/auth/refresh", r.authHandler.Refresh)

	// Rotas autenticadas: o middleware injeta claims e o handle do tenant
	authd := middleware.Auth(r.logger, r.tokenManager, r.resolver)
	protect := func(h http.HandlerFunc) http.Handler { return authd(h) }

	// Caixa
	r.mux.Handle("POST /api/v1/pos/till/open", protect(r.tillHandler.Open))
	r.mux.Handle("POST /api/v1/pos/till/close", protect(r.tillHandler.Close))

	// Pedidos
	r.mux.Handle("POST /api/v1/pos/orders", protect(r.orderHandler.Commit))
	r.mux.Handle("GET /api/v1/pos/orders", protect(r.orderHandler.List))
	r.mux.Handle("GET /api/v1/pos/orders/{id}", protect(r.orderHandler.Get))
	r.mux.Handle("POST /api/v1/pos/orders/{id}/void", protect(r.orderHandler.Void))
	r.mux.Handle("POST /api/v1/pos/orders/{id}/refund", protect(r.orderHandler.Refund))

	// Estoque
	r.mux.Handle("POST /api/v1/inventory/items", protect(r.inventoryHandler.CreateItem))
	r.mux.Handle("GET /api/v1/inventory/items", protect(r.inventoryHandler.ListItems))
	r.mux.Handle("POST /api/v1/inventory/provision", protect(r.inventoryHandler.Provision))
	r.mux.Handle("GET /api/v1/inventory/branches/{branchID}/stock", protect(r.inventoryHandler.ListBranchStock))
	r.mux.Handle("GET /api/v1/inventory/transactions", protect(r.inventoryHandler.ListTxns))
	for _, movement := range []string{"receipt", "waste", "adjust", "prep", "reserve", "release"} {
		r.mux.Handle("POST /api/v1/inventory/movements/"+movement, protect(r.inventoryHandler.Move(movement)))
	}

	// Receitas
	r.mux.Handle("POST /api/v1/recipes", protect(r.recipeHandler.Create))
	r.mux.Handle("GET /api/v1/recipes", protect(r.recipeHandler.List))
	r.mux.Handle("GET /api/v1/recipes/{id}", protect(r.recipeHandler.Get))
	r.mux.Handle("PUT /api/v1/recipes/{id}", protect(r.recipeHandler.Update))
	r.mux.Handle("GET /api/v1/recipes/{id}/cost", protect(r.recipeHandler.Cost))
	r.mux.Handle("POST /api/v1/recipes/variants", protect(r.recipeHandler.CreateVariant))

	// Cardápio
	r.mux.Handle("POST /api/v1/menu/items", protect(r.menuHandler.CreateItem))
	r.mux.Handle("GET /api/v1/menu/items", protect(r.menuHandler.ListItems))
	r.mux.Handle("GET /api/v1/menu/items/{id}", protect(r.menuHandler.GetItem))
	r.mux.Handle("POST /api/v1/menu/variations", protect(r.menuHandler.CreateVariation))
	r.mux.Handle("POST /api/v1/menu/branch", protect(r.menuHandler.OverrideBranchMenu))
	r.mux.Handle("GET /api/v1/menu/branches/{branchID}", protect(r.menuHandler.ListBranchMenu))
	r.mux.Handle("POST /api/v1/menu/categories", protect(r.menuHandler.CreateCategory))
	r.mux.Handle("GET /api/v1/menu/categories", protect(r.menuHandler.ListCategories))

	// Operadores
	r.mux.Handle("POST /api/v1/staff", protect(r.staffHandler.Create))
	r.mux.Handle("POST /api/v1/staff/{id}/pin", protect(r.staffHandler.SetPin))
	r.mux.Handle("DELETE /api/v1/staff/{id}/pin", protect(r.staffHandler.ClearPin))

	// Unidades de medida
	r.mux.Handle("GET /api/v1/measurement-units", protect(r.measurementHandler.List))
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
