package service

import (
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/auth"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/authz"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/config"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/events"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/mailer"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/metrics"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/rate"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/storage"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/tenant"
)

// Dependencies centraliza as dependências compartilhadas dos serviços. O acesso
// a dados por tenant não entra aqui: cada operação recebe o handle resolvido.
type Dependencies struct {
	Config       *config.Config
	MainStore    *repository.MainStore
	Resolver     *tenant.Resolver
	Logger       zerolog.Logger
	Redis        *redis.Client
	TokenManager *auth.Manager
	Storage      *storage.Client
	Mailer       *mailer.SMTPClient
	RateLimiter  *rate.Limiter
	Metrics      *metrics.Registry
	Authorizer   authz.Authorizer
	Emitter      *events.Emitter
}

// Services expõe todos os casos de uso do domínio.
type Services struct {
	Tenants      *TenantService
	Auth         *AuthService
	Staff        *StaffService
	Inventory    *InventoryService
	Recipes      *RecipeService
	Menu         *MenuService
	Orders       *OrderService
	Tills        *TillService
	Measurements *MeasurementService
}

// NewServices constrói todas as camadas de serviço com base nas dependências.
func NewServices(deps Dependencies) *Services {
	log := deps.Logger

	authorizer := deps.Authorizer
	if authorizer == nil {
		authorizer = authz.NewRoleAuthorizer()
	}

	recipes := NewRecipeService(deps.Redis, deps.Metrics, log)

	pinCfg := PinLockConfig{
		Pepper:      deps.Config.PIN.Pepper,
		MaxAttempts: deps.Config.PIN.MaxAttempts,
		LockWindow:  deps.Config.PIN.LockWindow,
	}

	var archiver ReportArchiver
	if deps.Storage != nil {
		archiver = deps.Storage
	}
	var notifier VarianceNotifier
	if deps.Mailer != nil {
		notifier = deps.Mailer
	}

	return &Services{
		Tenants:   NewTenantService(deps.MainStore, log),
		Auth:      NewAuthService(deps.MainStore, deps.Resolver, deps.TokenManager, deps.Config.JWT.PasswordPepper, pinCfg, deps.RateLimiter, deps.Metrics, log),
		Staff:     NewStaffService(authorizer, deps.MainStore, deps.Config.JWT.PasswordPepper, deps.Config.PIN.Pepper, log),
		Inventory: NewInventoryService(authorizer, log),
		Recipes:   recipes,
		Menu:      NewMenuService(recipes, log),
		Orders:    NewOrderService(authorizer, deps.Emitter, deps.Metrics, log),
		Tills: NewTillService(
			authorizer,
			deps.TokenManager,
			archiver,
			notifier,
			deps.Emitter,
			deps.Metrics,
			decimal.NewFromFloat(deps.Config.Till.VarianceAlertThreshold),
			deps.Config.Till.AlertEmail,
			log,
		),
		Measurements: NewMeasurementService(log),
	}
}
