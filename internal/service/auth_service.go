package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/auth"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/metrics"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/rate"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/tenant"
)

const pinLockKeyPrefix = "pin"

// PinLockConfig parametriza o bloqueio de tentativas de PIN; os valores vêm da
// configuração de processo.
type PinLockConfig struct {
	Pepper      string
	MaxAttempts int
	LockWindow  time.Duration
}

// AuthService concentra autenticação por senha (fronteira com o diretório
// principal) e por PIN (operação de balcão).
type AuthService struct {
	main     *repository.MainStore
	resolver *tenant.Resolver
	tokens   *auth.Manager
	pepper   string
	pin      PinLockConfig
	limiter  *rate.Limiter
	metrics  *metrics.Registry
	log      zerolog.Logger
}

// LoginInput representa as credenciais de autenticação por senha.
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// PinLoginInput autentica um operador por PIN em um terminal.
type PinLoginInput struct {
	Pin           string
	BranchID      *uuid.UUID
	PosTerminalID *uuid.UUID
	// ClientKey identifica a origem (machine id ou IP) para o bloqueio de tentativas.
	ClientKey string
}

// LoginResult devolve o operador, a chave do tenant e os tokens emitidos.
type LoginResult struct {
	TenantKey string          `json:"tenant_key"`
	Staff     *domain.Staff   `json:"staff"`
	Tokens    *auth.TokenPair `json:"tokens"`
}

func NewAuthService(main *repository.MainStore, resolver *tenant.Resolver, tokens *auth.Manager, pepper string, pin PinLockConfig, limiter *rate.Limiter, metricsReg *metrics.Registry, log zerolog.Logger) *AuthService {
	return &AuthService{
		main:     main,
		resolver: resolver,
		tokens:   tokens,
		pepper:   pepper,
		pin:      pin,
		limiter:  limiter,
		metrics:  metricsReg,
		log:      log,
	}
}

// Login autentica por e-mail e senha: o diretório principal resolve a chave do
// tenant, o datastore do tenant resolve o operador.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, fault.New(fault.KindInvalidCredentials, "credenciais inválidas")
	}

	if s.limiter != nil {
		key := strings.Join([]string{"login", email, strings.TrimSpace(input.IP)}, ":")
		allowed, err := s.limiter.Allow(ctx, key, 10, time.Minute)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fault.New(fault.KindRateLimited, "muitas tentativas, tente novamente em instantes")
		}
	}

	tenantKey, err := s.main.LookupTenantKeyByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fault.New(fault.KindInvalidCredentials, "credenciais inválidas")
		}
		return nil, err
	}

	handle, err := s.resolver.Resolve(ctx, tenantKey)
	if err != nil {
		return nil, err
	}

	staff, err := handle.Store.GetStaffByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fault.New(fault.KindInvalidCredentials, "credenciais inválidas")
		}
		return nil, err
	}
	if !staff.Active {
		return nil, fault.New(fault.KindAccountSuspended, "conta suspensa")
	}
	if err := auth.CheckPassword(staff.PasswordHash, input.Password, s.pepper); err != nil {
		return nil, fault.New(fault.KindInvalidCredentials, "credenciais inválidas")
	}

	tokens, err := s.tokens.GenerateTokens(staff.ID, tenantKey, staff.Role, auth.SessionContext{})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("tenant", tenantKey).Str("staff_id", staff.ID.String()).Msg("login por senha")
	return &LoginResult{TenantKey: tenantKey, Staff: staff, Tokens: tokens}, nil
}

// PinLogin autentica um operador por PIN dentro de um tenant já conhecido pelo
// terminal. O sucesso NÃO abre caixa: o token sai sem vínculo de sessão e o
// terminal deve emitir a abertura em seguida.
func (s *AuthService) PinLogin(ctx context.Context, store PinStore, tenantKey string, input PinLoginInput) (*LoginResult, error) {
	if !auth.IsValidPin(input.Pin) {
		s.observePin("invalid")
		return nil, fault.New(fault.KindInvalidCredentials, "PIN deve ter de 4 a 8 dígitos")
	}

	lockKey := strings.Join([]string{pinLockKeyPrefix, tenantKey, strings.TrimSpace(input.ClientKey)}, ":")
	if s.limiter != nil {
		locked, err := s.limiter.IsLocked(ctx, lockKey, s.pin.MaxAttempts)
		if err != nil {
			return nil, err
		}
		if locked {
			s.observePin("locked")
			return nil, fault.Newf(fault.KindPinLocked, "PIN bloqueado; tente novamente em %s", s.pin.LockWindow).
				WithDetail(map[string]any{"retry_after_seconds": int(s.pin.LockWindow.Seconds())})
		}
	}

	staff, err := store.GetStaffByPinKey(ctx, auth.PinKey(input.Pin, s.pin.Pepper))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.registerPinFailure(ctx, lockKey)
			s.observePin("failure")
			return nil, fault.New(fault.KindInvalidCredentials, "PIN não reconhecido")
		}
		return nil, err
	}
	if !staff.Active {
		s.observePin("suspended")
		return nil, fault.New(fault.KindAccountSuspended, "conta do operador suspensa")
	}
	if !staff.IsStaff {
		s.observePin("failure")
		return nil, fault.New(fault.KindNotStaff, "usuário não é operador de ponto de venda")
	}

	if s.limiter != nil {
		if err := s.limiter.ResetFailures(ctx, lockKey); err != nil {
			s.log.Warn().Err(err).Msg("falha ao zerar contador de tentativas de PIN")
		}
	}

	tokens, err := s.tokens.GenerateTokens(staff.ID, tenantKey, staff.Role, auth.SessionContext{BranchID: input.BranchID})
	if err != nil {
		return nil, err
	}

	s.observePin("success")
	s.log.Info().Str("tenant", tenantKey).Str("staff_id", staff.ID.String()).Msg("login por PIN")
	return &LoginResult{TenantKey: tenantKey, Staff: staff, Tokens: tokens}, nil
}

// Refresh reemite tokens a partir de um refresh token válido, preservando o
// vínculo de filial/caixa.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, *auth.Claims, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return nil, nil, fault.Wrap(fault.KindInvalidCredentials, "refresh token inválido", err)
	}

	tokens, err := s.tokens.GenerateTokens(claims.UserID, claims.TenantKey, claims.Role, auth.SessionContext{
		BranchID:      claims.BranchID,
		TillSessionID: claims.TillSessionID,
	})
	if err != nil {
		return nil, nil, err
	}
	return tokens, claims, nil
}

// PinStore é a fatia do repositório usada pelo login por PIN.
type PinStore interface {
	GetStaffByPinKey(ctx context.Context, pinKey string) (*domain.Staff, error)
}

func (s *AuthService) registerPinFailure(ctx context.Context, lockKey string) {
	if s.limiter == nil {
		return
	}
	if _, err := s.limiter.RegisterFailure(ctx, lockKey, s.pin.MaxAttempts, s.pin.LockWindow); err != nil {
		s.log.Warn().Err(err).Msg("falha ao registrar tentativa de PIN")
	}
}

func (s *AuthService) observePin(result string) {
	if s.metrics == nil || s.metrics.PinAuth == nil {
		return
	}
	s.metrics.PinAuth.WithLabelValues(result).Inc()
}
