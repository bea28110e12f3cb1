package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
)

// TenantService administra o cadastro de tenants no banco principal. O
// provisionamento do banco isolado do tenant acontece fora do núcleo
// (cmd/migrate); aqui fica só o diretório.
type TenantService struct {
	main *repository.MainStore
	log  zerolog.Logger
}

func NewTenantService(main *repository.MainStore, log zerolog.Logger) *TenantService {
	return &TenantService{main: main, log: log}
}

// Register cadastra um tenant novo com chave única derivada do nome.
func (s *TenantService) Register(ctx context.Context, tenant *domain.Tenant) error {
	tenant.Name = strings.TrimSpace(tenant.Name)
	if tenant.Name == "" {
		return ValidationError("nome do tenant é obrigatório")
	}
	if tenant.Timezone == "" {
		tenant.Timezone = "America/Sao_Paulo"
	}
	tenant.Active = true

	if err := s.ensureTenantKey(ctx, tenant); err != nil {
		return err
	}
	if err := s.main.CreateTenant(ctx, tenant); err != nil {
		return err
	}

	s.log.Info().Str("tenant", tenant.Key).Msg("tenant registrado")
	return nil
}

// Get devolve um tenant pela chave.
func (s *TenantService) Get(ctx context.Context, key string) (*domain.Tenant, error) {
	return s.main.GetTenantByKey(ctx, key)
}

// ensureTenantKey gera uma chave única seguindo a estratégia: nome da empresa,
// depois nome + 4 dígitos aleatórios até não colidir.
func (s *TenantService) ensureTenantKey(ctx context.Context, tenant *domain.Tenant) error {
	base := tenant.Key
	if base == "" {
		base = tenant.Name
	}
	baseKey := repository.Slugify(base)
	if baseKey == "" {
		return ValidationError("não foi possível derivar a chave do tenant")
	}

	candidate := baseKey
	for attempt := 0; attempt < 10; attempt++ {
		_, err := s.main.GetTenantByKey(ctx, candidate)
		if errors.Is(err, repository.ErrNotFound) {
			tenant.Key = candidate
			return nil
		}
		if err != nil {
			return err
		}

		suffix, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return err
		}
		candidate = fmt.Sprintf("%s-%04d", baseKey, suffix.Int64())
	}

	return ValidationError("não foi possível gerar chave única para o tenant")
}
