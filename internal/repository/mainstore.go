package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
)

// MainStore acessa o banco principal da plataforma: o cadastro de tenants e o
// diretório email → chave de tenant, consultado somente na fronteira de
// autenticação. Nenhuma consulta cruza dados de dois tenants.
type MainStore struct {
	pool *pgxpool.Pool
}

// NewMainStore cria o repositório do banco principal.
func NewMainStore(pool *pgxpool.Pool) *MainStore {
	return &MainStore{pool: pool}
}

func (m *MainStore) CreateTenant(ctx context.Context, tenant *domain.Tenant) error {
	tenant.ID = uuid.New()
	now := time.Now().UTC()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	_, err := m.pool.Exec(ctx, `
		INSERT INTO tenants (id, name, key, billing_email, timezone, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		tenant.ID,
		strings.TrimSpace(tenant.Name),
		strings.TrimSpace(strings.ToLower(tenant.Key)),
		strings.TrimSpace(strings.ToLower(tenant.BillingEmail)),
		strings.TrimSpace(tenant.Timezone),
		tenant.Active,
		now,
		now,
	)

	return translateError(err)
}

// GetTenantByKey retorna um tenant a partir da chave única.
func (m *MainStore) GetTenantByKey(ctx context.Context, key string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := m.pool.QueryRow(ctx, `
		SELECT id, name, key, billing_email, timezone, active, created_at, updated_at
		FROM tenants
		WHERE key = $1
	`, strings.TrimSpace(strings.ToLower(key))).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Key,
		&tenant.BillingEmail,
		&tenant.Timezone,
		&tenant.Active,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &tenant, nil
}

// LookupTenantKeyByEmail consulta o diretório principal na autenticação.
func (m *MainStore) LookupTenantKeyByEmail(ctx context.Context, email string) (string, error) {
	var key string
	err := m.pool.QueryRow(ctx, `
		SELECT tenant_key
		FROM tenant_user_directory
		WHERE email = $1
	`, strings.TrimSpace(strings.ToLower(email))).Scan(&key)
	if err != nil {
		return "", translateError(err)
	}
	return key, nil
}

// UpsertDirectoryEntry mantém o vínculo email → tenant no diretório principal.
func (m *MainStore) UpsertDirectoryEntry(ctx context.Context, email, tenantKey string) error {
	_, err := m.pool.Exec(ctx, `
		INSERT INTO tenant_user_directory (email, tenant_key, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET tenant_key = EXCLUDED.tenant_key, updated_at = EXCLUDED.updated_at
	`, strings.TrimSpace(strings.ToLower(email)), strings.TrimSpace(strings.ToLower(tenantKey)), time.Now().UTC())
	return translateError(err)
}
