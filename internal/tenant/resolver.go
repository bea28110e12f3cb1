// Package tenant resolve a chave de um tenant para um handle vinculado ao
// datastore isolado daquele tenant. O handle é passado explicitamente por toda
// a aplicação; não existe tabela global mutável de "tenant ativo".
package tenant

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/database"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
)

// Handle é o acesso de uma requisição ao datastore de um tenant.
type Handle struct {
	Key   string
	Store *repository.Store
}

// Resolver mantém um pool de conexões por tenant, criado sob demanda a partir
// do template de DSN. Cada tenant tem seu próprio banco; o pool é a única
// estrutura compartilhada entre requisições do mesmo tenant.
type Resolver struct {
	dsnTemplate string
	maxConns    int32
	log         zerolog.Logger

	mu    sync.RWMutex
	pools map[string]*pgxpool.Pool
}

// NewResolver cria um resolver com o template de DSN informado; o marcador
// {tenant} é substituído pela chave.
func NewResolver(dsnTemplate string, maxConns int32, log zerolog.Logger) *Resolver {
	return &Resolver{
		dsnTemplate: dsnTemplate,
		maxConns:    maxConns,
		log:         log,
		pools:       make(map[string]*pgxpool.Pool),
	}
}

// Resolve devolve o handle do tenant, abrindo o pool na primeira utilização.
func (r *Resolver) Resolve(ctx context.Context, key string) (*Handle, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return nil, fault.New(fault.KindValidation, "chave de tenant não informada")
	}

	r.mu.RLock()
	pool, ok := r.pools[key]
	r.mu.RUnlock()
	if ok {
		return &Handle{Key: key, Store: repository.New(pool)}, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if pool, ok = r.pools[key]; ok {
		return &Handle{Key: key, Store: repository.New(pool)}, nil
	}

	dsn := strings.ReplaceAll(r.dsnTemplate, "{tenant}", key)
	pool, err := database.Connect(ctx, dsn, r.maxConns)
	if err != nil {
		return nil, fault.Wrap(fault.KindInternal, fmt.Sprintf("falha ao abrir datastore do tenant %s", key), err)
	}
	r.pools[key] = pool
	r.log.Info().Str("tenant", key).Msg("pool de tenant aberto")

	return &Handle{Key: key, Store: repository.New(pool)}, nil
}

// Close encerra todos os pools abertos; usado no desligamento do processo.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, pool := range r.pools {
		pool.Close()
		delete(r.pools, key)
	}
}
