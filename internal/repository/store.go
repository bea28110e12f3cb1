package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reúne os repositórios persistentes de um único tenant. O handle do
// tenant carrega um Store já vinculado ao pool daquele datastore; nenhuma
// consulta recebe chave de tenant.
type Store struct {
	pool *pgxpool.Pool
}

// New cria um Store baseado no pool informado.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool expõe o pool subjacente para verificações de saúde.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// ExecTx executa a função informada dentro de uma transação, garantindo
// commit/rollback apropriados. O driver propaga o deadline do contexto; um
// deadline atingido no meio da transação aborta e desfaz tudo.
func (s *Store) ExecTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return nil
}
