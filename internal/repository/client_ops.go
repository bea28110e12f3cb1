package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// LookupClientOp devolve o pedido já gravado para uma chave de idempotência.
func (s *Store) LookupClientOp(ctx context.Context, clientOpID string) (uuid.UUID, bool, error) {
	var orderID uuid.UUID
	err := s.pool.QueryRow(ctx, `
		SELECT order_id FROM pos_client_ops WHERE client_op_id = $1
	`, clientOpID).Scan(&orderID)
	if err != nil {
		if errors.Is(translateError(err), ErrNotFound) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, translateError(err)
	}
	return orderID, true, nil
}

// recordClientOp grava o vínculo (clientOpId → orderId) dentro da transação de
// efetivação; replays concorrentes colidem na chave primária e abortam.
func (s *Store) recordClientOp(ctx context.Context, q querier, clientOpID string, orderID uuid.UUID) error {
	_, err := q.Exec(ctx, `
		INSERT INTO pos_client_ops (client_op_id, order_id, created_at)
		VALUES ($1, $2, $3)
	`, clientOpID, orderID, time.Now().UTC())
	return translateError(err)
}

// PruneClientOps remove registros de idempotência mais antigos que o corte.
func (s *Store) PruneClientOps(ctx context.Context, olderThan time.Time) (int64, error) {
	commandTag, err := s.pool.Exec(ctx, `
		DELETE FROM pos_client_ops WHERE created_at < $1
	`, olderThan)
	if err != nil {
		return 0, translateError(err)
	}
	return commandTag.RowsAffected(), nil
}
