package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
)

// InventoryTxnFilter restringe a listagem do livro de estoque.
type InventoryTxnFilter struct {
	BranchID *uuid.UUID
	ItemID   *uuid.UUID
	Type     string
	Limit    int
}

// ListInventoryTxns lista lançamentos do livro, mais recentes primeiro.
// Lançamentos nunca são alterados; não há caminho de escrita fora do
// ApplyStockMovement.
func (s *Store) ListInventoryTxns(ctx context.Context, filter *InventoryTxnFilter) ([]domain.InventoryTransaction, error) {
	if filter == nil {
		filter = &InventoryTxnFilter{}
	}

	query := `
		SELECT id, branch_id, item_id, type, qty, unit_cost, reference, actor_id, created_at
		FROM inventory_txns
		WHERE 1 = 1
	`
	var args []any
	argPos := 1

	if filter.BranchID != nil {
		args = append(args, *filter.BranchID)
		query += fmt.Sprintf(" AND branch_id = $%d", argPos)
		argPos++
	}
	if filter.ItemID != nil {
		args = append(args, *filter.ItemID)
		query += fmt.Sprintf(" AND item_id = $%d", argPos)
		argPos++
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND type = $%d", argPos)
		argPos++
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", argPos)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var txns []domain.InventoryTransaction
	for rows.Next() {
		var txn domain.InventoryTransaction
		if err := rows.Scan(
			&txn.ID,
			&txn.BranchID,
			&txn.ItemID,
			&txn.Type,
			&txn.Qty,
			&txn.UnitCost,
			&txn.Reference,
			&txn.ActorID,
			&txn.CreatedAt,
		); err != nil {
			return nil, translateError(err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return txns, nil
}
