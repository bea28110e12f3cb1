package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
)

// maxOrderNumberRetries limita as retentativas quando o número alocado colide
// (indicativo de skew de relógio entre produtores).
const maxOrderNumberRetries = 3

// OrderCommit agrega tudo que a seção de efetivação precisa gravar de uma vez:
// o pedido montado no preflight, as necessidades agregadas de estoque e a chave
// de idempotência opcional.
type OrderCommit struct {
	Order        *domain.Order
	Requirements []domain.StockRequirement
	Prefix       string
	Day          time.Time
	ClientOpID   string
}

// CommitOrder executa a seção de efetivação dentro de uma única transação:
// aloca o número, insere o pedido, deduz o estoque e registra a idempotência.
// Qualquer falha aborta tudo, inclusive o incremento do contador de número.
func (s *Store) CommitOrder(ctx context.Context, commit *OrderCommit) error {
	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		err := s.ExecTx(ctx, func(tx pgx.Tx) error {
			seq, err := s.NextOrderSequence(ctx, tx, commit.Order.BranchID, commit.Prefix, commit.Day)
			if err != nil {
				return err
			}
			commit.Order.OrderNumber = FormatOrderNumber(commit.Prefix, commit.Day, seq)

			if err := s.insertOrder(ctx, tx, commit.Order); err != nil {
				return err
			}

			orderID := commit.Order.ID
			if err := s.ApplyStockMovement(ctx, tx, &StockMovement{
				BranchID:     commit.Order.BranchID,
				Type:         domain.TxnTypeUsage,
				Requirements: commit.Requirements,
				Credit:       false,
				Reference:    domain.TxnReference{OrderID: &orderID},
				ActorID:      commit.Order.StaffID,
			}); err != nil {
				return err
			}

			if commit.ClientOpID != "" {
				if err := s.recordClientOp(ctx, tx, commit.ClientOpID, commit.Order.ID); err != nil {
					return err
				}
			}

			return nil
		})
		if err == nil {
			return nil
		}
		lastErr = err
		if !isUniqueViolation(err) {
			return err
		}
	}
	// Colisões persistentes de chave única viram conflito para o chamador
	// (replay concorrente de clientOpId ou skew extremo de relógio).
	return fmt.Errorf("esgotadas as retentativas de efetivação (%v): %w", lastErr, ErrConflict)
}

func (s *Store) insertOrder(ctx context.Context, q querier, order *domain.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := q.Exec(ctx, `
		INSERT INTO pos_orders (id, order_number, branch_id, pos_terminal_id, till_session_id, staff_id, status, items, totals, payment, pricing_snapshot, customer, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		order.ID,
		order.OrderNumber,
		order.BranchID,
		order.PosTerminalID,
		order.TillSessionID,
		order.StaffID,
		order.Status,
		order.Items,
		order.Totals,
		order.Payment,
		order.PricingSnapshot,
		order.Customer,
		order.Notes,
		now,
		now,
	)

	return err
}

func (s *Store) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return scanOrder(s.pool.QueryRow(ctx, `
		SELECT id, order_number, branch_id, pos_terminal_id, till_session_id, staff_id, status, items, totals, payment, pricing_snapshot, customer, notes, created_at, updated_at
		FROM pos_orders
		WHERE id = $1
	`, orderID))
}

func (s *Store) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return scanOrder(s.pool.QueryRow(ctx, `
		SELECT id, order_number, branch_id, pos_terminal_id, till_session_id, staff_id, status, items, totals, payment, pricing_snapshot, customer, notes, created_at, updated_at
		FROM pos_orders
		WHERE order_number = $1
	`, orderNumber))
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.BranchID,
		&order.PosTerminalID,
		&order.TillSessionID,
		&order.StaffID,
		&order.Status,
		&order.Items,
		&order.Totals,
		&order.Payment,
		&order.PricingSnapshot,
		&order.Customer,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context, filter *OrderListFilter) ([]domain.Order, error) {
	if filter == nil {
		filter = &OrderListFilter{}
	}

	query := `
		SELECT id, order_number, branch_id, pos_terminal_id, till_session_id, staff_id, status, items, totals, payment, pricing_snapshot, customer, notes, created_at, updated_at
		FROM pos_orders
		WHERE 1 = 1
	`
	var args []any
	argPos := 1

	if filter.BranchID != nil {
		args = append(args, *filter.BranchID)
		query += fmt.Sprintf(" AND branch_id = $%d", argPos)
		argPos++
	}
	if filter.TillSessionID != nil {
		args = append(args, *filter.TillSessionID)
		query += fmt.Sprintf(" AND till_session_id = $%d", argPos)
		argPos++
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", argPos)
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

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.OrderNumber,
			&order.BranchID,
			&order.PosTerminalID,
			&order.TillSessionID,
			&order.StaffID,
			&order.Status,
			&order.Items,
			&order.Totals,
			&order.Payment,
			&order.PricingSnapshot,
			&order.Customer,
			&order.Notes,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, translateError(err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return orders, nil
}

// TransitionOrderStatus muda o status de um pedido com guarda do estado de
// origem; a transição falha com ErrStaleState se outro operador chegou antes.
func (s *Store) TransitionOrderStatus(ctx context.Context, q querier, orderID uuid.UUID, from []string, to string) error {
	commandTag, err := q.Exec(ctx, `
		UPDATE pos_orders
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = ANY($2)
	`, orderID, from, to, time.Now().UTC())
	if err != nil {
		return translateError(err)
	}
	if commandTag.RowsAffected() == 0 {
		return ErrStaleState
	}
	return nil
}

// OrderReversal descreve uma transição de anulação/estorno com devolução de
// estoque.
type OrderReversal struct {
	OrderID    uuid.UUID
	FromStatus []string
	ToStatus   string
	ActorID    uuid.UUID
	Note       string
}

// ReverseOrder aplica a transição de status e devolve ao estoque o consumo
// registrado no livro para o pedido, tudo em uma transação.
func (s *Store) ReverseOrder(ctx context.Context, reversal *OrderReversal) error {
	return s.ExecTx(ctx, func(tx pgx.Tx) error {
		if err := s.TransitionOrderStatus(ctx, tx, reversal.OrderID, reversal.FromStatus, reversal.ToStatus); err != nil {
			return err
		}

		reqs, err := s.OrderUsageRequirements(ctx, tx, reversal.OrderID)
		if err != nil {
			return err
		}
		if len(reqs) == 0 {
			return nil
		}

		order, err := s.GetOrder(ctx, reversal.OrderID)
		if err != nil {
			return err
		}
		orderID := reversal.OrderID
		return s.ApplyStockMovement(ctx, tx, &StockMovement{
			BranchID:     order.BranchID,
			Type:         domain.TxnTypeAdjust,
			Requirements: reqs,
			Credit:       true,
			Reference:    domain.TxnReference{OrderID: &orderID, Note: reversal.Note},
			ActorID:      reversal.ActorID,
		})
	})
}

// OrderUsageRequirements reconstrói, a partir do livro, o consumo de estoque do
// pedido — base da devolução em anulações e estornos.
func (s *Store) OrderUsageRequirements(ctx context.Context, q querier, orderID uuid.UUID) ([]domain.StockRequirement, error) {
	rows, err := q.Query(ctx, `
		SELECT item_id, -SUM(qty)
		FROM inventory_txns
		WHERE reference->>'order_id' = $1 AND type = $2
		GROUP BY item_id
	`, orderID.String(), domain.TxnTypeUsage)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var reqs []domain.StockRequirement
	for rows.Next() {
		var req domain.StockRequirement
		if err := rows.Scan(&req.ItemID, &req.Qty); err != nil {
			return nil, translateError(err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return reqs, nil
}
