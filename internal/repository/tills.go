package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
)

// CreateTillSession abre uma sessão de caixa. O índice parcial único em
// (branch_id, pos_terminal_id) WHERE status = 'open' garante no máximo uma
// sessão aberta por terminal mesmo sob corrida; colisões voltam como ErrConflict.
func (s *Store) CreateTillSession(ctx context.Context, session *domain.TillSession) error {
	session.ID = uuid.New()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.CashCounts == nil {
		session.CashCounts = []domain.CashCount{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO till_sessions (id, staff_id, branch_id, pos_terminal_id, status, opened_at, opening_amount, cash_counts, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		session.ID,
		session.StaffID,
		session.BranchID,
		session.PosTerminalID,
		session.Status,
		session.OpenedAt,
		session.OpeningAmount,
		session.CashCounts,
		session.Notes,
		now,
		now,
	)

	return translateError(err)
}

func (s *Store) GetTillSession(ctx context.Context, sessionID uuid.UUID) (*domain.TillSession, error) {
	return scanTillSession(s.pool.QueryRow(ctx, `
		SELECT id, staff_id, branch_id, pos_terminal_id, status, opened_at, opening_amount, closed_at, declared_closing_amount, system_closing_amount, variance, cash_counts, notes, created_at, updated_at
		FROM till_sessions
		WHERE id = $1
	`, sessionID))
}

// FindOpenTillSession localiza a sessão aberta de um terminal, se houver.
func (s *Store) FindOpenTillSession(ctx context.Context, branchID uuid.UUID, terminalID *uuid.UUID) (*domain.TillSession, error) {
	return scanTillSession(s.pool.QueryRow(ctx, `
		SELECT id, staff_id, branch_id, pos_terminal_id, status, opened_at, opening_amount, closed_at, declared_closing_amount, system_closing_amount, variance, cash_counts, notes, created_at, updated_at
		FROM till_sessions
		WHERE branch_id = $1
			AND pos_terminal_id IS NOT DISTINCT FROM $2
			AND status = 'open'
	`, branchID, terminalID))
}

func scanTillSession(row pgx.Row) (*domain.TillSession, error) {
	var session domain.TillSession
	err := row.Scan(
		&session.ID,
		&session.StaffID,
		&session.BranchID,
		&session.PosTerminalID,
		&session.Status,
		&session.OpenedAt,
		&session.OpeningAmount,
		&session.ClosedAt,
		&session.DeclaredClosingAmount,
		&session.SystemClosingAmount,
		&session.Variance,
		&session.CashCounts,
		&session.Notes,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &session, nil
}

// CloseTillSession sela a sessão; a guarda de status na cláusula WHERE faz a
// transição falhar com ErrStaleState se a sessão já estiver fechada.
func (s *Store) CloseTillSession(ctx context.Context, session *domain.TillSession) error {
	session.UpdatedAt = time.Now().UTC()
	if session.CashCounts == nil {
		session.CashCounts = []domain.CashCount{}
	}

	commandTag, err := s.pool.Exec(ctx, `
		UPDATE till_sessions
		SET status = 'closed',
			closed_at = $2,
			declared_closing_amount = $3,
			system_closing_amount = $4,
			variance = $5,
			cash_counts = $6,
			notes = $7,
			updated_at = $8
		WHERE id = $1 AND status = 'open'
	`,
		session.ID,
		session.ClosedAt,
		session.DeclaredClosingAmount,
		session.SystemClosingAmount,
		session.Variance,
		session.CashCounts,
		session.Notes,
		session.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}
	if commandTag.RowsAffected() == 0 {
		return ErrStaleState
	}

	return nil
}

// SumTillCash soma os pagamentos em dinheiro vinculados à sessão: total pago em
// pedidos colocados, pagos ou estornados (anulados ficam de fora) e total
// devolvido em estornos.
func (s *Store) SumTillCash(ctx context.Context, sessionID uuid.UUID) (paid, refunded decimal.Decimal, err error) {
	err = s.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM((payment->>'amount_paid')::numeric) FILTER (WHERE status IN ('placed', 'paid', 'refunded')), 0),
			COALESCE(SUM((payment->>'amount_paid')::numeric) FILTER (WHERE status = 'refunded'), 0)
		FROM pos_orders
		WHERE till_session_id = $1
			AND payment->>'method' = 'cash'
	`, sessionID).Scan(&paid, &refunded)
	if err != nil {
		return decimal.Zero, decimal.Zero, translateError(err)
	}
	return paid, refunded, nil
}
