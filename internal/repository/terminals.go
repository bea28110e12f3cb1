package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
)

func (s *Store) CreatePosTerminal(ctx context.Context, terminal *domain.PosTerminal) error {
	terminal.ID = uuid.New()
	now := time.Now().UTC()
	terminal.CreatedAt = now
	terminal.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO pos_terminals (id, branch_id, machine_id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		terminal.ID,
		terminal.BranchID,
		strings.TrimSpace(terminal.MachineID),
		strings.TrimSpace(terminal.Name),
		terminal.Status,
		now,
		now,
	)

	return translateError(err)
}

func (s *Store) UpdatePosTerminalStatus(ctx context.Context, terminalID uuid.UUID, status string) error {
	commandTag, err := s.pool.Exec(ctx, `
		UPDATE pos_terminals
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, terminalID, status, time.Now().UTC())
	if err != nil {
		return translateError(err)
	}
	if commandTag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows)
	}
	return nil
}

func (s *Store) GetPosTerminal(ctx context.Context, terminalID uuid.UUID) (*domain.PosTerminal, error) {
	var terminal domain.PosTerminal
	err := s.pool.QueryRow(ctx, `
		SELECT id, branch_id, machine_id, name, status, created_at, updated_at
		FROM pos_terminals
		WHERE id = $1
	`, terminalID).Scan(
		&terminal.ID,
		&terminal.BranchID,
		&terminal.MachineID,
		&terminal.Name,
		&terminal.Status,
		&terminal.CreatedAt,
		&terminal.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &terminal, nil
}

func (s *Store) ListPosTerminals(ctx context.Context, branchID uuid.UUID) ([]domain.PosTerminal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, branch_id, machine_id, name, status, created_at, updated_at
		FROM pos_terminals
		WHERE branch_id = $1
		ORDER BY name ASC
	`, branchID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var terminals []domain.PosTerminal
	for rows.Next() {
		var terminal domain.PosTerminal
		if err := rows.Scan(
			&terminal.ID,
			&terminal.BranchID,
			&terminal.MachineID,
			&terminal.Name,
			&terminal.Status,
			&terminal.CreatedAt,
			&terminal.UpdatedAt,
		); err != nil {
			return nil, translateError(err)
		}
		terminals = append(terminals, terminal)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return terminals, nil
}
