package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
)

func (s *Store) CreateBranch(ctx context.Context, branch *domain.Branch) error {
	branch.ID = uuid.New()
	now := time.Now().UTC()
	branch.CreatedAt = now
	branch.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO branches (id, name, code, currency, tax, pos_config, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		branch.ID,
		strings.TrimSpace(branch.Name),
		strings.TrimSpace(strings.ToUpper(branch.Code)),
		strings.ToUpper(strings.TrimSpace(branch.Currency)),
		branch.Tax,
		branch.POSConfig,
		branch.Active,
		now,
		now,
	)

	return translateError(err)
}

func (s *Store) UpdateBranch(ctx context.Context, branch *domain.Branch) error {
	branch.UpdatedAt = time.Now().UTC()

	commandTag, err := s.pool.Exec(ctx, `
		UPDATE branches
		SET name = $2,
			code = $3,
			currency = $4,
			tax = $5,
			pos_config = $6,
			active = $7,
			updated_at = $8
		WHERE id = $1
	`,
		branch.ID,
		strings.TrimSpace(branch.Name),
		strings.TrimSpace(strings.ToUpper(branch.Code)),
		strings.ToUpper(strings.TrimSpace(branch.Currency)),
		branch.Tax,
		branch.POSConfig,
		branch.Active,
		branch.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}
	if commandTag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows)
	}

	return nil
}

func (s *Store) GetBranch(ctx context.Context, branchID uuid.UUID) (*domain.Branch, error) {
	var branch domain.Branch
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, code, currency, tax, pos_config, active, created_at, updated_at
		FROM branches
		WHERE id = $1
	`, branchID).Scan(
		&branch.ID,
		&branch.Name,
		&branch.Code,
		&branch.Currency,
		&branch.Tax,
		&branch.POSConfig,
		&branch.Active,
		&branch.CreatedAt,
		&branch.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &branch, nil
}

func (s *Store) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, code, currency, tax, pos_config, active, created_at, updated_at
		FROM branches
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var branches []domain.Branch
	for rows.Next() {
		var branch domain.Branch
		if err := rows.Scan(
			&branch.ID,
			&branch.Name,
			&branch.Code,
			&branch.Currency,
			&branch.Tax,
			&branch.POSConfig,
			&branch.Active,
			&branch.CreatedAt,
			&branch.UpdatedAt,
		); err != nil {
			return nil, translateError(err)
		}
		branches = append(branches, branch)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return branches, nil
}
