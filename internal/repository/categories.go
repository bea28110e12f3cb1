package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
)

func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) error {
	category.ID = uuid.New()
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO menu_categories (id, name, slug, type, color, icon, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		category.ID,
		strings.TrimSpace(category.Name),
		category.Slug,
		category.Type,
		category.Color,
		category.Icon,
		category.SortOrder,
		now,
		now,
	)

	return translateError(err)
}

func (s *Store) GetCategory(ctx context.Context, categoryID uuid.UUID) (*domain.Category, error) {
	var category domain.Category
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, slug, type, color, icon, sort_order, created_at, updated_at
		FROM menu_categories
		WHERE id = $1
	`, categoryID).Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.Type,
		&category.Color,
		&category.Icon,
		&category.SortOrder,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

func (s *Store) ListCategories(ctx context.Context, categoryType string) ([]domain.Category, error) {
	query := `
		SELECT id, name, slug, type, color, icon, sort_order, created_at, updated_at
		FROM menu_categories
		WHERE 1 = 1
	`
	var args []any
	if categoryType != "" {
		args = append(args, categoryType)
		query += " AND type = $1"
	}
	query += " ORDER BY sort_order ASC, name ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Slug,
			&category.Type,
			&category.Color,
			&category.Icon,
			&category.SortOrder,
			&category.CreatedAt,
			&category.UpdatedAt,
		); err != nil {
			return nil, translateError(err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return categories, nil
}

func (s *Store) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	commandTag, err := s.pool.Exec(ctx, `
		DELETE FROM menu_categories WHERE id = $1
	`, categoryID)
	if err != nil {
		return translateError(err)
	}
	if commandTag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows)
	}
	return nil
}
