package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
)

func (s *Store) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	item.ID = uuid.New()
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Slug == "" {
		item.Slug = Slugify(item.Name)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO menu_items (id, name, code, slug, recipe_id, category_id, base_price, price_includes_tax, currency, active, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		item.ID,
		strings.TrimSpace(item.Name),
		strings.TrimSpace(strings.ToUpper(item.Code)),
		item.Slug,
		item.RecipeID,
		item.CategoryID,
		item.BasePrice,
		item.PriceIncludesTax,
		strings.ToUpper(strings.TrimSpace(item.Currency)),
		item.Active,
		item.Deleted,
		now,
		now,
	)

	return translateError(err)
}

func (s *Store) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	item.UpdatedAt = time.Now().UTC()

	commandTag, err := s.pool.Exec(ctx, `
		UPDATE menu_items
		SET name = $2,
			code = $3,
			slug = $4,
			recipe_id = $5,
			category_id = $6,
			base_price = $7,
			price_includes_tax = $8,
			currency = $9,
			active = $10,
			deleted = $11,
			updated_at = $12
		WHERE id = $1
	`,
		item.ID,
		strings.TrimSpace(item.Name),
		strings.TrimSpace(strings.ToUpper(item.Code)),
		item.Slug,
		item.RecipeID,
		item.CategoryID,
		item.BasePrice,
		item.PriceIncludesTax,
		strings.ToUpper(strings.TrimSpace(item.Currency)),
		item.Active,
		item.Deleted,
		item.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}
	if commandTag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows)
	}

	return nil
}

func (s *Store) GetMenuItem(ctx context.Context, itemID uuid.UUID) (*domain.MenuItem, error) {
	return scanMenuItem(s.pool.QueryRow(ctx, `
		SELECT id, name, code, slug, recipe_id, category_id, base_price, price_includes_tax, currency, active, deleted, created_at, updated_at
		FROM menu_items
		WHERE id = $1
	`, itemID))
}

func scanMenuItem(row pgx.Row) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Code,
		&item.Slug,
		&item.RecipeID,
		&item.CategoryID,
		&item.BasePrice,
		&item.PriceIncludesTax,
		&item.Currency,
		&item.Active,
		&item.Deleted,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

func (s *Store) ListMenuItems(ctx context.Context, filter *MenuItemListFilter) ([]domain.MenuItem, error) {
	if filter == nil {
		filter = &MenuItemListFilter{}
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`
		SELECT id, name, code, slug, recipe_id, category_id, base_price, price_includes_tax, currency, active, deleted, created_at, updated_at
		FROM menu_items
		WHERE deleted = FALSE
	`)

	var args []any
	argPos := 1

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		queryBuilder.WriteString(fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", argPos, argPos))
		argPos++
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		queryBuilder.WriteString(fmt.Sprintf(" AND category_id = $%d", argPos))
		argPos++
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		queryBuilder.WriteString(fmt.Sprintf(" AND active = $%d", argPos))
		argPos++
	}

	queryBuilder.WriteString(" ORDER BY name ASC")

	rows, err := s.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Code,
			&item.Slug,
			&item.RecipeID,
			&item.CategoryID,
			&item.BasePrice,
			&item.PriceIncludesTax,
			&item.Currency,
			&item.Active,
			&item.Deleted,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, translateError(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return items, nil
}

// SoftDeleteMenuItem marca o item como removido; pedidos antigos mantêm os snapshots.
func (s *Store) SoftDeleteMenuItem(ctx context.Context, itemID uuid.UUID) error {
	commandTag, err := s.pool.Exec(ctx, `
		UPDATE menu_items
		SET deleted = TRUE, active = FALSE, updated_at = $2
		WHERE id = $1
	`, itemID, time.Now().UTC())
	if err != nil {
		return translateError(err)
	}
	if commandTag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows)
	}
	return nil
}
