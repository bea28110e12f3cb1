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

func (s *Store) CreateInventoryItem(ctx context.Context, item *domain.InventoryItem) error {
	item.ID = uuid.New()
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO inventory_items (id, name, sku, type, base_unit, category_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		item.ID,
		strings.TrimSpace(item.Name),
		strings.TrimSpace(strings.ToUpper(item.SKU)),
		item.Type,
		domain.NormalizeUnit(item.BaseUnit),
		item.CategoryID,
		item.Active,
		now,
		now,
	)

	return translateError(err)
}

func (s *Store) UpdateInventoryItem(ctx context.Context, item *domain.InventoryItem) error {
	item.UpdatedAt = time.Now().UTC()

	commandTag, err := s.pool.Exec(ctx, `
		UPDATE inventory_items
		SET name = $2,
			sku = $3,
			type = $4,
			base_unit = $5,
			category_id = $6,
			active = $7,
			updated_at = $8
		WHERE id = $1
	`,
		item.ID,
		strings.TrimSpace(item.Name),
		strings.TrimSpace(strings.ToUpper(item.SKU)),
		item.Type,
		domain.NormalizeUnit(item.BaseUnit),
		item.CategoryID,
		item.Active,
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

func (s *Store) GetInventoryItem(ctx context.Context, itemID uuid.UUID) (*domain.InventoryItem, error) {
	return scanInventoryItem(s.pool.QueryRow(ctx, `
		SELECT id, name, sku, type, base_unit, category_id, active, created_at, updated_at
		FROM inventory_items
		WHERE id = $1
	`, itemID))
}

func (s *Store) GetInventoryItemBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	return scanInventoryItem(s.pool.QueryRow(ctx, `
		SELECT id, name, sku, type, base_unit, category_id, active, created_at, updated_at
		FROM inventory_items
		WHERE sku = $1
	`, strings.TrimSpace(strings.ToUpper(sku))))
}

func scanInventoryItem(row pgx.Row) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.SKU,
		&item.Type,
		&item.BaseUnit,
		&item.CategoryID,
		&item.Active,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

func (s *Store) ListInventoryItems(ctx context.Context, filter *InventoryItemListFilter) ([]domain.InventoryItem, error) {
	if filter == nil {
		filter = &InventoryItemListFilter{}
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`
		SELECT id, name, sku, type, base_unit, category_id, active, created_at, updated_at
		FROM inventory_items
		WHERE 1 = 1
	`)

	var args []any
	argPos := 1

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		queryBuilder.WriteString(fmt.Sprintf(" AND (name ILIKE $%d OR sku ILIKE $%d)", argPos, argPos))
		argPos++
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		queryBuilder.WriteString(fmt.Sprintf(" AND type = $%d", argPos))
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

	var items []domain.InventoryItem
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.SKU,
			&item.Type,
			&item.BaseUnit,
			&item.CategoryID,
			&item.Active,
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

// SoftDeleteInventoryItem aposenta um insumo sem apagar o histórico do livro.
func (s *Store) SoftDeleteInventoryItem(ctx context.Context, itemID uuid.UUID) error {
	commandTag, err := s.pool.Exec(ctx, `
		UPDATE inventory_items
		SET active = FALSE, updated_at = $2
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
