package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
)

// UpsertBranchMenu grava a sobreposição por filial de um item de menu,
// copiando os snapshots de código/nome/categoria do item.
func (s *Store) UpsertBranchMenu(ctx context.Context, bm *domain.BranchMenu) error {
	if bm.ID == uuid.Nil {
		bm.ID = uuid.New()
	}
	now := time.Now().UTC()
	bm.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO branch_menus (id, branch_id, menu_item_id, selling_price, available, visible_on_pos, display_order, code_snapshot, name_snapshot, category_snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (branch_id, menu_item_id) DO UPDATE
		SET selling_price = EXCLUDED.selling_price,
			available = EXCLUDED.available,
			visible_on_pos = EXCLUDED.visible_on_pos,
			display_order = EXCLUDED.display_order,
			code_snapshot = EXCLUDED.code_snapshot,
			name_snapshot = EXCLUDED.name_snapshot,
			category_snapshot = EXCLUDED.category_snapshot,
			updated_at = EXCLUDED.updated_at
	`,
		bm.ID,
		bm.BranchID,
		bm.MenuItemID,
		bm.SellingPrice,
		bm.Available,
		bm.VisibleOnPOS,
		bm.DisplayOrder,
		bm.CodeSnapshot,
		bm.NameSnapshot,
		bm.CategorySnapshot,
		now,
	)

	return translateError(err)
}

func (s *Store) GetBranchMenu(ctx context.Context, branchID, menuItemID uuid.UUID) (*domain.BranchMenu, error) {
	var bm domain.BranchMenu
	err := s.pool.QueryRow(ctx, `
		SELECT id, branch_id, menu_item_id, selling_price, available, visible_on_pos, display_order, code_snapshot, name_snapshot, category_snapshot, created_at, updated_at
		FROM branch_menus
		WHERE branch_id = $1 AND menu_item_id = $2
	`, branchID, menuItemID).Scan(
		&bm.ID,
		&bm.BranchID,
		&bm.MenuItemID,
		&bm.SellingPrice,
		&bm.Available,
		&bm.VisibleOnPOS,
		&bm.DisplayOrder,
		&bm.CodeSnapshot,
		&bm.NameSnapshot,
		&bm.CategorySnapshot,
		&bm.CreatedAt,
		&bm.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &bm, nil
}

func (s *Store) ListBranchMenu(ctx context.Context, branchID uuid.UUID, visibleOnly bool) ([]domain.BranchMenu, error) {
	query := `
		SELECT id, branch_id, menu_item_id, selling_price, available, visible_on_pos, display_order, code_snapshot, name_snapshot, category_snapshot, created_at, updated_at
		FROM branch_menus
		WHERE branch_id = $1
	`
	if visibleOnly {
		query += " AND visible_on_pos = TRUE AND available = TRUE"
	}
	query += " ORDER BY display_order ASC, name_snapshot ASC"

	rows, err := s.pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var out []domain.BranchMenu
	for rows.Next() {
		var bm domain.BranchMenu
		if err := rows.Scan(
			&bm.ID,
			&bm.BranchID,
			&bm.MenuItemID,
			&bm.SellingPrice,
			&bm.Available,
			&bm.VisibleOnPOS,
			&bm.DisplayOrder,
			&bm.CodeSnapshot,
			&bm.NameSnapshot,
			&bm.CategorySnapshot,
			&bm.CreatedAt,
			&bm.UpdatedAt,
		); err != nil {
			return nil, translateError(err)
		}
		out = append(out, bm)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return out, nil
}
