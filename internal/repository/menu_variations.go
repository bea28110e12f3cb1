package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
)

func (s *Store) CreateMenuVariation(ctx context.Context, variation *domain.MenuVariation) error {
	variation.ID = uuid.New()
	now := time.Now().UTC()
	variation.CreatedAt = now
	variation.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO menu_variations (id, menu_item_id, recipe_variant_id, name, type, price_delta, size_multiplier, calculated_cost, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		variation.ID,
		variation.MenuItemID,
		variation.RecipeVariantID,
		strings.TrimSpace(variation.Name),
		variation.Type,
		variation.PriceDelta,
		variation.SizeMultiplier,
		variation.CalculatedCost,
		variation.Active,
		now,
		now,
	)

	return translateError(err)
}

func (s *Store) UpdateMenuVariation(ctx context.Context, variation *domain.MenuVariation) error {
	variation.UpdatedAt = time.Now().UTC()

	commandTag, err := s.pool.Exec(ctx, `
		UPDATE menu_variations
		SET recipe_variant_id = $2,
			name = $3,
			type = $4,
			price_delta = $5,
			size_multiplier = $6,
			calculated_cost = $7,
			active = $8,
			updated_at = $9
		WHERE id = $1
	`,
		variation.ID,
		variation.RecipeVariantID,
		strings.TrimSpace(variation.Name),
		variation.Type,
		variation.PriceDelta,
		variation.SizeMultiplier,
		variation.CalculatedCost,
		variation.Active,
		variation.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}
	if commandTag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows)
	}

	return nil
}

// GetMenuVariations carrega as variações pedidas em lote, preservando a busca
// por id para o caminho de efetivação.
func (s *Store) GetMenuVariations(ctx context.Context, ids []uuid.UUID) ([]domain.MenuVariation, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, menu_item_id, recipe_variant_id, name, type, price_delta, size_multiplier, calculated_cost, active, created_at, updated_at
		FROM menu_variations
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var variations []domain.MenuVariation
	for rows.Next() {
		var variation domain.MenuVariation
		if err := rows.Scan(
			&variation.ID,
			&variation.MenuItemID,
			&variation.RecipeVariantID,
			&variation.Name,
			&variation.Type,
			&variation.PriceDelta,
			&variation.SizeMultiplier,
			&variation.CalculatedCost,
			&variation.Active,
			&variation.CreatedAt,
			&variation.UpdatedAt,
		); err != nil {
			return nil, translateError(err)
		}
		variations = append(variations, variation)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return variations, nil
}

func (s *Store) ListMenuVariationsByItem(ctx context.Context, menuItemID uuid.UUID) ([]domain.MenuVariation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, menu_item_id, recipe_variant_id, name, type, price_delta, size_multiplier, calculated_cost, active, created_at, updated_at
		FROM menu_variations
		WHERE menu_item_id = $1
		ORDER BY name ASC
	`, menuItemID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var variations []domain.MenuVariation
	for rows.Next() {
		var variation domain.MenuVariation
		if err := rows.Scan(
			&variation.ID,
			&variation.MenuItemID,
			&variation.RecipeVariantID,
			&variation.Name,
			&variation.Type,
			&variation.PriceDelta,
			&variation.SizeMultiplier,
			&variation.CalculatedCost,
			&variation.Active,
			&variation.CreatedAt,
			&variation.UpdatedAt,
		); err != nil {
			return nil, translateError(err)
		}
		variations = append(variations, variation)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return variations, nil
}
