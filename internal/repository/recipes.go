package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
)

func (s *Store) CreateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	recipe.ID = uuid.New()
	now := time.Now().UTC()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	if recipe.Ingredients == nil {
		recipe.Ingredients = []domain.RecipeIngredient{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO recipes (id, name, yield_qty, yield_unit, total_cost, ingredients, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		recipe.ID,
		strings.TrimSpace(recipe.Name),
		recipe.YieldQty,
		domain.NormalizeUnit(recipe.YieldUnit),
		recipe.TotalCost,
		recipe.Ingredients,
		recipe.Active,
		now,
		now,
	)

	return translateError(err)
}

func (s *Store) UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	recipe.UpdatedAt = time.Now().UTC()

	commandTag, err := s.pool.Exec(ctx, `
		UPDATE recipes
		SET name = $2,
			yield_qty = $3,
			yield_unit = $4,
			total_cost = $5,
			ingredients = $6,
			active = $7,
			updated_at = $8
		WHERE id = $1
	`,
		recipe.ID,
		strings.TrimSpace(recipe.Name),
		recipe.YieldQty,
		domain.NormalizeUnit(recipe.YieldUnit),
		recipe.TotalCost,
		recipe.Ingredients,
		recipe.Active,
		recipe.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}
	if commandTag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows)
	}

	return nil
}

func (s *Store) GetRecipe(ctx context.Context, recipeID uuid.UUID) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, yield_qty, yield_unit, total_cost, ingredients, active, created_at, updated_at
		FROM recipes
		WHERE id = $1
	`, recipeID).Scan(
		&recipe.ID,
		&recipe.Name,
		&recipe.YieldQty,
		&recipe.YieldUnit,
		&recipe.TotalCost,
		&recipe.Ingredients,
		&recipe.Active,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &recipe, nil
}

func (s *Store) ListRecipes(ctx context.Context, search string) ([]domain.Recipe, error) {
	query := `
		SELECT id, name, yield_qty, yield_unit, total_cost, ingredients, active, created_at, updated_at
		FROM recipes
		WHERE 1 = 1
	`
	var args []any
	if search = strings.TrimSpace(search); search != "" {
		args = append(args, "%"+search+"%")
		query += " AND name ILIKE $1"
	}
	query += " ORDER BY name ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var recipes []domain.Recipe
	for rows.Next() {
		var recipe domain.Recipe
		if err := rows.Scan(
			&recipe.ID,
			&recipe.Name,
			&recipe.YieldQty,
			&recipe.YieldUnit,
			&recipe.TotalCost,
			&recipe.Ingredients,
			&recipe.Active,
			&recipe.CreatedAt,
			&recipe.UpdatedAt,
		); err != nil {
			return nil, translateError(err)
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return recipes, nil
}

func (s *Store) CreateRecipeVariant(ctx context.Context, variant *domain.RecipeVariant) error {
	variant.ID = uuid.New()
	now := time.Now().UTC()
	variant.CreatedAt = now
	variant.UpdatedAt = now
	if variant.Ingredients == nil {
		variant.Ingredients = []domain.RecipeIngredient{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO recipe_variants (id, recipe_id, name, type, size_multiplier, base_cost_adjustment, ingredients, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		variant.ID,
		variant.RecipeID,
		strings.TrimSpace(variant.Name),
		variant.Type,
		variant.SizeMultiplier,
		variant.BaseCostAdjustment,
		variant.Ingredients,
		now,
		now,
	)

	return translateError(err)
}

func (s *Store) GetRecipeVariant(ctx context.Context, variantID uuid.UUID) (*domain.RecipeVariant, error) {
	var variant domain.RecipeVariant
	err := s.pool.QueryRow(ctx, `
		SELECT id, recipe_id, name, type, size_multiplier, base_cost_adjustment, ingredients, created_at, updated_at
		FROM recipe_variants
		WHERE id = $1
	`, variantID).Scan(
		&variant.ID,
		&variant.RecipeID,
		&variant.Name,
		&variant.Type,
		&variant.SizeMultiplier,
		&variant.BaseCostAdjustment,
		&variant.Ingredients,
		&variant.CreatedAt,
		&variant.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &variant, nil
}

func (s *Store) ListRecipeVariants(ctx context.Context, recipeID uuid.UUID) ([]domain.RecipeVariant, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, recipe_id, name, type, size_multiplier, base_cost_adjustment, ingredients, created_at, updated_at
		FROM recipe_variants
		WHERE recipe_id = $1
		ORDER BY name ASC
	`, recipeID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var variants []domain.RecipeVariant
	for rows.Next() {
		var variant domain.RecipeVariant
		if err := rows.Scan(
			&variant.ID,
			&variant.RecipeID,
			&variant.Name,
			&variant.Type,
			&variant.SizeMultiplier,
			&variant.BaseCostAdjustment,
			&variant.Ingredients,
			&variant.CreatedAt,
			&variant.UpdatedAt,
		); err != nil {
			return nil, translateError(err)
		}
		variants = append(variants, variant)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return variants, nil
}
