package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/costing"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/metrics"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
)

const recipeCostTTL = 15 * time.Minute

// RecipeStore é a fatia do repositório usada pela autoria de receitas.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe *domain.Recipe) error
	UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error
	GetRecipe(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)
	ListRecipes(ctx context.Context, search string) ([]domain.Recipe, error)
	CreateRecipeVariant(ctx context.Context, variant *domain.RecipeVariant) error
	GetRecipeVariant(ctx context.Context, id uuid.UUID) (*domain.RecipeVariant, error)
	ListRecipeVariants(ctx context.Context, recipeID uuid.UUID) ([]domain.RecipeVariant, error)
	GetInventoryItem(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error)
}

// recipeCostSnapshot é o que fica no cache por receita.
type recipeCostSnapshot struct {
	TotalCost decimal.Decimal `json:"total_cost"`
	YieldQty  decimal.Decimal `json:"yield_qty"`
}

// RecipeService orquestra a autoria de receitas e variantes: normalização de
// unidades, validação do grafo (aciclicidade na gravação) e custo derivado.
type RecipeService struct {
	cache   *redis.Client
	metrics *metrics.Registry
	log     zerolog.Logger
}

func NewRecipeService(cache *redis.Client, metricsReg *metrics.Registry, log zerolog.Logger) *RecipeService {
	return &RecipeService{cache: cache, metrics: metricsReg, log: log}
}

type recipeStoreSource struct {
	store RecipeStore
}

func (s recipeStoreSource) Recipe(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	return s.store.GetRecipe(ctx, id)
}

func (s recipeStoreSource) Variant(ctx context.Context, id uuid.UUID) (*domain.RecipeVariant, error) {
	return s.store.GetRecipeVariant(ctx, id)
}

// Create valida e grava uma receita nova, com custo total derivado.
func (s *RecipeService) Create(ctx context.Context, store RecipeStore, tenantKey string, recipe *domain.Recipe) error {
	if err := s.normalize(ctx, store, recipe); err != nil {
		return err
	}
	if err := store.CreateRecipe(ctx, recipe); err != nil {
		return err
	}
	// Uma receita nova ainda não é referenciada por nenhuma outra, então a
	// gravação não fecha ciclo; o custo derivado vem depois dela porque a
	// planificação lê do repositório. Uma falha nesse cálculo não desfaz a gravação.
	if err := s.refreshCost(ctx, store, tenantKey, recipe); err != nil {
		return err
	}
	s.log.Info().Str("recipe_id", recipe.ID.String()).Msg("receita criada")
	return nil
}

// Update revalida o grafo e o custo; um ciclo introduzido na edição é rejeitado.
func (s *RecipeService) Update(ctx context.Context, store RecipeStore, tenantKey string, recipe *domain.Recipe) error {
	if recipe.ID == uuid.Nil {
		return ValidationError("receita inválida")
	}
	if err := s.normalize(ctx, store, recipe); err != nil {
		return err
	}
	if err := store.UpdateRecipe(ctx, recipe); err != nil {
		return err
	}
	if err := s.refreshCost(ctx, store, tenantKey, recipe); err != nil {
		return err
	}
	s.InvalidateCost(ctx, tenantKey, recipe.ID)
	s.log.Info().Str("recipe_id", recipe.ID.String()).Msg("receita atualizada")
	return nil
}

// refreshCost recalcula o custo total via planificação (que também detecta
// ciclos) e persiste o valor derivado.
func (s *RecipeService) refreshCost(ctx context.Context, store RecipeStore, tenantKey string, recipe *domain.Recipe) error {
	engine := costing.NewEngine(recipeStoreSource{store})
	expansion, err := engine.Flatten(ctx, recipe.ID, decimal.NewFromInt(1))
	if err != nil {
		return err
	}
	if !recipe.TotalCost.Equal(expansion.TotalCost) {
		recipe.TotalCost = expansion.TotalCost
		if err := store.UpdateRecipe(ctx, recipe); err != nil {
			return err
		}
	}
	return nil
}

// CreateVariant valida a variante contra a receita mãe e grava.
func (s *RecipeService) CreateVariant(ctx context.Context, store RecipeStore, tenantKey string, variant *domain.RecipeVariant) error {
	if variant == nil || variant.RecipeID == uuid.Nil {
		return ValidationError("variante precisa de uma receita mãe")
	}
	if _, err := store.GetRecipe(ctx, variant.RecipeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fault.Newf(fault.KindRecipeNotFound, "receita mãe %s não encontrada", variant.RecipeID)
		}
		return err
	}

	switch variant.Type {
	case domain.VariantTypeSize, domain.VariantTypeCrust, domain.VariantTypeFlavor, domain.VariantTypeAddon, domain.VariantTypeCombo, domain.VariantTypeCustom:
	default:
		return ValidationErrorf("tipo de variante desconhecido: %s", variant.Type)
	}
	if variant.SizeMultiplier.IsZero() {
		variant.SizeMultiplier = decimal.NewFromInt(1)
	}
	if variant.SizeMultiplier.LessThan(decimal.NewFromFloat(0.01)) {
		return ValidationError("multiplicador de tamanho mínimo é 0.01")
	}
	if err := s.normalizeIngredients(ctx, store, variant.Ingredients); err != nil {
		return err
	}

	// Expande os ingredientes próprios da variante antes de gravar, para garantir
	// que o grafo resultante continua acíclico.
	engine := costing.NewEngine(recipeStoreSource{store})
	if _, err := engine.FlattenIngredients(ctx, variant.Ingredients, variant.RecipeID, decimal.NewFromInt(1)); err != nil {
		return err
	}

	if err := store.CreateRecipeVariant(ctx, variant); err != nil {
		return err
	}

	s.log.Info().Str("variant_id", variant.ID.String()).Str("recipe_id", variant.RecipeID.String()).Msg("variante criada")
	return nil
}

// VariantCost calcula o custo de autoria de uma variante: ingredientes próprios
// mais o ajuste de custo base.
func (s *RecipeService) VariantCost(ctx context.Context, store RecipeStore, variant *domain.RecipeVariant) (decimal.Decimal, error) {
	engine := costing.NewEngine(recipeStoreSource{store})
	expansion, err := engine.FlattenIngredients(ctx, variant.Ingredients, variant.RecipeID, decimal.NewFromInt(1))
	if err != nil {
		return decimal.Zero, err
	}
	return domain.RoundInternal(expansion.TotalCost.Add(variant.BaseCostAdjustment)), nil
}

// CostSnapshot devolve custo total e yield da receita, com cache em Redis.
func (s *RecipeService) CostSnapshot(ctx context.Context, store RecipeStore, tenantKey string, recipeID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	key := s.costCacheKey(tenantKey, recipeID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var snapshot recipeCostSnapshot
			if err := json.Unmarshal(data, &snapshot); err == nil {
				s.observeCache("hit")
				return snapshot.TotalCost, snapshot.YieldQty, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("recipe_id", recipeID.String()).Msg("falha ao recuperar cache de custo")
		}
	}

	engine := costing.NewEngine(recipeStoreSource{store})
	expansion, err := engine.Flatten(ctx, recipeID, decimal.NewFromInt(1))
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	recipe, err := store.GetRecipe(ctx, recipeID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(recipeCostSnapshot{TotalCost: expansion.TotalCost, YieldQty: recipe.YieldQty}); err == nil {
			if err := s.cache.Set(ctx, key, payload, recipeCostTTL).Err(); err != nil {
				s.log.Warn().Err(err).Str("recipe_id", recipeID.String()).Msg("falha ao salvar cache de custo")
			} else {
				s.observeCache("miss")
			}
		}
	}

	return expansion.TotalCost, recipe.YieldQty, nil
}

// InvalidateCost remove o custo cacheado de uma receita.
func (s *RecipeService) InvalidateCost(ctx context.Context, tenantKey string, recipeID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.costCacheKey(tenantKey, recipeID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		s.log.Debug().Err(err).Str("recipe_id", recipeID.String()).Msg("falha ao invalidar cache de custo")
	}
}

func (s *RecipeService) costCacheKey(tenantKey string, recipeID uuid.UUID) string {
	return fmt.Sprintf("recipecost:%s:%s", tenantKey, recipeID)
}

func (s *RecipeService) observeCache(event string) {
	if s.metrics == nil || s.metrics.RecipeCache == nil {
		return
	}
	s.metrics.RecipeCache.WithLabelValues(event).Inc()
}

func (s *RecipeService) normalize(ctx context.Context, store RecipeStore, recipe *domain.Recipe) error {
	if recipe == nil || strings.TrimSpace(recipe.Name) == "" {
		return ValidationError("nome da receita é obrigatório")
	}
	if recipe.YieldQty.Sign() <= 0 {
		recipe.YieldQty = decimal.NewFromInt(1)
	}
	if recipe.YieldUnit != "" && !domain.IsValidMeasurementUnit(recipe.YieldUnit) {
		return ValidationErrorf("unidade de rendimento desconhecida: %s", recipe.YieldUnit)
	}
	return s.normalizeIngredients(ctx, store, recipe.Ingredients)
}

// normalizeIngredients valida cada ingrediente: origem conhecida, quantidade
// positiva e, para folhas de inventário, unidade compatível com a unidade base
// do item — a divergência é rejeitada na autoria; o caminho de pedido confia na
// unidade gravada.
func (s *RecipeService) normalizeIngredients(ctx context.Context, store RecipeStore, ingredients []domain.RecipeIngredient) error {
	for i := range ingredients {
		ing := &ingredients[i]
		if ing.Quantity.Sign() <= 0 {
			return ValidationError("quantidade de ingrediente deve ser positiva")
		}
		if ing.CostPerUnit.Sign() < 0 {
			return ValidationError("custo unitário de ingrediente não pode ser negativo")
		}

		switch ing.SourceType {
		case domain.IngredientSourceInventory:
			item, err := store.GetInventoryItem(ctx, ing.SourceID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fault.Newf(fault.KindItemNotFound, "insumo %s não encontrado", ing.SourceID)
				}
				return err
			}
			unit := domain.NormalizeUnit(ing.Unit)
			if unit == "" {
				unit = item.BaseUnit
			}
			if unit != item.BaseUnit {
				return ValidationErrorf("unidade %s difere da unidade base %s do insumo %s", unit, item.BaseUnit, item.Name)
			}
			ing.Unit = unit
			ing.NameSnapshot = item.Name
		case domain.IngredientSourceRecipe:
			sub, err := store.GetRecipe(ctx, ing.SourceID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fault.Newf(fault.KindRecipeNotFound, "sub-receita %s não encontrada", ing.SourceID)
				}
				return err
			}
			ing.NameSnapshot = sub.Name
			if ing.Unit == "" {
				ing.Unit = sub.YieldUnit
			}
		default:
			return ValidationErrorf("origem de ingrediente desconhecida: %s", ing.SourceType)
		}
	}
	return nil
}

// Get devolve uma receita com as variantes carregadas.
func (s *RecipeService) Get(ctx context.Context, store RecipeStore, recipeID uuid.UUID) (*domain.Recipe, []domain.RecipeVariant, error) {
	recipe, err := store.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, nil, err
	}
	variants, err := store.ListRecipeVariants(ctx, recipeID)
	if err != nil {
		return nil, nil, err
	}
	return recipe, variants, nil
}

// List lista receitas por busca textual.
func (s *RecipeService) List(ctx context.Context, store RecipeStore, search string) ([]domain.Recipe, error) {
	return store.ListRecipes(ctx, search)
}
