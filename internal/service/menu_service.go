package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
)

// MenuStore é a fatia do repositório usada pela autoria de cardápio.
type MenuStore interface {
	CreateMenuItem(ctx context.Context, item *domain.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error
	GetMenuItem(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error)
	ListMenuItems(ctx context.Context, filter *repository.MenuItemListFilter) ([]domain.MenuItem, error)
	SoftDeleteMenuItem(ctx context.Context, id uuid.UUID) error
	CreateMenuVariation(ctx context.Context, variation *domain.MenuVariation) error
	UpdateMenuVariation(ctx context.Context, variation *domain.MenuVariation) error
	ListMenuVariationsByItem(ctx context.Context, menuItemID uuid.UUID) ([]domain.MenuVariation, error)
	UpsertBranchMenu(ctx context.Context, bm *domain.BranchMenu) error
	GetBranchMenu(ctx context.Context, branchID, menuItemID uuid.UUID) (*domain.BranchMenu, error)
	ListBranchMenu(ctx context.Context, branchID uuid.UUID, visibleOnly bool) ([]domain.BranchMenu, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)
	GetRecipeVariant(ctx context.Context, id uuid.UUID) (*domain.RecipeVariant, error)
	CreateCategory(ctx context.Context, category *domain.Category) error
	ListCategories(ctx context.Context, categoryType string) ([]domain.Category, error)
}

// MenuService cuida da autoria de itens de menu, variações e sobreposições por
// filial.
type MenuService struct {
	recipes *RecipeService
	log     zerolog.Logger
}

func NewMenuService(recipes *RecipeService, log zerolog.Logger) *MenuService {
	return &MenuService{recipes: recipes, log: log}
}

// CreateItem valida e grava um item de menu.
func (s *MenuService) CreateItem(ctx context.Context, store MenuStore, item *domain.MenuItem) error {
	if err := s.validateItem(ctx, store, item); err != nil {
		return err
	}
	if err := store.CreateMenuItem(ctx, item); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fault.Newf(fault.KindConflict, "slug %s já está em uso", item.Slug)
		}
		return err
	}
	s.log.Info().Str("menu_item_id", item.ID.String()).Str("slug", item.Slug).Msg("item de menu criado")
	return nil
}

func (s *MenuService) UpdateItem(ctx context.Context, store MenuStore, item *domain.MenuItem) error {
	if item.ID == uuid.Nil {
		return ValidationError("item de menu inválido")
	}
	if err := s.validateItem(ctx, store, item); err != nil {
		return err
	}
	return store.UpdateMenuItem(ctx, item)
}

func (s *MenuService) validateItem(ctx context.Context, store MenuStore, item *domain.MenuItem) error {
	if item == nil || strings.TrimSpace(item.Name) == "" {
		return ValidationError("nome do item é obrigatório")
	}
	if item.BasePrice.Sign() < 0 {
		return fault.Newf(fault.KindNegativePrice, "preço base negativo para o item %s", item.Name)
	}
	if item.RecipeID != nil {
		if _, err := store.GetRecipe(ctx, *item.RecipeID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fault.Newf(fault.KindRecipeNotFound, "receita %s não encontrada", *item.RecipeID)
			}
			return err
		}
	}
	return nil
}

// CreateVariation valida o vínculo variação → item → variante de receita e
// grava com o custo calculado na autoria.
func (s *MenuService) CreateVariation(ctx context.Context, store MenuStore, recipeStore RecipeStore, variation *domain.MenuVariation) error {
	item, err := store.GetMenuItem(ctx, variation.MenuItemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fault.Newf(fault.KindNotFound, "item de menu %s não encontrado", variation.MenuItemID)
		}
		return err
	}

	if variation.SizeMultiplier.IsZero() {
		variation.SizeMultiplier = decimal.NewFromInt(1)
	}

	if variation.RecipeVariantID != nil {
		variant, err := store.GetRecipeVariant(ctx, *variation.RecipeVariantID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fault.Newf(fault.KindNotFound, "variante de receita %s não encontrada", *variation.RecipeVariantID)
			}
			return err
		}
		if item.RecipeID == nil || variant.RecipeID != *item.RecipeID {
			return fault.Newf(fault.KindVariantRecipeMismatch, "variante %s não pertence à receita do item %s", variant.ID, item.Name)
		}

		cost, err := s.recipes.VariantCost(ctx, recipeStore, variant)
		if err != nil {
			return err
		}
		variation.CalculatedCost = cost
		variation.SizeMultiplier = variant.SizeMultiplier
	} else if variation.CalculatedCost.IsZero() {
		// Autoria sem variante de receita é permitida, mas o custo vira um
		// snapshot manual e a variação não gera consumo de estoque.
		s.log.Warn().Str("menu_item_id", item.ID.String()).Str("variation", variation.Name).
			Msg("variação sem variante de receita e sem custo informado")
	}

	if err := store.CreateMenuVariation(ctx, variation); err != nil {
		return err
	}
	s.log.Info().Str("variation_id", variation.ID.String()).Str("menu_item_id", item.ID.String()).Msg("variação criada")
	return nil
}

// OverrideBranchMenu grava a sobreposição por filial, copiando snapshots do item.
func (s *MenuService) OverrideBranchMenu(ctx context.Context, store MenuStore, bm *domain.BranchMenu) error {
	if bm == nil || bm.BranchID == uuid.Nil || bm.MenuItemID == uuid.Nil {
		return ValidationError("filial e item de menu são obrigatórios")
	}
	if bm.SellingPrice != nil && bm.SellingPrice.Sign() < 0 {
		return fault.New(fault.KindNegativePrice, "preço de venda por filial não pode ser negativo")
	}

	item, err := store.GetMenuItem(ctx, bm.MenuItemID)
	if err != nil {
		return err
	}
	bm.CodeSnapshot = item.Code
	bm.NameSnapshot = item.Name
	bm.CategorySnapshot = item.CategoryID

	return store.UpsertBranchMenu(ctx, bm)
}

// ListBranchMenu devolve o cardápio visível de uma filial.
func (s *MenuService) ListBranchMenu(ctx context.Context, store MenuStore, branchID uuid.UUID, visibleOnly bool) ([]domain.BranchMenu, error) {
	return store.ListBranchMenu(ctx, branchID, visibleOnly)
}

// ListItems lista itens de menu com filtro.
func (s *MenuService) ListItems(ctx context.Context, store MenuStore, filter *repository.MenuItemListFilter) ([]domain.MenuItem, error) {
	return store.ListMenuItems(ctx, filter)
}

// ItemWithVariations carrega um item e suas variações.
func (s *MenuService) ItemWithVariations(ctx context.Context, store MenuStore, itemID uuid.UUID) (*domain.MenuItem, []domain.MenuVariation, error) {
	item, err := store.GetMenuItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	variations, err := store.ListMenuVariationsByItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	return item, variations, nil
}

// CreateCategory grava uma categoria de cardápio/insumo.
func (s *MenuService) CreateCategory(ctx context.Context, store MenuStore, category *domain.Category) error {
	if category == nil || strings.TrimSpace(category.Name) == "" {
		return ValidationError("nome da categoria é obrigatório")
	}
	switch category.Type {
	case domain.CategoryTypeInventory, domain.CategoryTypeRecipe, domain.CategoryTypeMenu:
	default:
		return ValidationErrorf("tipo de categoria desconhecido: %s", category.Type)
	}
	return store.CreateCategory(ctx, category)
}

// ListCategories lista categorias por tipo.
func (s *MenuService) ListCategories(ctx context.Context, store MenuStore, categoryType string) ([]domain.Category, error) {
	return store.ListCategories(ctx, categoryType)
}
