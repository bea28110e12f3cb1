package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem é o vendável exposto ao cliente; o custo flui da receita associada.
type MenuItem struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Code             string          `json:"code"`
	Slug             string          `json:"slug"`
	RecipeID         *uuid.UUID      `json:"recipe_id"`
	CategoryID       *uuid.UUID      `json:"category_id"`
	BasePrice        decimal.Decimal `json:"base_price"`
	PriceIncludesTax bool            `json:"price_includes_tax"`
	Currency         string          `json:"currency"`
	Active           bool            `json:"active"`
	Deleted          bool            `json:"deleted"`
	Auditable
}

// MenuVariation é uma opção vendável de um item de menu (tamanho, sabor, adicional).
// Quando RecipeVariantID está definido, a variante precisa pertencer à receita do item.
type MenuVariation struct {
	ID              uuid.UUID       `json:"id"`
	MenuItemID      uuid.UUID       `json:"menu_item_id"`
	RecipeVariantID *uuid.UUID      `json:"recipe_variant_id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	PriceDelta      decimal.Decimal `json:"price_delta"`
	SizeMultiplier  decimal.Decimal `json:"size_multiplier"`
	CalculatedCost  decimal.Decimal `json:"calculated_cost"`
	Active          bool            `json:"active"`
	Auditable
}

// BranchMenu é a sobreposição por filial de um item de menu.
type BranchMenu struct {
	ID               uuid.UUID        `json:"id"`
	BranchID         uuid.UUID        `json:"branch_id"`
	MenuItemID       uuid.UUID        `json:"menu_item_id"`
	SellingPrice     *decimal.Decimal `json:"selling_price"`
	Available        bool             `json:"available"`
	VisibleOnPOS     bool             `json:"visible_on_pos"`
	DisplayOrder     int              `json:"display_order"`
	CodeSnapshot     string           `json:"code_snapshot"`
	NameSnapshot     string           `json:"name_snapshot"`
	CategorySnapshot *uuid.UUID       `json:"category_snapshot"`
	Auditable
}

const (
	CategoryTypeInventory = "inventory"
	CategoryTypeRecipe    = "recipe"
	CategoryTypeMenu      = "menu"
)

// Category representa taxonomias reutilizáveis por entidade.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Type      string    `json:"type"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	SortOrder int       `json:"sort_order"`
	Auditable
}
