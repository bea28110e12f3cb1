package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	IngredientSourceInventory = "inventory"
	IngredientSourceRecipe    = "recipe"
)

// RecipeIngredient representa um componente de uma receita ou de uma variante.
// Pode apontar para um item de inventário (folha) ou para uma sub-receita.
type RecipeIngredient struct {
	ID           uuid.UUID       `json:"id"`
	SourceType   string          `json:"source_type"`
	SourceID     uuid.UUID       `json:"source_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	NameSnapshot string          `json:"name_snapshot"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
}

// Recipe representa uma composição cujo grafo de dependências deve ser acíclico.
type Recipe struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	YieldQty    decimal.Decimal    `json:"yield_qty"`
	YieldUnit   string             `json:"yield_unit"`
	TotalCost   decimal.Decimal    `json:"total_cost"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	Active      bool               `json:"active"`
	Auditable
}

const (
	VariantTypeSize   = "size"
	VariantTypeCrust  = "crust"
	VariantTypeFlavor = "flavor"
	VariantTypeAddon  = "addon"
	VariantTypeCombo  = "combo"
	VariantTypeCustom = "custom"
)

// RecipeVariant é uma variação de uma receita base, resolvível apenas contra o
// grafo da receita mãe.
type RecipeVariant struct {
	ID                 uuid.UUID          `json:"id"`
	RecipeID           uuid.UUID          `json:"recipe_id"`
	Name               string             `json:"name"`
	Type               string             `json:"type"`
	SizeMultiplier     decimal.Decimal    `json:"size_multiplier"`
	BaseCostAdjustment decimal.Decimal    `json:"base_cost_adjustment"`
	Ingredients        []RecipeIngredient `json:"ingredients"`
	Auditable
}

// IsSize indica se a variante multiplica o conjunto inteiro de folhas da receita base.
func (v *RecipeVariant) IsSize() bool {
	return v.Type == VariantTypeSize
}
