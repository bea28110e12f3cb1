package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ItemTypeStock    = "stock"
	ItemTypeNonStock = "nonstock"
	ItemTypeService  = "service"
)

// InventoryItem representa um insumo estocável, não estocável ou de serviço.
type InventoryItem struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	SKU        string     `json:"sku"`
	Type       string     `json:"type"`
	BaseUnit   string     `json:"base_unit"`
	CategoryID *uuid.UUID `json:"category_id"`
	Active     bool       `json:"active"`
	Auditable
}

// IsService indica se o item dispensa controle de estoque e lançamentos no livro.
func (i *InventoryItem) IsService() bool {
	return i.Type == ItemTypeService
}

// BranchInventory mapeia o estoque de um item em uma filial específica.
type BranchInventory struct {
	ID           uuid.UUID       `json:"id"`
	BranchID     uuid.UUID       `json:"branch_id"`
	ItemID       uuid.UUID       `json:"item_id"`
	OnHandQty    decimal.Decimal `json:"on_hand_qty"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	MinStock     decimal.Decimal `json:"min_stock"`
	MaxStock     decimal.Decimal `json:"max_stock"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Active       bool            `json:"active"`
	Auditable
}

const (
	TxnTypeReceipt     = "receipt"
	TxnTypeUsage       = "usage"
	TxnTypeWaste       = "waste"
	TxnTypeAdjust      = "adjust"
	TxnTypeTransferOut = "transferOut"
	TxnTypeTransferIn  = "transferIn"
	TxnTypePrep        = "prep"
	TxnTypeReserve     = "reserve"
)

// TxnReference identifica a origem de um lançamento no livro de estoque.
type TxnReference struct {
	OrderID    *uuid.UUID `json:"order_id,omitempty"`
	RecipeID   *uuid.UUID `json:"recipe_id,omitempty"`
	FromBranch *uuid.UUID `json:"from_branch,omitempty"`
	ToBranch   *uuid.UUID `json:"to_branch,omitempty"`
	Note       string     `json:"note,omitempty"`
}

// InventoryTransaction é um lançamento imutável do livro de estoque.
// Quantidades são assinadas e expressas na unidade base do item.
type InventoryTransaction struct {
	ID        uuid.UUID       `json:"id"`
	BranchID  uuid.UUID       `json:"branch_id"`
	ItemID    uuid.UUID       `json:"item_id"`
	Type      string          `json:"type"`
	Qty       decimal.Decimal `json:"qty"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Reference TxnReference    `json:"reference"`
	ActorID   uuid.UUID       `json:"actor_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// StockRequirement descreve a necessidade de um item para concretizar um pedido.
type StockRequirement struct {
	ItemID       uuid.UUID       `json:"item_id"`
	Qty          decimal.Decimal `json:"qty"`
	FromRecipeID uuid.UUID       `json:"from_recipe_id"`
}

// StockShortage detalha um item sem saldo suficiente durante a dedução.
type StockShortage struct {
	ItemID uuid.UUID       `json:"item_id"`
	Needed decimal.Decimal `json:"needed"`
	OnHand decimal.Decimal `json:"on_hand"`
}
