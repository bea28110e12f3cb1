package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrderStatusPlaced   = "placed"
	OrderStatusPaid     = "paid"
	OrderStatusVoid     = "void"
	OrderStatusRefunded = "refunded"
)

// OrderLineVariation é o retrato, no momento da venda, de uma variação escolhida.
type OrderLineVariation struct {
	MenuVariationID uuid.UUID       `json:"menu_variation_id"`
	RecipeVariantID *uuid.UUID      `json:"recipe_variant_id,omitempty"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	PriceDelta      decimal.Decimal `json:"price_delta"`
	SizeMultiplier  decimal.Decimal `json:"size_multiplier"`
	CalculatedCost  decimal.Decimal `json:"calculated_cost"`
}

// OrderLine é uma linha imutável do pedido; campos *Snapshot são copiados na
// efetivação e nunca re-resolvidos.
type OrderLine struct {
	MenuItemID         uuid.UUID            `json:"menu_item_id"`
	RecipeIDSnapshot   *uuid.UUID           `json:"recipe_id_snapshot,omitempty"`
	SelectedVariations []OrderLineVariation `json:"selected_variations,omitempty"`
	NameSnapshot       string               `json:"name_snapshot"`
	CodeSnapshot       string               `json:"code_snapshot"`
	CategoryIDSnapshot *uuid.UUID           `json:"category_id_snapshot,omitempty"`
	Quantity           decimal.Decimal      `json:"quantity"`
	UnitPrice          decimal.Decimal      `json:"unit_price"`
	LineTotal          decimal.Decimal      `json:"line_total"`
	CalculatedCost     decimal.Decimal      `json:"calculated_cost"`
	PriceIncludesTax   bool                 `json:"price_includes_tax"`
	Notes              string               `json:"notes,omitempty"`
}

// OrderTotals consolida os valores do pedido após arredondamento de fronteira.
type OrderTotals struct {
	SubTotal   decimal.Decimal `json:"sub_total"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	Discount   decimal.Decimal `json:"discount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// OrderPayment registra o pagamento recebido na efetivação.
type OrderPayment struct {
	Method     string          `json:"method"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Change     decimal.Decimal `json:"change"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
}

// PricingSnapshot congela o regime de preço vigente na efetivação do pedido.
type PricingSnapshot struct {
	Currency         string          `json:"currency"`
	PriceIncludesTax bool            `json:"price_includes_tax"`
	TaxMode          string          `json:"tax_mode"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
}

// OrderCustomer identifica o cliente informado no balcão.
type OrderCustomer struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Order é imutável após a criação; mudanças de status passam por transições
// explícitas que geram lançamentos no livro de estoque.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	BranchID        uuid.UUID       `json:"branch_id"`
	PosTerminalID   *uuid.UUID      `json:"pos_terminal_id,omitempty"`
	TillSessionID   uuid.UUID       `json:"till_session_id"`
	StaffID         uuid.UUID       `json:"staff_id"`
	Status          string          `json:"status"`
	Items           []OrderLine     `json:"items"`
	Totals          OrderTotals     `json:"totals"`
	Payment         OrderPayment    `json:"payment"`
	PricingSnapshot PricingSnapshot `json:"pricing_snapshot"`
	Customer        OrderCustomer   `json:"customer"`
	Notes           string          `json:"notes,omitempty"`
	Auditable
}
