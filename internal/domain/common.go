package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Auditable define campos padrão de auditoria para todas as entidades.
type Auditable struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoundCurrency arredonda valores monetários para duas casas decimais (half-up).
// Somente a fronteira de totais do pedido arredonda para duas casas; cálculos
// intermediários mantêm quatro.
func RoundCurrency(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// RoundInternal arredonda valores intermediários para quatro casas decimais.
func RoundInternal(value decimal.Decimal) decimal.Decimal {
	return value.Round(4)
}

// MoneyString formata um valor monetário com duas casas para a fronteira externa.
func MoneyString(value decimal.Decimal) string {
	return value.StringFixed(2)
}
