package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TaxModeExclusive = "exclusive"
	TaxModeInclusive = "inclusive"
)

const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodMobile = "mobile"
	PaymentMethodSplit  = "split"
)

// TaxConfig descreve o regime de imposto aplicado pela filial.
type TaxConfig struct {
	Mode      string          `json:"mode"`
	Rate      decimal.Decimal `json:"rate"`
	VATNumber string          `json:"vat_number"`
}

// PaymentMethodConfig habilita um meio de pagamento no POS da filial, com
// sobreposição opcional de alíquota.
type PaymentMethodConfig struct {
	Enabled         bool             `json:"enabled"`
	TaxRateOverride *decimal.Decimal `json:"tax_rate_override,omitempty"`
}

// POSConfig agrega as preferências de ponto de venda da filial.
type POSConfig struct {
	OrderPrefix    string                         `json:"order_prefix"`
	ReceiptFooter  string                         `json:"receipt_footer"`
	PaymentMethods map[string]PaymentMethodConfig `json:"payment_methods"`
}

// Branch representa uma unidade física de um tenant.
type Branch struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Currency  string    `json:"currency"`
	Tax       TaxConfig `json:"tax"`
	POSConfig POSConfig `json:"pos_config"`
	Active    bool      `json:"active"`
	Auditable
}

// IsValidPaymentMethod verifica se o meio de pagamento pertence ao conjunto aceito.
func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile, PaymentMethodSplit:
		return true
	}
	return false
}

// EffectiveTaxRate resolve a alíquota considerando sobreposição por meio de pagamento.
func (b *Branch) EffectiveTaxRate(paymentMethod string) decimal.Decimal {
	if cfg, ok := b.POSConfig.PaymentMethods[paymentMethod]; ok && cfg.TaxRateOverride != nil {
		return *cfg.TaxRateOverride
	}
	return b.Tax.Rate
}
