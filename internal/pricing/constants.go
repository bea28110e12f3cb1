package pricing

import "github.com/shopspring/decimal"

// Constantes do motor de preços do POS.
var (
	// MinSizeMultiplier é o menor multiplicador aceito para variantes de tamanho.
	MinSizeMultiplier = decimal.NewFromFloat(0.01)

	// One é o multiplicador neutro; uma variação de tamanho com multiplicador 1
	// é semanticamente um no-op.
	One = decimal.NewFromInt(1)

	// Hundred divide alíquotas percentuais.
	Hundred = decimal.NewFromInt(100)
)
