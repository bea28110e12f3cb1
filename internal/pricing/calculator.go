// Package pricing resolve preço e custo de linhas de pedido: preço por filial,
// deltas de variações, multiplicadores de tamanho e o cálculo de totais com
// imposto exclusivo/inclusivo.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/costing"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
)

// VariationSelection junta a variação de menu escolhida à variante de receita
// correspondente, quando houver.
type VariationSelection struct {
	Variation domain.MenuVariation
	Variant   *domain.RecipeVariant
}

// LineQuoteInput é a entrada já resolvida para cotar uma linha de pedido.
type LineQuoteInput struct {
	MenuItem   *domain.MenuItem
	BranchMenu *domain.BranchMenu
	Selections []VariationSelection
	Quantity   decimal.Decimal
}

// LineQuote é o resultado da cotação de uma linha.
type LineQuote struct {
	UnitPrice           decimal.Decimal
	UnitCost            decimal.Decimal
	LineTotal           decimal.Decimal
	CalculatedCost      decimal.Decimal
	EffectiveMultiplier decimal.Decimal
	Requirements        []domain.StockRequirement
	Variations          []domain.OrderLineVariation
}

// Calculator combina o motor de planificação com as regras de preço.
type Calculator struct {
	engine *costing.Engine
}

// NewCalculator cria o motor de preços sobre o motor de planificação informado.
func NewCalculator(engine *costing.Engine) *Calculator {
	return &Calculator{engine: engine}
}

// QuoteLine cota uma linha: valida as variações contra o item, resolve o preço
// unitário (sobreposição da filial, senão preço base, mais deltas), o custo via
// planificação da receita e as necessidades de estoque da linha inteira.
func (c *Calculator) QuoteLine(ctx context.Context, in *LineQuoteInput) (*LineQuote, error) {
	if in.MenuItem == nil {
		return nil, fault.New(fault.KindValidation, "item de menu não informado para cotação")
	}
	if in.Quantity.Sign() <= 0 {
		return nil, fault.Newf(fault.KindValidation, "quantidade inválida para o item %s", in.MenuItem.ID)
	}

	sizeMult := One
	sizeSeen := false
	for _, sel := range in.Selections {
		if sel.Variation.MenuItemID != in.MenuItem.ID {
			return nil, fault.Newf(fault.KindVariationBelongsToOtherMenuItem, "variação %s não pertence ao item %s", sel.Variation.ID, in.MenuItem.ID).
				WithDetail(map[string]any{"variation_id": sel.Variation.ID, "menu_item_id": in.MenuItem.ID})
		}
		if sel.Variant != nil {
			if in.MenuItem.RecipeID == nil || sel.Variant.RecipeID != *in.MenuItem.RecipeID {
				return nil, fault.Newf(fault.KindVariantRecipeMismatch, "variante %s não pertence à receita do item %s", sel.Variant.ID, in.MenuItem.ID).
					WithDetail(map[string]any{"recipe_variant_id": sel.Variant.ID, "menu_item_id": in.MenuItem.ID})
			}
		}
		if sel.Variation.Type == domain.VariantTypeSize {
			if sizeSeen {
				return nil, fault.Newf(fault.KindDuplicateSizeVariation, "mais de uma variação de tamanho na linha do item %s", in.MenuItem.ID)
			}
			sizeSeen = true
			sizeMult = resolveSizeMultiplier(sel)
		}
	}

	unitPrice := in.MenuItem.BasePrice
	if in.BranchMenu != nil && in.BranchMenu.SellingPrice != nil {
		unitPrice = *in.BranchMenu.SellingPrice
	}
	for _, sel := range in.Selections {
		unitPrice = unitPrice.Add(sel.Variation.PriceDelta)
	}
	if unitPrice.Sign() < 0 {
		return nil, fault.Newf(fault.KindNegativePrice, "preço unitário negativo para o item %s", in.MenuItem.ID).
			WithDetail(map[string]any{"menu_item_id": in.MenuItem.ID, "unit_price": unitPrice.String()})
	}

	effective := in.Quantity.Mul(sizeMult)

	unitCost := decimal.Zero
	var requirements []domain.StockRequirement

	if in.MenuItem.RecipeID != nil {
		base, err := c.engine.Flatten(ctx, *in.MenuItem.RecipeID, sizeMult)
		if err != nil {
			return nil, err
		}
		unitCost = base.TotalCost
		for _, req := range base.Requirements {
			requirements = append(requirements, domain.StockRequirement{
				ItemID:       req.ItemID,
				Qty:          domain.RoundInternal(req.Qty.Mul(in.Quantity)),
				FromRecipeID: req.FromRecipeID,
			})
		}
	}

	variations := make([]domain.OrderLineVariation, 0, len(in.Selections))
	for _, sel := range in.Selections {
		if sel.Variant != nil && len(sel.Variant.Ingredients) > 0 {
			extra, err := c.engine.FlattenIngredients(ctx, sel.Variant.Ingredients, sel.Variant.RecipeID, effective)
			if err != nil {
				return nil, err
			}
			requirements = append(requirements, extra.Requirements...)
		}
		// O custo da variação usa o snapshot de autoria; variações sem variante
		// de receita não geram necessidades de estoque.
		unitCost = unitCost.Add(sel.Variation.CalculatedCost)

		variations = append(variations, domain.OrderLineVariation{
			MenuVariationID: sel.Variation.ID,
			RecipeVariantID: sel.Variation.RecipeVariantID,
			Name:            sel.Variation.Name,
			Type:            sel.Variation.Type,
			PriceDelta:      sel.Variation.PriceDelta,
			SizeMultiplier:  resolveSizeMultiplier(sel),
			CalculatedCost:  sel.Variation.CalculatedCost,
		})
	}

	unitCost = domain.RoundInternal(unitCost)
	return &LineQuote{
		UnitPrice:           unitPrice,
		UnitCost:            unitCost,
		LineTotal:           domain.RoundInternal(unitPrice.Mul(in.Quantity)),
		CalculatedCost:      domain.RoundInternal(unitCost.Mul(in.Quantity)),
		EffectiveMultiplier: effective,
		Requirements:        requirements,
		Variations:          variations,
	}, nil
}

// resolveSizeMultiplier prefere o multiplicador da variante de receita; sem
// variante vale o multiplicador de exibição da variação.
func resolveSizeMultiplier(sel VariationSelection) decimal.Decimal {
	mult := sel.Variation.SizeMultiplier
	if sel.Variant != nil {
		mult = sel.Variant.SizeMultiplier
	}
	if mult.Sign() <= 0 {
		return One
	}
	return mult
}

// ComputeTotals fecha os totais do pedido. Modo inclusivo não soma imposto
// adicional (simplificação de relatório mantida de propósito). O arredondamento
// para duas casas acontece somente aqui.
func ComputeTotals(subTotal, taxRate decimal.Decimal, taxMode string, discount decimal.Decimal) domain.OrderTotals {
	taxTotal := decimal.Zero
	if taxMode == domain.TaxModeExclusive {
		taxTotal = subTotal.Mul(taxRate).Div(Hundred)
	}

	sub := domain.RoundCurrency(subTotal)
	tax := domain.RoundCurrency(taxTotal)
	disc := domain.RoundCurrency(discount)
	return domain.OrderTotals{
		SubTotal:   sub,
		TaxTotal:   tax,
		Discount:   disc,
		GrandTotal: domain.RoundCurrency(sub.Add(tax).Sub(disc)),
	}
}

// ResolvePayment decide status e troco: pago quando amountPaid cobre o total.
func ResolvePayment(grandTotal, amountPaid decimal.Decimal) (status string, change decimal.Decimal) {
	if amountPaid.GreaterThanOrEqual(grandTotal) {
		return domain.OrderStatusPaid, domain.RoundCurrency(amountPaid.Sub(grandTotal))
	}
	return domain.OrderStatusPlaced, decimal.Zero
}
