package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/costing"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
)

// fixture reproduz o cenário da pizza: receita base custando 3.00, variação de
// tamanho 1.5x (+5.00) e sabor pepperoni (+2.00) com 50g a 0.02/g.
type pizzaFixture struct {
	menuItem  *domain.MenuItem
	large     VariationSelection
	pepperoni VariationSelection
	doughID   uuid.UUID
	pepID     uuid.UUID
	calc      *Calculator
}

func newPizzaFixture() *pizzaFixture {
	recipeID := uuid.New()
	variantLargeID := uuid.New()
	variantPepID := uuid.New()
	doughID := uuid.New()
	pepID := uuid.New()

	recipes := map[uuid.UUID]*domain.Recipe{
		recipeID: {
			ID:       recipeID,
			Name:     "Pizza base",
			YieldQty: decimal.NewFromInt(1),
			Ingredients: []domain.RecipeIngredient{
				{SourceType: domain.IngredientSourceInventory, SourceID: doughID, Quantity: dec("300"), CostPerUnit: dec("0.01")},
			},
		},
	}

	menuItemID := uuid.New()
	item := &domain.MenuItem{
		ID:        menuItemID,
		Name:      "Pizza",
		Code:      "PZ",
		RecipeID:  &recipeID,
		BasePrice: dec("10.00"),
		Currency:  "SAR",
		Active:    true,
	}

	large := VariationSelection{
		Variation: domain.MenuVariation{
			ID:              uuid.New(),
			MenuItemID:      menuItemID,
			RecipeVariantID: &variantLargeID,
			Name:            "Large",
			Type:            domain.VariantTypeSize,
			PriceDelta:      dec("5.00"),
			SizeMultiplier:  dec("1.5"),
			CalculatedCost:  decimal.Zero,
		},
		Variant: &domain.RecipeVariant{
			ID:             variantLargeID,
			RecipeID:       recipeID,
			Type:           domain.VariantTypeSize,
			SizeMultiplier: dec("1.5"),
		},
	}

	pepperoni := VariationSelection{
		Variation: domain.MenuVariation{
			ID:              uuid.New(),
			MenuItemID:      menuItemID,
			RecipeVariantID: &variantPepID,
			Name:            "Pepperoni",
			Type:            domain.VariantTypeFlavor,
			PriceDelta:      dec("2.00"),
			SizeMultiplier:  decimal.NewFromInt(1),
			CalculatedCost:  dec("1.00"),
		},
		Variant: &domain.RecipeVariant{
			ID:             variantPepID,
			RecipeID:       recipeID,
			Type:           domain.VariantTypeFlavor,
			SizeMultiplier: decimal.NewFromInt(1),
			Ingredients: []domain.RecipeIngredient{
				{SourceType: domain.IngredientSourceInventory, SourceID: pepID, Quantity: dec("50"), CostPerUnit: dec("0.02")},
			},
		},
	}

	engine := costing.NewEngine(&stubCostSource{recipes: recipes})
	return &pizzaFixture{
		menuItem:  item,
		large:     large,
		pepperoni: pepperoni,
		doughID:   doughID,
		pepID:     pepID,
		calc:      NewCalculator(engine),
	}
}

func TestQuoteLinePizzaLargePepperoni(t *testing.T) {
	fx := newPizzaFixture()

	quote, err := fx.calc.QuoteLine(context.Background(), &LineQuoteInput{
		MenuItem:   fx.menuItem,
		Selections: []VariationSelection{fx.large, fx.pepperoni},
		Quantity:   decimal.NewFromInt(1),
	})
	if err != nil {
		t.Fatalf("QuoteLine returned error: %v", err)
	}

	assertDec(t, "17", quote.UnitPrice)
	assertDec(t, "17", quote.LineTotal)
	// custo: base 3.00 × 1.5 + snapshot do pepperoni 1.00
	assertDec(t, "5.5", quote.CalculatedCost)
	assertDec(t, "1.5", quote.EffectiveMultiplier)

	var doughQty, pepQty decimal.Decimal
	for _, req := range quote.Requirements {
		switch req.ItemID {
		case fx.doughID:
			doughQty = req.Qty
		case fx.pepID:
			pepQty = req.Qty
		}
	}
	assertDec(t, "450", doughQty)
	assertDec(t, "75", pepQty)
}

func TestQuoteLineBranchOverridePrice(t *testing.T) {
	fx := newPizzaFixture()
	override := dec("12.00")

	quote, err := fx.calc.QuoteLine(context.Background(), &LineQuoteInput{
		MenuItem:   fx.menuItem,
		BranchMenu: &domain.BranchMenu{SellingPrice: &override},
		Quantity:   decimal.NewFromInt(2),
	})
	if err != nil {
		t.Fatalf("QuoteLine returned error: %v", err)
	}

	assertDec(t, "12", quote.UnitPrice)
	assertDec(t, "24", quote.LineTotal)
}

func TestQuoteLineDuplicateSizeVariation(t *testing.T) {
	fx := newPizzaFixture()

	_, err := fx.calc.QuoteLine(context.Background(), &LineQuoteInput{
		MenuItem:   fx.menuItem,
		Selections: []VariationSelection{fx.large, fx.large},
		Quantity:   decimal.NewFromInt(1),
	})
	if !fault.IsKind(err, fault.KindDuplicateSizeVariation) {
		t.Fatalf("expected DuplicateSizeVariation, got %v", err)
	}
}

func TestQuoteLineVariationFromOtherItem(t *testing.T) {
	fx := newPizzaFixture()
	foreign := fx.pepperoni
	foreign.Variation.MenuItemID = uuid.New()

	_, err := fx.calc.QuoteLine(context.Background(), &LineQuoteInput{
		MenuItem:   fx.menuItem,
		Selections: []VariationSelection{foreign},
		Quantity:   decimal.NewFromInt(1),
	})
	if !fault.IsKind(err, fault.KindVariationBelongsToOtherMenuItem) {
		t.Fatalf("expected VariationBelongsToOtherMenuItem, got %v", err)
	}
}

func TestQuoteLineVariantRecipeMismatch(t *testing.T) {
	fx := newPizzaFixture()
	mismatched := fx.pepperoni
	variant := *mismatched.Variant
	variant.RecipeID = uuid.New()
	mismatched.Variant = &variant

	_, err := fx.calc.QuoteLine(context.Background(), &LineQuoteInput{
		MenuItem:   fx.menuItem,
		Selections: []VariationSelection{mismatched},
		Quantity:   decimal.NewFromInt(1),
	})
	if !fault.IsKind(err, fault.KindVariantRecipeMismatch) {
		t.Fatalf("expected VariantRecipeMismatch, got %v", err)
	}
}

func TestQuoteLineNegativePrice(t *testing.T) {
	fx := newPizzaFixture()
	discounted := fx.pepperoni
	discounted.Variation.PriceDelta = dec("-50.00")

	_, err := fx.calc.QuoteLine(context.Background(), &LineQuoteInput{
		MenuItem:   fx.menuItem,
		Selections: []VariationSelection{discounted},
		Quantity:   decimal.NewFromInt(1),
	})
	if !fault.IsKind(err, fault.KindNegativePrice) {
		t.Fatalf("expected NegativePrice, got %v", err)
	}
}

func TestQuoteLineSizeMultiplierOneIsNoop(t *testing.T) {
	fx := newPizzaFixture()
	neutral := fx.large
	variant := *neutral.Variant
	variant.SizeMultiplier = decimal.NewFromInt(1)
	neutral.Variant = &variant
	neutral.Variation.PriceDelta = decimal.Zero

	withSize, err := fx.calc.QuoteLine(context.Background(), &LineQuoteInput{
		MenuItem:   fx.menuItem,
		Selections: []VariationSelection{neutral},
		Quantity:   decimal.NewFromInt(1),
	})
	if err != nil {
		t.Fatalf("QuoteLine returned error: %v", err)
	}
	without, err := fx.calc.QuoteLine(context.Background(), &LineQuoteInput{
		MenuItem: fx.menuItem,
		Quantity: decimal.NewFromInt(1),
	})
	if err != nil {
		t.Fatalf("QuoteLine returned error: %v", err)
	}

	if !withSize.UnitPrice.Equal(without.UnitPrice) || !withSize.CalculatedCost.Equal(without.CalculatedCost) {
		t.Fatalf("size multiplier 1 should be a pricing no-op")
	}
}

func TestComputeTotalsExclusive(t *testing.T) {
	totals := ComputeTotals(dec("17.00"), dec("15"), domain.TaxModeExclusive, decimal.Zero)

	assertDec(t, "17", totals.SubTotal)
	assertDec(t, "2.55", totals.TaxTotal)
	assertDec(t, "0", totals.Discount)
	assertDec(t, "19.55", totals.GrandTotal)
}

func TestComputeTotalsInclusive(t *testing.T) {
	totals := ComputeTotals(dec("17.00"), dec("15"), domain.TaxModeInclusive, decimal.Zero)

	assertDec(t, "0", totals.TaxTotal)
	assertDec(t, "17", totals.GrandTotal)
}

func TestComputeTotalsRoundsHalfUp(t *testing.T) {
	// 10.30 × 7.5% = 0.7725 → 0.77
	totals := ComputeTotals(dec("10.30"), dec("7.5"), domain.TaxModeExclusive, decimal.Zero)
	assertDec(t, "0.77", totals.TaxTotal)

	totals = ComputeTotals(dec("10.10"), dec("2.5"), domain.TaxModeExclusive, decimal.Zero)
	// 10.10 × 2.5% = 0.2525 → 0.25
	assertDec(t, "0.25", totals.TaxTotal)

	// 10.20 × 2.5% = 0.255: o meio exato sobe → 0.26
	totals = ComputeTotals(dec("10.20"), dec("2.5"), domain.TaxModeExclusive, decimal.Zero)
	assertDec(t, "0.26", totals.TaxTotal)
}

func TestResolvePayment(t *testing.T) {
	t.Run("exact amount pays", func(t *testing.T) {
		status, change := ResolvePayment(dec("19.55"), dec("19.55"))
		if status != domain.OrderStatusPaid {
			t.Fatalf("expected paid, got %s", status)
		}
		assertDec(t, "0", change)
	})

	t.Run("short amount places", func(t *testing.T) {
		status, change := ResolvePayment(dec("19.55"), dec("19.54"))
		if status != domain.OrderStatusPlaced {
			t.Fatalf("expected placed, got %s", status)
		}
		assertDec(t, "0", change)
	})

	t.Run("overpayment returns change", func(t *testing.T) {
		status, change := ResolvePayment(dec("19.55"), dec("20.00"))
		if status != domain.OrderStatusPaid {
			t.Fatalf("expected paid, got %s", status)
		}
		assertDec(t, "0.45", change)
	})
}

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func assertDec(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	want, err := decimal.NewFromString(expected)
	if err != nil {
		t.Fatalf("bad expectation %q: %v", expected, err)
	}
	if !actual.Equal(want) {
		t.Fatalf("expected %s, got %s", expected, actual.String())
	}
}

type stubCostSource struct {
	recipes map[uuid.UUID]*domain.Recipe
}

func (s *stubCostSource) Recipe(_ context.Context, id uuid.UUID) (*domain.Recipe, error) {
	recipe, ok := s.recipes[id]
	if !ok {
		return nil, errors.New("recipe not found")
	}
	return recipe, nil
}

func (s *stubCostSource) Variant(_ context.Context, _ uuid.UUID) (*domain.RecipeVariant, error) {
	return nil, errors.New("variant not found")
}
