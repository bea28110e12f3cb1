package costing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
)

func TestFlattenLeafIngredients(t *testing.T) {
	flour := uuid.New()
	water := uuid.New()
	dough := uuid.New()

	src := &stubSource{recipes: map[uuid.UUID]*domain.Recipe{
		dough: {
			ID:       dough,
			Name:     "Massa base",
			YieldQty: decimal.NewFromInt(1),
			Ingredients: []domain.RecipeIngredient{
				{SourceType: domain.IngredientSourceInventory, SourceID: flour, Quantity: dec("200"), CostPerUnit: dec("0.01")},
				{SourceType: domain.IngredientSourceInventory, SourceID: water, Quantity: dec("100"), CostPerUnit: dec("0")},
			},
		},
	}}

	engine := NewEngine(src)
	exp, err := engine.Flatten(context.Background(), dough, dec("1"))
	if err != nil {
		t.Fatalf("Flatten returned error: %v", err)
	}

	if len(exp.Requirements) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(exp.Requirements))
	}
	assertDecimal(t, "200", exp.Requirements[0].Qty)
	if exp.Requirements[0].FromRecipeID != dough {
		t.Fatalf("expected requirement to carry originating recipe id")
	}
	assertDecimal(t, "2", exp.TotalCost)
}

func TestFlattenSubRecipeAtOwnYield(t *testing.T) {
	cheese := uuid.New()
	sauce := uuid.New()
	tomato := uuid.New()
	pizza := uuid.New()

	// O molho rende 500ml a custo 5; a pizza usa 100ml, ou seja 1/5 de lote.
	src := &stubSource{recipes: map[uuid.UUID]*domain.Recipe{
		sauce: {
			ID:       sauce,
			YieldQty: dec("500"),
			Ingredients: []domain.RecipeIngredient{
				{SourceType: domain.IngredientSourceInventory, SourceID: tomato, Quantity: dec("1000"), CostPerUnit: dec("0.005")},
			},
		},
		pizza: {
			ID:       pizza,
			YieldQty: decimal.NewFromInt(1),
			Ingredients: []domain.RecipeIngredient{
				{SourceType: domain.IngredientSourceRecipe, SourceID: sauce, Quantity: dec("100")},
				{SourceType: domain.IngredientSourceInventory, SourceID: cheese, Quantity: dec("80"), CostPerUnit: dec("0.02")},
			},
		},
	}}

	engine := NewEngine(src)
	exp, err := engine.Flatten(context.Background(), pizza, dec("1"))
	if err != nil {
		t.Fatalf("Flatten returned error: %v", err)
	}

	var tomatoQty, cost decimal.Decimal
	cost = exp.TotalCost
	for _, req := range exp.Requirements {
		if req.ItemID == tomato {
			tomatoQty = req.Qty
			if req.FromRecipeID != sauce {
				t.Fatalf("leaf from sub-recipe should reference the sub-recipe")
			}
		}
	}
	assertDecimal(t, "200", tomatoQty)
	// 100ml de molho = 0.2 lote × 5.00 + queijo 80g × 0.02 = 1.00 + 1.60
	assertDecimal(t, "2.6", cost)
}

func TestFlattenMemoizesSubRecipes(t *testing.T) {
	leaf := uuid.New()
	shared := uuid.New()
	left := uuid.New()
	right := uuid.New()
	root := uuid.New()

	src := &stubSource{recipes: map[uuid.UUID]*domain.Recipe{
		shared: {ID: shared, YieldQty: dec("1"), Ingredients: []domain.RecipeIngredient{
			{SourceType: domain.IngredientSourceInventory, SourceID: leaf, Quantity: dec("1"), CostPerUnit: dec("3")},
		}},
		left: {ID: left, YieldQty: dec("1"), Ingredients: []domain.RecipeIngredient{
			{SourceType: domain.IngredientSourceRecipe, SourceID: shared, Quantity: dec("1")},
		}},
		right: {ID: right, YieldQty: dec("1"), Ingredients: []domain.RecipeIngredient{
			{SourceType: domain.IngredientSourceRecipe, SourceID: shared, Quantity: dec("2")},
		}},
		root: {ID: root, YieldQty: dec("1"), Ingredients: []domain.RecipeIngredient{
			{SourceType: domain.IngredientSourceRecipe, SourceID: left, Quantity: dec("1")},
			{SourceType: domain.IngredientSourceRecipe, SourceID: right, Quantity: dec("1")},
		}},
	}}

	engine := NewEngine(src)
	exp, err := engine.Flatten(context.Background(), root, dec("1"))
	if err != nil {
		t.Fatalf("Flatten returned error: %v", err)
	}

	assertDecimal(t, "9", exp.TotalCost)
	if src.loads[shared] != 1 {
		t.Fatalf("expected shared recipe to load once per traversal, got %d", src.loads[shared])
	}
}

func TestFlattenDetectsCycle(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	src := &stubSource{recipes: map[uuid.UUID]*domain.Recipe{
		a: {ID: a, YieldQty: dec("1"), Ingredients: []domain.RecipeIngredient{
			{SourceType: domain.IngredientSourceRecipe, SourceID: b, Quantity: dec("1")},
		}},
		b: {ID: b, YieldQty: dec("1"), Ingredients: []domain.RecipeIngredient{
			{SourceType: domain.IngredientSourceRecipe, SourceID: c, Quantity: dec("1")},
		}},
		c: {ID: c, YieldQty: dec("1"), Ingredients: []domain.RecipeIngredient{
			{SourceType: domain.IngredientSourceRecipe, SourceID: a, Quantity: dec("1")},
		}},
	}}

	engine := NewEngine(src)
	_, err := engine.Flatten(context.Background(), a, dec("1"))
	if !fault.IsKind(err, fault.KindRecipeCycleDetected) {
		t.Fatalf("expected RecipeCycleDetected, got %v", err)
	}

	detail, ok := fault.DetailOf(err).(map[string]any)
	if !ok {
		t.Fatalf("expected detail payload with path")
	}
	path, ok := detail["path"].([]string)
	if !ok || len(path) != 4 {
		t.Fatalf("expected cycle path of length 4, got %v", detail["path"])
	}
	if path[0] != path[len(path)-1] {
		t.Fatalf("cycle path should close on the offending recipe: %v", path)
	}
}

func TestFlattenScalesLinearly(t *testing.T) {
	flour := uuid.New()
	dough := uuid.New()

	src := &stubSource{recipes: map[uuid.UUID]*domain.Recipe{
		dough: {ID: dough, YieldQty: dec("1"), Ingredients: []domain.RecipeIngredient{
			{SourceType: domain.IngredientSourceInventory, SourceID: flour, Quantity: dec("250"), CostPerUnit: dec("0.004")},
		}},
	}}

	engine := NewEngine(src)
	ctx := context.Background()

	scaled, err := engine.Flatten(ctx, dough, dec("3"))
	if err != nil {
		t.Fatalf("Flatten returned error: %v", err)
	}
	single, err := engine.Flatten(ctx, dough, dec("1"))
	if err != nil {
		t.Fatalf("Flatten returned error: %v", err)
	}

	if !scaled.Requirements[0].Qty.Equal(single.Requirements[0].Qty.Mul(dec("3"))) {
		t.Fatalf("scaled leaves should equal single leaves times multiplier")
	}
	if !scaled.TotalCost.Equal(single.TotalCost.Mul(dec("3"))) {
		t.Fatalf("scaled cost should equal single cost times multiplier")
	}
}

func TestFlattenRejectsNegativeQuantity(t *testing.T) {
	flour := uuid.New()
	dough := uuid.New()

	src := &stubSource{recipes: map[uuid.UUID]*domain.Recipe{
		dough: {ID: dough, YieldQty: dec("1"), Ingredients: []domain.RecipeIngredient{
			{SourceType: domain.IngredientSourceInventory, SourceID: flour, Quantity: dec("-1"), CostPerUnit: dec("1")},
		}},
	}}

	engine := NewEngine(src)
	_, err := engine.Flatten(context.Background(), dough, dec("1"))
	if !fault.IsKind(err, fault.KindValidation) {
		t.Fatalf("expected Validation error, got %v", err)
	}
}

func TestFlattenMissingRecipe(t *testing.T) {
	engine := NewEngine(&stubSource{recipes: map[uuid.UUID]*domain.Recipe{}})
	_, err := engine.Flatten(context.Background(), uuid.New(), dec("1"))
	if !fault.IsKind(err, fault.KindRecipeNotFound) {
		t.Fatalf("expected RecipeNotFound, got %v", err)
	}
}

func TestFlattenIngredientsStandalone(t *testing.T) {
	pepperoni := uuid.New()
	recipe := uuid.New()

	engine := NewEngine(&stubSource{recipes: map[uuid.UUID]*domain.Recipe{}})
	exp, err := engine.FlattenIngredients(context.Background(), []domain.RecipeIngredient{
		{SourceType: domain.IngredientSourceInventory, SourceID: pepperoni, Quantity: dec("50"), CostPerUnit: dec("0.02")},
	}, recipe, dec("1.5"))
	if err != nil {
		t.Fatalf("FlattenIngredients returned error: %v", err)
	}

	assertDecimal(t, "75", exp.Requirements[0].Qty)
	assertDecimal(t, "1.5", exp.TotalCost)
	if exp.Requirements[0].FromRecipeID != recipe {
		t.Fatalf("standalone leaves should carry the variant recipe id")
	}
}

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	if !actual.Equal(dec(expected)) {
		t.Fatalf("expected %s, got %s", expected, actual.String())
	}
}

type stubSource struct {
	recipes  map[uuid.UUID]*domain.Recipe
	variants map[uuid.UUID]*domain.RecipeVariant
	loads    map[uuid.UUID]int
}

func (s *stubSource) Recipe(_ context.Context, id uuid.UUID) (*domain.Recipe, error) {
	if s.loads == nil {
		s.loads = make(map[uuid.UUID]int)
	}
	s.loads[id]++
	recipe, ok := s.recipes[id]
	if !ok {
		return nil, errors.New("recipe not found")
	}
	return recipe, nil
}

func (s *stubSource) Variant(_ context.Context, id uuid.UUID) (*domain.RecipeVariant, error) {
	variant, ok := s.variants[id]
	if !ok {
		return nil, errors.New("variant not found")
	}
	return variant, nil
}
