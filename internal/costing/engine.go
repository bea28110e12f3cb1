// Package costing implementa a planificação de receitas: expansão do grafo de
// uma receita (incluindo sub-receitas) até os itens-folha de inventário, com o
// custo total correspondente.
package costing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
)

// Source fornece as receitas e variantes necessárias durante uma travessia.
type Source interface {
	Recipe(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)
	Variant(ctx context.Context, id uuid.UUID) (*domain.RecipeVariant, error)
}

// Expansion é o resultado de uma planificação: folhas de inventário e custo total.
type Expansion struct {
	Requirements []domain.StockRequirement
	TotalCost    decimal.Decimal
}

// Engine executa planificações sobre um Source. Resultados não são reaproveitados
// entre chamadas (cardápios mudam); dentro de uma travessia, sub-receitas são
// memoizadas por id.
type Engine struct {
	src Source
}

// NewEngine cria um motor de planificação sobre a fonte informada.
func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// batchResult guarda a expansão de uma receita para um único lote (um yield).
type batchResult struct {
	leaves   []domain.StockRequirement
	cost     decimal.Decimal
	yieldQty decimal.Decimal
}

// frame é um quadro da pilha explícita de travessia.
type frame struct {
	recipe *domain.Recipe
	idx    int
	leaves []domain.StockRequirement
	cost   decimal.Decimal
}

type traversal struct {
	src    Source
	memo   map[uuid.UUID]*batchResult
	onPath map[uuid.UUID]bool
}

// Flatten expande a receita informada multiplicada pelo fator dado.
// O fator multiplica um lote inteiro da receita raiz.
func (e *Engine) Flatten(ctx context.Context, recipeID uuid.UUID, multiplier decimal.Decimal) (*Expansion, error) {
	t := &traversal{
		src:    e.src,
		memo:   make(map[uuid.UUID]*batchResult),
		onPath: make(map[uuid.UUID]bool),
	}
	batch, err := t.expand(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return scaleBatch(batch, multiplier), nil
}

// FlattenIngredients expande uma lista avulsa de ingredientes (o corpo de uma
// variante) multiplicada pelo fator dado. Sub-receitas são permitidas e passam
// pela mesma detecção de ciclo.
func (e *Engine) FlattenIngredients(ctx context.Context, ingredients []domain.RecipeIngredient, fromRecipeID uuid.UUID, multiplier decimal.Decimal) (*Expansion, error) {
	t := &traversal{
		src:    e.src,
		memo:   make(map[uuid.UUID]*batchResult),
		onPath: make(map[uuid.UUID]bool),
	}

	leaves := make([]domain.StockRequirement, 0, len(ingredients))
	cost := decimal.Zero
	for i := range ingredients {
		ing := &ingredients[i]
		ingLeaves, ingCost, err := t.consumeIngredient(ctx, ing, fromRecipeID)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, ingLeaves...)
		cost = domain.RoundInternal(cost.Add(ingCost))
	}

	return scaleBatch(&batchResult{leaves: leaves, cost: cost, yieldQty: decimal.NewFromInt(1)}, multiplier), nil
}

// expand resolve um lote da receita com pilha explícita; profundidades grandes de
// sub-receitas não dependem da pilha de chamadas.
func (t *traversal) expand(ctx context.Context, rootID uuid.UUID) (*batchResult, error) {
	if cached, ok := t.memo[rootID]; ok {
		return cached, nil
	}

	root, err := t.loadRecipe(ctx, rootID)
	if err != nil {
		return nil, err
	}

	stack := []*frame{{recipe: root, cost: decimal.Zero}}
	t.onPath[root.ID] = true

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.idx >= len(top.recipe.Ingredients) {
			yield := top.recipe.YieldQty
			if yield.Sign() <= 0 {
				yield = decimal.NewFromInt(1)
			}
			t.memo[top.recipe.ID] = &batchResult{
				leaves:   top.leaves,
				cost:     domain.RoundInternal(top.cost),
				yieldQty: yield,
			}
			delete(t.onPath, top.recipe.ID)
			stack = stack[:len(stack)-1]
			continue
		}

		ing := &top.recipe.Ingredients[top.idx]
		if ing.Quantity.Sign() < 0 {
			return nil, fault.Newf(fault.KindValidation, "quantidade negativa no ingrediente %s da receita %s", ing.SourceID, top.recipe.ID).
				WithDetail(map[string]any{"recipe_id": top.recipe.ID, "source_id": ing.SourceID})
		}

		switch ing.SourceType {
		case domain.IngredientSourceInventory:
			top.leaves = append(top.leaves, domain.StockRequirement{
				ItemID:       ing.SourceID,
				Qty:          ing.Quantity,
				FromRecipeID: top.recipe.ID,
			})
			top.cost = top.cost.Add(ing.Quantity.Mul(ing.CostPerUnit))
			top.idx++

		case domain.IngredientSourceRecipe:
			if sub, ok := t.memo[ing.SourceID]; ok {
				consumeSub(top, ing, sub)
				top.idx++
				continue
			}
			if t.onPath[ing.SourceID] {
				return nil, t.cycleError(stack, ing.SourceID)
			}
			subRecipe, err := t.loadRecipe(ctx, ing.SourceID)
			if err != nil {
				return nil, err
			}
			t.onPath[subRecipe.ID] = true
			stack = append(stack, &frame{recipe: subRecipe, cost: decimal.Zero})

		default:
			return nil, fault.Newf(fault.KindValidation, "tipo de origem desconhecido %q na receita %s", ing.SourceType, top.recipe.ID)
		}
	}

	return t.memo[rootID], nil
}

// consumeIngredient resolve um único ingrediente fora do corpo de uma receita raiz.
func (t *traversal) consumeIngredient(ctx context.Context, ing *domain.RecipeIngredient, fromRecipeID uuid.UUID) ([]domain.StockRequirement, decimal.Decimal, error) {
	if ing.Quantity.Sign() < 0 {
		return nil, decimal.Zero, fault.Newf(fault.KindValidation, "quantidade negativa no ingrediente %s", ing.SourceID).
			WithDetail(map[string]any{"source_id": ing.SourceID})
	}

	switch ing.SourceType {
	case domain.IngredientSourceInventory:
		leaf := domain.StockRequirement{ItemID: ing.SourceID, Qty: ing.Quantity, FromRecipeID: fromRecipeID}
		return []domain.StockRequirement{leaf}, ing.Quantity.Mul(ing.CostPerUnit), nil

	case domain.IngredientSourceRecipe:
		sub, err := t.expand(ctx, ing.SourceID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		batches := ing.Quantity.Div(sub.yieldQty)
		leaves := make([]domain.StockRequirement, 0, len(sub.leaves))
		for _, leaf := range sub.leaves {
			leaves = append(leaves, domain.StockRequirement{
				ItemID:       leaf.ItemID,
				Qty:          domain.RoundInternal(leaf.Qty.Mul(batches)),
				FromRecipeID: leaf.FromRecipeID,
			})
		}
		return leaves, sub.cost.Mul(batches), nil

	default:
		return nil, decimal.Zero, fault.Newf(fault.KindValidation, "tipo de origem desconhecido %q", ing.SourceType)
	}
}

// consumeSub incorpora um lote memoizado de sub-receita no quadro pai.
// O custo unitário da sub-receita é seu custo total por unidade de yield.
func consumeSub(parent *frame, ing *domain.RecipeIngredient, sub *batchResult) {
	batches := ing.Quantity.Div(sub.yieldQty)
	for _, leaf := range sub.leaves {
		parent.leaves = append(parent.leaves, domain.StockRequirement{
			ItemID:       leaf.ItemID,
			Qty:          domain.RoundInternal(leaf.Qty.Mul(batches)),
			FromRecipeID: leaf.FromRecipeID,
		})
	}
	parent.cost = parent.cost.Add(sub.cost.Mul(batches))
}

func (t *traversal) loadRecipe(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	recipe, err := t.src.Recipe(ctx, id)
	if err != nil {
		return nil, fault.Wrap(fault.KindRecipeNotFound, "receita não encontrada: "+id.String(), err)
	}
	return recipe, nil
}

// cycleError monta o caminho ofensivo a partir da pilha corrente, repetindo o
// primeiro nó do ciclo no final.
func (t *traversal) cycleError(stack []*frame, offender uuid.UUID) error {
	path := make([]string, 0, len(stack)+1)
	started := false
	for _, f := range stack {
		if f.recipe.ID == offender {
			started = true
		}
		if started {
			path = append(path, f.recipe.ID.String())
		}
	}
	path = append(path, offender.String())
	return fault.New(fault.KindRecipeCycleDetected, "ciclo detectado no grafo de receitas").
		WithDetail(map[string]any{"path": path})
}

func scaleBatch(batch *batchResult, multiplier decimal.Decimal) *Expansion {
	out := &Expansion{
		Requirements: make([]domain.StockRequirement, 0, len(batch.leaves)),
		TotalCost:    domain.RoundInternal(batch.cost.Mul(multiplier)),
	}
	for _, leaf := range batch.leaves {
		out.Requirements = append(out.Requirements, domain.StockRequirement{
			ItemID:       leaf.ItemID,
			Qty:          domain.RoundInternal(leaf.Qty.Mul(multiplier)),
			FromRecipeID: leaf.FromRecipeID,
		})
	}
	return out
}
