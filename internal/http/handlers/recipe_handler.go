package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/httputil"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/requestctx"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/service"
)

// RecipeHandler expõe a autoria de receitas e variantes.
type RecipeHandler struct {
	recipes *service.RecipeService
	logger  *zerolog.Logger
}

func NewRecipeHandler(recipes *service.RecipeService, logger *zerolog.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, logger: logger}
}

type recipeIngredientRequest struct {
	SourceType  string          `json:"source_type"`
	SourceID    uuid.UUID       `json:"source_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit,omitempty"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
}

type recipeRequest struct {
	Name        string                    `json:"name"`
	YieldQty    decimal.Decimal           `json:"yield_qty"`
	YieldUnit   string                    `json:"yield_unit,omitempty"`
	Ingredients []recipeIngredientRequest `json:"ingredients"`
}

func toIngredients(reqs []recipeIngredientRequest) []domain.RecipeIngredient {
	out := make([]domain.RecipeIngredient, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, domain.RecipeIngredient{
			ID:          uuid.New(),
			SourceType:  req.SourceType,
			SourceID:    req.SourceID,
			Quantity:    req.Quantity,
			Unit:        req.Unit,
			CostPerUnit: req.CostPerUnit,
		})
	}
	return out
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req recipeRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	recipe := &domain.Recipe{
		Name:        req.Name,
		YieldQty:    req.YieldQty,
		YieldUnit:   req.YieldUnit,
		Ingredients: toIngredients(req.Ingredients),
		Active:      true,
	}
	if err := h.recipes.Create(r.Context(), handle.Store, handle.Key, recipe); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, recipe)
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recipeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "id de receita inválido")
		return
	}

	var req recipeRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	recipe := &domain.Recipe{
		ID:          recipeID,
		Name:        req.Name,
		YieldQty:    req.YieldQty,
		YieldUnit:   req.YieldUnit,
		Ingredients: toIngredients(req.Ingredients),
		Active:      true,
	}
	if err := h.recipes.Update(r.Context(), handle.Store, handle.Key, recipe); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recipeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "id de receita inválido")
		return
	}

	recipe, variants, err := h.recipes.Get(r.Context(), handle.Store, recipeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"recipe": recipe, "variants": variants})
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recipes, err := h.recipes.List(r.Context(), handle.Store, r.URL.Query().Get("search"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"recipes": recipes})
}

type recipeVariantRequest struct {
	RecipeID           uuid.UUID                 `json:"recipe_id"`
	Name               string                    `json:"name"`
	Type               string                    `json:"type"`
	SizeMultiplier     decimal.Decimal           `json:"size_multiplier"`
	BaseCostAdjustment decimal.Decimal           `json:"base_cost_adjustment"`
	Ingredients        []recipeIngredientRequest `json:"ingredients,omitempty"`
}

func (h *RecipeHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req recipeVariantRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	variant := &domain.RecipeVariant{
		RecipeID:           req.RecipeID,
		Name:               req.Name,
		Type:               req.Type,
		SizeMultiplier:     req.SizeMultiplier,
		BaseCostAdjustment: req.BaseCostAdjustment,
		Ingredients:        toIngredients(req.Ingredients),
	}
	if err := h.recipes.CreateVariant(r.Context(), handle.Store, handle.Key, variant); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, variant)
}

// Cost devolve o custo planificado de uma receita (com cache).
func (h *RecipeHandler) Cost(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recipeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "id de receita inválido")
		return
	}

	totalCost, yieldQty, err := h.recipes.CostSnapshot(r.Context(), handle.Store, handle.Key, recipeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"recipe_id":  recipeID,
		"total_cost": totalCost,
		"yield_qty":  yieldQty,
	})
}
