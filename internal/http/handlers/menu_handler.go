package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/httputil"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/requestctx"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/service"
)

// MenuHandler expõe a autoria de cardápio: itens, variações, categorias e
// sobreposições por filial.
type MenuHandler struct {
	menu   *service.MenuService
	logger *zerolog.Logger
}

func NewMenuHandler(menu *service.MenuService, logger *zerolog.Logger) *MenuHandler {
	return &MenuHandler{menu: menu, logger: logger}
}

type menuItemRequest struct {
	Name             string          `json:"name"`
	Code             string          `json:"code"`
	RecipeID         *uuid.UUID      `json:"recipe_id,omitempty"`
	CategoryID       *uuid.UUID      `json:"category_id,omitempty"`
	BasePrice        decimal.Decimal `json:"base_price"`
	PriceIncludesTax bool            `json:"price_includes_tax"`
	Currency         string          `json:"currency"`
	Active           *bool           `json:"active,omitempty"`
}

func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req menuItemRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := &domain.MenuItem{
		Name:             req.Name,
		Code:             req.Code,
		RecipeID:         req.RecipeID,
		CategoryID:       req.CategoryID,
		BasePrice:        req.BasePrice,
		PriceIncludesTax: req.PriceIncludesTax,
		Currency:         req.Currency,
		Active:           true,
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	if err := h.menu.CreateItem(r.Context(), handle.Store, item); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, item)
}

func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := &repository.MenuItemListFilter{Search: r.URL.Query().Get("search")}
	items, err := h.menu.ListItems(r.Context(), handle.Store, filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "id de item inválido")
		return
	}

	item, variations, err := h.menu.ItemWithVariations(r.Context(), handle.Store, itemID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"item": item, "variations": variations})
}

type menuVariationRequest struct {
	MenuItemID      uuid.UUID       `json:"menu_item_id"`
	RecipeVariantID *uuid.UUID      `json:"recipe_variant_id,omitempty"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	PriceDelta      decimal.Decimal `json:"price_delta"`
	SizeMultiplier  decimal.Decimal `json:"size_multiplier"`
	CalculatedCost  decimal.Decimal `json:"calculated_cost"`
}

func (h *MenuHandler) CreateVariation(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req menuVariationRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	variation := &domain.MenuVariation{
		MenuItemID:      req.MenuItemID,
		RecipeVariantID: req.RecipeVariantID,
		Name:            req.Name,
		Type:            req.Type,
		PriceDelta:      req.PriceDelta,
		SizeMultiplier:  req.SizeMultiplier,
		CalculatedCost:  req.CalculatedCost,
		Active:          true,
	}
	if err := h.menu.CreateVariation(r.Context(), handle.Store, handle.Store, variation); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, variation)
}

type branchMenuRequest struct {
	BranchID     uuid.UUID        `json:"branch_id"`
	MenuItemID   uuid.UUID        `json:"menu_item_id"`
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`
	Available    bool             `json:"available"`
	VisibleOnPOS bool             `json:"visible_on_pos"`
	DisplayOrder int              `json:"display_order"`
}

func (h *MenuHandler) OverrideBranchMenu(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req branchMenuRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	bm := &domain.BranchMenu{
		BranchID:     req.BranchID,
		MenuItemID:   req.MenuItemID,
		SellingPrice: req.SellingPrice,
		Available:    req.Available,
		VisibleOnPOS: req.VisibleOnPOS,
		DisplayOrder: req.DisplayOrder,
	}
	if err := h.menu.OverrideBranchMenu(r.Context(), handle.Store, bm); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, bm)
}

func (h *MenuHandler) ListBranchMenu(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	branchID, err := uuid.Parse(r.PathValue("branchID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "branch id inválido")
		return
	}

	entries, err := h.menu.ListBranchMenu(r.Context(), handle.Store, branchID, r.URL.Query().Get("visible") == "true")
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"menu": entries})
}

type categoryRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Color     string `json:"color,omitempty"`
	Icon      string `json:"icon,omitempty"`
	SortOrder int    `json:"sort_order"`
}

func (h *MenuHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req categoryRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	category := &domain.Category{
		Name:      req.Name,
		Type:      req.Type,
		Color:     req.Color,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
	}
	if err := h.menu.CreateCategory(r.Context(), handle.Store, category); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, category)
}

func (h *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	categories, err := h.menu.ListCategories(r.Context(), handle.Store, r.URL.Query().Get("type"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}
