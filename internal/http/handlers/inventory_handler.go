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

// InventoryHandler expõe autoria de insumos, provisionamento por filial e
// movimentações manuais do livro.
type InventoryHandler struct {
	inventory *service.InventoryService
	logger    *zerolog.Logger
}

func NewInventoryHandler(inventory *service.InventoryService, logger *zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, logger: logger}
}

type inventoryItemRequest struct {
	Name       string     `json:"name"`
	SKU        string     `json:"sku"`
	Type       string     `json:"type"`
	BaseUnit   string     `json:"base_unit"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Active     *bool      `json:"active,omitempty"`
}

func (h *InventoryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req inventoryItemRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := &domain.InventoryItem{
		Name:       req.Name,
		SKU:        req.SKU,
		Type:       req.Type,
		BaseUnit:   req.BaseUnit,
		CategoryID: req.CategoryID,
		Active:     true,
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	if err := h.inventory.CreateItem(r.Context(), handle.Store, item); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, item)
}

func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := &repository.InventoryItemListFilter{
		Search: r.URL.Query().Get("search"),
		Type:   r.URL.Query().Get("type"),
	}

	items, err := handle.Store.ListInventoryItems(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"items": items})
}

type provisionRequest struct {
	BranchID     uuid.UUID       `json:"branch_id"`
	ItemID       uuid.UUID       `json:"item_id"`
	OnHandQty    decimal.Decimal `json:"on_hand_qty"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	MinStock     decimal.Decimal `json:"min_stock"`
	MaxStock     decimal.Decimal `json:"max_stock"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// Provision habilita um insumo em uma filial.
func (h *InventoryHandler) Provision(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req provisionRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	inv := &domain.BranchInventory{
		BranchID:     req.BranchID,
		ItemID:       req.ItemID,
		OnHandQty:    req.OnHandQty,
		ReorderPoint: req.ReorderPoint,
		MinStock:     req.MinStock,
		MaxStock:     req.MaxStock,
		CostPerUnit:  req.CostPerUnit,
		SellingPrice: req.SellingPrice,
		Active:       true,
	}
	if err := h.inventory.Provision(r.Context(), handle.Store, inv); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, inv)
}

// ListBranchStock lista o estoque de uma filial; ?low=true restringe a itens
// no ponto de reposição.
func (h *InventoryHandler) ListBranchStock(w http.ResponseWriter, r *http.Request) {
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

	stock, err := handle.Store.ListBranchInventories(r.Context(), branchID, r.URL.Query().Get("low") == "true")
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"stock": stock})
}

type stockMovementRequest struct {
	BranchID uuid.UUID       `json:"branch_id"`
	ItemID   uuid.UUID       `json:"item_id"`
	Qty      decimal.Decimal `json:"qty"`
	Note     string          `json:"note,omitempty"`
}

// Move aplica uma movimentação manual; o tipo vem do sufixo da rota.
func (h *InventoryHandler) Move(movement string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := requestctx.Handle(r.Context())
		actorID, ok := requestctx.UserID(r.Context())
		if handle == nil || !ok {
			httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req stockMovementRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		input := &service.StockMovementInput{
			BranchID: req.BranchID,
			ItemID:   req.ItemID,
			Qty:      req.Qty,
			Note:     req.Note,
		}

		var err error
		switch movement {
		case "receipt":
			err = h.inventory.Receive(r.Context(), handle.Store, actorID, input)
		case "waste":
			err = h.inventory.Waste(r.Context(), handle.Store, actorID, input)
		case "adjust":
			err = h.inventory.Adjust(r.Context(), handle.Store, actorID, input)
		case "prep":
			err = h.inventory.Prep(r.Context(), handle.Store, actorID, input)
		case "reserve":
			err = h.inventory.Reserve(r.Context(), handle.Store, actorID, input)
		case "release":
			err = h.inventory.Release(r.Context(), handle.Store, actorID, input)
		default:
			httputil.RespondError(w, http.StatusNotFound, "movimentação desconhecida")
			return
		}
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	}
}

// ListTxns lista o livro de estoque.
func (h *InventoryHandler) ListTxns(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := &repository.InventoryTxnFilter{Type: r.URL.Query().Get("type"), Limit: 200}
	if raw := r.URL.Query().Get("branch_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "branch_id inválido")
			return
		}
		filter.BranchID = &id
	}
	if raw := r.URL.Query().Get("item_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "item_id inválido")
			return
		}
		filter.ItemID = &id
	}

	txns, err := handle.Store.ListInventoryTxns(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"transactions": txns})
}
