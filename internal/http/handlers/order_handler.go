package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/httputil"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/requestctx"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/service"
)

// OrderHandler expõe a efetivação e as transições de pedidos.
type OrderHandler struct {
	orders *service.OrderService
	logger *zerolog.Logger
}

func NewOrderHandler(orders *service.OrderService, logger *zerolog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

type orderLineRequest struct {
	MenuItemID uuid.UUID   `json:"menu_item_id"`
	Quantity   int         `json:"quantity"`
	Variations []uuid.UUID `json:"variations,omitempty"`
	Notes      string      `json:"notes,omitempty"`
}

type commitOrderRequest struct {
	BranchID      *uuid.UUID         `json:"branch_id,omitempty"`
	PosTerminalID *uuid.UUID         `json:"pos_terminal_id,omitempty"`
	TillSessionID *uuid.UUID         `json:"till_session_id,omitempty"`
	CustomerName  string             `json:"customer_name,omitempty"`
	CustomerPhone string             `json:"customer_phone,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	Items         []orderLineRequest `json:"items"`
	PaymentMethod string             `json:"payment_method"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	ClientOpID    string             `json:"client_op_id,omitempty"`
}

// Commit efetiva um pedido.
func (h *OrderHandler) Commit(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	actor, ok := requestctx.Actor(r.Context())
	if handle == nil || !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req commitOrderRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]service.OrderLineInput, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, service.OrderLineInput{
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
			Variations: line.Variations,
			Notes:      line.Notes,
		})
	}

	result, err := h.orders.Commit(r.Context(), handle.Store, handle.Key, actor, &service.OrderCommitInput{
		BranchID:      req.BranchID,
		PosTerminalID: req.PosTerminalID,
		TillSessionID: req.TillSessionID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
		Items:         items,
		PaymentMethod: req.PaymentMethod,
		AmountPaid:    req.AmountPaid,
		ClientOpID:    req.ClientOpID,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	httputil.RespondJSON(w, status, result)
}

type reverseOrderRequest struct {
	Note string `json:"note,omitempty"`
}

// Void anula um pedido e devolve o estoque.
func (h *OrderHandler) Void(w http.ResponseWriter, r *http.Request) {
	h.reverse(w, r, h.orders.Void)
}

// Refund estorna um pedido pago.
func (h *OrderHandler) Refund(w http.ResponseWriter, r *http.Request) {
	h.reverse(w, r, h.orders.Refund)
}

type reverseFn func(ctx context.Context, store service.OrderStore, tenantKey string, actor service.Actor, orderID uuid.UUID, note string) error

func (h *OrderHandler) reverse(w http.ResponseWriter, r *http.Request, fn reverseFn) {
	handle := requestctx.Handle(r.Context())
	actor, ok := requestctx.Actor(r.Context())
	if handle == nil || !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "id de pedido inválido")
		return
	}

	var req reverseOrderRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := fn(r.Context(), handle.Store, handle.Key, actor, orderID, req.Note); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// Get devolve um pedido pelo id.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "id de pedido inválido")
		return
	}

	order, err := handle.Store.GetOrder(r.Context(), orderID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, order)
}

// List lista pedidos por filial/sessão/status.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	if handle == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := &repository.OrderListFilter{Status: r.URL.Query().Get("status"), Limit: 100}
	if raw := r.URL.Query().Get("branch_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "branch_id inválido")
			return
		}
		filter.BranchID = &id
	}
	if raw := r.URL.Query().Get("till_session_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "till_session_id inválido")
			return
		}
		filter.TillSessionID = &id
	}

	orders, err := handle.Store.ListOrders(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}
