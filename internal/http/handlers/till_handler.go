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

// TillHandler expõe abertura e fechamento de caixa.
type TillHandler struct {
	tills  *service.TillService
	logger *zerolog.Logger
}

func NewTillHandler(tills *service.TillService, logger *zerolog.Logger) *TillHandler {
	return &TillHandler{tills: tills, logger: logger}
}

type openTillRequest struct {
	BranchID      uuid.UUID          `json:"branch_id"`
	PosTerminalID uuid.UUID          `json:"pos_terminal_id"`
	OpeningAmount decimal.Decimal    `json:"opening_amount"`
	CashCounts    []domain.CashCount `json:"cash_counts,omitempty"`
	Notes         string             `json:"notes,omitempty"`
}

// Open abre uma sessão de caixa e devolve o token com o vínculo embutido.
func (h *TillHandler) Open(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	actor, ok := requestctx.Actor(r.Context())
	if handle == nil || !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req openTillRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.tills.Open(r.Context(), handle.Store, handle.Key, actor, &service.TillOpenInput{
		BranchID:      req.BranchID,
		PosTerminalID: req.PosTerminalID,
		OpeningAmount: req.OpeningAmount,
		CashCounts:    req.CashCounts,
		Notes:         req.Notes,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

type closeTillRequest struct {
	TillSessionID         *uuid.UUID         `json:"till_session_id,omitempty"`
	DeclaredClosingAmount decimal.Decimal    `json:"declared_closing_amount"`
	CashCounts            []domain.CashCount `json:"cash_counts,omitempty"`
	Notes                 string             `json:"notes,omitempty"`
}

// Close fecha a sessão e devolve a variância mais o token sem vínculo.
func (h *TillHandler) Close(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	actor, ok := requestctx.Actor(r.Context())
	if handle == nil || !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req closeTillRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.tills.Close(r.Context(), handle.Store, handle.Key, actor, &service.TillCloseInput{
		TillSessionID:         req.TillSessionID,
		DeclaredClosingAmount: req.DeclaredClosingAmount,
		CashCounts:            req.CashCounts,
		Notes:                 req.Notes,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
