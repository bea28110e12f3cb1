package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/httputil"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/requestctx"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/service"
)

// StaffHandler expõe a gestão de operadores.
type StaffHandler struct {
	staff  *service.StaffService
	logger *zerolog.Logger
}

func NewStaffHandler(staff *service.StaffService, logger *zerolog.Logger) *StaffHandler {
	return &StaffHandler{staff: staff, logger: logger}
}

type createStaffRequest struct {
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      string      `json:"role"`
	Password  string      `json:"password"`
	IsStaff   bool        `json:"is_staff"`
	BranchIDs []uuid.UUID `json:"branch_ids,omitempty"`
}

func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	actorID, ok := requestctx.UserID(r.Context())
	if handle == nil || !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createStaffRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	staff, err := h.staff.Create(r.Context(), handle.Store, handle.Key, actorID, &service.CreateStaffInput{
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		Password:  req.Password,
		IsStaff:   req.IsStaff,
		BranchIDs: req.BranchIDs,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, staff)
}

type setPinRequest struct {
	Pin string `json:"pin"`
}

// SetPin define o PIN de um operador (exige staff.manage).
func (h *StaffHandler) SetPin(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	actorID, ok := requestctx.UserID(r.Context())
	if handle == nil || !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	staffID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "id de operador inválido")
		return
	}

	var req setPinRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.staff.SetPin(r.Context(), handle.Store, actorID, staffID, req.Pin); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// ClearPin remove o PIN de um operador.
func (h *StaffHandler) ClearPin(w http.ResponseWriter, r *http.Request) {
	handle := requestctx.Handle(r.Context())
	actorID, ok := requestctx.UserID(r.Context())
	if handle == nil || !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	staffID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "id de operador inválido")
		return
	}

	if err := h.staff.ClearPin(r.Context(), handle.Store, actorID, staffID); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}
