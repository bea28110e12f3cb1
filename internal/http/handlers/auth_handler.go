package handlers

import (
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/http/httputil"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/service"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/tenant"
)

// AuthHandler expõe login por senha, login por PIN e refresh.
type AuthHandler struct {
	auth     *service.AuthService
	resolver *tenant.Resolver
	logger   *zerolog.Logger
}

func NewAuthHandler(auth *service.AuthService, resolver *tenant.Resolver, logger *zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, resolver: resolver, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login autentica por e-mail/senha via diretório principal.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       clientIP(r),
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

type pinLoginRequest struct {
	Pin           string     `json:"pin"`
	BranchID      *uuid.UUID `json:"branch_id,omitempty"`
	PosTerminalID *uuid.UUID `json:"pos_terminal_id,omitempty"`
}

// PinLogin autentica um operador por PIN. O terminal envia a chave do tenant
// no header X-Tenant-Key; o sucesso não abre caixa.
func (h *AuthHandler) PinLogin(w http.ResponseWriter, r *http.Request) {
	tenantKey := r.Header.Get("X-Tenant-Key")
	if tenantKey == "" {
		httputil.RespondError(w, http.StatusBadRequest, "header X-Tenant-Key ausente")
		return
	}

	var req pinLoginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	handle, err := h.resolver.Resolve(r.Context(), tenantKey)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	clientKey := clientIP(r)
	if req.PosTerminalID != nil {
		clientKey = req.PosTerminalID.String()
	}

	result, err := h.auth.PinLogin(r.Context(), handle.Store, handle.Key, service.PinLoginInput{
		Pin:           req.Pin,
		BranchID:      req.BranchID,
		PosTerminalID: req.PosTerminalID,
		ClientKey:     clientKey,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh reemite o par de tokens.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, claims, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"tokens":     tokens,
		"tenant_key": claims.TenantKey,
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
