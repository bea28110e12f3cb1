package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims representa o payload padrão dos tokens JWT emitidos pelo sistema.
// TillSessionID presente vincula o portador a um caixa aberto; a efetivação de
// pedidos exige esse vínculo (ou uma sessão aberta localizável no terminal).
type Claims struct {
	UserID        uuid.UUID  `json:"user_id"`
	TenantKey     string     `json:"tenant_key"`
	Role          string     `json:"role"`
	BranchID      *uuid.UUID `json:"branch_id,omitempty"`
	TillSessionID *uuid.UUID `json:"till_session_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair agrupa o access token e refresh token de um usuário autenticado.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
