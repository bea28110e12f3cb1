package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TillStatusOpen   = "open"
	TillStatusClosed = "closed"
)

// CashCount registra a contagem física de uma denominação na abertura ou fechamento.
type CashCount struct {
	Denomination decimal.Decimal `json:"denomination"`
	Count        int             `json:"count"`
}

// TillSession é o caixa aberto de um operador em uma filial/terminal.
// Há no máximo uma sessão aberta por (filial, terminal) a qualquer instante.
type TillSession struct {
	ID                    uuid.UUID        `json:"id"`
	StaffID               uuid.UUID        `json:"staff_id"`
	BranchID              uuid.UUID        `json:"branch_id"`
	PosTerminalID         *uuid.UUID       `json:"pos_terminal_id"`
	Status                string           `json:"status"`
	OpenedAt              time.Time        `json:"opened_at"`
	OpeningAmount         decimal.Decimal  `json:"opening_amount"`
	ClosedAt              *time.Time       `json:"closed_at,omitempty"`
	DeclaredClosingAmount *decimal.Decimal `json:"declared_closing_amount,omitempty"`
	SystemClosingAmount   *decimal.Decimal `json:"system_closing_amount,omitempty"`
	Variance              *decimal.Decimal `json:"variance,omitempty"`
	CashCounts            []CashCount      `json:"cash_counts,omitempty"`
	Notes                 string           `json:"notes"`
	Auditable
}

// IsOpen indica se a sessão ainda aceita pedidos.
func (t *TillSession) IsOpen() bool {
	return t.Status == TillStatusOpen
}
