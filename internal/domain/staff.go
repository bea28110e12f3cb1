package domain

import (
	"github.com/google/uuid"
)

const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// Staff representa um usuário do tenant; operadores de caixa são marcados como staff.
type Staff struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         string      `json:"role"`
	PasswordHash string      `json:"-"`
	PinKey       *string     `json:"-"`
	IsStaff      bool        `json:"is_staff"`
	Active       bool        `json:"active"`
	BranchIDs    []uuid.UUID `json:"branch_ids"`
	Auditable
}

// HasBranch verifica se o usuário está alocado à filial informada.
// Owners e managers sem alocação explícita têm escopo de tenant inteiro.
func (s *Staff) HasBranch(branchID uuid.UUID) bool {
	if len(s.BranchIDs) == 0 {
		return s.Role == RoleOwner || s.Role == RoleManager
	}
	for _, id := range s.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}

// SingleBranch devolve a única filial do usuário, quando houver exatamente uma.
func (s *Staff) SingleBranch() (uuid.UUID, bool) {
	if len(s.BranchIDs) == 1 {
		return s.BranchIDs[0], true
	}
	return uuid.Nil, false
}
