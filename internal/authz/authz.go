// Package authz define o contrato de permissão consumido pelo núcleo e a
// implementação padrão por papéis. O núcleo apenas pergunta; a política vive aqui.
package authz

import (
	"github.com/google/uuid"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
)

// Action identifica uma operação protegida.
type Action string

const (
	ActionOrdersCreate Action = "pos.orders.create"
	ActionOrdersVoid   Action = "pos.orders.void"
	ActionTillManage   Action = "pos.till.manage"
	ActionStaffManage  Action = "staff.manage"
	ActionMenuManage   Action = "menu.manage"
	ActionStockManage  Action = "inventory.manage"
)

// Scope delimita onde a ação acontece: o tenant inteiro ou uma filial.
type Scope struct {
	Tenant   bool
	BranchID *uuid.UUID
}

// TenantScope é o escopo de tenant inteiro.
func TenantScope() Scope {
	return Scope{Tenant: true}
}

// BranchScope delimita a ação a uma filial.
func BranchScope(branchID uuid.UUID) Scope {
	return Scope{BranchID: &branchID}
}

// Authorizer é o contrato consumido pelo núcleo: may(actor, action, scope).
type Authorizer interface {
	May(actor *domain.Staff, action Action, scope Scope) bool
}

// RoleAuthorizer é a política padrão por papéis.
type RoleAuthorizer struct{}

// NewRoleAuthorizer cria a política padrão.
func NewRoleAuthorizer() *RoleAuthorizer {
	return &RoleAuthorizer{}
}

var roleActions = map[string]map[Action]bool{
	domain.RoleOwner: {
		ActionOrdersCreate: true,
		ActionOrdersVoid:   true,
		ActionTillManage:   true,
		ActionStaffManage:  true,
		ActionMenuManage:   true,
		ActionStockManage:  true,
	},
	domain.RoleManager: {
		ActionOrdersCreate: true,
		ActionOrdersVoid:   true,
		ActionTillManage:   true,
		ActionStaffManage:  true,
		ActionMenuManage:   true,
		ActionStockManage:  true,
	},
	domain.RoleCashier: {
		ActionOrdersCreate: true,
		ActionTillManage:   true,
	},
}

// May avalia papel e escopo; ações em filial exigem alocação do ator à filial.
func (a *RoleAuthorizer) May(actor *domain.Staff, action Action, scope Scope) bool {
	if actor == nil || !actor.Active {
		return false
	}
	allowed, ok := roleActions[actor.Role]
	if !ok || !allowed[action] {
		return false
	}
	if scope.BranchID != nil {
		return actor.HasBranch(*scope.BranchID)
	}
	if scope.Tenant {
		return actor.Role == domain.RoleOwner || actor.Role == domain.RoleManager
	}
	return true
}
