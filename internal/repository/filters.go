package repository

import "github.com/google/uuid"

// InventoryItemListFilter contém os parâmetros de consulta para listar insumos.
type InventoryItemListFilter struct {
	Search     string
	Type       string
	CategoryID *uuid.UUID
	Active     *bool
}

// MenuItemListFilter contém os parâmetros de consulta para listar itens de menu.
type MenuItemListFilter struct {
	Search     string
	CategoryID *uuid.UUID
	Active     *bool
}

// OrderListFilter contém os parâmetros de consulta para listar pedidos.
type OrderListFilter struct {
	BranchID      *uuid.UUID
	TillSessionID *uuid.UUID
	Status        string
	Limit         int
}
