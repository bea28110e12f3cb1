package domain

import "github.com/google/uuid"

// Tenant representa uma organização cliente da plataforma. A chave (slug)
// identifica o datastore isolado do tenant.
type Tenant struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Key          string    `json:"key"`
	BillingEmail string    `json:"billing_email"`
	Timezone     string    `json:"timezone"`
	Active       bool      `json:"active"`
	Auditable
}
