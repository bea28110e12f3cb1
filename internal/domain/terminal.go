package domain

import "github.com/google/uuid"

const (
	TerminalStatusActive      = "active"
	TerminalStatusMaintenance = "maintenance"
	TerminalStatusRetired     = "retired"
)

// PosTerminal representa um dispositivo de ponto de venda dentro de uma filial.
type PosTerminal struct {
	ID        uuid.UUID `json:"id"`
	BranchID  uuid.UUID `json:"branch_id"`
	MachineID string    `json:"machine_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Auditable
}
