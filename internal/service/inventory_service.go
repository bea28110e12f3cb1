package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/authz"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
)

// InventoryStore é a fatia do repositório usada pela autoria e movimentação de
// estoque fora do caminho de pedido.
type InventoryStore interface {
	GetStaff(ctx context.Context, id uuid.UUID) (*domain.Staff, error)
	CreateInventoryItem(ctx context.Context, item *domain.InventoryItem) error
	UpdateInventoryItem(ctx context.Context, item *domain.InventoryItem) error
	GetInventoryItem(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error)
	ListInventoryItems(ctx context.Context, filter *repository.InventoryItemListFilter) ([]domain.InventoryItem, error)
	SoftDeleteInventoryItem(ctx context.Context, id uuid.UUID) error
	UpsertBranchInventory(ctx context.Context, inv *domain.BranchInventory) error
	GetBranchInventory(ctx context.Context, branchID, itemID uuid.UUID) (*domain.BranchInventory, error)
	ListBranchInventories(ctx context.Context, branchID uuid.UUID, lowStockOnly bool) ([]domain.BranchInventory, error)
	MoveStock(ctx context.Context, mv *repository.StockMovement) error
	ListInventoryTxns(ctx context.Context, filter *repository.InventoryTxnFilter) ([]domain.InventoryTransaction, error)
}

// StockMovementInput descreve um lançamento manual (recebimento, perda, ajuste, preparo).
type StockMovementInput struct {
	BranchID uuid.UUID
	ItemID   uuid.UUID
	Type     string
	Qty      decimal.Decimal
	Note     string
}

// InventoryService cuida da autoria de insumos e das movimentações fora do
// caminho de pedido. Reserva e liberação ficam expostas para fluxos de pedido
// em espera; a efetivação só usa dedução.
type InventoryService struct {
	authorizer authz.Authorizer
	log        zerolog.Logger
}

func NewInventoryService(authorizer authz.Authorizer, log zerolog.Logger) *InventoryService {
	return &InventoryService{authorizer: authorizer, log: log}
}

// CreateItem valida e cria um insumo.
func (s *InventoryService) CreateItem(ctx context.Context, store InventoryStore, item *domain.InventoryItem) error {
	if err := s.validateItem(item); err != nil {
		return err
	}
	if err := store.CreateInventoryItem(ctx, item); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fault.Newf(fault.KindConflict, "SKU %s já cadastrado", item.SKU)
		}
		return err
	}
	s.log.Info().Str("item_id", item.ID.String()).Str("sku", item.SKU).Msg("insumo criado")
	return nil
}

func (s *InventoryService) UpdateItem(ctx context.Context, store InventoryStore, item *domain.InventoryItem) error {
	if item.ID == uuid.Nil {
		return ValidationError("insumo inválido")
	}
	if err := s.validateItem(item); err != nil {
		return err
	}
	return store.UpdateInventoryItem(ctx, item)
}

func (s *InventoryService) validateItem(item *domain.InventoryItem) error {
	if item == nil || strings.TrimSpace(item.Name) == "" {
		return ValidationError("nome do insumo é obrigatório")
	}
	if strings.TrimSpace(item.SKU) == "" {
		return ValidationError("SKU é obrigatório")
	}
	switch item.Type {
	case domain.ItemTypeStock, domain.ItemTypeNonStock, domain.ItemTypeService:
	default:
		return ValidationErrorf("tipo de insumo desconhecido: %s", item.Type)
	}
	if item.Type != domain.ItemTypeService && !domain.IsValidMeasurementUnit(item.BaseUnit) {
		return ValidationErrorf("unidade base desconhecida: %s", item.BaseUnit)
	}
	return nil
}

// Provision habilita um insumo em uma filial com os parâmetros de estoque.
func (s *InventoryService) Provision(ctx context.Context, store InventoryStore, inv *domain.BranchInventory) error {
	if inv == nil || inv.BranchID == uuid.Nil || inv.ItemID == uuid.Nil {
		return ValidationError("filial e insumo são obrigatórios")
	}
	if inv.OnHandQty.Sign() < 0 || inv.CostPerUnit.Sign() < 0 {
		return ValidationError("quantidade e custo não podem ser negativos")
	}
	if _, err := store.GetInventoryItem(ctx, inv.ItemID); err != nil {
		return err
	}
	return store.UpsertBranchInventory(ctx, inv)
}

// Receive registra entrada de estoque (recebimento de fornecedor).
func (s *InventoryService) Receive(ctx context.Context, store InventoryStore, actorID uuid.UUID, input *StockMovementInput) error {
	input.Type = domain.TxnTypeReceipt
	return s.move(ctx, store, actorID, input, true)
}

// Waste registra perda ou descarte.
func (s *InventoryService) Waste(ctx context.Context, store InventoryStore, actorID uuid.UUID, input *StockMovementInput) error {
	input.Type = domain.TxnTypeWaste
	return s.move(ctx, store, actorID, input, false)
}

// Adjust corrige o saldo para cima ou para baixo conforme o sinal da quantidade.
func (s *InventoryService) Adjust(ctx context.Context, store InventoryStore, actorID uuid.UUID, input *StockMovementInput) error {
	input.Type = domain.TxnTypeAdjust
	credit := input.Qty.Sign() >= 0
	input.Qty = input.Qty.Abs()
	return s.move(ctx, store, actorID, input, credit)
}

// Prep consome estoque para produção interna (pré-preparo).
func (s *InventoryService) Prep(ctx context.Context, store InventoryStore, actorID uuid.UUID, input *StockMovementInput) error {
	input.Type = domain.TxnTypePrep
	return s.move(ctx, store, actorID, input, false)
}

// Reserve segura estoque para um pedido em espera.
func (s *InventoryService) Reserve(ctx context.Context, store InventoryStore, actorID uuid.UUID, input *StockMovementInput) error {
	input.Type = domain.TxnTypeReserve
	return s.move(ctx, store, actorID, input, false)
}

// Release devolve estoque de uma reserva abandonada.
func (s *InventoryService) Release(ctx context.Context, store InventoryStore, actorID uuid.UUID, input *StockMovementInput) error {
	input.Type = domain.TxnTypeAdjust
	return s.move(ctx, store, actorID, input, true)
}

func (s *InventoryService) move(ctx context.Context, store InventoryStore, actorID uuid.UUID, input *StockMovementInput, credit bool) error {
	if input.Qty.Sign() <= 0 {
		return ValidationError("quantidade deve ser positiva")
	}

	actor, err := store.GetStaff(ctx, actorID)
	if err != nil {
		return err
	}
	if !s.authorizer.May(actor, authz.ActionStockManage, authz.BranchScope(input.BranchID)) {
		return fault.New(fault.KindPermissionDenied, "operador sem permissão de estoque nesta filial")
	}

	err = store.MoveStock(ctx, &repository.StockMovement{
		BranchID:     input.BranchID,
		Type:         input.Type,
		Requirements: []domain.StockRequirement{{ItemID: input.ItemID, Qty: input.Qty}},
		Credit:       credit,
		Reference:    domain.TxnReference{Note: input.Note},
		ActorID:      actorID,
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("branch_id", input.BranchID.String()).
		Str("item_id", input.ItemID.String()).
		Str("type", input.Type).
		Str("qty", input.Qty.String()).
		Bool("credit", credit).
		Msg("movimentação de estoque")
	return nil
}
