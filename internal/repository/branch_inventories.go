package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
)

// StockMovement descreve uma mutação transacional de estoque de uma filial:
// um conjunto agregado de itens, um tipo de lançamento e a referência de origem.
type StockMovement struct {
	BranchID     uuid.UUID
	Type         string
	Requirements []domain.StockRequirement
	Credit       bool // true devolve estoque; false deduz
	Reference    domain.TxnReference
	ActorID      uuid.UUID
}

type lockedStock struct {
	onHand      decimal.Decimal
	costPerUnit decimal.Decimal
	itemType    string
}

// ApplyStockMovement executa as três fases do livro em lote: uma leitura
// travada das linhas afetadas, uma atualização em lote dos saldos e uma
// inserção em lote dos lançamentos. Itens de serviço são ignorados em silêncio.
// Deve rodar dentro da transação de efetivação quando chamado pelo caminho de
// pedido; a seção crítica é exatamente esta mutação.
func (s *Store) ApplyStockMovement(ctx context.Context, q querier, mv *StockMovement) error {
	aggregated := aggregateRequirements(mv.Requirements)
	if len(aggregated) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(aggregated))
	for _, req := range aggregated {
		ids = append(ids, req.ItemID)
	}

	// Itens de serviço são resolvidos antes da leitura travada: não têm estoque
	// nem lançamento, e podem nem estar provisionados na filial.
	types, err := s.itemTypes(ctx, q, ids)
	if err != nil {
		return err
	}
	stockable := make([]uuid.UUID, 0, len(ids))
	var unknown []string
	for _, id := range ids {
		itemType, ok := types[id]
		if !ok {
			unknown = append(unknown, id.String())
			continue
		}
		if itemType != domain.ItemTypeService {
			stockable = append(stockable, id)
		}
	}
	if len(unknown) > 0 {
		return fault.New(fault.KindItemNotFound, "há insumos inexistentes na operação de estoque").
			WithDetail(map[string]any{"item_ids": unknown})
	}
	if len(stockable) == 0 {
		return nil
	}

	rows, err := q.Query(ctx, `
		SELECT bi.item_id, bi.on_hand_qty, bi.cost_per_unit, it.type
		FROM branch_inventories bi
		JOIN inventory_items it ON it.id = bi.item_id
		WHERE bi.branch_id = $1 AND bi.item_id = ANY($2)
		FOR UPDATE OF bi
	`, mv.BranchID, stockable)
	if err != nil {
		return translateError(err)
	}

	locked := make(map[uuid.UUID]lockedStock, len(aggregated))
	for rows.Next() {
		var itemID uuid.UUID
		var ls lockedStock
		if err := rows.Scan(&itemID, &ls.onHand, &ls.costPerUnit, &ls.itemType); err != nil {
			rows.Close()
			return translateError(err)
		}
		locked[itemID] = ls
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return translateError(err)
	}

	var (
		missing    []string
		shortages  []domain.StockShortage
		updateIDs  []uuid.UUID
		deltas     []string
		txnIDs     []uuid.UUID
		txnItemIDs []uuid.UUID
		txnQtys    []string
		txnCosts   []string
	)

	now := time.Now().UTC()
	for _, req := range aggregated {
		if types[req.ItemID] == domain.ItemTypeService {
			continue
		}
		ls, ok := locked[req.ItemID]
		if !ok {
			missing = append(missing, req.ItemID.String())
			continue
		}

		delta := req.Qty
		if !mv.Credit {
			delta = delta.Neg()
		}

		if ls.itemType == domain.ItemTypeStock && ls.onHand.Add(delta).Sign() < 0 {
			shortages = append(shortages, domain.StockShortage{
				ItemID: req.ItemID,
				Needed: req.Qty,
				OnHand: ls.onHand,
			})
			continue
		}

		updateIDs = append(updateIDs, req.ItemID)
		deltas = append(deltas, delta.String())
		txnIDs = append(txnIDs, uuid.New())
		txnItemIDs = append(txnItemIDs, req.ItemID)
		txnQtys = append(txnQtys, delta.String())
		txnCosts = append(txnCosts, ls.costPerUnit.String())
	}

	if len(missing) > 0 {
		return fault.New(fault.KindIngredientNotStockedAtBranch, "há insumos não provisionados nesta filial").
			WithDetail(map[string]any{"branch_id": mv.BranchID, "item_ids": missing})
	}
	if len(shortages) > 0 {
		return fault.New(fault.KindInsufficientStock, "estoque insuficiente para concluir a operação").
			WithDetail(map[string]any{"short_items": shortages})
	}
	if len(updateIDs) == 0 {
		return nil
	}

	_, err = q.Exec(ctx, `
		UPDATE branch_inventories bi
		SET on_hand_qty = bi.on_hand_qty + u.delta,
			updated_at = $4
		FROM (SELECT unnest($2::uuid[]) AS item_id, unnest($3::numeric[]) AS delta) u
		WHERE bi.branch_id = $1 AND bi.item_id = u.item_id
	`, mv.BranchID, updateIDs, deltas, now)
	if err != nil {
		return translateError(err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO inventory_txns (id, branch_id, item_id, type, qty, unit_cost, reference, actor_id, created_at)
		SELECT t.id, $1, t.item_id, $5, t.qty, t.unit_cost, $6, $7, $8
		FROM (
			SELECT unnest($2::uuid[]) AS id,
				unnest($3::uuid[]) AS item_id,
				unnest($4::numeric[]) AS qty,
				unnest($9::numeric[]) AS unit_cost
		) t
	`, mv.BranchID, txnIDs, txnItemIDs, txnQtys, mv.Type, mv.Reference, mv.ActorID, now, txnCosts)
	if err != nil {
		return translateError(err)
	}

	return nil
}

// MoveStock aplica uma movimentação avulsa em transação própria; o caminho de
// efetivação de pedidos usa ApplyStockMovement dentro da sua transação.
func (s *Store) MoveStock(ctx context.Context, mv *StockMovement) error {
	return s.ExecTx(ctx, func(tx pgx.Tx) error {
		return s.ApplyStockMovement(ctx, tx, mv)
	})
}

// itemTypes carrega o tipo de cada item envolvido na operação.
func (s *Store) itemTypes(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	rows, err := q.Query(ctx, `SELECT id, type FROM inventory_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	types := make(map[uuid.UUID]string, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var itemType string
		if err := rows.Scan(&id, &itemType); err != nil {
			return nil, translateError(err)
		}
		types[id] = itemType
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return types, nil
}

// aggregateRequirements soma necessidades do mesmo item, preservando a ordem de
// primeira aparição.
func aggregateRequirements(reqs []domain.StockRequirement) []domain.StockRequirement {
	index := make(map[uuid.UUID]int, len(reqs))
	out := make([]domain.StockRequirement, 0, len(reqs))
	for _, req := range reqs {
		if pos, ok := index[req.ItemID]; ok {
			out[pos].Qty = out[pos].Qty.Add(req.Qty)
			continue
		}
		index[req.ItemID] = len(out)
		out = append(out, domain.StockRequirement{ItemID: req.ItemID, Qty: req.Qty, FromRecipeID: req.FromRecipeID})
	}
	return out
}

// UpsertBranchInventory provisiona (ou atualiza) um item no estoque da filial.
func (s *Store) UpsertBranchInventory(ctx context.Context, inv *domain.BranchInventory) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	now := time.Now().UTC()
	inv.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO branch_inventories (id, branch_id, item_id, on_hand_qty, reorder_point, min_stock, max_stock, cost_per_unit, selling_price, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (branch_id, item_id) DO UPDATE
		SET reorder_point = EXCLUDED.reorder_point,
			min_stock = EXCLUDED.min_stock,
			max_stock = EXCLUDED.max_stock,
			cost_per_unit = EXCLUDED.cost_per_unit,
			selling_price = EXCLUDED.selling_price,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`,
		inv.ID,
		inv.BranchID,
		inv.ItemID,
		inv.OnHandQty,
		inv.ReorderPoint,
		inv.MinStock,
		inv.MaxStock,
		inv.CostPerUnit,
		inv.SellingPrice,
		inv.Active,
		now,
	)

	return translateError(err)
}

func (s *Store) GetBranchInventory(ctx context.Context, branchID, itemID uuid.UUID) (*domain.BranchInventory, error) {
	var inv domain.BranchInventory
	err := s.pool.QueryRow(ctx, `
		SELECT id, branch_id, item_id, on_hand_qty, reorder_point, min_stock, max_stock, cost_per_unit, selling_price, active, created_at, updated_at
		FROM branch_inventories
		WHERE branch_id = $1 AND item_id = $2
	`, branchID, itemID).Scan(
		&inv.ID,
		&inv.BranchID,
		&inv.ItemID,
		&inv.OnHandQty,
		&inv.ReorderPoint,
		&inv.MinStock,
		&inv.MaxStock,
		&inv.CostPerUnit,
		&inv.SellingPrice,
		&inv.Active,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &inv, nil
}

// ListBranchInventories lista o estoque da filial; lowStockOnly restringe a
// itens no ponto de reposição ou abaixo.
func (s *Store) ListBranchInventories(ctx context.Context, branchID uuid.UUID, lowStockOnly bool) ([]domain.BranchInventory, error) {
	query := `
		SELECT id, branch_id, item_id, on_hand_qty, reorder_point, min_stock, max_stock, cost_per_unit, selling_price, active, created_at, updated_at
		FROM branch_inventories
		WHERE branch_id = $1
	`
	if lowStockOnly {
		query += " AND reorder_point > 0 AND on_hand_qty <= reorder_point"
	}
	query += " ORDER BY item_id"

	rows, err := s.pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var out []domain.BranchInventory
	for rows.Next() {
		var inv domain.BranchInventory
		if err := rows.Scan(
			&inv.ID,
			&inv.BranchID,
			&inv.ItemID,
			&inv.OnHandQty,
			&inv.ReorderPoint,
			&inv.MinStock,
			&inv.MaxStock,
			&inv.CostPerUnit,
			&inv.SellingPrice,
			&inv.Active,
			&inv.CreatedAt,
			&inv.UpdatedAt,
		); err != nil {
			return nil, translateError(err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return out, nil
}
