package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/authz"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
)

// posFixture monta o cenário da pizza: filial DT com imposto exclusivo de 15%,
// cardápio com variações Large (tamanho 1.5x, +5.00) e Pepperoni (+2.00).
type posFixture struct {
	store    *stubOrderStore
	svc      *OrderService
	actor    Actor
	staff    *domain.Staff
	branch   *domain.Branch
	terminal *domain.PosTerminal
	till     *domain.TillSession
	pizza    *domain.MenuItem
	largeID  uuid.UUID
	pepIDVar uuid.UUID
	doughID  uuid.UUID
	pepID    uuid.UUID
}

func newPosFixture() *posFixture {
	store := newStubOrderStore()

	branch := &domain.Branch{
		ID:       uuid.New(),
		Name:     "Downtown",
		Code:     "B1",
		Currency: "SAR",
		Tax:      domain.TaxConfig{Mode: domain.TaxModeExclusive, Rate: dec("15")},
		POSConfig: domain.POSConfig{
			OrderPrefix:    "DT",
			PaymentMethods: map[string]domain.PaymentMethodConfig{"cash": {Enabled: true}},
		},
		Active: true,
	}
	store.branches[branch.ID] = branch

	staff := &domain.Staff{
		ID:        uuid.New(),
		Name:      "Cashier A",
		Role:      domain.RoleCashier,
		IsStaff:   true,
		Active:    true,
		BranchIDs: []uuid.UUID{branch.ID},
	}
	store.staff[staff.ID] = staff

	terminal := &domain.PosTerminal{
		ID:       uuid.New(),
		BranchID: branch.ID,
		MachineID: "T1",
		Status:   domain.TerminalStatusActive,
	}
	store.terminals[terminal.ID] = terminal

	till := &domain.TillSession{
		ID:            uuid.New(),
		StaffID:       staff.ID,
		BranchID:      branch.ID,
		PosTerminalID: &terminal.ID,
		Status:        domain.TillStatusOpen,
		OpenedAt:      time.Now().UTC(),
		OpeningAmount: dec("200"),
	}
	store.tills[till.ID] = till

	doughID := uuid.New()
	pepID := uuid.New()
	store.itemTypes[doughID] = domain.ItemTypeStock
	store.itemTypes[pepID] = domain.ItemTypeStock
	store.stock[doughID] = dec("1000")
	store.stock[pepID] = dec("100")

	recipeID := uuid.New()
	store.recipes[recipeID] = &domain.Recipe{
		ID:       recipeID,
		Name:     "Pizza base",
		YieldQty: dec("1"),
		Ingredients: []domain.RecipeIngredient{
			{SourceType: domain.IngredientSourceInventory, SourceID: doughID, Quantity: dec("300"), CostPerUnit: dec("0.01")},
		},
	}

	variantLarge := &domain.RecipeVariant{
		ID:             uuid.New(),
		RecipeID:       recipeID,
		Type:           domain.VariantTypeSize,
		SizeMultiplier: dec("1.5"),
	}
	variantPep := &domain.RecipeVariant{
		ID:             uuid.New(),
		RecipeID:       recipeID,
		Type:           domain.VariantTypeFlavor,
		SizeMultiplier: dec("1"),
		Ingredients: []domain.RecipeIngredient{
			{SourceType: domain.IngredientSourceInventory, SourceID: pepID, Quantity: dec("50"), CostPerUnit: dec("0.02")},
		},
	}
	store.variants[variantLarge.ID] = variantLarge
	store.variants[variantPep.ID] = variantPep

	pizza := &domain.MenuItem{
		ID:        uuid.New(),
		Name:      "Pizza",
		Code:      "PZ",
		RecipeID:  &recipeID,
		BasePrice: dec("10.00"),
		Currency:  "SAR",
		Active:    true,
	}
	store.menuItems[pizza.ID] = pizza

	large := &domain.MenuVariation{
		ID:              uuid.New(),
		MenuItemID:      pizza.ID,
		RecipeVariantID: &variantLarge.ID,
		Name:            "Large",
		Type:            domain.VariantTypeSize,
		PriceDelta:      dec("5.00"),
		SizeMultiplier:  dec("1.5"),
		Active:          true,
	}
	pepperoni := &domain.MenuVariation{
		ID:              uuid.New(),
		MenuItemID:      pizza.ID,
		RecipeVariantID: &variantPep.ID,
		Name:            "Pepperoni",
		Type:            domain.VariantTypeFlavor,
		PriceDelta:      dec("2.00"),
		SizeMultiplier:  dec("1"),
		CalculatedCost:  dec("1.00"),
		Active:          true,
	}
	store.variations[large.ID] = large
	store.variations[pepperoni.ID] = pepperoni

	svc := NewOrderService(authz.NewRoleAuthorizer(), nil, nil, zerolog.Nop())

	return &posFixture{
		store:    store,
		svc:      svc,
		actor:    Actor{StaffID: staff.ID},
		staff:    staff,
		branch:   branch,
		terminal: terminal,
		till:     till,
		pizza:    pizza,
		largeID:  large.ID,
		pepIDVar: pepperoni.ID,
		doughID:  doughID,
		pepID:    pepID,
	}
}

func (fx *posFixture) commitInput() *OrderCommitInput {
	return &OrderCommitInput{
		BranchID:      &fx.branch.ID,
		PosTerminalID: &fx.terminal.ID,
		Items: []OrderLineInput{
			{MenuItemID: fx.pizza.ID, Quantity: 1, Variations: []uuid.UUID{fx.largeID, fx.pepIDVar}},
		},
		PaymentMethod: domain.PaymentMethodCash,
		AmountPaid:    dec("20.00"),
	}
}

func TestCommitHappyPathPizza(t *testing.T) {
	fx := newPosFixture()

	result, err := fx.svc.Commit(context.Background(), fx.store, "macd", fx.actor, fx.commitInput())
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}

	assertDecEq(t, "17.00", result.Totals.SubTotal)
	assertDecEq(t, "2.55", result.Totals.TaxTotal)
	assertDecEq(t, "19.55", result.Totals.GrandTotal)
	assertDecEq(t, "0.45", result.Change)
	if result.Status != domain.OrderStatusPaid {
		t.Fatalf("expected status paid, got %s", result.Status)
	}

	wantNumber := "DT-" + time.Now().UTC().Format("20060102") + "-0001"
	if result.OrderNumber != wantNumber {
		t.Fatalf("expected order number %s, got %s", wantNumber, result.OrderNumber)
	}

	// massa 300g × 1.5 = 450; pepperoni 50g × 1.5 = 75
	assertDecEq(t, "550", fx.store.stock[fx.doughID])
	assertDecEq(t, "25", fx.store.stock[fx.pepID])

	order := fx.store.orders[result.OrderID]
	if order == nil {
		t.Fatalf("expected order persisted")
	}
	assertDecEq(t, "5.5", order.Items[0].CalculatedCost)
	if order.Items[0].NameSnapshot != "Pizza" || order.Items[0].CodeSnapshot != "PZ" {
		t.Fatalf("expected snapshots copied at commit")
	}
	if order.PricingSnapshot.Currency != "SAR" || order.PricingSnapshot.TaxMode != domain.TaxModeExclusive {
		t.Fatalf("expected pricing snapshot frozen on the order")
	}
}

func TestCommitInsufficientStock(t *testing.T) {
	fx := newPosFixture()
	fx.store.stock[fx.pepID] = dec("50")

	_, err := fx.svc.Commit(context.Background(), fx.store, "macd", fx.actor, fx.commitInput())
	if !fault.IsKind(err, fault.KindInsufficientStock) {
		t.Fatalf("expected InsufficientStock, got %v", err)
	}

	detail, ok := fault.DetailOf(err).(map[string]any)
	if !ok {
		t.Fatalf("expected shortage detail payload")
	}
	shortages, ok := detail["short_items"].([]domain.StockShortage)
	if !ok || len(shortages) != 1 {
		t.Fatalf("expected one short item, got %v", detail["short_items"])
	}
	if shortages[0].ItemID != fx.pepID {
		t.Fatalf("expected pepperoni to be short")
	}
	assertDecEq(t, "75", shortages[0].Needed)
	assertDecEq(t, "50", shortages[0].OnHand)

	// nada persistido; estoque intacto; lacuna no contador é permitida
	if len(fx.store.orders) != 0 {
		t.Fatalf("expected no order persisted")
	}
	assertDecEq(t, "1000", fx.store.stock[fx.doughID])
	assertDecEq(t, "50", fx.store.stock[fx.pepID])
}

func TestCommitNoOpenTill(t *testing.T) {
	fx := newPosFixture()
	delete(fx.store.tills, fx.till.ID)

	_, err := fx.svc.Commit(context.Background(), fx.store, "macd", fx.actor, fx.commitInput())
	if !fault.IsKind(err, fault.KindNoOpenTill) {
		t.Fatalf("expected NoOpenTill, got %v", err)
	}
}

func TestCommitTillClosed(t *testing.T) {
	fx := newPosFixture()
	fx.till.Status = domain.TillStatusClosed

	input := fx.commitInput()
	input.TillSessionID = &fx.till.ID

	_, err := fx.svc.Commit(context.Background(), fx.store, "macd", fx.actor, input)
	if !fault.IsKind(err, fault.KindTillClosed) {
		t.Fatalf("expected TillClosed, got %v", err)
	}
}

func TestCommitOrderNumbersIncrease(t *testing.T) {
	fx := newPosFixture()

	day := time.Now().UTC().Format("20060102")
	for i := 1; i <= 3; i++ {
		input := fx.commitInput()
		input.Items[0].Variations = nil
		result, err := fx.svc.Commit(context.Background(), fx.store, "macd", fx.actor, input)
		if err != nil {
			t.Fatalf("Commit %d returned error: %v", i, err)
		}
		want := "DT-" + day + "-000" + string(rune('0'+i))
		if result.OrderNumber != want {
			t.Fatalf("expected %s, got %s", want, result.OrderNumber)
		}
	}
}

func TestCommitIdempotentReplay(t *testing.T) {
	fx := newPosFixture()

	input := fx.commitInput()
	input.ClientOpID = "op-123"

	first, err := fx.svc.Commit(context.Background(), fx.store, "macd", fx.actor, input)
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	replay, err := fx.svc.Commit(context.Background(), fx.store, "macd", fx.actor, input)
	if err != nil {
		t.Fatalf("replay returned error: %v", err)
	}

	if replay.OrderID != first.OrderID {
		t.Fatalf("replay should return the stored order")
	}
	if !replay.Replayed {
		t.Fatalf("replay should be flagged")
	}
	// estoque deduzido uma única vez
	assertDecEq(t, "550", fx.store.stock[fx.doughID])
	if len(fx.store.orders) != 1 {
		t.Fatalf("expected a single order, got %d", len(fx.store.orders))
	}
}

func TestCommitPaymentBoundary(t *testing.T) {
	t.Run("exact amount pays", func(t *testing.T) {
		fx := newPosFixture()
		input := fx.commitInput()
		input.AmountPaid = dec("19.55")
		result, err := fx.svc.Commit(context.Background(), fx.store, "macd", fx.actor, input)
		if err != nil {
			t.Fatalf("Commit returned error: %v", err)
		}
		if result.Status != domain.OrderStatusPaid {
			t.Fatalf("expected paid, got %s", result.Status)
		}
		assertDecEq(t, "0", result.Change)
	})

	t.Run("one cent short places", func(t *testing.T) {
		fx := newPosFixture()
		input := fx.commitInput()
		input.AmountPaid = dec("19.54")
		result, err := fx.svc.Commit(context.Background(), fx.store, "macd", fx.actor, input)
		if err != nil {
			t.Fatalf("Commit returned error: %v", err)
		}
		if result.Status != domain.OrderStatusPlaced {
			t.Fatalf("expected placed, got %s", result.Status)
		}
		assertDecEq(t, "0", result.Change)
	})
}

func TestCommitServiceOnlyOrderSkipsInventory(t *testing.T) {
	fx := newPosFixture()

	serviceItem := uuid.New()
	fx.store.itemTypes[serviceItem] = domain.ItemTypeService

	recipeID := uuid.New()
	fx.store.recipes[recipeID] = &domain.Recipe{
		ID:       recipeID,
		YieldQty: dec("1"),
		Ingredients: []domain.RecipeIngredient{
			{SourceType: domain.IngredientSourceInventory, SourceID: serviceItem, Quantity: dec("1"), CostPerUnit: dec("5")},
		},
	}
	delivery := &domain.MenuItem{
		ID:        uuid.New(),
		Name:      "Delivery fee",
		Code:      "DLV",
		RecipeID:  &recipeID,
		BasePrice: dec("3.00"),
		Currency:  "SAR",
		Active:    true,
	}
	fx.store.menuItems[delivery.ID] = delivery

	input := fx.commitInput()
	input.Items = []OrderLineInput{{MenuItemID: delivery.ID, Quantity: 1}}
	input.AmountPaid = dec("5.00")

	result, err := fx.svc.Commit(context.Background(), fx.store, "macd", fx.actor, input)
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if result.Status != domain.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", result.Status)
	}
	if fx.store.ledgerEntries != 0 {
		t.Fatalf("service-only order should emit zero inventory transactions, got %d", fx.store.ledgerEntries)
	}
}

func TestCommitRejectsInactiveAccount(t *testing.T) {
	fx := newPosFixture()
	fx.staff.Active = false

	_, err := fx.svc.Commit(context.Background(), fx.store, "macd", fx.actor, fx.commitInput())
	if !fault.IsKind(err, fault.KindAccountSuspended) {
		t.Fatalf("expected AccountSuspended, got %v", err)
	}
}

func TestCommitRejectsForeignBranch(t *testing.T) {
	fx := newPosFixture()
	other := &domain.Branch{
		ID:        uuid.New(),
		Code:      "B2",
		Currency:  "SAR",
		Tax:       domain.TaxConfig{Mode: domain.TaxModeExclusive, Rate: dec("15")},
		POSConfig: domain.POSConfig{OrderPrefix: "UP"},
		Active:    true,
	}
	fx.store.branches[other.ID] = other

	input := fx.commitInput()
	input.BranchID = &other.ID
	input.PosTerminalID = nil

	_, err := fx.svc.Commit(context.Background(), fx.store, "macd", fx.actor, input)
	if !fault.IsKind(err, fault.KindBranchNotAuthorized) {
		t.Fatalf("expected BranchNotAuthorized, got %v", err)
	}
}

func TestCommitTerminalChecks(t *testing.T) {
	fx := newPosFixture()

	t.Run("inactive terminal", func(t *testing.T) {
		fx.terminal.Status = domain.TerminalStatusMaintenance
		_, err := fx.svc.Commit(context.Background(), fx.store, "macd", fx.actor, fx.commitInput())
		if !fault.IsKind(err, fault.KindTerminalInactive) {
			t.Fatalf("expected TerminalInactive, got %v", err)
		}
		fx.terminal.Status = domain.TerminalStatusActive
	})

	t.Run("terminal from another branch", func(t *testing.T) {
		foreign := &domain.PosTerminal{ID: uuid.New(), BranchID: uuid.New(), MachineID: "TX", Status: domain.TerminalStatusActive}
		fx.store.terminals[foreign.ID] = foreign

		input := fx.commitInput()
		input.PosTerminalID = &foreign.ID
		_, err := fx.svc.Commit(context.Background(), fx.store, "macd", fx.actor, input)
		if !fault.IsKind(err, fault.KindTerminalBranchMismatch) {
			t.Fatalf("expected TerminalBranchMismatch, got %v", err)
		}
	})
}

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func assertDecEq(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	if !actual.Equal(dec(expected)) {
		t.Fatalf("expected %s, got %s", expected, actual.String())
	}
}

// stubOrderStore simula o repositório em memória, espelhando a semântica da
// seção de efetivação: número sequencial, verificação e dedução de estoque e
// registro de idempotência, tudo ou nada.
type stubOrderStore struct {
	staff      map[uuid.UUID]*domain.Staff
	branches   map[uuid.UUID]*domain.Branch
	terminals  map[uuid.UUID]*domain.PosTerminal
	tills      map[uuid.UUID]*domain.TillSession
	menuItems  map[uuid.UUID]*domain.MenuItem
	branchMenu map[string]*domain.BranchMenu
	variations map[uuid.UUID]*domain.MenuVariation
	recipes    map[uuid.UUID]*domain.Recipe
	variants   map[uuid.UUID]*domain.RecipeVariant
	orders     map[uuid.UUID]*domain.Order
	clientOps  map[string]uuid.UUID
	stock      map[uuid.UUID]decimal.Decimal
	itemTypes  map[uuid.UUID]string

	seq           int64
	ledgerEntries int
}

func newStubOrderStore() *stubOrderStore {
	return &stubOrderStore{
		staff:      make(map[uuid.UUID]*domain.Staff),
		branches:   make(map[uuid.UUID]*domain.Branch),
		terminals:  make(map[uuid.UUID]*domain.PosTerminal),
		tills:      make(map[uuid.UUID]*domain.TillSession),
		menuItems:  make(map[uuid.UUID]*domain.MenuItem),
		branchMenu: make(map[string]*domain.BranchMenu),
		variations: make(map[uuid.UUID]*domain.MenuVariation),
		recipes:    make(map[uuid.UUID]*domain.Recipe),
		variants:   make(map[uuid.UUID]*domain.RecipeVariant),
		orders:     make(map[uuid.UUID]*domain.Order),
		clientOps:  make(map[string]uuid.UUID),
		stock:      make(map[uuid.UUID]decimal.Decimal),
		itemTypes:  make(map[uuid.UUID]string),
	}
}

func (s *stubOrderStore) GetStaff(_ context.Context, id uuid.UUID) (*domain.Staff, error) {
	staff, ok := s.staff[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return staff, nil
}

func (s *stubOrderStore) GetBranch(_ context.Context, id uuid.UUID) (*domain.Branch, error) {
	branch, ok := s.branches[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return branch, nil
}

func (s *stubOrderStore) GetPosTerminal(_ context.Context, id uuid.UUID) (*domain.PosTerminal, error) {
	terminal, ok := s.terminals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return terminal, nil
}

func (s *stubOrderStore) GetTillSession(_ context.Context, id uuid.UUID) (*domain.TillSession, error) {
	till, ok := s.tills[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return till, nil
}

func (s *stubOrderStore) FindOpenTillSession(_ context.Context, branchID uuid.UUID, terminalID *uuid.UUID) (*domain.TillSession, error) {
	for _, till := range s.tills {
		if till.BranchID != branchID || !till.IsOpen() {
			continue
		}
		if terminalID == nil && till.PosTerminalID == nil {
			return till, nil
		}
		if terminalID != nil && till.PosTerminalID != nil && *terminalID == *till.PosTerminalID {
			return till, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubOrderStore) GetMenuItem(_ context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	item, ok := s.menuItems[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return item, nil
}

func (s *stubOrderStore) GetBranchMenu(_ context.Context, branchID, menuItemID uuid.UUID) (*domain.BranchMenu, error) {
	bm, ok := s.branchMenu[branchID.String()+"/"+menuItemID.String()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return bm, nil
}

func (s *stubOrderStore) GetMenuVariations(_ context.Context, ids []uuid.UUID) ([]domain.MenuVariation, error) {
	var out []domain.MenuVariation
	for _, id := range ids {
		if v, ok := s.variations[id]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *stubOrderStore) GetRecipe(_ context.Context, id uuid.UUID) (*domain.Recipe, error) {
	recipe, ok := s.recipes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return recipe, nil
}

func (s *stubOrderStore) GetRecipeVariant(_ context.Context, id uuid.UUID) (*domain.RecipeVariant, error) {
	variant, ok := s.variants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return variant, nil
}

func (s *stubOrderStore) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return order, nil
}

func (s *stubOrderStore) LookupClientOp(_ context.Context, clientOpID string) (uuid.UUID, bool, error) {
	orderID, ok := s.clientOps[clientOpID]
	return orderID, ok, nil
}

func (s *stubOrderStore) CommitOrder(_ context.Context, commit *repository.OrderCommit) error {
	// espelha a transação real: verifica tudo antes de aplicar qualquer efeito
	aggregated := make(map[uuid.UUID]decimal.Decimal)
	var order []uuid.UUID
	for _, req := range commit.Requirements {
		if s.itemTypes[req.ItemID] == domain.ItemTypeService {
			continue
		}
		if _, seen := aggregated[req.ItemID]; !seen {
			order = append(order, req.ItemID)
		}
		aggregated[req.ItemID] = aggregated[req.ItemID].Add(req.Qty)
	}

	var shortages []domain.StockShortage
	for _, itemID := range order {
		needed := aggregated[itemID]
		onHand, ok := s.stock[itemID]
		if !ok {
			return fault.New(fault.KindIngredientNotStockedAtBranch, "insumo não provisionado").
				WithDetail(map[string]any{"item_ids": []string{itemID.String()}})
		}
		if onHand.Sub(needed).Sign() < 0 {
			shortages = append(shortages, domain.StockShortage{ItemID: itemID, Needed: needed, OnHand: onHand})
		}
	}

	if len(shortages) > 0 {
		// nada persiste, nem o incremento do contador
		return fault.New(fault.KindInsufficientStock, "estoque insuficiente").
			WithDetail(map[string]any{"short_items": shortages})
	}

	s.seq++

	for _, itemID := range order {
		s.stock[itemID] = s.stock[itemID].Sub(aggregated[itemID])
		s.ledgerEntries++
	}

	commit.Order.ID = uuid.New()
	commit.Order.OrderNumber = repository.FormatOrderNumber(commit.Prefix, commit.Day, s.seq)
	s.orders[commit.Order.ID] = commit.Order
	if commit.ClientOpID != "" {
		s.clientOps[commit.ClientOpID] = commit.Order.ID
	}
	return nil
}

func (s *stubOrderStore) ReverseOrder(_ context.Context, reversal *repository.OrderReversal) error {
	order, ok := s.orders[reversal.OrderID]
	if !ok {
		return repository.ErrNotFound
	}
	allowed := false
	for _, from := range reversal.FromStatus {
		if order.Status == from {
			allowed = true
		}
	}
	if !allowed {
		return repository.ErrStaleState
	}
	order.Status = reversal.ToStatus
	return nil
}

var _ OrderStore = (*stubOrderStore)(nil)
