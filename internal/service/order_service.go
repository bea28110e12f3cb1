package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/authz"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/costing"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/events"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/metrics"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/pricing"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
)

// OrderStore é a fatia do repositório que o caminho de efetivação consome.
type OrderStore interface {
	GetStaff(ctx context.Context, id uuid.UUID) (*domain.Staff, error)
	GetBranch(ctx context.Context, id uuid.UUID) (*domain.Branch, error)
	GetPosTerminal(ctx context.Context, id uuid.UUID) (*domain.PosTerminal, error)
	GetTillSession(ctx context.Context, id uuid.UUID) (*domain.TillSession, error)
	FindOpenTillSession(ctx context.Context, branchID uuid.UUID, terminalID *uuid.UUID) (*domain.TillSession, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error)
	GetBranchMenu(ctx context.Context, branchID, menuItemID uuid.UUID) (*domain.BranchMenu, error)
	GetMenuVariations(ctx context.Context, ids []uuid.UUID) ([]domain.MenuVariation, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)
	GetRecipeVariant(ctx context.Context, id uuid.UUID) (*domain.RecipeVariant, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	LookupClientOp(ctx context.Context, clientOpID string) (uuid.UUID, bool, error)
	CommitOrder(ctx context.Context, commit *repository.OrderCommit) error
	ReverseOrder(ctx context.Context, reversal *repository.OrderReversal) error
}

// Actor é o contexto autenticado que chega com a requisição: o operador e o
// vínculo de filial/caixa embutido no token.
type Actor struct {
	StaffID       uuid.UUID
	BranchID      *uuid.UUID
	TillSessionID *uuid.UUID
}

// OrderLineInput é uma linha do pedido como chega do terminal.
type OrderLineInput struct {
	MenuItemID uuid.UUID
	Quantity   int
	Variations []uuid.UUID
	Notes      string
}

// OrderCommitInput é a entrada completa da efetivação (§ fluxo de venda).
type OrderCommitInput struct {
	BranchID      *uuid.UUID
	PosTerminalID *uuid.UUID
	TillSessionID *uuid.UUID
	CustomerName  string
	CustomerPhone string
	Notes         string
	Items         []OrderLineInput
	PaymentMethod string
	AmountPaid    decimal.Decimal
	ClientOpID    string
}

// OrderCommitResult devolve ao terminal o essencial do pedido efetivado.
type OrderCommitResult struct {
	OrderID     uuid.UUID          `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	Status      string             `json:"status"`
	Totals      domain.OrderTotals `json:"totals"`
	Change      decimal.Decimal    `json:"change"`
	Replayed    bool               `json:"replayed"`
}

// OrderService orquestra o caminho de efetivação de pedidos: preflight fora de
// transação, seção de efetivação em uma única transação e postflight de eventos.
type OrderService struct {
	authorizer authz.Authorizer
	emitter    *events.Emitter
	metrics    *metrics.Registry
	log        zerolog.Logger
}

func NewOrderService(authorizer authz.Authorizer, emitter *events.Emitter, metricsReg *metrics.Registry, log zerolog.Logger) *OrderService {
	return &OrderService{authorizer: authorizer, emitter: emitter, metrics: metricsReg, log: log}
}

// storeRecipeSource adapta o repositório ao Source do motor de planificação.
type storeRecipeSource struct {
	store OrderStore
}

func (s storeRecipeSource) Recipe(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	return s.store.GetRecipe(ctx, id)
}

func (s storeRecipeSource) Variant(ctx context.Context, id uuid.UUID) (*domain.RecipeVariant, error) {
	return s.store.GetRecipeVariant(ctx, id)
}

// Commit executa o fluxo completo de venda para o ator informado.
func (s *OrderService) Commit(ctx context.Context, store OrderStore, tenantKey string, actor Actor, input *OrderCommitInput) (*OrderCommitResult, error) {
	started := time.Now()

	if input == nil || len(input.Items) == 0 {
		return nil, fault.New(fault.KindValidation, "pedido sem itens")
	}
	if !domain.IsValidPaymentMethod(input.PaymentMethod) {
		return nil, fault.Newf(fault.KindValidation, "meio de pagamento desconhecido: %s", input.PaymentMethod)
	}
	if input.AmountPaid.Sign() < 0 {
		return nil, fault.New(fault.KindValidation, "valor pago não pode ser negativo")
	}

	// Replay idempotente: com clientOpId já registrado devolvemos o resultado
	// gravado sem tocar estoque.
	if input.ClientOpID != "" {
		orderID, found, err := store.LookupClientOp(ctx, input.ClientOpID)
		if err != nil {
			return nil, err
		}
		if found {
			order, err := store.GetOrder(ctx, orderID)
			if err != nil {
				return nil, err
			}
			return replayedResult(order), nil
		}
	}

	// Preflight 1–3: ator, filial efetiva e autorização.
	staff, err := s.resolveStaff(ctx, store, actor.StaffID)
	if err != nil {
		return nil, err
	}
	branch, err := s.resolveBranch(ctx, store, staff, actor, input.BranchID)
	if err != nil {
		return nil, err
	}
	if !s.authorizer.May(staff, authz.ActionOrdersCreate, authz.BranchScope(branch.ID)) {
		return nil, fault.Newf(fault.KindBranchNotAuthorized, "operador sem acesso à filial %s", branch.Code)
	}

	// Preflight 4–5: terminal e sessão de caixa.
	terminal, err := s.resolveTerminal(ctx, store, branch, input.PosTerminalID)
	if err != nil {
		return nil, err
	}
	till, err := s.resolveTill(ctx, store, branch, terminal, actor, input.TillSessionID)
	if err != nil {
		return nil, err
	}

	// Preflight 6: cotação linha a linha e agregação das necessidades.
	engine := costing.NewEngine(storeRecipeSource{store})
	calc := pricing.NewCalculator(engine)

	lines := make([]domain.OrderLine, 0, len(input.Items))
	var requirements []domain.StockRequirement
	subTotal := decimal.Zero

	for i := range input.Items {
		line, lineReqs, err := s.quoteLine(ctx, store, calc, branch, &input.Items[i])
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
		requirements = append(requirements, lineReqs...)
		subTotal = subTotal.Add(line.LineTotal)
	}

	// Preflight 7: totais com alíquota efetiva (sobreposição por meio de pagamento).
	taxRate := branch.EffectiveTaxRate(input.PaymentMethod)
	totals := pricing.ComputeTotals(subTotal, taxRate, branch.Tax.Mode, decimal.Zero)

	status, change := pricing.ResolvePayment(totals.GrandTotal, input.AmountPaid)
	var paidAt *time.Time
	if status == domain.OrderStatusPaid {
		now := time.Now().UTC()
		paidAt = &now
	}

	order := &domain.Order{
		BranchID:      branch.ID,
		PosTerminalID: terminalID(terminal),
		TillSessionID: till.ID,
		StaffID:       staff.ID,
		Status:        status,
		Items:         lines,
		Totals:        totals,
		Payment: domain.OrderPayment{
			Method:     input.PaymentMethod,
			AmountPaid: domain.RoundCurrency(input.AmountPaid),
			Change:     change,
			PaidAt:     paidAt,
		},
		PricingSnapshot: domain.PricingSnapshot{
			Currency:         branch.Currency,
			PriceIncludesTax: branch.Tax.Mode == domain.TaxModeInclusive,
			TaxMode:          branch.Tax.Mode,
			TaxRate:          taxRate,
		},
		Customer: domain.OrderCustomer{
			Name:  input.CustomerName,
			Phone: input.CustomerPhone,
		},
		Notes: input.Notes,
	}

	// Seção de efetivação: número, inserção, dedução e idempotência em uma
	// única transação do datastore.
	commit := &repository.OrderCommit{
		Order:        order,
		Requirements: requirements,
		Prefix:       branch.POSConfig.OrderPrefix,
		Day:          time.Now().UTC(),
		ClientOpID:   input.ClientOpID,
	}
	if err := store.CommitOrder(ctx, commit); err != nil {
		if fault.IsKind(err, fault.KindInsufficientStock) && s.metrics != nil {
			s.metrics.StockShortages.Inc()
		}
		// Replay que perdeu a corrida para a própria primeira execução.
		if input.ClientOpID != "" && errors.Is(err, repository.ErrConflict) {
			if orderID, found, lookupErr := store.LookupClientOp(ctx, input.ClientOpID); lookupErr == nil && found {
				if replay, getErr := store.GetOrder(ctx, orderID); getErr == nil {
					return replayedResult(replay), nil
				}
			}
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCommitted.WithLabelValues(order.Status).Inc()
		s.metrics.CommitLatency.Observe(time.Since(started).Seconds())
	}
	s.log.Info().
		Str("order_number", order.OrderNumber).
		Str("branch_id", branch.ID.String()).
		Str("status", order.Status).
		Str("grand_total", domain.MoneyString(totals.GrandTotal)).
		Msg("pedido efetivado")

	// Postflight: o evento alimenta cupom e fidelidade; falha não desfaz nada.
	if s.emitter != nil {
		s.emitter.Emit(ctx, tenantKey, events.EventOrderCommitted, order)
	}

	return &OrderCommitResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Totals:      totals,
		Change:      change,
	}, nil
}

func (s *OrderService) resolveStaff(ctx context.Context, store OrderStore, staffID uuid.UUID) (*domain.Staff, error) {
	staff, err := store.GetStaff(ctx, staffID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fault.New(fault.KindNotStaff, "operador não encontrado no tenant")
		}
		return nil, err
	}
	if !staff.Active {
		return nil, fault.New(fault.KindAccountSuspended, "conta do operador suspensa")
	}
	if !staff.IsStaff {
		return nil, fault.New(fault.KindNotStaff, "usuário não é operador de ponto de venda")
	}
	return staff, nil
}

// resolveBranch aplica a cadeia de resolução: entrada explícita, escopo da
// sessão do token, filial única do operador, senão BranchRequired.
func (s *OrderService) resolveBranch(ctx context.Context, store OrderStore, staff *domain.Staff, actor Actor, explicit *uuid.UUID) (*domain.Branch, error) {
	branchID := uuid.Nil
	switch {
	case explicit != nil:
		branchID = *explicit
	case actor.BranchID != nil:
		branchID = *actor.BranchID
	default:
		if single, ok := staff.SingleBranch(); ok {
			branchID = single
		}
	}
	if branchID == uuid.Nil {
		return nil, fault.New(fault.KindBranchRequired, "não foi possível resolver a filial do pedido")
	}

	branch, err := store.GetBranch(ctx, branchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fault.Newf(fault.KindNotFound, "filial %s não encontrada", branchID)
		}
		return nil, err
	}
	return branch, nil
}

func (s *OrderService) resolveTerminal(ctx context.Context, store OrderStore, branch *domain.Branch, explicit *uuid.UUID) (*domain.PosTerminal, error) {
	if explicit == nil {
		return nil, nil
	}
	terminal, err := store.GetPosTerminal(ctx, *explicit)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fault.Newf(fault.KindNotFound, "terminal %s não encontrado", *explicit)
		}
		return nil, err
	}
	if terminal.BranchID != branch.ID {
		return nil, fault.Newf(fault.KindTerminalBranchMismatch, "terminal %s pertence a outra filial", terminal.MachineID)
	}
	if terminal.Status != domain.TerminalStatusActive {
		return nil, fault.Newf(fault.KindTerminalInactive, "terminal %s não está ativo", terminal.MachineID)
	}
	return terminal, nil
}

// resolveTill segue a cadeia: entrada, contexto do token, busca por sessão
// aberta no terminal; sem sessão aberta o pedido é rejeitado.
func (s *OrderService) resolveTill(ctx context.Context, store OrderStore, branch *domain.Branch, terminal *domain.PosTerminal, actor Actor, explicit *uuid.UUID) (*domain.TillSession, error) {
	sessionID := uuid.Nil
	if explicit != nil {
		sessionID = *explicit
	} else if actor.TillSessionID != nil {
		sessionID = *actor.TillSessionID
	}

	if sessionID != uuid.Nil {
		till, err := store.GetTillSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fault.Newf(fault.KindTillNotOpen, "sessão de caixa %s não encontrada", sessionID)
			}
			return nil, err
		}
		if !till.IsOpen() {
			return nil, fault.New(fault.KindTillClosed, "a sessão de caixa já foi fechada")
		}
		if till.BranchID != branch.ID {
			return nil, fault.New(fault.KindTillBelongsToOther, "a sessão de caixa pertence a outra filial")
		}
		return till, nil
	}

	till, err := store.FindOpenTillSession(ctx, branch.ID, terminalID(terminal))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fault.New(fault.KindNoOpenTill, "nenhum caixa aberto para este terminal")
		}
		return nil, err
	}
	return till, nil
}

// quoteLine resolve item, sobreposição de filial e variações, e cota a linha.
func (s *OrderService) quoteLine(ctx context.Context, store OrderStore, calc *pricing.Calculator, branch *domain.Branch, in *OrderLineInput) (*domain.OrderLine, []domain.StockRequirement, error) {
	if in.Quantity < 1 {
		return nil, nil, fault.Newf(fault.KindValidation, "quantidade mínima é 1 no item %s", in.MenuItemID)
	}

	item, err := store.GetMenuItem(ctx, in.MenuItemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fault.Newf(fault.KindNotFound, "item de menu %s não encontrado", in.MenuItemID)
		}
		return nil, nil, err
	}
	if !item.Active || item.Deleted {
		return nil, nil, fault.Newf(fault.KindMenuItemUnavailable, "item %s indisponível", item.Name)
	}

	branchMenu, err := store.GetBranchMenu(ctx, branch.ID, item.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}
	if branchMenu != nil && !branchMenu.Available {
		return nil, nil, fault.Newf(fault.KindMenuItemUnavailable, "item %s indisponível nesta filial", item.Name)
	}

	selections, err := s.resolveSelections(ctx, store, in.Variations)
	if err != nil {
		return nil, nil, err
	}

	quote, err := calc.QuoteLine(ctx, &pricing.LineQuoteInput{
		MenuItem:   item,
		BranchMenu: branchMenu,
		Selections: selections,
		Quantity:   decimal.NewFromInt(int64(in.Quantity)),
	})
	if err != nil {
		return nil, nil, err
	}

	line := &domain.OrderLine{
		MenuItemID:         item.ID,
		RecipeIDSnapshot:   item.RecipeID,
		SelectedVariations: quote.Variations,
		NameSnapshot:       item.Name,
		CodeSnapshot:       item.Code,
		CategoryIDSnapshot: item.CategoryID,
		Quantity:           decimal.NewFromInt(int64(in.Quantity)),
		UnitPrice:          quote.UnitPrice,
		LineTotal:          quote.LineTotal,
		CalculatedCost:     quote.CalculatedCost,
		PriceIncludesTax:   item.PriceIncludesTax,
		Notes:              in.Notes,
	}
	return line, quote.Requirements, nil
}

func (s *OrderService) resolveSelections(ctx context.Context, store OrderStore, ids []uuid.UUID) ([]pricing.VariationSelection, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	variations, err := store.GetMenuVariations(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.MenuVariation, len(variations))
	for _, v := range variations {
		byID[v.ID] = v
	}

	selections := make([]pricing.VariationSelection, 0, len(ids))
	for _, id := range ids {
		variation, ok := byID[id]
		if !ok {
			return nil, fault.Newf(fault.KindNotFound, "variação %s não encontrada", id)
		}
		if !variation.Active {
			return nil, fault.Newf(fault.KindMenuItemUnavailable, "variação %s indisponível", variation.Name)
		}

		sel := pricing.VariationSelection{Variation: variation}
		if variation.RecipeVariantID != nil {
			variant, err := store.GetRecipeVariant(ctx, *variation.RecipeVariantID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, fault.Newf(fault.KindNotFound, "variante de receita %s não encontrada", *variation.RecipeVariantID)
				}
				return nil, err
			}
			sel.Variant = variant
		}
		selections = append(selections, sel)
	}
	return selections, nil
}

// Void anula um pedido colocado ou pago, devolvendo o estoque consumido.
func (s *OrderService) Void(ctx context.Context, store OrderStore, tenantKey string, actor Actor, orderID uuid.UUID, note string) error {
	return s.reverse(ctx, store, tenantKey, actor, orderID, []string{domain.OrderStatusPlaced, domain.OrderStatusPaid}, domain.OrderStatusVoid, events.EventOrderVoided, note)
}

// Refund estorna um pedido pago, devolvendo o estoque consumido; o valor em
// dinheiro estornado abate o fechamento do caixa.
func (s *OrderService) Refund(ctx context.Context, store OrderStore, tenantKey string, actor Actor, orderID uuid.UUID, note string) error {
	return s.reverse(ctx, store, tenantKey, actor, orderID, []string{domain.OrderStatusPaid}, domain.OrderStatusRefunded, events.EventOrderRefunded, note)
}

func (s *OrderService) reverse(ctx context.Context, store OrderStore, tenantKey string, actor Actor, orderID uuid.UUID, from []string, to, event, note string) error {
	staff, err := s.resolveStaff(ctx, store, actor.StaffID)
	if err != nil {
		return err
	}

	order, err := store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fault.Newf(fault.KindNotFound, "pedido %s não encontrado", orderID)
		}
		return err
	}
	if !s.authorizer.May(staff, authz.ActionOrdersVoid, authz.BranchScope(order.BranchID)) {
		return fault.New(fault.KindPermissionDenied, "operador sem permissão para reverter pedidos")
	}

	if err := store.ReverseOrder(ctx, &repository.OrderReversal{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    staff.ID,
		Note:       note,
	}); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return fault.Newf(fault.KindConflict, "pedido %s não está em um estado reversível", order.OrderNumber)
		}
		return err
	}

	s.log.Info().Str("order_number", order.OrderNumber).Str("to", to).Msg("pedido revertido")
	if s.emitter != nil {
		s.emitter.Emit(ctx, tenantKey, event, map[string]any{"order_id": orderID, "order_number": order.OrderNumber, "note": note})
	}
	return nil
}

func replayedResult(order *domain.Order) *OrderCommitResult {
	return &OrderCommitResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Totals:      order.Totals,
		Change:      order.Payment.Change,
		Replayed:    true,
	}
}

func terminalID(terminal *domain.PosTerminal) *uuid.UUID {
	if terminal == nil {
		return nil
	}
	id := terminal.ID
	return &id
}
