package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/auth"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/authz"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/events"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/metrics"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
)

// TillStore é a fatia do repositório usada pelo ciclo de vida do caixa.
type TillStore interface {
	GetStaff(ctx context.Context, id uuid.UUID) (*domain.Staff, error)
	GetBranch(ctx context.Context, id uuid.UUID) (*domain.Branch, error)
	GetPosTerminal(ctx context.Context, id uuid.UUID) (*domain.PosTerminal, error)
	CreateTillSession(ctx context.Context, session *domain.TillSession) error
	GetTillSession(ctx context.Context, id uuid.UUID) (*domain.TillSession, error)
	FindOpenTillSession(ctx context.Context, branchID uuid.UUID, terminalID *uuid.UUID) (*domain.TillSession, error)
	CloseTillSession(ctx context.Context, session *domain.TillSession) error
	SumTillCash(ctx context.Context, sessionID uuid.UUID) (paid, refunded decimal.Decimal, err error)
}

// ReportArchiver arquiva o relatório Z de fechamento; falhas não surgem ao caller.
type ReportArchiver interface {
	UploadTillReport(ctx context.Context, tenantKey, branchCode, sessionID string, closedAt time.Time, report any) (string, error)
}

// VarianceNotifier avisa o gerente quando a variância estoura o limite.
type VarianceNotifier interface {
	Send(to, subject, body string) error
}

// TillOpenInput abre uma sessão de caixa.
type TillOpenInput struct {
	BranchID      uuid.UUID
	PosTerminalID uuid.UUID
	OpeningAmount decimal.Decimal
	CashCounts    []domain.CashCount
	Notes         string
}

// TillOpenResult devolve a sessão criada e o token com o vínculo embutido.
type TillOpenResult struct {
	Session *domain.TillSession `json:"session"`
	Tokens  *auth.TokenPair     `json:"tokens"`
}

// TillCloseInput fecha uma sessão com o valor declarado pelo operador.
type TillCloseInput struct {
	TillSessionID         *uuid.UUID
	DeclaredClosingAmount decimal.Decimal
	CashCounts            []domain.CashCount
	Notes                 string
}

// TillCloseResult devolve a reconciliação e o token sem vínculo de caixa.
type TillCloseResult struct {
	Session  *domain.TillSession `json:"session"`
	Variance decimal.Decimal     `json:"variance"`
	Tokens   *auth.TokenPair     `json:"tokens"`
}

// TillZReport é o retrato arquivado no fechamento.
type TillZReport struct {
	SessionID             uuid.UUID       `json:"session_id"`
	BranchID              uuid.UUID       `json:"branch_id"`
	StaffID               uuid.UUID       `json:"staff_id"`
	OpenedAt              time.Time       `json:"opened_at"`
	ClosedAt              time.Time       `json:"closed_at"`
	OpeningAmount         decimal.Decimal `json:"opening_amount"`
	CashSales             decimal.Decimal `json:"cash_sales"`
	CashRefunds           decimal.Decimal `json:"cash_refunds"`
	SystemClosingAmount   decimal.Decimal `json:"system_closing_amount"`
	DeclaredClosingAmount decimal.Decimal `json:"declared_closing_amount"`
	Variance              decimal.Decimal `json:"variance"`
}

// TillService implementa o ciclo de vida aberto → fechado das sessões de caixa.
type TillService struct {
	authorizer        authz.Authorizer
	tokens            *auth.Manager
	archiver          ReportArchiver
	notifier          VarianceNotifier
	metrics           *metrics.Registry
	emitter           *events.Emitter
	varianceThreshold decimal.Decimal
	alertRecipient    string
	log               zerolog.Logger
}

// NewTillService cria o serviço de caixa; archiver e notifier são opcionais.
func NewTillService(authorizer authz.Authorizer, tokens *auth.Manager, archiver ReportArchiver, notifier VarianceNotifier, emitter *events.Emitter, metricsReg *metrics.Registry, varianceThreshold decimal.Decimal, alertRecipient string, log zerolog.Logger) *TillService {
	return &TillService{
		authorizer:        authorizer,
		tokens:            tokens,
		archiver:          archiver,
		notifier:          notifier,
		emitter:           emitter,
		metrics:           metricsReg,
		varianceThreshold: varianceThreshold,
		alertRecipient:    alertRecipient,
		log:               log,
	}
}

// Open abre uma sessão de caixa para o operador autenticado e devolve um novo
// token com o tillSessionId embutido.
func (s *TillService) Open(ctx context.Context, store TillStore, tenantKey string, actor Actor, input *TillOpenInput) (*TillOpenResult, error) {
	if input.OpeningAmount.Sign() < 0 {
		return nil, fault.New(fault.KindValidation, "valor de abertura não pode ser negativo")
	}

	staff, err := store.GetStaff(ctx, actor.StaffID)
	if err != nil {
		return nil, err
	}
	if !staff.Active {
		return nil, fault.New(fault.KindAccountSuspended, "conta do operador suspensa")
	}
	if !staff.IsStaff {
		return nil, fault.New(fault.KindNotStaff, "usuário não é operador de ponto de venda")
	}
	if !s.authorizer.May(staff, authz.ActionTillManage, authz.BranchScope(input.BranchID)) {
		return nil, fault.New(fault.KindBranchNotAuthorized, "operador sem acesso à filial para abrir caixa")
	}

	terminal, err := store.GetPosTerminal(ctx, input.PosTerminalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fault.Newf(fault.KindNotFound, "terminal %s não encontrado", input.PosTerminalID)
		}
		return nil, err
	}
	if terminal.BranchID != input.BranchID {
		return nil, fault.New(fault.KindTerminalBranchMismatch, "terminal pertence a outra filial")
	}
	if terminal.Status != domain.TerminalStatusActive {
		return nil, fault.Newf(fault.KindTerminalInactive, "terminal %s não está ativo", terminal.MachineID)
	}

	terminalRef := terminal.ID
	if existing, err := store.FindOpenTillSession(ctx, input.BranchID, &terminalRef); err == nil && existing != nil {
		if existing.StaffID == staff.ID {
			return nil, fault.New(fault.KindTillAlreadyOpen, "você já tem um caixa aberto neste terminal")
		}
		return nil, fault.New(fault.KindTillAlreadyOpen, "outro operador está com o caixa aberto neste terminal")
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	session := &domain.TillSession{
		StaffID:       staff.ID,
		BranchID:      input.BranchID,
		PosTerminalID: &terminalRef,
		Status:        domain.TillStatusOpen,
		OpenedAt:      time.Now().UTC(),
		OpeningAmount: domain.RoundCurrency(input.OpeningAmount),
		CashCounts:    input.CashCounts,
		Notes:         input.Notes,
	}
	if err := store.CreateTillSession(ctx, session); err != nil {
		// O índice parcial único decide corridas de abertura.
		if errors.Is(err, repository.ErrConflict) {
			return nil, fault.New(fault.KindTillAlreadyOpen, "outro operador abriu o caixa neste terminal")
		}
		return nil, err
	}

	branchRef := input.BranchID
	sessionRef := session.ID
	tokens, err := s.tokens.GenerateTokens(staff.ID, tenantKey, staff.Role, auth.SessionContext{
		BranchID:      &branchRef,
		TillSessionID: &sessionRef,
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TillSessions.WithLabelValues(input.BranchID.String()).Inc()
	}
	s.log.Info().
		Str("till_session_id", session.ID.String()).
		Str("branch_id", input.BranchID.String()).
		Str("staff_id", staff.ID.String()).
		Msg("caixa aberto")

	return &TillOpenResult{Session: session, Tokens: tokens}, nil
}

// Close sela a sessão calculando o fechamento de sistema e a variância, e
// devolve um token sem vínculo de caixa. O fechamento de sistema soma a
// abertura aos pagamentos em dinheiro e subtrai estornos.
func (s *TillService) Close(ctx context.Context, store TillStore, tenantKey string, actor Actor, input *TillCloseInput) (*TillCloseResult, error) {
	staff, err := store.GetStaff(ctx, actor.StaffID)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.Nil
	if input.TillSessionID != nil {
		sessionID = *input.TillSessionID
	} else if actor.TillSessionID != nil {
		sessionID = *actor.TillSessionID
	}
	if sessionID == uuid.Nil {
		return nil, fault.New(fault.KindTillNotOpen, "nenhuma sessão de caixa informada ou vinculada ao token")
	}

	session, err := store.GetTillSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fault.Newf(fault.KindTillNotOpen, "sessão de caixa %s não encontrada", sessionID)
		}
		return nil, err
	}
	if !session.IsOpen() {
		return nil, fault.New(fault.KindTillNotOpen, "a sessão de caixa já está fechada")
	}
	if session.StaffID != staff.ID && !s.authorizer.May(staff, authz.ActionTillManage, authz.TenantScope()) {
		return nil, fault.New(fault.KindTillBelongsToOther, "a sessão de caixa pertence a outro operador")
	}

	cashPaid, cashRefunded, err := store.SumTillCash(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	system := domain.RoundCurrency(session.OpeningAmount.Add(cashPaid).Sub(cashRefunded))
	declared := domain.RoundCurrency(input.DeclaredClosingAmount)
	variance := declared.Sub(system)
	now := time.Now().UTC()

	session.Status = domain.TillStatusClosed
	session.ClosedAt = &now
	session.DeclaredClosingAmount = &declared
	session.SystemClosingAmount = &system
	session.Variance = &variance
	if len(input.CashCounts) > 0 {
		session.CashCounts = input.CashCounts
	}
	if input.Notes != "" {
		session.Notes = input.Notes
	}

	if err := store.CloseTillSession(ctx, session); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, fault.New(fault.KindTillNotOpen, "a sessão de caixa já foi fechada por outro processo")
		}
		return nil, err
	}

	tokens, err := s.tokens.GenerateTokens(staff.ID, tenantKey, staff.Role, auth.SessionContext{})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TillSessions.WithLabelValues(session.BranchID.String()).Dec()
	}
	s.log.Info().
		Str("till_session_id", session.ID.String()).
		Str("variance", domain.MoneyString(variance)).
		Msg("caixa fechado")

	s.postflightClose(ctx, store, tenantKey, session, cashPaid, cashRefunded)

	return &TillCloseResult{Session: session, Variance: variance, Tokens: tokens}, nil
}

// postflightClose arquiva o relatório Z e dispara o alerta de variância;
// qualquer falha aqui é apenas registrada.
func (s *TillService) postflightClose(ctx context.Context, store TillStore, tenantKey string, session *domain.TillSession, cashPaid, cashRefunded decimal.Decimal) {
	report := TillZReport{
		SessionID:             session.ID,
		BranchID:              session.BranchID,
		StaffID:               session.StaffID,
		OpenedAt:              session.OpenedAt,
		ClosedAt:              *session.ClosedAt,
		OpeningAmount:         session.OpeningAmount,
		CashSales:             cashPaid,
		CashRefunds:           cashRefunded,
		SystemClosingAmount:   *session.SystemClosingAmount,
		DeclaredClosingAmount: *session.DeclaredClosingAmount,
		Variance:              *session.Variance,
	}

	branchCode := session.BranchID.String()
	if branch, err := store.GetBranch(ctx, session.BranchID); err == nil {
		branchCode = branch.Code
	}

	if s.archiver != nil {
		if path, err := s.archiver.UploadTillReport(ctx, tenantKey, branchCode, session.ID.String(), *session.ClosedAt, report); err != nil {
			s.log.Warn().Err(err).Str("till_session_id", session.ID.String()).Msg("falha ao arquivar relatório de caixa")
		} else {
			s.log.Debug().Str("path", path).Msg("relatório de caixa arquivado")
		}
	}

	if s.emitter != nil {
		s.emitter.Emit(ctx, tenantKey, events.EventTillClosed, report)
	}

	if s.notifier != nil && s.alertRecipient != "" && session.Variance.Abs().GreaterThan(s.varianceThreshold) {
		subject := fmt.Sprintf("Variância de caixa acima do limite na filial %s", branchCode)
		body := fmt.Sprintf(
			"Sessão %s fechada com variância %s (declarado %s, sistema %s).",
			session.ID,
			domain.MoneyString(*session.Variance),
			domain.MoneyString(*session.DeclaredClosingAmount),
			domain.MoneyString(*session.SystemClosingAmount),
		)
		if err := s.notifier.Send(s.alertRecipient, subject, body); err != nil {
			s.log.Warn().Err(err).Msg("falha ao enviar alerta de variância")
		}
	}
}
