package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/auth"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/authz"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
)

type tillFixture struct {
	store    *stubTillStore
	svc      *TillService
	staff    *domain.Staff
	other    *domain.Staff
	branch   *domain.Branch
	terminal *domain.PosTerminal
}

func newTillFixture() *tillFixture {
	store := newStubTillStore()

	branch := &domain.Branch{
		ID:       uuid.New(),
		Code:     "B1",
		Currency: "SAR",
		Tax:      domain.TaxConfig{Mode: domain.TaxModeExclusive, Rate: dec("15")},
		Active:   true,
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
	other := &domain.Staff{
		ID:        uuid.New(),
		Name:      "Cashier B",
		Role:      domain.RoleCashier,
		IsStaff:   true,
		Active:    true,
		BranchIDs: []uuid.UUID{branch.ID},
	}
	store.staff[staff.ID] = staff
	store.staff[other.ID] = other

	terminal := &domain.PosTerminal{
		ID:        uuid.New(),
		BranchID:  branch.ID,
		MachineID: "T1",
		Status:    domain.TerminalStatusActive,
	}
	store.terminals[terminal.ID] = terminal

	tokens := auth.NewManager("test-secret", "pdv-test", time.Hour, 24*time.Hour)
	svc := NewTillService(authz.NewRoleAuthorizer(), tokens, nil, nil, nil, nil, dec("5"), "", zerolog.Nop())

	return &tillFixture{store: store, svc: svc, staff: staff, other: other, branch: branch, terminal: terminal}
}

func (fx *tillFixture) openInput() *TillOpenInput {
	return &TillOpenInput{
		BranchID:      fx.branch.ID,
		PosTerminalID: fx.terminal.ID,
		OpeningAmount: dec("200.00"),
	}
}

func TestTillOpenEmbedsSessionInToken(t *testing.T) {
	fx := newTillFixture()

	result, err := fx.svc.Open(context.Background(), fx.store, "macd", Actor{StaffID: fx.staff.ID}, fx.openInput())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if result.Session.Status != domain.TillStatusOpen {
		t.Fatalf("expected open session")
	}

	claims, err := auth.NewManager("test-secret", "pdv-test", time.Hour, 24*time.Hour).ValidateToken(result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("token validation failed: %v", err)
	}
	if claims.TillSessionID == nil || *claims.TillSessionID != result.Session.ID {
		t.Fatalf("expected till session embedded in the token")
	}
}

func TestTillOpenRejectsSecondSession(t *testing.T) {
	fx := newTillFixture()
	ctx := context.Background()

	if _, err := fx.svc.Open(ctx, fx.store, "macd", Actor{StaffID: fx.staff.ID}, fx.openInput()); err != nil {
		t.Fatalf("first open returned error: %v", err)
	}

	t.Run("same cashier", func(t *testing.T) {
		_, err := fx.svc.Open(ctx, fx.store, "macd", Actor{StaffID: fx.staff.ID}, fx.openInput())
		if !fault.IsKind(err, fault.KindTillAlreadyOpen) {
			t.Fatalf("expected TillAlreadyOpen, got %v", err)
		}
	})

	t.Run("other cashier", func(t *testing.T) {
		_, err := fx.svc.Open(ctx, fx.store, "macd", Actor{StaffID: fx.other.ID}, fx.openInput())
		if !fault.IsKind(err, fault.KindTillAlreadyOpen) {
			t.Fatalf("expected TillAlreadyOpen, got %v", err)
		}
	})
}

func TestTillOpenTerminalInactive(t *testing.T) {
	fx := newTillFixture()
	fx.terminal.Status = domain.TerminalStatusRetired

	_, err := fx.svc.Open(context.Background(), fx.store, "macd", Actor{StaffID: fx.staff.ID}, fx.openInput())
	if !fault.IsKind(err, fault.KindTerminalInactive) {
		t.Fatalf("expected TerminalInactive, got %v", err)
	}
}

func TestTillCloseVariance(t *testing.T) {
	fx := newTillFixture()
	ctx := context.Background()

	opened, err := fx.svc.Open(ctx, fx.store, "macd", Actor{StaffID: fx.staff.ID}, fx.openInput())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	// pedidos em dinheiro somando 450.00 pagos na sessão
	fx.store.cashPaid[opened.Session.ID] = dec("450.00")

	result, err := fx.svc.Close(ctx, fx.store, "macd", Actor{StaffID: fx.staff.ID, TillSessionID: &opened.Session.ID}, &TillCloseInput{
		DeclaredClosingAmount: dec("640.00"),
	})
	if err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	assertDecEq(t, "650.00", *result.Session.SystemClosingAmount)
	assertDecEq(t, "-10.00", result.Variance)
	if result.Session.Status != domain.TillStatusClosed {
		t.Fatalf("expected session sealed")
	}

	claims, err := auth.NewManager("test-secret", "pdv-test", time.Hour, 24*time.Hour).ValidateToken(result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("token validation failed: %v", err)
	}
	if claims.TillSessionID != nil {
		t.Fatalf("closing must issue a token without till binding")
	}

	// fechar de novo falha: a sessão está selada
	_, err = fx.svc.Close(ctx, fx.store, "macd", Actor{StaffID: fx.staff.ID, TillSessionID: &opened.Session.ID}, &TillCloseInput{
		DeclaredClosingAmount: dec("640.00"),
	})
	if !fault.IsKind(err, fault.KindTillNotOpen) {
		t.Fatalf("expected TillNotOpen on double close, got %v", err)
	}
}

func TestTillCloseSubtractsRefunds(t *testing.T) {
	fx := newTillFixture()
	ctx := context.Background()

	opened, err := fx.svc.Open(ctx, fx.store, "macd", Actor{StaffID: fx.staff.ID}, fx.openInput())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	fx.store.cashPaid[opened.Session.ID] = dec("450.00")
	fx.store.cashRefunded[opened.Session.ID] = dec("50.00")

	result, err := fx.svc.Close(ctx, fx.store, "macd", Actor{StaffID: fx.staff.ID, TillSessionID: &opened.Session.ID}, &TillCloseInput{
		DeclaredClosingAmount: dec("600.00"),
	})
	if err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	assertDecEq(t, "600.00", *result.Session.SystemClosingAmount)
	assertDecEq(t, "0.00", result.Variance)
}

func TestTillCloseBelongsToOther(t *testing.T) {
	fx := newTillFixture()
	ctx := context.Background()

	opened, err := fx.svc.Open(ctx, fx.store, "macd", Actor{StaffID: fx.staff.ID}, fx.openInput())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	_, err = fx.svc.Close(ctx, fx.store, "macd", Actor{StaffID: fx.other.ID, TillSessionID: &opened.Session.ID}, &TillCloseInput{
		DeclaredClosingAmount: dec("200.00"),
	})
	if !fault.IsKind(err, fault.KindTillBelongsToOther) {
		t.Fatalf("expected TillBelongsToOther, got %v", err)
	}
}

// stubTillStore simula o repositório de caixa em memória, incluindo o índice
// parcial único de sessão aberta por terminal.
type stubTillStore struct {
	staff        map[uuid.UUID]*domain.Staff
	branches     map[uuid.UUID]*domain.Branch
	terminals    map[uuid.UUID]*domain.PosTerminal
	sessions     map[uuid.UUID]*domain.TillSession
	cashPaid     map[uuid.UUID]decimal.Decimal
	cashRefunded map[uuid.UUID]decimal.Decimal
}

func newStubTillStore() *stubTillStore {
	return &stubTillStore{
		staff:        make(map[uuid.UUID]*domain.Staff),
		branches:     make(map[uuid.UUID]*domain.Branch),
		terminals:    make(map[uuid.UUID]*domain.PosTerminal),
		sessions:     make(map[uuid.UUID]*domain.TillSession),
		cashPaid:     make(map[uuid.UUID]decimal.Decimal),
		cashRefunded: make(map[uuid.UUID]decimal.Decimal),
	}
}

func (s *stubTillStore) GetStaff(_ context.Context, id uuid.UUID) (*domain.Staff, error) {
	staff, ok := s.staff[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return staff, nil
}

func (s *stubTillStore) GetBranch(_ context.Context, id uuid.UUID) (*domain.Branch, error) {
	branch, ok := s.branches[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return branch, nil
}

func (s *stubTillStore) GetPosTerminal(_ context.Context, id uuid.UUID) (*domain.PosTerminal, error) {
	terminal, ok := s.terminals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return terminal, nil
}

func (s *stubTillStore) CreateTillSession(_ context.Context, session *domain.TillSession) error {
	for _, existing := range s.sessions {
		if existing.BranchID == session.BranchID && existing.IsOpen() &&
			existing.PosTerminalID != nil && session.PosTerminalID != nil &&
			*existing.PosTerminalID == *session.PosTerminalID {
			return repository.ErrConflict
		}
	}
	session.ID = uuid.New()
	s.sessions[session.ID] = session
	return nil
}

// Leituras devolvem cópias: a guarda de status do fechamento compara contra o
// estado armazenado, como a cláusula WHERE do repositório real.
func (s *stubTillStore) GetTillSession(_ context.Context, id uuid.UUID) (*domain.TillSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *stubTillStore) FindOpenTillSession(_ context.Context, branchID uuid.UUID, terminalID *uuid.UUID) (*domain.TillSession, error) {
	for _, session := range s.sessions {
		if session.BranchID != branchID || !session.IsOpen() {
			continue
		}
		if terminalID != nil && session.PosTerminalID != nil && *terminalID == *session.PosTerminalID {
			cp := *session
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubTillStore) CloseTillSession(_ context.Context, session *domain.TillSession) error {
	stored, ok := s.sessions[session.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if !stored.IsOpen() {
		return repository.ErrStaleState
	}
	*stored = *session
	return nil
}

func (s *stubTillStore) SumTillCash(_ context.Context, sessionID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	return s.cashPaid[sessionID], s.cashRefunded[sessionID], nil
}

var _ TillStore = (*stubTillStore)(nil)
