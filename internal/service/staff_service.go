package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/auth"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/authz"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
)

// StaffStore é a fatia do repositório usada pela gestão de operadores.
type StaffStore interface {
	GetStaff(ctx context.Context, id uuid.UUID) (*domain.Staff, error)
	CreateStaff(ctx context.Context, staff *domain.Staff) error
	UpdateStaff(ctx context.Context, staff *domain.Staff) error
	SetStaffPinKey(ctx context.Context, staffID uuid.UUID, pinKey *string) error
}

// StaffService administra operadores do tenant: papéis, filiais e PIN.
type StaffService struct {
	authorizer authz.Authorizer
	main       *repository.MainStore
	pepper     string
	pinPepper  string
	log        zerolog.Logger
}

func NewStaffService(authorizer authz.Authorizer, main *repository.MainStore, pepper, pinPepper string, log zerolog.Logger) *StaffService {
	return &StaffService{authorizer: authorizer, main: main, pepper: pepper, pinPepper: pinPepper, log: log}
}

// CreateStaffInput descreve um novo operador.
type CreateStaffInput struct {
	Name      string
	Email     string
	Role      string
	Password  string
	IsStaff   bool
	BranchIDs []uuid.UUID
}

// Create cria um operador e registra o e-mail no diretório principal.
func (s *StaffService) Create(ctx context.Context, store StaffStore, tenantKey string, actorID uuid.UUID, input *CreateStaffInput) (*domain.Staff, error) {
	actor, err := store.GetStaff(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !s.authorizer.May(actor, authz.ActionStaffManage, authz.TenantScope()) {
		return nil, fault.New(fault.KindPermissionDenied, "sem permissão para gerenciar operadores")
	}

	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, ValidationError("nome e e-mail são obrigatórios")
	}
	switch input.Role {
	case domain.RoleOwner, domain.RoleManager, domain.RoleCashier:
	default:
		return nil, ValidationErrorf("papel desconhecido: %s", input.Role)
	}

	hash, err := auth.HashPassword(strings.TrimSpace(input.Password), s.pepper)
	if err != nil {
		return nil, err
	}

	staff := &domain.Staff{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Role:         input.Role,
		PasswordHash: hash,
		IsStaff:      input.IsStaff,
		Active:       true,
		BranchIDs:    input.BranchIDs,
	}
	if err := store.CreateStaff(ctx, staff); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fault.Newf(fault.KindConflict, "e-mail %s já cadastrado", staff.Email)
		}
		return nil, err
	}

	if s.main != nil {
		if err := s.main.UpsertDirectoryEntry(ctx, staff.Email, tenantKey); err != nil {
			s.log.Warn().Err(err).Str("email", staff.Email).Msg("falha ao registrar no diretório principal")
		}
	}

	s.log.Info().Str("staff_id", staff.ID.String()).Str("role", staff.Role).Msg("operador criado")
	return staff, nil
}

// SetPin define o PIN de um operador; exige staff.manage e PIN de 4 a 8 dígitos.
// A chave derivada é única no tenant: colisão de PIN entre operadores é rejeitada.
func (s *StaffService) SetPin(ctx context.Context, store StaffStore, actorID, staffID uuid.UUID, pin string) error {
	actor, err := store.GetStaff(ctx, actorID)
	if err != nil {
		return err
	}
	if !s.authorizer.May(actor, authz.ActionStaffManage, authz.TenantScope()) {
		return fault.New(fault.KindPermissionDenied, "sem permissão para gerenciar operadores")
	}

	if !auth.IsValidPin(pin) {
		return ValidationError("PIN deve ter de 4 a 8 dígitos")
	}
	target, err := store.GetStaff(ctx, staffID)
	if err != nil {
		return err
	}
	if !target.IsStaff {
		return fault.New(fault.KindNotStaff, "PIN só pode ser atribuído a operadores")
	}

	key := auth.PinKey(pin, s.pinPepper)
	if err := store.SetStaffPinKey(ctx, staffID, &key); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fault.New(fault.KindConflict, "PIN já está em uso por outro operador")
		}
		return err
	}

	s.log.Info().Str("staff_id", staffID.String()).Msg("PIN atualizado")
	return nil
}

// ClearPin remove o PIN do operador.
func (s *StaffService) ClearPin(ctx context.Context, store StaffStore, actorID, staffID uuid.UUID) error {
	actor, err := store.GetStaff(ctx, actorID)
	if err != nil {
		return err
	}
	if !s.authorizer.May(actor, authz.ActionStaffManage, authz.TenantScope()) {
		return fault.New(fault.KindPermissionDenied, "sem permissão para gerenciar operadores")
	}
	return store.SetStaffPinKey(ctx, staffID, nil)
}

// Deactivate suspende a conta do operador.
func (s *StaffService) Deactivate(ctx context.Context, store StaffStore, actorID, staffID uuid.UUID) error {
	actor, err := store.GetStaff(ctx, actorID)
	if err != nil {
		return err
	}
	if !s.authorizer.May(actor, authz.ActionStaffManage, authz.TenantScope()) {
		return fault.New(fault.KindPermissionDenied, "sem permissão para gerenciar operadores")
	}

	target, err := store.GetStaff(ctx, staffID)
	if err != nil {
		return err
	}
	target.Active = false
	return store.UpdateStaff(ctx, target)
}
