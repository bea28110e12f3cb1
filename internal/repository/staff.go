package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/domain"
)

func (s *Store) CreateStaff(ctx context.Context, staff *domain.Staff) error {
	staff.ID = uuid.New()
	now := time.Now().UTC()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO staff (id, name, email, role, password_hash, pin_key, is_staff, active, branch_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		staff.ID,
		strings.TrimSpace(staff.Name),
		strings.TrimSpace(strings.ToLower(staff.Email)),
		staff.Role,
		staff.PasswordHash,
		staff.PinKey,
		staff.IsStaff,
		staff.Active,
		staff.BranchIDs,
		now,
		now,
	)

	return translateError(err)
}

func (s *Store) GetStaff(ctx context.Context, staffID uuid.UUID) (*domain.Staff, error) {
	return scanStaff(s.pool.QueryRow(ctx, `
		SELECT id, name, email, role, password_hash, pin_key, is_staff, active, branch_ids, created_at, updated_at
		FROM staff
		WHERE id = $1
	`, staffID))
}

func (s *Store) GetStaffByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	return scanStaff(s.pool.QueryRow(ctx, `
		SELECT id, name, email, role, password_hash, pin_key, is_staff, active, branch_ids, created_at, updated_at
		FROM staff
		WHERE email = $1
	`, strings.TrimSpace(strings.ToLower(email))))
}

// GetStaffByPinKey resolve o operador pelo HMAC determinístico do PIN; o índice
// único esparso em pin_key garante PIN único dentro do tenant.
func (s *Store) GetStaffByPinKey(ctx context.Context, pinKey string) (*domain.Staff, error) {
	return scanStaff(s.pool.QueryRow(ctx, `
		SELECT id, name, email, role, password_hash, pin_key, is_staff, active, branch_ids, created_at, updated_at
		FROM staff
		WHERE pin_key = $1
	`, pinKey))
}

func scanStaff(row pgx.Row) (*domain.Staff, error) {
	var staff domain.Staff
	err := row.Scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.Role,
		&staff.PasswordHash,
		&staff.PinKey,
		&staff.IsStaff,
		&staff.Active,
		&staff.BranchIDs,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &staff, nil
}

// SetStaffPinKey grava (ou limpa) a chave de PIN do operador.
func (s *Store) SetStaffPinKey(ctx context.Context, staffID uuid.UUID, pinKey *string) error {
	commandTag, err := s.pool.Exec(ctx, `
		UPDATE staff
		SET pin_key = $2, updated_at = $3
		WHERE id = $1
	`, staffID, pinKey, time.Now().UTC())
	if err != nil {
		return translateError(err)
	}
	if commandTag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows)
	}
	return nil
}

func (s *Store) UpdateStaff(ctx context.Context, staff *domain.Staff) error {
	staff.UpdatedAt = time.Now().UTC()

	commandTag, err := s.pool.Exec(ctx, `
		UPDATE staff
		SET name = $2,
			email = $3,
			role = $4,
			is_staff = $5,
			active = $6,
			branch_ids = $7,
			updated_at = $8
		WHERE id = $1
	`,
		staff.ID,
		strings.TrimSpace(staff.Name),
		strings.TrimSpace(strings.ToLower(staff.Email)),
		staff.Role,
		staff.IsStaff,
		staff.Active,
		staff.BranchIDs,
		staff.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}
	if commandTag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows)
	}

	return nil
}
