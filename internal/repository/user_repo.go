package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"school-api/internal/domain"
)

// UserRepository define el contrato de persistencia para cuentas.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	MarkVerified(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, email, passwordHash string) (domain.User, error)
	Approve(ctx context.Context, id int64) (domain.User, error)
	ListPendingApproval(ctx context.Context) ([]domain.User, error)
}

// PgUserRepository implementa UserRepository sobre Postgres.
type PgUserRepository struct {
	db DBTX
}

func NewPgUserRepository(db DBTX) *PgUserRepository {
	return &PgUserRepository{db: db}
}

const userColumns = `id, name, email, phone_number, password_hash, role, is_verified, is_approved, created_at, updated_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PhoneNumber,
		&u.PasswordHash,
		&u.Role,
		&u.IsVerified,
		&u.IsApproved,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapError(err)
	}
	return u, nil
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const query = `
		INSERT INTO users (name, email, phone_number, password_hash, role, is_verified, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PhoneNumber,
		user.PasswordHash,
		user.Role,
		user.IsVerified,
		user.IsApproved,
	))
}

func (r *PgUserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) MarkVerified(ctx context.Context, id int64) error {
	const query = `
		UPDATE users
		SET is_verified = TRUE, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword devuelve ErrNotFound cuando ningún registro fue modificado.
func (r *PgUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) (domain.User, error) {
	const query = `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE email = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, email, passwordHash))
}

func (r *PgUserRepository) Approve(ctx context.Context, id int64) (domain.User, error) {
	const query = `
		UPDATE users
		SET is_approved = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) ListPendingApproval(ctx context.Context) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE is_verified = TRUE AND is_approved = FALSE
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
