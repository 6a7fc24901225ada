package repository

import (
	"context"
	"time"

	"school-api/internal/domain"
)

// OTPRepository persiste códigos de un solo uso.
//
// Consume y Check sólo consideran el código más reciente, no usado y no
// expirado para (email, purpose); los códigos anteriores quedan inalcanzables.
type OTPRepository interface {
	Create(ctx context.Context, otp domain.OTP) (domain.OTP, error)
	Consume(ctx context.Context, email, code string, purpose domain.OTPPurpose, now time.Time) (bool, error)
	Check(ctx context.Context, email, code string, purpose domain.OTPPurpose, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type PgOTPRepository struct {
	db DBTX
}

func NewPgOTPRepository(db DBTX) *PgOTPRepository {
	return &PgOTPRepository{db: db}
}

func (r *PgOTPRepository) Create(ctx context.Context, otp domain.OTP) (domain.OTP, error) {
	const query = `
		INSERT INTO otps (email, otp, purpose, expires_at, is_used)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id, email, otp, purpose, expires_at, is_used, created_at
	`
	var o domain.OTP
	err := r.db.QueryRow(ctx, query,
		otp.Email,
		otp.Code,
		otp.Purpose,
		otp.ExpiresAt,
	).Scan(
		&o.ID,
		&o.Email,
		&o.Code,
		&o.Purpose,
		&o.ExpiresAt,
		&o.IsUsed,
		&o.CreatedAt,
	)
	if err != nil {
		return domain.OTP{}, mapError(err)
	}
	return o, nil
}

// Consume marca el código como usado en una sola sentencia. El FOR UPDATE
// serializa intentos concurrentes: el segundo ve is_used = TRUE y no afecta filas.
func (r *PgOTPRepository) Consume(ctx context.Context, email, code string, purpose domain.OTPPurpose, now time.Time) (bool, error) {
	const query = `
		UPDATE otps
		SET is_used = TRUE
		WHERE id = (
			SELECT id
			FROM otps
			WHERE email = $1 AND purpose = $2 AND is_used = FALSE AND expires_at > $3
			ORDER BY created_at DESC, id DESC
			LIMIT 1
			FOR UPDATE
		)
		AND otp = $4
		AND is_used = FALSE
	`
	tag, err := r.db.Exec(ctx, query, email, purpose, now, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgOTPRepository) Check(ctx context.Context, email, code string, purpose domain.OTPPurpose, now time.Time) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM (
				SELECT otp
				FROM otps
				WHERE email = $1 AND purpose = $2 AND is_used = FALSE AND expires_at > $3
				ORDER BY created_at DESC, id DESC
				LIMIT 1
			) latest
			WHERE latest.otp = $4
		)
	`
	var ok bool
	if err := r.db.QueryRow(ctx, query, email, purpose, now, code).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *PgOTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM otps WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
