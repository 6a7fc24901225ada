package repository

import (
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"school-api/internal/domain"
)

func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("pgxmock.NewPool error: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func expectationsMet(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

var userRowColumns = []string{
	"id", "name", "email", "phone_number", "password_hash", "role",
	"is_verified", "is_approved", "created_at", "updated_at",
}

func userRow(rows *pgxmock.Rows, u domain.User) *pgxmock.Rows {
	return rows.AddRow(
		u.ID,
		u.Name,
		u.Email,
		u.PhoneNumber,
		u.PasswordHash,
		u.Role,
		u.IsVerified,
		u.IsApproved,
		u.CreatedAt,
		u.UpdatedAt,
	)
}

func sampleUser() domain.User {
	phone := "9800000000"
	ts := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return domain.User{
		ID:           7,
		Name:         "Alice",
		Email:        "a@x.com",
		PhoneNumber:  &phone,
		PasswordHash: "$2a$10$hash",
		Role:         domain.RoleParent,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
}
