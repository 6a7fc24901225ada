package http

import (
	"context"
	"sync"
	"time"

	"school-api/internal/domain"
	"school-api/internal/repository"
)

type mockUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]domain.User
	byEmail map[string]int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byID:    make(map[int64]domain.User),
		byEmail: make(map[string]int64),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return domain.User{}, repository.ErrDuplicateEmail
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user.ID
	return user, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.byEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) MarkVerified(_ context.Context, id int64) error {
	return m.update(id, func(u *domain.User) { u.IsVerified = true })
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, email, passwordHash string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.byEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	if err := m.update(id, func(u *domain.User) { u.PasswordHash = passwordHash }); err != nil {
		return domain.User{}, err
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) Approve(ctx context.Context, id int64) (domain.User, error) {
	if err := m.update(id, func(u *domain.User) { u.IsApproved = true }); err != nil {
		return domain.User{}, err
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) ListPendingApproval(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.byID[id]; ok && u.IsVerified && !u.IsApproved {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) update(id int64, fn func(u *domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&user)
	m.byID[id] = user
	return nil
}

type mockOTPRepo struct {
	mu   sync.Mutex
	rows []domain.OTP
}

func (m *mockOTPRepo) Create(_ context.Context, otp domain.OTP) (domain.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	otp.ID = int64(len(m.rows) + 1)
	otp.CreatedAt = time.Now().UTC()
	m.rows = append(m.rows, otp)
	return otp, nil
}

func (m *mockOTPRepo) latest(email string, purpose domain.OTPPurpose, now time.Time) int {
	for i := len(m.rows) - 1; i >= 0; i-- {
		r := m.rows[i]
		if r.Email == email && r.Purpose == purpose && !r.IsUsed && r.ExpiresAt.After(now) {
			return i
		}
	}
	return -1
}

func (m *mockOTPRepo) Consume(_ context.Context, email, code string, purpose domain.OTPPurpose, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.latest(email, purpose, now)
	if i < 0 || m.rows[i].Code != code {
		return false, nil
	}
	m.rows[i].IsUsed = true
	return true, nil
}

func (m *mockOTPRepo) Check(_ context.Context, email, code string, purpose domain.OTPPurpose, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.latest(email, purpose, now)
	return i >= 0 && m.rows[i].Code == code, nil
}

func (m *mockOTPRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (m *mockOTPRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type mockEmailSender struct {
	mu       sync.Mutex
	lastTo   string
	lastCode string
	err      error
}

func (m *mockEmailSender) SendOTP(_ context.Context, toEmail string, code string, _ domain.OTPPurpose, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = toEmail
	m.lastCode = code
	return m.err
}
