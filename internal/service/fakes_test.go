package service

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
	err     error

	markVerifiedErr error
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
	if m.err != nil {
		return domain.User{}, m.err
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return domain.User{}, repository.ErrDuplicateEmail
	}
	m.nextID++
	now := time.Now().UTC()
	user.ID = m.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user.ID
	return user, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.User{}, m.err
	}
	user, ok := m.byID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.byEmail[email]
	err := m.err
	m.mu.Unlock()
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) MarkVerified(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markVerifiedErr != nil {
		return m.markVerifiedErr
	}
	user, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsVerified = true
	m.byID[id] = user
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, email, passwordHash string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	user := m.byID[id]
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	m.byID[id] = user
	return user, nil
}

func (m *mockUserRepo) Approve(_ context.Context, id int64) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	user.IsApproved = true
	m.byID[id] = user
	return user, nil
}

func (m *mockUserRepo) ListPendingApproval(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for id := int64(1); id <= m.nextID; id++ {
		u, ok := m.byID[id]
		if ok && u.IsVerified && !u.IsApproved {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// mockOTPRepo reproduce la semántica de PgOTPRepository bajo un mutex.
type mockOTPRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []domain.OTP
}

func newMockOTPRepo() *mockOTPRepo {
	return &mockOTPRepo{}
}

func (m *mockOTPRepo) Create(_ context.Context, otp domain.OTP) (domain.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	otp.ID = m.nextID
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
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	var deleted int64
	for _, r := range m.rows {
		if r.ExpiresAt.After(now) {
			kept = append(kept, r)
			continue
		}
		deleted++
	}
	m.rows = kept
	return deleted, nil
}

func (m *mockOTPRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type mockEmailSender struct {
	mu          sync.Mutex
	lastTo      string
	lastCode    string
	lastPurpose domain.OTPPurpose
	lastExpires time.Time
	sent        int
	err         error
}

func (m *mockEmailSender) SendOTP(_ context.Context, toEmail string, code string, purpose domain.OTPPurpose, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = toEmail
	m.lastCode = code
	m.lastPurpose = purpose
	m.lastExpires = expiresAt
	m.sent++
	return m.err
}

type mockLimiter struct {
	allow bool
	keys  []string
}

func (m *mockLimiter) Allow(_ context.Context, key string) bool {
	m.keys = append(m.keys, key)
	return m.allow
}
