package services_test

import (
	"context"
	"errors"
	"sync"

	"github.com/kenlin2709/va/clients"
	"github.com/kenlin2709/va/models"
)

// --- In-memory cart repository ---

type memoryCartRepo struct {
	mu       sync.Mutex
	lines    map[string][]models.CartLine
	saves    int
	failSave bool
	failGet  bool
}

func newMemoryCartRepo() *memoryCartRepo {
	return &memoryCartRepo{lines: make(map[string][]models.CartLine)}
}

func (m *memoryCartRepo) GetLines(_ context.Context, sessionID string) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, errors.New("storage unavailable")
	}
	stored := m.lines[sessionID]
	out := make([]models.CartLine, len(stored))
	copy(out, stored)
	return out, nil
}

func (m *memoryCartRepo) SaveLines(_ context.Context, sessionID string, lines []models.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.failSave {
		return errors.New("storage unavailable")
	}
	stored := make([]models.CartLine, len(lines))
	copy(stored, lines)
	m.lines[sessionID] = stored
	return nil
}

func (m *memoryCartRepo) DeleteLines(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lines, sessionID)
	return nil
}

// --- In-memory token repository ---

type memoryTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[string]string)}
}

func (m *memoryTokenRepo) GetToken(_ context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[sessionID], nil
}

func (m *memoryTokenRepo) SaveToken(_ context.Context, sessionID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[sessionID] = token
	return nil
}

func (m *memoryTokenRepo) DeleteToken(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, sessionID)
	return nil
}

// --- Mock auth collaborator ---

type mockAuthAPI struct {
	mu            sync.Mutex
	registerFn    func(req models.RegisterRequest) (*models.AuthResponse, error)
	loginFn       func(email, password string) (*models.AuthResponse, error)
	meFn          func(token string) (*models.Customer, error)
	emailExistsFn func(email string) (bool, error)
	sendFn        func(email string) error
	verifyFn      func(email, code string) (string, error)

	registerCalls int
	sendCalls     int
	probeCalls    int
}

func (m *mockAuthAPI) Register(_ context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	m.mu.Lock()
	m.registerCalls++
	fn := m.registerFn
	m.mu.Unlock()
	if fn == nil {
		return nil, errors.New("register not configured")
	}
	return fn(req)
}

func (m *mockAuthAPI) Login(_ context.Context, email, password string) (*models.AuthResponse, error) {
	if m.loginFn == nil {
		return nil, errors.New("login not configured")
	}
	return m.loginFn(email, password)
}

func (m *mockAuthAPI) Me(_ context.Context, token string) (*models.Customer, error) {
	if m.meFn == nil {
		return nil, errors.New("me not configured")
	}
	return m.meFn(token)
}

func (m *mockAuthAPI) UpdateMe(_ context.Context, _ string, req models.UpdateProfileRequest) (*models.Customer, error) {
	return &models.Customer{ID: "me", FirstName: req.FirstName, LastName: req.LastName}, nil
}

func (m *mockAuthAPI) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	m.probeCalls++
	fn := m.emailExistsFn
	m.mu.Unlock()
	if fn == nil {
		return false, nil
	}
	return fn(email)
}

func (m *mockAuthAPI) SendVerification(_ context.Context, email string) error {
	m.mu.Lock()
	m.sendCalls++
	fn := m.sendFn
	m.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(email)
}

func (m *mockAuthAPI) VerifyCode(_ context.Context, email, code string) (string, error) {
	if m.verifyFn == nil {
		return "verification-token", nil
	}
	return m.verifyFn(email, code)
}

// --- Mock orders collaborator ---

type mockOrdersAPI struct {
	mu       sync.Mutex
	createFn func(token string, req models.CreateOrderRequest) (*models.Order, error)
	created  []models.CreateOrderRequest
}

func (m *mockOrdersAPI) Create(_ context.Context, token string, req models.CreateOrderRequest) (*models.Order, error) {
	m.mu.Lock()
	m.created = append(m.created, req)
	fn := m.createFn
	m.mu.Unlock()
	if fn == nil {
		return nil, errors.New("create not configured")
	}
	return fn(token, req)
}

func (m *mockOrdersAPI) ListMine(_ context.Context, _ string) ([]models.Order, error) {
	return nil, nil
}

func (m *mockOrdersAPI) GetMine(_ context.Context, _, _ string) (*models.Order, error) {
	return nil, errors.New("not found")
}

func (m *mockOrdersAPI) createCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

// --- Mock coupons collaborator ---

type mockCouponsAPI struct {
	coupons []models.Coupon
}

func (m *mockCouponsAPI) ListMine(_ context.Context, _ string) ([]models.Coupon, error) {
	return m.coupons, nil
}

func (m *mockCouponsAPI) Validate(_ context.Context, _ string) (*clients.CouponValidation, error) {
	return nil, errors.New("not used")
}
