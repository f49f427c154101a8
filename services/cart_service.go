package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/kenlin2709/va/models"
	"github.com/kenlin2709/va/repository"
)

// CartService owns the cart line list for each session. The in-memory state
// is authoritative; every mutation re-serializes the full list to durable
// storage best-effort, and storage failures are swallowed.
type CartService struct {
	mu     sync.Mutex
	carts  map[string]*cartState
	repo   repository.CartRepository
	logger *zap.Logger
}

type cartState struct {
	lines []models.CartLine
	open  bool
}

func NewCartService(repo repository.CartRepository, logger *zap.Logger) *CartService {
	return &CartService{
		carts:  make(map[string]*cartState),
		repo:   repo,
		logger: logger,
	}
}

// state loads the cart from durable storage on first touch, dropping
// malformed entries rather than failing the whole load.
func (s *CartService) state(ctx context.Context, sessionID string) *cartState {
	if cart, ok := s.carts[sessionID]; ok {
		return cart
	}

	cart := &cartState{}
	lines, err := s.repo.GetLines(ctx, sessionID)
	if err != nil {
		s.logger.Warn("cart load failed", zap.String("session_id", sessionID), zap.Error(err))
	} else {
		cart.lines = sanitizeLines(lines)
	}
	s.carts[sessionID] = cart
	return cart
}

func sanitizeLines(lines []models.CartLine) []models.CartLine {
	var clean []models.CartLine
	for _, l := range lines {
		if l.ID == "" || l.Title == "" {
			continue
		}
		if l.Price < 0 {
			l.Price = 0
		}
		if l.Qty < 1 {
			l.Qty = 1
		}
		clean = append(clean, l)
	}
	return clean
}

func (s *CartService) persist(ctx context.Context, sessionID string, cart *cartState) {
	if err := s.repo.SaveLines(ctx, sessionID, cart.lines); err != nil {
		s.logger.Warn("cart persist failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// Add merges the item into the cart: an existing line's quantity is
// incremented, otherwise a new line is appended. Adding opens the cart
// drawer.
func (s *CartService) Add(ctx context.Context, sessionID string, item models.CartLine, qty int) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.state(ctx, sessionID)
	merged := false
	for i := range cart.lines {
		if cart.lines[i].ID == item.ID {
			cart.lines[i].Qty += qty
			merged = true
			break
		}
	}
	if !merged {
		item.Qty = qty
		cart.lines = append(cart.lines, item)
	}
	cart.open = true
	s.persist(ctx, sessionID, cart)
}

// SetQuantity sets a line's quantity, floored at 1. Removal is explicit, so
// a quantity of zero never deletes the line. No-op when the id is absent.
func (s *CartService) SetQuantity(ctx context.Context, sessionID, id string, qty int) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.state(ctx, sessionID)
	for i := range cart.lines {
		if cart.lines[i].ID == id {
			cart.lines[i].Qty = qty
			s.persist(ctx, sessionID, cart)
			return
		}
	}
}

// Increment bumps a line's quantity by one.
func (s *CartService) Increment(ctx context.Context, sessionID, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.state(ctx, sessionID)
	for i := range cart.lines {
		if cart.lines[i].ID == id {
			cart.lines[i].Qty++
			s.persist(ctx, sessionID, cart)
			return
		}
	}
}

// Decrement lowers a line's quantity by one, floored at 1.
func (s *CartService) Decrement(ctx context.Context, sessionID, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.state(ctx, sessionID)
	for i := range cart.lines {
		if cart.lines[i].ID == id {
			if cart.lines[i].Qty > 1 {
				cart.lines[i].Qty--
			}
			s.persist(ctx, sessionID, cart)
			return
		}
	}
}

// Remove deletes the line if present.
func (s *CartService) Remove(ctx context.Context, sessionID, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.state(ctx, sessionID)
	for i := range cart.lines {
		if cart.lines[i].ID == id {
			cart.lines = append(cart.lines[:i], cart.lines[i+1:]...)
			s.persist(ctx, sessionID, cart)
			return
		}
	}
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.state(ctx, sessionID)
	cart.lines = nil
	s.persist(ctx, sessionID, cart)
}

// Lines returns a copy of the current line list.
func (s *CartService) Lines(ctx context.Context, sessionID string) []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.state(ctx, sessionID)
	lines := make([]models.CartLine, len(cart.lines))
	copy(lines, cart.lines)
	return lines
}

// Snapshot returns the cart with its derived count and subtotal.
func (s *CartService) Snapshot(ctx context.Context, sessionID string) models.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.state(ctx, sessionID)
	lines := make([]models.CartLine, len(cart.lines))
	copy(lines, cart.lines)
	return models.CartSummary{
		Lines:    lines,
		Count:    models.CartCount(lines),
		Subtotal: models.CartSubtotal(lines),
		Open:     cart.open,
	}
}

// Open marks the cart drawer as open.
func (s *CartService) Open(ctx context.Context, sessionID string) {
	s.setOpen(ctx, sessionID, true)
}

// Close marks the cart drawer as closed.
func (s *CartService) Close(ctx context.Context, sessionID string) {
	s.setOpen(ctx, sessionID, false)
}

// Toggle flips the cart drawer.
func (s *CartService) Toggle(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.state(ctx, sessionID)
	cart.open = !cart.open
}

func (s *CartService) setOpen(ctx context.Context, sessionID string, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(ctx, sessionID).open = open
}
