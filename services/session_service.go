package services

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/kenlin2709/va/clients"
	"github.com/kenlin2709/va/models"
	"github.com/kenlin2709/va/repository"
)

// SessionService caches the bearer token and customer identity for each
// session. Only the token is persisted durably; the customer record is
// re-fetched on demand. Invariant: customer is never set while the token is
// empty.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*sessionState
	tokens   repository.TokenRepository
	auth     clients.AuthAPI
	logger   *zap.Logger
}

type sessionState struct {
	token    string
	customer *models.Customer
	loaded   bool
}

func NewSessionService(tokens repository.TokenRepository, auth clients.AuthAPI, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions: make(map[string]*sessionState),
		tokens:   tokens,
		auth:     auth,
		logger:   logger,
	}
}

// state rehydrates the token from durable storage on first touch.
func (s *SessionService) state(ctx context.Context, sessionID string) *sessionState {
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &sessionState{}
		s.sessions[sessionID] = sess
	}
	if !sess.loaded {
		token, err := s.tokens.GetToken(ctx, sessionID)
		if err != nil {
			s.logger.Warn("token load failed", zap.String("session_id", sessionID), zap.Error(err))
		} else {
			sess.token = token
		}
		sess.loaded = true
	}
	return sess
}

// Login authenticates against the auth backend. On failure the cache is left
// unchanged and the error propagates.
func (s *SessionService) Login(ctx context.Context, sessionID, email, password string) (*models.Customer, *ServiceError) {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, &ServiceError{
			StatusCode: statusOf(err, http.StatusUnauthorized),
			Message:    clients.Message(err, "Invalid email or password"),
		}
	}
	s.establish(ctx, sessionID, res)
	return res.Customer, nil
}

// Register creates an account against the auth backend and establishes the
// session on success.
func (s *SessionService) Register(ctx context.Context, sessionID string, req models.RegisterRequest) (*models.Customer, *ServiceError) {
	res, err := s.auth.Register(ctx, req)
	if err != nil {
		svcErr := &ServiceError{
			StatusCode: statusOf(err, http.StatusBadGateway),
			Message:    clients.Message(err, "Registration failed. Please try again."),
		}
		if clients.IsConflict(err) || containsAlreadyRegistered(err.Error()) {
			svcErr.StatusCode = http.StatusConflict
			svcErr.Reason = ReasonLoginRequired
		}
		return nil, svcErr
	}
	s.establish(ctx, sessionID, res)
	return res.Customer, nil
}

func (s *SessionService) establish(ctx context.Context, sessionID string, res *models.AuthResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.state(ctx, sessionID)
	sess.token = res.AccessToken
	sess.customer = res.Customer

	if err := s.tokens.SaveToken(ctx, sessionID, res.AccessToken); err != nil {
		s.logger.Warn("token persist failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// IsAuthenticated reports whether a token is present for the session.
func (s *SessionService) IsAuthenticated(ctx context.Context, sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(ctx, sessionID).token != ""
}

// Token returns the session's bearer token, or "".
func (s *SessionService) Token(ctx context.Context, sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(ctx, sessionID).token
}

// Customer returns the cached identity without hitting the network.
func (s *SessionService) Customer(ctx context.Context, sessionID string) *models.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(ctx, sessionID).customer
}

// HydrateCustomer fetches the identity for the stored token. Any failure is
// treated as an invalid token and logs the session out; hydration never
// surfaces an error to the caller.
func (s *SessionService) HydrateCustomer(ctx context.Context, sessionID string) *models.Customer {
	s.mu.Lock()
	token := s.state(ctx, sessionID).token
	s.mu.Unlock()

	if token == "" {
		return nil
	}
	if tokenExpired(token) {
		s.Logout(ctx, sessionID)
		return nil
	}

	customer, err := s.auth.Me(ctx, token)
	if err != nil {
		s.logger.Info("identity hydration failed, logging out",
			zap.String("session_id", sessionID), zap.Error(err))
		s.Logout(ctx, sessionID)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.state(ctx, sessionID)
	if sess.token == "" {
		// logged out while the fetch was in flight
		return nil
	}
	sess.customer = customer
	return customer
}

// UpdateProfile patches the customer record and refreshes the cache.
func (s *SessionService) UpdateProfile(ctx context.Context, sessionID string, req models.UpdateProfileRequest) (*models.Customer, *ServiceError) {
	token := s.Token(ctx, sessionID)
	if token == "" {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Not logged in"}
	}

	customer, err := s.auth.UpdateMe(ctx, token, req)
	if err != nil {
		return nil, &ServiceError{
			StatusCode: statusOf(err, http.StatusBadGateway),
			Message:    clients.Message(err, "Failed to update profile"),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.state(ctx, sessionID)
	if sess.token != "" {
		sess.customer = customer
	}
	return customer, nil
}

// Logout clears the in-memory token and identity and removes the durable
// token record.
func (s *SessionService) Logout(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.state(ctx, sessionID)
	sess.token = ""
	sess.customer = nil

	if err := s.tokens.DeleteToken(ctx, sessionID); err != nil {
		s.logger.Warn("token delete failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// tokenExpired inspects the bearer token's exp claim without verifying the
// signature (issuance and verification belong to the auth backend). An
// unparsable token is left for the backend to reject.
func tokenExpired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now())
}

func statusOf(err error, fallback int) int {
	if apiErr, ok := err.(*clients.APIError); ok && apiErr.StatusCode != 0 {
		return apiErr.StatusCode
	}
	return fallback
}
