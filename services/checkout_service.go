package services

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kenlin2709/va/clients"
	"github.com/kenlin2709/va/models"
)

const (
	// verificationCooldown is the resend gate, in seconds.
	verificationCooldown = 60
	// probeDebounce is the quiet period before the email-exists lookup fires.
	probeDebounce = 450 * time.Millisecond
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	codePattern  = regexp.MustCompile(`^\d{6}$`)
	// persisted catalog ids are 24-char hex; anything else is a demo-catalog
	// leftover that the orders backend would reject
	productIDPattern = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)
)

// CheckoutService coordinates the guest verification wizard, coupon
// selection, and order submission for each session. Authenticated customers
// bypass the wizard entirely.
type CheckoutService struct {
	mu       sync.Mutex
	sessions map[string]*checkoutState

	cart    *CartService
	session *SessionService
	auth    clients.AuthAPI
	orders  clients.OrdersAPI
	coupons clients.CouponsAPI
	logger  *zap.Logger

	// cooldownTick is how often the resend countdown decrements; one second
	// in production, shortened in tests.
	cooldownTick time.Duration
}

type checkoutState struct {
	step              models.VerificationStep
	email             string
	verificationToken string
	cooldown          int
	cooldownStop      chan struct{}
	probe             *EmailProbe
	selected          []models.Coupon
	submitting        bool
}

func NewCheckoutService(
	cart *CartService,
	session *SessionService,
	auth clients.AuthAPI,
	orders clients.OrdersAPI,
	coupons clients.CouponsAPI,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		sessions:     make(map[string]*checkoutState),
		cart:         cart,
		session:      session,
		auth:         auth,
		orders:       orders,
		coupons:      coupons,
		logger:       logger,
		cooldownTick: time.Second,
	}
}

// state must be called with s.mu held.
func (s *CheckoutService) state(sessionID string) *checkoutState {
	st, ok := s.sessions[sessionID]
	if !ok {
		st = &checkoutState{
			step:  models.StepEmail,
			probe: NewEmailProbe(s.auth.EmailExists, probeDebounce),
		}
		s.sessions[sessionID] = st
	}
	return st
}

// EmailChanged records an edit to the email field. The field is only
// editable in the email step and never while authenticated. Valid emails
// schedule a debounced email-exists lookup; the cached result resets on
// every edit.
func (s *CheckoutService) EmailChanged(ctx context.Context, sessionID, email string) {
	if s.session.IsAuthenticated(ctx, sessionID) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	if st.step != models.StepEmail {
		return
	}
	email = strings.TrimSpace(email)
	st.email = email
	st.probe.Changed(email, emailPattern.MatchString(email))
}

// SendCode requests a verification code for the entered email and moves the
// wizard to the verify step, starting the resend cooldown. A backend
// "already registered" answer routes to login instead of erroring.
func (s *CheckoutService) SendCode(ctx context.Context, sessionID string) *ServiceError {
	if s.session.IsAuthenticated(ctx, sessionID) {
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "You are already logged in"}
	}

	s.mu.Lock()
	st := s.state(sessionID)
	if st.step != models.StepEmail {
		s.mu.Unlock()
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "A code has already been sent"}
	}
	email := st.email
	s.mu.Unlock()

	return s.sendCode(ctx, sessionID, email)
}

// sendCode performs the network call without holding the service lock.
func (s *CheckoutService) sendCode(ctx context.Context, sessionID, email string) *ServiceError {
	if !emailPattern.MatchString(email) {
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Please enter a valid email address"}
	}

	if err := s.auth.SendVerification(ctx, email); err != nil {
		msg := clients.Message(err, "Failed to send verification code")
		if clients.IsConflict(err) || containsAlreadyRegistered(msg) {
			s.mu.Lock()
			s.state(sessionID).probe.SetExists(true)
			s.mu.Unlock()
			return &ServiceError{StatusCode: http.StatusConflict, Message: msg, Reason: ReasonLoginRequired}
		}
		return &ServiceError{StatusCode: statusOf(err, http.StatusBadGateway), Message: msg}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(sessionID)
	st.step = models.StepVerify
	s.startCooldown(st)
	return nil
}

// VerifyCode exchanges the 6-digit code for a verification token and moves
// the wizard to the ready step. Rejected outright when no code has been sent.
func (s *CheckoutService) VerifyCode(ctx context.Context, sessionID, code string) *ServiceError {
	s.mu.Lock()
	st := s.state(sessionID)
	if st.step != models.StepVerify {
		s.mu.Unlock()
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "No verification code has been sent"}
	}
	email := st.email
	s.mu.Unlock()

	code = strings.TrimSpace(code)
	if !codePattern.MatchString(code) {
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Enter the 6-digit code from your email"}
	}

	token, err := s.auth.VerifyCode(ctx, email, code)
	if err != nil {
		return &ServiceError{
			StatusCode: statusOf(err, http.StatusBadRequest),
			Message:    clients.Message(err, "Invalid verification code"),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st = s.state(sessionID)
	st.verificationToken = token
	st.step = models.StepReady
	return nil
}

// ResendCode re-sends the verification code once the cooldown has elapsed.
func (s *CheckoutService) ResendCode(ctx context.Context, sessionID string) *ServiceError {
	s.mu.Lock()
	st := s.state(sessionID)
	if st.step != models.StepVerify {
		s.mu.Unlock()
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "No verification code has been sent"}
	}
	if st.cooldown > 0 {
		s.mu.Unlock()
		return &ServiceError{StatusCode: http.StatusTooManyRequests, Message: "Please wait before requesting another code"}
	}
	email := st.email
	s.mu.Unlock()

	return s.sendCode(ctx, sessionID, email)
}

// GoBack steps the wizard backwards: ready returns to verify, verify returns
// to email. Only transition-local error state is cleared; the cooldown keeps
// counting.
func (s *CheckoutService) GoBack(ctx context.Context, sessionID string) *ServiceError {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	switch st.step {
	case models.StepReady:
		st.step = models.StepVerify
	case models.StepVerify:
		st.step = models.StepEmail
	default:
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Nothing to go back to"}
	}
	return nil
}

// AvailableCoupons lists the authenticated customer's coupons.
func (s *CheckoutService) AvailableCoupons(ctx context.Context, sessionID string) ([]models.Coupon, *ServiceError) {
	token := s.session.Token(ctx, sessionID)
	if token == "" {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Log in to see your coupons"}
	}

	coupons, err := s.coupons.ListMine(ctx, token)
	if err != nil {
		return nil, &ServiceError{
			StatusCode: statusOf(err, http.StatusBadGateway),
			Message:    clients.Message(err, "Failed to load coupons"),
		}
	}
	return coupons, nil
}

// SelectCoupon adds one of the customer's own coupons to the selection, up
// to MaxCoupons. Eligibility is the coupon backend's call; only coupons it
// lists can be selected.
func (s *CheckoutService) SelectCoupon(ctx context.Context, sessionID, code string) *ServiceError {
	coupons, svcErr := s.AvailableCoupons(ctx, sessionID)
	if svcErr != nil {
		return svcErr
	}

	var match *models.Coupon
	for i := range coupons {
		if coupons[i].Code == code {
			match = &coupons[i]
			break
		}
	}
	if match == nil {
		return &ServiceError{StatusCode: http.StatusNotFound, Message: "Coupon not found"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(sessionID)
	for _, c := range st.selected {
		if c.Code == code {
			return nil
		}
	}
	if len(st.selected) >= MaxCoupons {
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "You can apply up to 3 coupons"}
	}
	st.selected = append(st.selected, *match)
	return nil
}

// DeselectCoupon removes a coupon from the selection.
func (s *CheckoutService) DeselectCoupon(ctx context.Context, sessionID, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	for i, c := range st.selected {
		if c.Code == code {
			st.selected = append(st.selected[:i], st.selected[i+1:]...)
			return
		}
	}
}

// State returns the wizard snapshot with locally computed totals. The order
// returned by Submit carries the authoritative figures.
func (s *CheckoutService) State(ctx context.Context, sessionID string) models.CheckoutState {
	subtotal := models.CartSubtotal(s.cart.Lines(ctx, sessionID))
	authed := s.session.IsAuthenticated(ctx, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	codes := make([]string, 0, len(st.selected))
	for _, c := range st.selected {
		codes = append(codes, c.Code)
	}
	discount := CouponDiscount(subtotal, st.selected)

	return models.CheckoutState{
		Step:            st.step,
		Email:           st.email,
		Cooldown:        st.cooldown,
		EmailRegistered: st.probe.Exists(),
		Submitting:      st.submitting,
		Authenticated:   authed,
		SelectedCoupons: codes,
		Subtotal:        subtotal,
		Discount:        discount,
		Total:           OrderTotal(subtotal, discount),
	}
}

// Submit validates the checkout fail-fast, establishes a session inline for
// guests, and issues the single order-creation call. On success the cart is
// cleared and the verification session discarded; on failure the cart is
// left intact.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string, form models.ShippingForm) (*models.Order, *ServiceError) {
	s.mu.Lock()
	st := s.state(sessionID)
	if st.submitting {
		s.mu.Unlock()
		return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Order submission already in progress"}
	}
	st.submitting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if cur, ok := s.sessions[sessionID]; ok {
			cur.submitting = false
		}
		s.mu.Unlock()
	}()

	lines := s.cart.Lines(ctx, sessionID)
	if len(lines) == 0 {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Your cart is empty"}
	}
	for _, l := range lines {
		if !productIDPattern.MatchString(l.ID) {
			return nil, &ServiceError{
				StatusCode: http.StatusBadRequest,
				Message:    "Some cart items are from the demo catalog. Please clear your cart and add products again",
			}
		}
	}
	if svcErr := validateShipping(form); svcErr != nil {
		return nil, svcErr
	}

	if !s.session.IsAuthenticated(ctx, sessionID) {
		if svcErr := s.registerInline(ctx, sessionID, st, form); svcErr != nil {
			return nil, svcErr
		}
	}

	token := s.session.Token(ctx, sessionID)

	s.mu.Lock()
	couponCodes := make([]string, 0, len(st.selected))
	for _, c := range st.selected {
		couponCodes = append(couponCodes, c.Code)
	}
	s.mu.Unlock()

	items := make([]models.NewOrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.NewOrderItem{ProductID: l.ID, Qty: l.Qty})
	}

	req := models.CreateOrderRequest{
		Items:            items,
		ShippingName:     strings.TrimSpace(form.FirstName + " " + form.LastName),
		ShippingAddress1: form.Address1,
		ShippingCity:     form.City,
		ShippingState:    form.State,
		ShippingPostcode: form.Postcode,
	}
	if len(couponCodes) > 0 {
		req.CouponCodes = couponCodes
	}

	order, err := s.orders.Create(ctx, token, req)
	if err != nil {
		s.logger.Error("order creation failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, &ServiceError{
			StatusCode: statusOf(err, http.StatusBadGateway),
			Message:    clients.Message(err, "Failed to place order"),
		}
	}

	s.cart.Clear(ctx, sessionID)
	s.Discard(ctx, sessionID)

	s.logger.Info("order placed",
		zap.String("session_id", sessionID),
		zap.String("order_id", order.ID),
		zap.Float64("total", order.Total),
	)
	return order, nil
}

// registerInline exchanges the verification token for an account and a live
// session. A duplicate email aborts with a login_required conflict.
func (s *CheckoutService) registerInline(ctx context.Context, sessionID string, st *checkoutState, form models.ShippingForm) *ServiceError {
	s.mu.Lock()
	step := st.step
	email := st.email
	verificationToken := st.verificationToken
	emailRegistered := st.probe.Exists()
	s.mu.Unlock()

	if step != models.StepReady || verificationToken == "" {
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Please verify your email first"}
	}
	if len(form.Password) < 8 {
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Password must be at least 8 characters"}
	}
	if emailRegistered {
		return &ServiceError{
			StatusCode: http.StatusConflict,
			Message:    "This email is already registered. Please log in to continue",
			Reason:     ReasonLoginRequired,
		}
	}

	fullName := strings.TrimSpace(form.FirstName + " " + form.LastName)
	_, svcErr := s.session.Register(ctx, sessionID, models.RegisterRequest{
		Email:             email,
		Password:          form.Password,
		VerificationToken: verificationToken,
		FirstName:         form.FirstName,
		LastName:          form.LastName,
		Phone:             form.Phone,
		ShippingAddress: &models.ShippingAddress{
			FullName: fullName,
			Phone:    form.Phone,
			Address1: form.Address1,
			Address2: form.Address2,
			City:     form.City,
			State:    form.State,
			Postcode: form.Postcode,
			Country:  form.Country,
		},
	})
	return svcErr
}

func validateShipping(form models.ShippingForm) *ServiceError {
	required := []struct {
		value string
		label string
	}{
		{form.Country, "Country"},
		{form.FirstName, "First name"},
		{form.LastName, "Last name"},
		{form.Address1, "Address"},
		{form.City, "City"},
		{form.State, "State"},
		{form.Postcode, "Postcode"},
		{form.Phone, "Phone"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ServiceError{StatusCode: http.StatusBadRequest, Message: f.label + " is required"}
		}
	}
	return nil
}

// startCooldown must be called with s.mu held. It restarts the countdown and
// replaces any ticker already running.
func (s *CheckoutService) startCooldown(st *checkoutState) {
	if st.cooldownStop != nil {
		close(st.cooldownStop)
	}
	st.cooldown = verificationCooldown
	stop := make(chan struct{})
	st.cooldownStop = stop

	go func() {
		ticker := time.NewTicker(s.cooldownTick)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				if st.cooldownStop != stop {
					s.mu.Unlock()
					return
				}
				if st.cooldown > 0 {
					st.cooldown--
				}
				done := st.cooldown == 0
				s.mu.Unlock()
				if done {
					return
				}
			}
		}
	}()
}

// Discard tears down the verification session: the cooldown ticker and any
// pending probe are stopped and the transient state (including the
// verification token) is dropped.
func (s *CheckoutService) Discard(_ context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	if st.cooldownStop != nil {
		close(st.cooldownStop)
		st.cooldownStop = nil
	}
	st.probe.Stop()
	delete(s.sessions, sessionID)
}

// Shutdown discards every live checkout session.
func (s *CheckoutService) Shutdown() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Discard(context.Background(), id)
	}
}
