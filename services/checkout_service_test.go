package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kenlin2709/va/clients"
	"github.com/kenlin2709/va/models"
	"github.com/kenlin2709/va/services"
)

// persisted catalog ids are 24-char hex strings
const validProductID = "64b7f0c2a1d3e4f5a6b7c8d9"

type checkoutFixture struct {
	cartRepo  *memoryCartRepo
	tokenRepo *memoryTokenRepo
	auth      *mockAuthAPI
	orders    *mockOrdersAPI
	coupons   *mockCouponsAPI
	cart      *services.CartService
	session   *services.SessionService
	svc       *services.CheckoutService
}

func newCheckoutFixture() *checkoutFixture {
	logger, _ := zap.NewDevelopment()

	f := &checkoutFixture{
		cartRepo:  newMemoryCartRepo(),
		tokenRepo: newMemoryTokenRepo(),
		auth:      &mockAuthAPI{},
		orders:    &mockOrdersAPI{},
		coupons:   &mockCouponsAPI{},
	}
	f.cart = services.NewCartService(f.cartRepo, logger)
	f.session = services.NewSessionService(f.tokenRepo, f.auth, logger)
	f.svc = services.NewCheckoutService(f.cart, f.session, f.auth, f.orders, f.coupons, logger)
	return f
}

func (f *checkoutFixture) addValidItem(t *testing.T, qty int) {
	t.Helper()
	f.cart.Add(context.Background(), session, models.CartLine{
		ID:    validProductID,
		Title: "Lavender Oil",
		Price: 26.95,
	}, qty)
}

func (f *checkoutFixture) loginAs(t *testing.T, email string) {
	t.Helper()
	f.auth.loginFn = func(email, _ string) (*models.AuthResponse, error) {
		return okAuthResponse(email), nil
	}
	_, svcErr := f.session.Login(context.Background(), session, email, "secret123")
	require.Nil(t, svcErr)
}

// reachReady walks a guest through email -> verify -> ready.
func (f *checkoutFixture) reachReady(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()
	f.svc.EmailChanged(ctx, session, email)
	require.Nil(t, f.svc.SendCode(ctx, session))
	require.Nil(t, f.svc.VerifyCode(ctx, session, "123456"))
	require.Equal(t, models.StepReady, f.svc.State(ctx, session).Step)
}

func validForm() models.ShippingForm {
	return models.ShippingForm{
		Password:  "hunter2hunter2",
		Country:   "Australia",
		FirstName: "Jo",
		LastName:  "Citizen",
		Address1:  "1 Example St",
		City:      "Melbourne",
		State:     "VIC",
		Postcode:  "3000",
		Phone:     "0400000000",
	}
}

// --- State machine ---

func TestCheckout_VerifyWithoutSendRejected(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	svcErr := f.svc.VerifyCode(ctx, session, "123456")
	require.NotNil(t, svcErr)
	assert.Equal(t, models.StepEmail, f.svc.State(ctx, session).Step, "still in the email step")
}

func TestCheckout_SendCodeAdvancesAndStartsCooldown(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.svc.EmailChanged(ctx, session, "guest@example.com")
	require.Nil(t, f.svc.SendCode(ctx, session))
	defer f.svc.Discard(ctx, session)

	state := f.svc.State(ctx, session)
	assert.Equal(t, models.StepVerify, state.Step)
	assert.Greater(t, state.Cooldown, 0)

	svcErr := f.svc.ResendCode(ctx, session)
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusTooManyRequests, svcErr.StatusCode)
	assert.Equal(t, 1, f.auth.sendCalls, "gated resend must not hit the network")
}

func TestCheckout_SendCodeRequiresValidEmail(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.svc.EmailChanged(ctx, session, "not-an-email")
	svcErr := f.svc.SendCode(ctx, session)
	require.NotNil(t, svcErr)
	assert.Equal(t, 0, f.auth.sendCalls)
}

func TestCheckout_GoBackFromReadyGoesToVerify(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	defer f.svc.Discard(ctx, session)

	f.reachReady(t, "guest@example.com")

	require.Nil(t, f.svc.GoBack(ctx, session))
	assert.Equal(t, models.StepVerify, f.svc.State(ctx, session).Step, "ready goes back to verify, not email")

	require.Nil(t, f.svc.GoBack(ctx, session))
	assert.Equal(t, models.StepEmail, f.svc.State(ctx, session).Step)

	svcErr := f.svc.GoBack(ctx, session)
	assert.NotNil(t, svcErr, "nothing before the email step")
}

func TestCheckout_VerifyRejectsNonNumericCode(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	defer f.svc.Discard(ctx, session)

	f.svc.EmailChanged(ctx, session, "guest@example.com")
	require.Nil(t, f.svc.SendCode(ctx, session))

	require.NotNil(t, f.svc.VerifyCode(ctx, session, "12345"))
	require.NotNil(t, f.svc.VerifyCode(ctx, session, "12345a"))
	assert.Equal(t, models.StepVerify, f.svc.State(ctx, session).Step)
}

func TestCheckout_SendCodeConflictSetsEmailRegistered(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.auth.sendFn = func(_ string) error {
		return &clients.APIError{StatusCode: http.StatusConflict, Message: "This email is already registered"}
	}

	f.svc.EmailChanged(ctx, session, "taken@example.com")
	svcErr := f.svc.SendCode(ctx, session)
	require.NotNil(t, svcErr)
	assert.Equal(t, services.ReasonLoginRequired, svcErr.Reason)
	assert.True(t, f.svc.State(ctx, session).EmailRegistered)
	assert.Equal(t, models.StepEmail, f.svc.State(ctx, session).Step)
}

// --- Totals ---

func TestCheckout_StateSubtotalNoDiscount(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.addValidItem(t, 2)

	state := f.svc.State(ctx, session)
	assert.InDelta(t, 53.90, state.Subtotal, 1e-9)
	assert.Equal(t, 0.0, state.Discount)
	assert.InDelta(t, 53.90, state.Total, 1e-9)
}

func TestCheckout_SelectCouponRequiresAuth(t *testing.T) {
	f := newCheckoutFixture()

	svcErr := f.svc.SelectCoupon(context.Background(), session, "WELCOME10")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)
}

func TestCheckout_SelectCouponLimitedToThree(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.loginAs(t, "jo@example.com")
	f.coupons.coupons = []models.Coupon{
		coupon("C1", 5), coupon("C2", 5), coupon("C3", 5), coupon("C4", 5),
	}

	for _, code := range []string{"C1", "C2", "C3"} {
		require.Nil(t, f.svc.SelectCoupon(ctx, session, code))
	}
	svcErr := f.svc.SelectCoupon(ctx, session, "C4")
	require.NotNil(t, svcErr)
	assert.Len(t, f.svc.State(ctx, session).SelectedCoupons, 3)
}

// --- Submit validation order ---

func TestCheckout_SubmitEmptyCartRejectedWithoutNetwork(t *testing.T) {
	f := newCheckoutFixture()

	_, svcErr := f.svc.Submit(context.Background(), session, validForm())
	require.NotNil(t, svcErr)
	assert.Contains(t, svcErr.Message, "cart is empty")
	assert.Equal(t, 0, f.orders.createCalls())
	assert.Equal(t, 0, f.auth.registerCalls)
}

func TestCheckout_SubmitRejectsDemoCatalogIDs(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.cart.Add(ctx, session, models.CartLine{ID: "demo-1", Title: "Demo item", Price: 10}, 1)

	_, svcErr := f.svc.Submit(ctx, session, validForm())
	require.NotNil(t, svcErr)
	assert.Contains(t, svcErr.Message, "demo catalog")
	assert.Equal(t, 0, f.orders.createCalls())
}

func TestCheckout_SubmitMissingShippingField(t *testing.T) {
	f := newCheckoutFixture()
	f.addValidItem(t, 1)

	form := validForm()
	form.City = ""

	_, svcErr := f.svc.Submit(context.Background(), session, form)
	require.NotNil(t, svcErr)
	assert.Equal(t, "City is required", svcErr.Message)
	assert.Equal(t, 0, f.orders.createCalls())
}

func TestCheckout_GuestMustReachReady(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	defer f.svc.Discard(ctx, session)

	f.addValidItem(t, 1)
	f.svc.EmailChanged(ctx, session, "guest@example.com")
	require.Nil(t, f.svc.SendCode(ctx, session))

	_, svcErr := f.svc.Submit(ctx, session, validForm())
	require.NotNil(t, svcErr)
	assert.Contains(t, svcErr.Message, "verify your email")
	assert.Equal(t, 0, f.orders.createCalls())
}

func TestCheckout_GuestPasswordTooShort(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	defer f.svc.Discard(ctx, session)

	f.addValidItem(t, 1)
	f.reachReady(t, "guest@example.com")

	form := validForm()
	form.Password = "short"

	_, svcErr := f.svc.Submit(ctx, session, form)
	require.NotNil(t, svcErr)
	assert.Contains(t, svcErr.Message, "at least 8 characters")
	assert.Equal(t, 0, f.auth.registerCalls)
}

// --- Submit side effects ---

func TestCheckout_AuthenticatedSubmitWithCouponClearsCart(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.loginAs(t, "jo@example.com")
	f.addValidItem(t, 2)
	f.coupons.coupons = []models.Coupon{coupon("WELCOME10", 10)}
	require.Nil(t, f.svc.SelectCoupon(ctx, session, "WELCOME10"))

	state := f.svc.State(ctx, session)
	assert.InDelta(t, 43.90, state.Total, 1e-9)

	f.orders.createFn = func(token string, req models.CreateOrderRequest) (*models.Order, error) {
		assert.Equal(t, "token-abc", token)
		assert.Equal(t, []string{"WELCOME10"}, req.CouponCodes)
		require.Len(t, req.Items, 1)
		assert.Equal(t, validProductID, req.Items[0].ProductID)
		assert.Equal(t, 2, req.Items[0].Qty)
		return &models.Order{ID: "ord-1", Total: 43.90, Status: "pending"}, nil
	}

	order, svcErr := f.svc.Submit(ctx, session, validForm())
	require.Nil(t, svcErr)
	require.NotNil(t, order)
	assert.InDelta(t, 43.90, order.Total, 1e-9)

	assert.Equal(t, 0, f.cart.Snapshot(ctx, session).Count, "cart cleared after success")
	assert.Equal(t, 0, f.auth.registerCalls, "authenticated path never registers")
}

func TestCheckout_GuestHappyPathRegistersInline(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.addValidItem(t, 1)
	f.reachReady(t, "guest@example.com")

	f.auth.registerFn = func(req models.RegisterRequest) (*models.AuthResponse, error) {
		assert.Equal(t, "guest@example.com", req.Email)
		assert.Equal(t, "verification-token", req.VerificationToken)
		require.NotNil(t, req.ShippingAddress)
		assert.Equal(t, "Jo Citizen", req.ShippingAddress.FullName)
		return okAuthResponse(req.Email), nil
	}
	f.orders.createFn = func(token string, _ models.CreateOrderRequest) (*models.Order, error) {
		assert.Equal(t, "token-abc", token, "order uses the freshly established session")
		return &models.Order{ID: "ord-2", Total: 26.95, Status: "pending"}, nil
	}

	order, svcErr := f.svc.Submit(ctx, session, validForm())
	require.Nil(t, svcErr)
	assert.Equal(t, "ord-2", order.ID)
	assert.Equal(t, 1, f.auth.registerCalls)
	assert.Equal(t, 0, f.cart.Snapshot(ctx, session).Count)
	assert.Equal(t, models.StepEmail, f.svc.State(ctx, session).Step, "verification session discarded")
}

func TestCheckout_GuestConflictRoutesToLogin(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	defer f.svc.Discard(ctx, session)

	f.addValidItem(t, 1)
	f.reachReady(t, "taken@example.com")

	f.auth.registerFn = func(_ models.RegisterRequest) (*models.AuthResponse, error) {
		return nil, &clients.APIError{StatusCode: http.StatusConflict, Message: "Email already registered"}
	}

	_, svcErr := f.svc.Submit(ctx, session, validForm())
	require.NotNil(t, svcErr)
	assert.Equal(t, services.ReasonLoginRequired, svcErr.Reason, "conflict routes to login, not a dead end")
	assert.Equal(t, 0, f.orders.createCalls(), "order never created")
	assert.Equal(t, 1, f.cart.Snapshot(ctx, session).Count, "cart left intact")
}

func TestCheckout_RegisteredEmailProbeBlocksSubmit(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	defer f.svc.Discard(ctx, session)

	f.auth.emailExistsFn = func(_ string) (bool, error) { return true, nil }
	f.addValidItem(t, 1)

	f.svc.EmailChanged(ctx, session, "taken@example.com")
	time.Sleep(600 * time.Millisecond) // let the debounced probe land

	require.Nil(t, f.svc.SendCode(ctx, session))
	require.Nil(t, f.svc.VerifyCode(ctx, session, "123456"))

	_, svcErr := f.svc.Submit(ctx, session, validForm())
	require.NotNil(t, svcErr)
	assert.Equal(t, services.ReasonLoginRequired, svcErr.Reason)
	assert.Equal(t, 0, f.auth.registerCalls, "blocked before any registration attempt")
	assert.Equal(t, 0, f.orders.createCalls())
}

func TestCheckout_OrderFailureLeavesCartIntact(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.loginAs(t, "jo@example.com")
	f.addValidItem(t, 2)

	f.orders.createFn = func(_ string, _ models.CreateOrderRequest) (*models.Order, error) {
		return nil, &clients.APIError{StatusCode: http.StatusBadRequest, Message: "Coupon already used"}
	}

	_, svcErr := f.svc.Submit(ctx, session, validForm())
	require.NotNil(t, svcErr)
	assert.Equal(t, "Coupon already used", svcErr.Message, "upstream message surfaced")
	assert.Equal(t, 2, f.cart.Snapshot(ctx, session).Count)
}

func TestCheckout_DuplicateSubmitShortCircuits(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.loginAs(t, "jo@example.com")
	f.addValidItem(t, 1)

	started := make(chan struct{})
	release := make(chan struct{})
	f.orders.createFn = func(_ string, _ models.CreateOrderRequest) (*models.Order, error) {
		close(started)
		<-release
		return &models.Order{ID: "ord-3", Status: "pending"}, nil
	}

	done := make(chan *services.ServiceError, 1)
	go func() {
		_, svcErr := f.svc.Submit(ctx, session, validForm())
		done <- svcErr
	}()

	<-started
	_, svcErr := f.svc.Submit(ctx, session, validForm())
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusConflict, svcErr.StatusCode)
	assert.Contains(t, svcErr.Message, "in progress")

	close(release)
	assert.Nil(t, <-done, "first submission completes normally")
	assert.Equal(t, 1, f.orders.createCalls())
}
