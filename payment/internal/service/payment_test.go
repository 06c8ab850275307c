package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/checkout/cart/pkg/pricing"
	"github.com/Alturino/checkout/internal/common"
	commonErrors "github.com/Alturino/checkout/internal/common/errors"
	"github.com/Alturino/checkout/internal/config"
	"github.com/Alturino/checkout/internal/metric"
	"github.com/Alturino/checkout/payment/internal/receipt"
	"github.com/Alturino/checkout/payment/internal/session"
	"github.com/Alturino/checkout/payment/internal/verify"
	"github.com/Alturino/checkout/payment/pkg/request"
	"github.com/Alturino/checkout/payment/pkg/response"
)

const secret = "0123456789abcdef0123456789abcdef"

type recordingPublisher struct {
	mu       sync.Mutex
	receipts []receipt.Receipt
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, r receipt.Receipt) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.receipts = append(p.receipts, r)
	return nil
}

func testConfig(canMakePayments bool) *config.Config {
	return &config.Config{
		Application: config.Application{SecretKey: secret},
		Merchant: config.Merchant{
			ID:                   "merchant.com.itsuki.checkout",
			DisplayName:          "Itsuki's World",
			CurrencyCode:         "USD",
			CountryCode:          "US",
			TaxRate:              "0.1",
			SupportedNetworks:    []string{"masterCard", "visa", "JCB", "suica", "nanaco"},
			MerchantCapabilities: []string{"threeDSecure"},
			CanMakePayments:      canMakePayments,
		},
		Payment: config.Payment{SessionTTL: time.Minute, TokenTTL: time.Hour},
	}
}

type fixture struct {
	svc       *PaymentService
	publisher *recordingPublisher
	metrics   *metric.Metrics
}

func newFixture(t *testing.T, canMakePayments bool) fixture {
	t.Helper()
	publisher := &recordingPublisher{}
	metrics := metric.New()
	svc := NewPaymentService(
		testConfig(canMakePayments),
		pricing.DefaultCatalog(),
		verify.NewContact(""),
		publisher,
		metrics,
	)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return fixture{svc: svc, publisher: publisher, metrics: metrics}
}

func paymentTo(givenName string) request.AuthorizedPayment {
	return request.AuthorizedPayment{
		Token: request.PaymentToken{PaymentData: "opaque", TransactionIdentifier: "txn-1"},
		ShippingContact: &request.Contact{
			Name: &request.PersonName{GivenName: givenName, FamilyName: "Nakano"},
		},
	}
}

func summaryAmounts(items []response.SummaryItem) []string {
	amounts := make([]string, 0, len(items))
	for _, item := range items {
		amounts = append(amounts, item.Amount)
	}
	return amounts
}

func quantity(q uint) *uint {
	return &q
}

// helloSession creates a session and puts one Hello in its cart.
func (f fixture) helloSession(t *testing.T, c context.Context) response.CreatedSession {
	t.Helper()
	created, err := f.svc.CreateSession(c)
	require.NoError(t, err)
	updated, err := f.svc.SetQuantity(c, created.ID, pricing.ProductHello, request.SetQuantity{Quantity: quantity(1)})
	require.NoError(t, err)
	created.Session = updated
	return created
}

func TestCreateSession(t *testing.T) {
	c := context.Background()
	f := newFixture(t, true)

	created, err := f.svc.CreateSession(c)
	require.NoError(t, err)

	assert.Equal(t, session.PhaseIdle.String(), created.Phase)
	assert.Equal(t, "0.00", created.Cart.Total)
	for _, p := range created.Cart.Products {
		assert.Equal(t, uint(0), p.Quantity, p.ID)
	}
	assert.Equal(t, pricing.ShippingStandard, created.Cart.ShippingID)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ActiveSessions))

	id, err := common.VerifyTokenAt(c, secret, created.Token, f.svc.now())
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)
	assert.Equal(t, f.svc.now().Add(time.Hour), created.ExpiresAt)

	found, err := f.svc.FindSession(c, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Session, found)
}

func TestFindSessionNotFound(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.svc.FindSession(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCartEdits(t *testing.T) {
	c := context.Background()

	tests := []struct {
		name     string
		edit     func(svc *PaymentService, id uuid.UUID) (response.Session, error)
		expected string
		err      error
	}{
		{
			name: "given like quantity two should raise total",
			edit: func(svc *PaymentService, id uuid.UUID) (response.Session, error) {
				return svc.SetQuantity(c, id, pricing.ProductLike, request.SetQuantity{Quantity: quantity(2)})
			},
			expected: "2210.97",
		},
		{
			name: "given unknown product should fail",
			edit: func(svc *PaymentService, id uuid.UUID) (response.Session, error) {
				return svc.SetQuantity(c, id, "NOPE", request.SetQuantity{Quantity: quantity(2)})
			},
			expected: "10.99",
			err:      pricing.ErrProductNotFound,
		},
		{
			name: "given valid coupon should apply discount",
			edit: func(svc *PaymentService, id uuid.UUID) (response.Session, error) {
				return svc.ApplyCoupon(c, id, request.ApplyCoupon{Code: "itsuki10"})
			},
			expected: "9.89",
		},
		{
			name: "given unknown coupon should fail",
			edit: func(svc *PaymentService, id uuid.UUID) (response.Session, error) {
				return svc.ApplyCoupon(c, id, request.ApplyCoupon{Code: "FREE"})
			},
			expected: "10.99",
			err:      pricing.ErrCouponNotFound,
		},
		{
			name: "given express shipping should add shipping",
			edit: func(svc *PaymentService, id uuid.UUID) (response.Session, error) {
				return svc.SelectShipping(c, id, request.SelectShipping{MethodID: pricing.ShippingExpress})
			},
			expected: "21.98",
		},
		{
			name: "given unknown shipping should fail",
			edit: func(svc *PaymentService, id uuid.UUID) (response.Session, error) {
				return svc.SelectShipping(c, id, request.SelectShipping{MethodID: "DRONE"})
			},
			expected: "10.99",
			err:      pricing.ErrShippingMethodUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			created := f.helloSession(t, c)

			actual, err := tt.edit(f.svc, created.ID)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, actual.Cart.Total)
		})
	}
}

func TestBeginPayment(t *testing.T) {
	c := context.Background()

	t.Run("given payments available should build payment request", func(t *testing.T) {
		f := newFixture(t, true)
		created := f.helloSession(t, c)
		_, err := f.svc.ApplyCoupon(c, created.ID, request.ApplyCoupon{Code: "ITSUKI10"})
		require.NoError(t, err)

		actual, err := f.svc.BeginPayment(c, created.ID)
		require.NoError(t, err)

		assert.Equal(t, "merchant.com.itsuki.checkout", actual.MerchantIdentifier)
		assert.Equal(t, "USD", actual.CurrencyCode)
		assert.Equal(t, "US", actual.CountryCode)
		assert.Equal(t, []string{"threeDSecure"}, actual.MerchantCapabilities)
		assert.Equal(t, []string{"name", "emailAddress", "phoneNumber"}, actual.RequiredBillingContactFields)
		assert.Equal(t, []string{"name", "postalAddress"}, actual.RequiredShippingContactFields)
		assert.Equal(t, response.ShippingTypeDelivery, actual.ShippingType)
		assert.True(t, actual.SupportsCouponCode)
		assert.Equal(t, "ITSUKI10", actual.CouponCode)
		assert.Equal(t, []string{"9.99", "0.00", "0.00", "-1.00", "0.00", "0.90", "9.89"}, summaryAmounts(actual.PaymentSummaryItems))
		assert.Equal(t, "Itsuki's World", actual.PaymentSummaryItems[len(actual.PaymentSummaryItems)-1].Label)

		require.Len(t, actual.ShippingMethods, 2)
		assert.Equal(t, pricing.ShippingStandard, actual.ShippingMethods[0].Identifier)
		assert.Nil(t, actual.ShippingMethods[0].DateComponentsRange)
		assert.Equal(t, pricing.ShippingExpress, actual.ShippingMethods[1].Identifier)
		assert.Equal(t, &response.DateRange{Start: "2024-05-01", End: "2024-05-01"}, actual.ShippingMethods[1].DateComponentsRange)

		found, err := f.svc.FindSession(c, created.ID)
		require.NoError(t, err)
		assert.Equal(t, session.PhaseProcessing.String(), found.Phase)
	})

	t.Run("given payments unavailable should fail", func(t *testing.T) {
		f := newFixture(t, false)
		created := f.helloSession(t, c)

		_, err := f.svc.BeginPayment(c, created.ID)
		assert.ErrorIs(t, err, session.ErrSheetUnavailable)

		found, err := f.svc.FindSession(c, created.ID)
		require.NoError(t, err)
		assert.Equal(t, session.PhaseIdle.String(), found.Phase)
	})
}

func TestCouponChanged(t *testing.T) {
	c := context.Background()

	tests := []struct {
		name           string
		codes          []string
		expectedErrors []response.PaymentError
		expectedTotal  string
	}{
		{
			name:           "given valid coupon should discount",
			codes:          []string{"itsuki20"},
			expectedErrors: []response.PaymentError{},
			expectedTotal:  "8.79",
		},
		{
			name:           "given blank coupon should keep cart",
			codes:          []string{"  "},
			expectedErrors: []response.PaymentError{},
			expectedTotal:  "10.99",
		},
		{
			name:           "given unknown coupon should return display error",
			codes:          []string{"FREE"},
			expectedErrors: []response.PaymentError{{Code: response.CodeCouponCodeInvalid, Message: "Invalid Coupon Code."}},
			expectedTotal:  "10.99",
		},
		{
			name:           "given second coupon should keep first",
			codes:          []string{"ITSUKI10", "ITSUKI30"},
			expectedErrors: []response.PaymentError{{Code: response.CodeCouponCodeInvalid, Message: "A Coupon is already applied"}},
			expectedTotal:  "9.89",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			created := f.helloSession(t, c)
			_, err := f.svc.BeginPayment(c, created.ID)
			require.NoError(t, err)

			var actual response.CouponCodeUpdate
			for _, code := range tt.codes {
				actual, err = f.svc.CouponChanged(c, created.ID, request.CouponCodeChanged{Code: code})
				require.NoError(t, err)
			}

			assert.Equal(t, tt.expectedErrors, actual.Errors)
			assert.Equal(t, tt.expectedTotal, actual.PaymentSummaryItems[len(actual.PaymentSummaryItems)-1].Amount)
			assert.Len(t, actual.ShippingMethods, 2)
		})
	}
}

func TestCouponChangedOutsideProcessing(t *testing.T) {
	c := context.Background()
	f := newFixture(t, true)
	created := f.helloSession(t, c)

	_, err := f.svc.CouponChanged(c, created.ID, request.CouponCodeChanged{Code: "ITSUKI10"})
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
}

func TestShippingChanged(t *testing.T) {
	c := context.Background()

	tests := []struct {
		name     string
		methodID string
		expected string
	}{
		{name: "given express should add shipping", methodID: pricing.ShippingExpress, expected: "21.98"},
		{name: "given unknown method should keep standard", methodID: "DRONE", expected: "10.99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			created := f.helloSession(t, c)
			_, err := f.svc.BeginPayment(c, created.ID)
			require.NoError(t, err)

			actual, err := f.svc.ShippingChanged(c, created.ID, request.ShippingMethodChanged{MethodID: tt.methodID})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, actual.PaymentSummaryItems[len(actual.PaymentSummaryItems)-1].Amount)
		})
	}
}

func TestAuthorize(t *testing.T) {
	c := context.Background()

	t.Run("given accepted contact should approve and publish receipt", func(t *testing.T) {
		f := newFixture(t, true)
		created := f.helloSession(t, c)
		_, err := f.svc.BeginPayment(c, created.ID)
		require.NoError(t, err)

		actual, err := f.svc.Authorize(c, created.ID, paymentTo("itsuki"))
		require.NoError(t, err)

		assert.True(t, actual.Approved())
		assert.Empty(t, actual.Errors)
		require.Len(t, f.publisher.receipts, 1)
		assert.Equal(t, created.ID, f.publisher.receipts[0].SessionID)
		assert.Equal(t, "txn-1", f.publisher.receipts[0].TransactionID)
		assert.Equal(t, "10.99", f.publisher.receipts[0].Total.StringFixed(2))
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.PaymentOutcomes.WithLabelValues("succeeded")))

		found, err := f.svc.FindSession(c, created.ID)
		require.NoError(t, err)
		assert.Equal(t, session.PhaseSucceeded.String(), found.Phase)
	})

	t.Run("given other contact should decline with display error", func(t *testing.T) {
		f := newFixture(t, true)
		created := f.helloSession(t, c)
		_, err := f.svc.BeginPayment(c, created.ID)
		require.NoError(t, err)

		actual, err := f.svc.Authorize(c, created.ID, paymentTo("Miku"))
		require.NoError(t, err)

		assert.False(t, actual.Approved())
		require.Len(t, actual.Errors, 1)
		assert.Equal(t, verify.CodeShippingContactInvalid, actual.Errors[0].Code)
		assert.Equal(t, verify.FieldName, actual.Errors[0].ContactField)
		assert.Empty(t, f.publisher.receipts)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.PaymentOutcomes.WithLabelValues("failed")))
	})

	t.Run("given failing publisher should still approve", func(t *testing.T) {
		f := newFixture(t, true)
		f.publisher.err = errors.New("redis down")
		created := f.helloSession(t, c)
		_, err := f.svc.BeginPayment(c, created.ID)
		require.NoError(t, err)

		actual, err := f.svc.Authorize(c, created.ID, paymentTo("ITSUKI"))
		require.NoError(t, err)
		assert.True(t, actual.Approved())
	})

	t.Run("given idle session should fail", func(t *testing.T) {
		f := newFixture(t, true)
		created := f.helloSession(t, c)

		_, err := f.svc.Authorize(c, created.ID, paymentTo("ITSUKI"))
		assert.ErrorIs(t, err, session.ErrInvalidTransition)
	})
}

func TestCheckoutLifecycle(t *testing.T) {
	c := context.Background()

	t.Run("given dismiss before authorization should cancel and keep cart", func(t *testing.T) {
		f := newFixture(t, true)
		created := f.helloSession(t, c)
		_, err := f.svc.ApplyCoupon(c, created.ID, request.ApplyCoupon{Code: "ITSUKI10"})
		require.NoError(t, err)
		_, err = f.svc.BeginPayment(c, created.ID)
		require.NoError(t, err)

		dismissed, err := f.svc.Dismiss(c, created.ID)
		require.NoError(t, err)
		assert.Equal(t, session.PhaseCancelled.String(), dismissed.Phase)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.PaymentOutcomes.WithLabelValues("cancelled")))

		_, err = f.svc.Dismiss(c, created.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.PaymentOutcomes.WithLabelValues("cancelled")))

		acknowledged, err := f.svc.Acknowledge(c, created.ID)
		require.NoError(t, err)
		assert.Equal(t, session.PhaseIdle.String(), acknowledged.Phase)
		assert.Equal(t, "ITSUKI10", acknowledged.Cart.CouponCode)
		assert.Equal(t, "9.89", acknowledged.Cart.Total)
	})

	t.Run("given approved payment should reset cart on acknowledge", func(t *testing.T) {
		f := newFixture(t, true)
		created := f.helloSession(t, c)
		_, err := f.svc.SetQuantity(c, created.ID, pricing.ProductLove, request.SetQuantity{Quantity: quantity(1)})
		require.NoError(t, err)
		_, err = f.svc.BeginPayment(c, created.ID)
		require.NoError(t, err)
		_, err = f.svc.Authorize(c, created.ID, paymentTo("ITSUKI"))
		require.NoError(t, err)

		dismissed, err := f.svc.Dismiss(c, created.ID)
		require.NoError(t, err)
		assert.Equal(t, session.PhaseSucceeded.String(), dismissed.Phase)

		acknowledged, err := f.svc.Acknowledge(c, created.ID)
		require.NoError(t, err)
		assert.Equal(t, session.PhaseIdle.String(), acknowledged.Phase)
		assert.Equal(t, "0.00", acknowledged.Cart.Total)
		for _, p := range acknowledged.Cart.Products {
			assert.Equal(t, uint(0), p.Quantity, p.ID)
		}
	})

	t.Run("given idle session dismiss should fail", func(t *testing.T) {
		f := newFixture(t, true)
		created := f.helloSession(t, c)

		_, err := f.svc.Dismiss(c, created.ID)
		assert.ErrorIs(t, err, session.ErrNoPaymentInProgress)
		_, err = f.svc.Acknowledge(c, created.ID)
		assert.ErrorIs(t, err, session.ErrInvalidTransition)
	})
}

func TestEvictExpired(t *testing.T) {
	c := context.Background()
	f := newFixture(t, true)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	stale, err := f.svc.CreateSession(c)
	require.NoError(t, err)
	now = now.Add(45 * time.Second)
	fresh, err := f.svc.CreateSession(c)
	require.NoError(t, err)
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, f.svc.EvictExpired(c))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ActiveSessions))

	_, err = f.svc.FindSession(c, stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.FindSession(c, fresh.ID)
	assert.NoError(t, err)
}

func TestTokenOutlivesBusySession(t *testing.T) {
	c := context.Background()
	f := newFixture(t, true)
	f.svc.ttl = 30 * time.Minute
	f.svc.tokenTTL = 24 * time.Hour
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := start
	f.svc.now = func() time.Time { return now }

	created := f.helloSession(t, c)

	// a session kept busy past the session ttl stays reachable
	for i := 0; i < 3; i++ {
		now = now.Add(20 * time.Minute)
		_, err := f.svc.FindSession(c, created.ID)
		require.NoError(t, err)
	}
	_, err := f.svc.BeginPayment(c, created.ID)
	require.NoError(t, err)

	id, err := common.VerifyTokenAt(c, secret, created.Token, now)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)
	assert.Equal(t, 0, f.svc.EvictExpired(c))

	refreshed, err := f.svc.RefreshToken(c, created.ID)
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), refreshed.ExpiresAt)

	// past the first token's lifetime only the refreshed one verifies
	later := start.Add(24*time.Hour + time.Minute)
	_, err = common.VerifyTokenAt(c, secret, created.Token, later)
	assert.ErrorIs(t, err, commonErrors.ErrTokenInvalid)
	id, err = common.VerifyTokenAt(c, secret, refreshed.Token, later)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)
}

func TestRefreshTokenUnknownSession(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.svc.RefreshToken(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestApplyCouponMetrics(t *testing.T) {
	c := context.Background()

	tests := []struct {
		name     string
		code     string
		expected map[string]float64
	}{
		{name: "given blank code should count cleared", code: "   ", expected: map[string]float64{"cleared": 1, "applied": 0, "rejected": 0}},
		{name: "given valid code should count applied", code: "itsuki10", expected: map[string]float64{"cleared": 0, "applied": 1, "rejected": 0}},
		{name: "given unknown code should count rejected", code: "FREE", expected: map[string]float64{"cleared": 0, "applied": 0, "rejected": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			created := f.helloSession(t, c)

			_, _ = f.svc.ApplyCoupon(c, created.ID, request.ApplyCoupon{Code: tt.code})
			for result, expected := range tt.expected {
				assert.Equal(t, expected, testutil.ToFloat64(f.metrics.CouponResults.WithLabelValues(result)), result)
			}
		})
	}
}
