// Package session owns one cart together with the lifecycle of its checkout
// attempt: idle, processing, then succeeded, cancelled or failed until the
// outcome is acknowledged.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Alturino/checkout/cart/pkg/pricing"
	"github.com/Alturino/checkout/payment/internal/verify"
	"github.com/Alturino/checkout/payment/pkg/request"
)

type Snapshot struct {
	ID        uuid.UUID
	Phase     Phase
	Cart      pricing.Cart
	LineItems []pricing.LineItem
}

// Outcome is the reply to the authorization callback. Errors are display only.
type Outcome struct {
	Approved  bool
	Errors    []verify.FieldError
	Snapshot  Snapshot
	VerifyErr error
}

// CouponUpdate is the reply to the coupon-changed callback. Err is shown on the
// sheet and never aborts the session.
type CouponUpdate struct {
	Snapshot Snapshot
	Err      error
}

// Session is safe for concurrent use. The payment sheet never issues two
// callbacks at once, the lock keeps stray HTTP retries from interleaving.
type Session struct {
	mu          sync.Mutex
	id          uuid.UUID
	catalog     pricing.Catalog
	engine      pricing.Engine
	cart        pricing.Cart
	phase       Phase
	authorizing bool
}

func New(id uuid.UUID, catalog pricing.Catalog, engine pricing.Engine) *Session {
	return &Session{
		id:      id,
		catalog: catalog,
		engine:  engine,
		cart:    catalog.NewCart(),
		phase:   PhaseIdle,
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:        s.id,
		Phase:     s.phase,
		Cart:      s.cart,
		LineItems: s.engine.LineItems(s.cart),
	}
}

func (s *Session) invalid(op string) error {
	if s.authorizing {
		return fmt.Errorf("%s: %w", op, ErrAuthorizationPending)
	}
	return fmt.Errorf("%s in phase=%s: %w", op, s.phase, ErrInvalidTransition)
}

func (s *Session) editable(op string) error {
	if s.phase == PhaseProcessing {
		return s.invalid(op)
	}
	return nil
}

func (s *Session) SetQuantity(productID string, quantity uint) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable("set quantity"); err != nil {
		return s.snapshot(), err
	}
	cart, err := s.catalog.SetQuantity(s.cart, productID, quantity)
	if err != nil {
		return s.snapshot(), err
	}
	s.cart = cart
	return s.snapshot(), nil
}

func (s *Session) ApplyCoupon(code string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable("apply coupon"); err != nil {
		return s.snapshot(), err
	}
	cart, err := s.catalog.ApplyCoupon(s.cart, code)
	if err != nil {
		return s.snapshot(), err
	}
	s.cart = cart
	return s.snapshot(), nil
}

func (s *Session) SelectShipping(methodID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable("select shipping"); err != nil {
		return s.snapshot(), err
	}
	cart, err := s.catalog.SelectShipping(s.cart, methodID)
	if err != nil {
		return s.snapshot(), err
	}
	s.cart = cart
	return s.snapshot(), nil
}

// Begin moves an idle session into processing. The returned line items are the
// authoritative request for the sheet.
func (s *Session) Begin(canMakePayments bool) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseIdle {
		return s.snapshot(), s.invalid("begin payment")
	}
	if !canMakePayments {
		return s.snapshot(), ErrSheetUnavailable
	}
	s.phase = PhaseProcessing
	return s.snapshot(), nil
}

func (s *Session) processing(op string) error {
	if s.phase != PhaseProcessing || s.authorizing {
		return s.invalid(op)
	}
	return nil
}

func (s *Session) CouponChanged(code string) (CouponUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.processing("coupon changed"); err != nil {
		return CouponUpdate{Snapshot: s.snapshot()}, err
	}
	cart, err := s.catalog.ApplyCoupon(s.cart, code)
	s.cart = cart
	return CouponUpdate{Snapshot: s.snapshot(), Err: err}, nil
}

// ShippingChanged swaps the shipping method. Unknown ids keep the current one.
func (s *Session) ShippingChanged(methodID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.processing("shipping changed"); err != nil {
		return s.snapshot(), err
	}
	if cart, err := s.catalog.SelectShipping(s.cart, methodID); err == nil {
		s.cart = cart
	}
	return s.snapshot(), nil
}

// Authorize runs verifier outside the lock. Until it returns, every other
// transition fails with ErrAuthorizationPending while reads keep working.
func (s *Session) Authorize(
	c context.Context,
	payment request.AuthorizedPayment,
	verifier verify.Verifier,
) (Outcome, error) {
	s.mu.Lock()
	if err := s.processing("authorize payment"); err != nil {
		snapshot := s.snapshot()
		s.mu.Unlock()
		return Outcome{Snapshot: snapshot}, err
	}
	s.authorizing = true
	s.mu.Unlock()

	verifyErr := verifier.Verify(c, payment)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.authorizing = false
	if verifyErr != nil {
		// A decline is final for this attempt. The sheet gets one terminal
		// authorization callback, so a corrected contact needs a new Begin.
		s.phase = PhaseFailed
		return Outcome{
			Errors:    verify.FieldErrors(verifyErr),
			Snapshot:  s.snapshot(),
			VerifyErr: verifyErr,
		}, nil
	}
	s.phase = PhaseSucceeded
	return Outcome{Approved: true, Snapshot: s.snapshot()}, nil
}

// Dismiss records that the sheet went away. Before authorization that cancels
// the attempt; after it the outcome already stands.
func (s *Session) Dismiss() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.authorizing:
		return s.snapshot(), s.invalid("dismiss")
	case s.phase == PhaseProcessing:
		s.phase = PhaseCancelled
	case s.phase.IsTerminal():
	default:
		return s.snapshot(), ErrNoPaymentInProgress
	}
	return s.snapshot(), nil
}

// Acknowledge returns a terminal session to idle. Leaving succeeded is the only
// way the cart is reset.
func (s *Session) Acknowledge() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.phase.IsTerminal() {
		return s.snapshot(), s.invalid("acknowledge")
	}
	if s.phase == PhaseSucceeded {
		s.cart = s.catalog.NewCart()
	}
	s.phase = PhaseIdle
	return s.snapshot(), nil
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrAuthorizationPending) ||
		errors.Is(err, ErrNoPaymentInProgress)
}
