package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/checkout/cart/pkg/pricing"
	"github.com/Alturino/checkout/internal/common"
	commonErrors "github.com/Alturino/checkout/internal/common/errors"
	"github.com/Alturino/checkout/internal/common/otel"
	"github.com/Alturino/checkout/internal/config"
	"github.com/Alturino/checkout/internal/log"
	"github.com/Alturino/checkout/internal/metric"
	"github.com/Alturino/checkout/payment/internal/receipt"
	"github.com/Alturino/checkout/payment/internal/session"
	"github.com/Alturino/checkout/payment/internal/verify"
	"github.com/Alturino/checkout/payment/pkg/request"
	"github.com/Alturino/checkout/payment/pkg/response"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	couponResultApplied  = "applied"
	couponResultRejected = "rejected"
	couponResultCleared  = "cleared"
)

type entry struct {
	session  *session.Session
	lastSeen atomic.Int64
}

func (e *entry) touch(now time.Time) {
	e.lastSeen.Store(now.UnixNano())
}

type PaymentService struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*entry

	catalog   pricing.Catalog
	engine    pricing.Engine
	merchant  config.Merchant
	secretKey string
	ttl       time.Duration
	tokenTTL  time.Duration
	verifier  verify.Verifier
	publisher receipt.Publisher
	metrics   *metric.Metrics
	now       func() time.Time
}

func NewPaymentService(
	cfg *config.Config,
	catalog pricing.Catalog,
	verifier verify.Verifier,
	publisher receipt.Publisher,
	metrics *metric.Metrics,
) *PaymentService {
	return &PaymentService{
		sessions:  map[uuid.UUID]*entry{},
		catalog:   catalog,
		engine:    pricing.NewEngine(cfg.Merchant.Tax(), cfg.Merchant.DisplayName),
		merchant:  cfg.Merchant,
		secretKey: cfg.Application.SecretKey,
		ttl:       cfg.Payment.SessionTTL,
		tokenTTL:  cfg.Payment.TokenTTL,
		verifier:  verifier,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
	}
}

func (svc *PaymentService) Capability(c context.Context) response.Capability {
	_, span := otel.Tracer.Start(c, "PaymentService Capability")
	defer span.End()
	return response.Capability{CanMakePayments: svc.merchant.CanMakePayments}
}

func (svc *PaymentService) CreateSession(c context.Context) (response.CreatedSession, error) {
	c, span := otel.Tracer.Start(c, "PaymentService CreateSession")
	defer span.End()

	id := uuid.New()
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService CreateSession").
		Str(log.KeySessionID, id.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "issuing session token").Logger()
	logger.Info().Msg("issuing session token")
	c = logger.WithContext(c)
	token, err := svc.issueToken(c, id)
	if err != nil {
		err = fmt.Errorf("failed issuing session token with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CreatedSession{}, err
	}
	logger.Info().Msg("issued session token")

	logger = logger.With().Str(log.KeyProcess, "registering session").Logger()
	logger.Info().Msg("registering session")
	s := session.New(id, svc.catalog, svc.engine)
	e := &entry{session: s}
	e.touch(svc.now())
	svc.mu.Lock()
	svc.sessions[id] = e
	svc.mu.Unlock()
	svc.metrics.ActiveSessions.Inc()
	logger.Info().Msg("registered session")

	return response.CreatedSession{Session: toSession(s.Snapshot()), SessionToken: token}, nil
}

func (svc *PaymentService) issueToken(c context.Context, id uuid.UUID) (response.SessionToken, error) {
	issuedAt := svc.now()
	token, err := common.IssueToken(c, svc.secretKey, id, issuedAt, svc.tokenTTL)
	if err != nil {
		return response.SessionToken{}, err
	}
	return response.SessionToken{Token: token, ExpiresAt: issuedAt.Add(svc.tokenTTL)}, nil
}

// RefreshToken issues a new token for a live session. Tokens expire on their
// own clock, so a session kept busy past the token ttl needs one.
func (svc *PaymentService) RefreshToken(c context.Context, id uuid.UUID) (response.SessionToken, error) {
	c, span := otel.Tracer.Start(c, "PaymentService RefreshToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService RefreshToken").
		Str(log.KeySessionID, id.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding session").Logger()
	logger.Trace().Msg("finding session")
	if _, err := svc.find(c, id); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.SessionToken{}, err
	}
	logger.Trace().Msg("found session")

	logger = logger.With().Str(log.KeyProcess, "issuing session token").Logger()
	logger.Info().Msg("issuing session token")
	c = logger.WithContext(c)
	token, err := svc.issueToken(c, id)
	if err != nil {
		err = fmt.Errorf("failed issuing session token with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.SessionToken{}, err
	}
	logger.Info().Time(log.KeyTokenExpiresAt, token.ExpiresAt).Msg("issued session token")

	return token, nil
}

func (svc *PaymentService) find(c context.Context, id uuid.UUID) (*session.Session, error) {
	_, span := otel.Tracer.Start(c, "PaymentService find")
	defer span.End()

	svc.mu.RLock()
	e, ok := svc.sessions[id]
	svc.mu.RUnlock()
	if !ok {
		err := fmt.Errorf("failed finding sessionId=%s with error=%w", id.String(), ErrSessionNotFound)
		commonErrors.HandleError(err, span)
		return nil, err
	}
	e.touch(svc.now())
	return e.session, nil
}

func (svc *PaymentService) FindSession(c context.Context, id uuid.UUID) (response.Session, error) {
	c, span := otel.Tracer.Start(c, "PaymentService FindSession")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService FindSession").
		Str(log.KeySessionID, id.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding session").Logger()
	logger.Trace().Msg("finding session")
	s, err := svc.find(c, id)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Session{}, err
	}
	snapshot := s.Snapshot()
	logger.Trace().Str(log.KeySessionPhase, snapshot.Phase.String()).Msg("found session")

	return toSession(snapshot), nil
}

func (svc *PaymentService) SetQuantity(
	c context.Context,
	id uuid.UUID,
	productID string,
	param request.SetQuantity,
) (response.Session, error) {
	c, span := otel.Tracer.Start(c, "PaymentService SetQuantity", trace.WithAttributes(
		attribute.String(log.KeySessionID, id.String()),
		attribute.String(log.KeyProductID, productID),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService SetQuantity").
		Str(log.KeySessionID, id.String()).
		Str(log.KeyProductID, productID).
		Uint(log.KeyProductQuantity, *param.Quantity).
		Logger()

	s, err := svc.find(c, id)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Session{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "setting product quantity").Logger()
	logger.Info().Msg("setting product quantity")
	snapshot, err := s.SetQuantity(productID, *param.Quantity)
	if err != nil {
		err = fmt.Errorf("failed setting quantity of productId=%s with error=%w", productID, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return toSession(snapshot), err
	}
	logger.Info().Str(log.KeyTotal, pricing.Total(snapshot.LineItems).StringFixed(2)).Msg("set product quantity")

	return toSession(snapshot), nil
}

// ApplyCoupon is the in-app coupon entry. Unlike the sheet callback its
// rejections are returned as errors.
func (svc *PaymentService) ApplyCoupon(
	c context.Context,
	id uuid.UUID,
	param request.ApplyCoupon,
) (response.Session, error) {
	c, span := otel.Tracer.Start(c, "PaymentService ApplyCoupon", trace.WithAttributes(
		attribute.String(log.KeySessionID, id.String()),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService ApplyCoupon").
		Str(log.KeySessionID, id.String()).
		Str(log.KeyCouponCode, param.Code).
		Logger()

	s, err := svc.find(c, id)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Session{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "applying coupon").Logger()
	logger.Info().Msg("applying coupon")
	snapshot, err := s.ApplyCoupon(param.Code)
	if err != nil {
		if errors.Is(err, pricing.ErrCouponAlreadyApplied) || errors.Is(err, pricing.ErrCouponNotFound) {
			svc.metrics.CouponResults.WithLabelValues(couponResultRejected).Inc()
		}
		err = fmt.Errorf("failed applying coupon with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return toSession(snapshot), err
	}
	if pricing.NormalizeCouponCode(param.Code) == "" {
		svc.metrics.CouponResults.WithLabelValues(couponResultCleared).Inc()
		logger.Info().Msg("coupon field cleared")
		return toSession(snapshot), nil
	}
	svc.metrics.CouponResults.WithLabelValues(couponResultApplied).Inc()
	logger.Info().Str(log.KeyTotal, pricing.Total(snapshot.LineItems).StringFixed(2)).Msg("applied coupon")

	return toSession(snapshot), nil
}

func (svc *PaymentService) SelectShipping(
	c context.Context,
	id uuid.UUID,
	param request.SelectShipping,
) (response.Session, error) {
	c, span := otel.Tracer.Start(c, "PaymentService SelectShipping", trace.WithAttributes(
		attribute.String(log.KeySessionID, id.String()),
		attribute.String(log.KeyShippingMethodID, param.MethodID),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService SelectShipping").
		Str(log.KeySessionID, id.String()).
		Str(log.KeyShippingMethodID, param.MethodID).
		Logger()

	s, err := svc.find(c, id)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Session{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "selecting shipping method").Logger()
	logger.Info().Msg("selecting shipping method")
	snapshot, err := s.SelectShipping(param.MethodID)
	if err != nil {
		err = fmt.Errorf("failed selecting shipping method with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return toSession(snapshot), err
	}
	logger.Info().Str(log.KeyTotal, pricing.Total(snapshot.LineItems).StringFixed(2)).Msg("selected shipping method")

	return toSession(snapshot), nil
}

// BeginPayment moves the session into processing and returns the request the
// payment sheet is presented with.
func (svc *PaymentService) BeginPayment(c context.Context, id uuid.UUID) (response.PaymentRequest, error) {
	c, span := otel.Tracer.Start(c, "PaymentService BeginPayment", trace.WithAttributes(
		attribute.String(log.KeySessionID, id.String()),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService BeginPayment").
		Str(log.KeySessionID, id.String()).
		Bool(log.KeyCanMakePayments, svc.merchant.CanMakePayments).
		Logger()

	s, err := svc.find(c, id)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PaymentRequest{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "beginning payment").Logger()
	logger.Info().Msg("beginning payment")
	snapshot, err := s.Begin(svc.merchant.CanMakePayments)
	if err != nil {
		err = fmt.Errorf("failed beginning payment with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PaymentRequest{}, err
	}
	logger = logger.With().Any(log.KeyLineItems, snapshot.LineItems).Logger()
	logger.Info().Msg("began payment")

	return toPaymentRequest(svc.merchant, svc.catalog, snapshot, svc.now()), nil
}

// CouponChanged answers the sheet's coupon callback. Coupon rejections come
// back as display errors; only a session in the wrong phase is an error.
func (svc *PaymentService) CouponChanged(
	c context.Context,
	id uuid.UUID,
	param request.CouponCodeChanged,
) (response.CouponCodeUpdate, error) {
	c, span := otel.Tracer.Start(c, "PaymentService CouponChanged", trace.WithAttributes(
		attribute.String(log.KeySessionID, id.String()),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService CouponChanged").
		Str(log.KeySessionID, id.String()).
		Str(log.KeyCouponCode, param.Code).
		Logger()

	s, err := svc.find(c, id)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CouponCodeUpdate{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "applying sheet coupon").Logger()
	logger.Info().Msg("applying sheet coupon")
	update, err := s.CouponChanged(param.Code)
	if err != nil {
		err = fmt.Errorf("failed applying sheet coupon with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CouponCodeUpdate{}, err
	}
	switch {
	case update.Err != nil:
		svc.metrics.CouponResults.WithLabelValues(couponResultRejected).Inc()
		logger.Info().Err(update.Err).Msg("sheet coupon rejected")
	case pricing.NormalizeCouponCode(param.Code) == "":
		svc.metrics.CouponResults.WithLabelValues(couponResultCleared).Inc()
		logger.Info().Msg("sheet coupon cleared")
	default:
		svc.metrics.CouponResults.WithLabelValues(couponResultApplied).Inc()
		logger.Info().Msg("applied sheet coupon")
	}

	return response.CouponCodeUpdate{
		Errors:              toCouponErrors(update.Err),
		PaymentSummaryItems: toSummaryItems(update.Snapshot.LineItems),
		ShippingMethods:     toShippingMethods(svc.catalog.SortedShippingMethods(update.Snapshot.Cart.Shipping.ID), svc.now()),
	}, nil
}

func (svc *PaymentService) ShippingChanged(
	c context.Context,
	id uuid.UUID,
	param request.ShippingMethodChanged,
) (response.ShippingMethodUpdate, error) {
	c, span := otel.Tracer.Start(c, "PaymentService ShippingChanged", trace.WithAttributes(
		attribute.String(log.KeySessionID, id.String()),
		attribute.String(log.KeyShippingMethodID, param.MethodID),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService ShippingChanged").
		Str(log.KeySessionID, id.String()).
		Str(log.KeyShippingMethodID, param.MethodID).
		Logger()

	s, err := svc.find(c, id)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ShippingMethodUpdate{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "changing shipping method").Logger()
	logger.Info().Msg("changing shipping method")
	snapshot, err := s.ShippingChanged(param.MethodID)
	if err != nil {
		err = fmt.Errorf("failed changing shipping method with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ShippingMethodUpdate{}, err
	}
	logger.Info().Str(log.KeyTotal, pricing.Total(snapshot.LineItems).StringFixed(2)).Msg("changed shipping method")

	return response.ShippingMethodUpdate{PaymentSummaryItems: toSummaryItems(snapshot.LineItems)}, nil
}

// Authorize verifies the authorized payment and settles the session. A decline
// is a normal result. Receipt publishing failures are logged and never turn an
// approval into a decline.
func (svc *PaymentService) Authorize(
	c context.Context,
	id uuid.UUID,
	payment request.AuthorizedPayment,
) (response.AuthorizationResult, error) {
	c, span := otel.Tracer.Start(c, "PaymentService Authorize", trace.WithAttributes(
		attribute.String(log.KeySessionID, id.String()),
		attribute.String(log.KeyTransactionID, payment.Token.TransactionIdentifier),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService Authorize").
		Str(log.KeySessionID, id.String()).
		Str(log.KeyTransactionID, payment.Token.TransactionIdentifier).
		Logger()

	s, err := svc.find(c, id)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.AuthorizationResult{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "verifying payment").Logger()
	logger.Info().Msg("verifying payment")
	c = logger.WithContext(c)
	start := time.Now()
	outcome, err := s.Authorize(c, payment, svc.verifier)
	if err != nil {
		err = fmt.Errorf("failed authorizing payment with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.AuthorizationResult{}, err
	}
	svc.metrics.VerificationDuration.Observe(time.Since(start).Seconds())
	logger = logger.With().
		Bool(log.KeyPaymentApproved, outcome.Approved).
		Str(log.KeySessionPhase, outcome.Snapshot.Phase.String()).
		Logger()

	if !outcome.Approved {
		svc.metrics.PaymentOutcomes.WithLabelValues(session.PhaseFailed.String()).Inc()
		span.SetAttributes(attribute.Bool(log.KeyPaymentApproved, false))
		if errors.Is(outcome.VerifyErr, verify.ErrVerificationFailed) {
			logger.Info().Any(log.KeyPaymentErrors, outcome.Errors).Msg("payment declined")
		} else {
			err := fmt.Errorf("failed verifying payment with error=%w", outcome.VerifyErr)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
		return response.AuthorizationResult{
			Status: response.StatusFailure,
			Errors: toPaymentErrors(outcome.Errors),
		}, nil
	}
	svc.metrics.PaymentOutcomes.WithLabelValues(session.PhaseSucceeded.String()).Inc()
	span.SetAttributes(attribute.Bool(log.KeyPaymentApproved, true))
	logger.Info().Msg("payment approved")

	logger = logger.With().Str(log.KeyProcess, "publishing receipt").Logger()
	logger.Info().Msg("publishing receipt")
	r := receipt.New(outcome.Snapshot, payment.Token.TransactionIdentifier, svc.now())
	if err := svc.publisher.Publish(c, r); err != nil {
		err = fmt.Errorf("failed publishing receipt with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Str(log.KeyReceipt, r.ID.String()).Msg("published receipt")
	}

	return response.AuthorizationResult{Status: response.StatusSuccess, Errors: []response.PaymentError{}}, nil
}

// Dismiss is called when the sheet finishes, whatever the outcome.
func (svc *PaymentService) Dismiss(c context.Context, id uuid.UUID) (response.Session, error) {
	c, span := otel.Tracer.Start(c, "PaymentService Dismiss", trace.WithAttributes(
		attribute.String(log.KeySessionID, id.String()),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService Dismiss").
		Str(log.KeySessionID, id.String()).
		Logger()

	s, err := svc.find(c, id)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Session{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "dismissing payment sheet").Logger()
	logger.Info().Msg("dismissing payment sheet")
	before := s.Snapshot().Phase
	snapshot, err := s.Dismiss()
	if err != nil {
		err = fmt.Errorf("failed dismissing payment sheet with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return toSession(snapshot), err
	}
	if before == session.PhaseProcessing && snapshot.Phase == session.PhaseCancelled {
		svc.metrics.PaymentOutcomes.WithLabelValues(session.PhaseCancelled.String()).Inc()
	}
	logger.Info().Str(log.KeySessionPhase, snapshot.Phase.String()).Msg("dismissed payment sheet")

	return toSession(snapshot), nil
}

func (svc *PaymentService) Acknowledge(c context.Context, id uuid.UUID) (response.Session, error) {
	c, span := otel.Tracer.Start(c, "PaymentService Acknowledge", trace.WithAttributes(
		attribute.String(log.KeySessionID, id.String()),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService Acknowledge").
		Str(log.KeySessionID, id.String()).
		Logger()

	s, err := svc.find(c, id)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Session{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "acknowledging payment outcome").Logger()
	logger.Info().Msg("acknowledging payment outcome")
	snapshot, err := s.Acknowledge()
	if err != nil {
		err = fmt.Errorf("failed acknowledging payment outcome with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return toSession(snapshot), err
	}
	logger.Info().Msg("acknowledged payment outcome")

	return toSession(snapshot), nil
}

// EvictExpired drops sessions untouched for longer than the session ttl and
// returns how many were dropped.
func (svc *PaymentService) EvictExpired(c context.Context) int {
	_, span := otel.Tracer.Start(c, "PaymentService EvictExpired")
	defer span.End()

	deadline := svc.now().Add(-svc.ttl).UnixNano()
	evicted := 0
	svc.mu.Lock()
	for id, e := range svc.sessions {
		if e.lastSeen.Load() < deadline {
			delete(svc.sessions, id)
			evicted++
		}
	}
	svc.mu.Unlock()
	svc.metrics.ActiveSessions.Sub(float64(evicted))
	span.SetAttributes(attribute.Int("evicted", evicted))
	return evicted
}

// RunJanitor evicts expired sessions every interval until c is done.
func (svc *PaymentService) RunJanitor(c context.Context, interval time.Duration) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService RunJanitor").
		Str(log.KeyProcess, "evicting expired sessions").
		Logger()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stopped evicting expired sessions")
			return
		case <-ticker.C:
			if evicted := svc.EvictExpired(c); evicted > 0 {
				logger.Info().Int("evicted", evicted).Msg("evicted expired sessions")
			}
		}
	}
}
