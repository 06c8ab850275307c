package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/Alturino/checkout/cart/pkg/pricing"
	"github.com/Alturino/checkout/payment/internal/service"
	"github.com/Alturino/checkout/payment/internal/session"
)

var ErrBadRequest = errors.New("bad request")

func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrBadRequest):
		return "bad_request"

	case errors.Is(err, service.ErrSessionNotFound):
		return "session_not_found"

	case errors.Is(err, pricing.ErrProductNotFound):
		return "product_not_found"

	case errors.Is(err, pricing.ErrCouponNotFound):
		return "coupon_not_found"

	case errors.Is(err, pricing.ErrCouponAlreadyApplied):
		return "coupon_already_applied"

	case errors.Is(err, pricing.ErrShippingMethodUnknown):
		return "shipping_method_unknown"

	case errors.Is(err, session.ErrSheetUnavailable):
		return "sheet_unavailable"

	case errors.Is(err, session.ErrAuthorizationPending):
		return "authorization_pending"

	case errors.Is(err, session.ErrNoPaymentInProgress):
		return "no_payment_in_progress"

	case errors.Is(err, session.ErrInvalidTransition):
		return "invalid_transition"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrBadRequest),
		errors.Is(err, context.Canceled):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, pricing.ErrProductNotFound):
		return http.StatusNotFound

	case errors.Is(err, pricing.ErrCouponNotFound),
		errors.Is(err, pricing.ErrCouponAlreadyApplied),
		errors.Is(err, pricing.ErrShippingMethodUnknown):
		return http.StatusUnprocessableEntity

	case errors.Is(err, session.ErrSheetUnavailable):
		return http.StatusPreconditionFailed

	case session.IsConflict(err):
		return http.StatusConflict

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	default:
		return http.StatusInternalServerError
	}
}
