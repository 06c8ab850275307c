package pricing

import "errors"

var (
	ErrCouponAlreadyApplied  = errors.New("a coupon is already applied")
	ErrCouponNotFound        = errors.New("invalid coupon code")
	ErrShippingMethodUnknown = errors.New("shipping method unknown")
	ErrProductNotFound       = errors.New("product not found")
)
