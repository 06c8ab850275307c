package service

import (
	"errors"
	"time"

	"github.com/Alturino/checkout/cart/pkg/pricing"
	"github.com/Alturino/checkout/internal/config"
	"github.com/Alturino/checkout/payment/internal/session"
	"github.com/Alturino/checkout/payment/internal/verify"
	"github.com/Alturino/checkout/payment/pkg/response"
)

const dateLayout = "2006-01-02"

var (
	requiredBillingContactFields  = []string{"name", "emailAddress", "phoneNumber"}
	requiredShippingContactFields = []string{"name", "postalAddress"}
)

func toSummaryItems(items []pricing.LineItem) []response.SummaryItem {
	summary := make([]response.SummaryItem, 0, len(items))
	for _, item := range items {
		summary = append(summary, response.SummaryItem{
			Label:  item.Label,
			Amount: item.Amount.StringFixed(2),
			Type:   response.SummaryItemFinal,
		})
	}
	return summary
}

func toShippingMethods(methods []pricing.ShippingMethod, now time.Time) []response.ShippingMethod {
	result := make([]response.ShippingMethod, 0, len(methods))
	for _, m := range methods {
		method := response.ShippingMethod{
			Identifier: m.ID,
			Label:      m.Label,
			Amount:     m.Price.StringFixed(2),
			Detail:     m.Detail,
		}
		if window := m.DeliveryWindow(now); window != nil {
			method.DateComponentsRange = &response.DateRange{
				Start: window.Start.Format(dateLayout),
				End:   window.End.Format(dateLayout),
			}
		}
		result = append(result, method)
	}
	return result
}

func couponCode(cart pricing.Cart) string {
	if cart.Coupon == nil {
		return ""
	}
	return cart.Coupon.Code
}

func toCart(snapshot session.Snapshot) response.Cart {
	products := make([]response.Product, 0, len(snapshot.Cart.Products))
	for _, p := range snapshot.Cart.Products {
		products = append(products, response.Product{
			ID:       p.ID,
			Label:    p.Label,
			Price:    p.Price.StringFixed(2),
			Quantity: p.Quantity,
		})
	}
	return response.Cart{
		Products:     products,
		CouponCode:   couponCode(snapshot.Cart),
		ShippingID:   snapshot.Cart.Shipping.ID,
		SummaryItems: toSummaryItems(snapshot.LineItems),
		Total:        pricing.Total(snapshot.LineItems).StringFixed(2),
	}
}

func toSession(snapshot session.Snapshot) response.Session {
	return response.Session{
		ID:    snapshot.ID,
		Phase: snapshot.Phase.String(),
		Cart:  toCart(snapshot),
	}
}

func toPaymentErrors(fields []verify.FieldError) []response.PaymentError {
	errs := make([]response.PaymentError, 0, len(fields))
	for _, f := range fields {
		errs = append(errs, response.PaymentError{
			Code:         f.Code,
			ContactField: f.ContactField,
			Message:      f.Message,
		})
	}
	return errs
}

// toCouponErrors turns a coupon rejection into the message shown on the sheet.
func toCouponErrors(err error) []response.PaymentError {
	switch {
	case err == nil:
		return []response.PaymentError{}
	case errors.Is(err, pricing.ErrCouponAlreadyApplied):
		return []response.PaymentError{{Code: response.CodeCouponCodeInvalid, Message: "A Coupon is already applied"}}
	default:
		return []response.PaymentError{{Code: response.CodeCouponCodeInvalid, Message: "Invalid Coupon Code."}}
	}
}

func toPaymentRequest(
	merchant config.Merchant,
	catalog pricing.Catalog,
	snapshot session.Snapshot,
	now time.Time,
) response.PaymentRequest {
	return response.PaymentRequest{
		MerchantIdentifier:            merchant.ID,
		MerchantCapabilities:          merchant.MerchantCapabilities,
		CurrencyCode:                  merchant.CurrencyCode,
		CountryCode:                   merchant.CountryCode,
		SupportedNetworks:             merchant.SupportedNetworks,
		RequiredBillingContactFields:  requiredBillingContactFields,
		RequiredShippingContactFields: requiredShippingContactFields,
		ShippingType:                  response.ShippingTypeDelivery,
		ShippingMethods:               toShippingMethods(catalog.SortedShippingMethods(snapshot.Cart.Shipping.ID), now),
		SupportsCouponCode:            true,
		CouponCode:                    couponCode(snapshot.Cart),
		PaymentSummaryItems:           toSummaryItems(snapshot.LineItems),
	}
}
