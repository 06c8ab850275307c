package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Catalog is the fixed set of products, coupons and shipping methods a cart may
// reference. Carts are only ever built and modified through it.
type Catalog struct {
	Products        []Product
	Coupons         []Coupon
	ShippingMethods []ShippingMethod
	DefaultShipping string
}

const (
	ProductHello = "HELLO"
	ProductLike  = "LIKE"
	ProductLove  = "LOVE"

	ShippingExpress  = "EXPRESS"
	ShippingStandard = "STANDARD"
)

func DefaultCatalog() Catalog {
	sameDay := 0
	return Catalog{
		Products: []Product{
			{ID: ProductHello, Label: "Hello From Itsuki", Price: decimal.RequireFromString("9.99")},
			{ID: ProductLike, Label: "Like From Itsuki", Price: decimal.RequireFromString("999.99")},
			{ID: ProductLove, Label: "Love From Itsuki", Price: decimal.RequireFromString("99999.99")},
		},
		Coupons: []Coupon{
			{Code: "ITSUKI10", Rate: decimal.RequireFromString("0.1")},
			{Code: "ITSUKI20", Rate: decimal.RequireFromString("0.2")},
			{Code: "ITSUKI30", Rate: decimal.RequireFromString("0.3")},
		},
		ShippingMethods: []ShippingMethod{
			{
				ID:           ShippingExpress,
				Label:        "Itsuki's Express",
				Price:        decimal.RequireFromString("9.99"),
				Detail:       "Get your items immediately!",
				DeliveryDays: &sameDay,
			},
			{
				ID:     ShippingStandard,
				Label:  "Itsuki's standard",
				Price:  decimal.Zero,
				Detail: "Your order will get delivered to you some time in the future!",
			},
		},
		DefaultShipping: ShippingStandard,
	}
}

// NewCart returns the default cart: the whole product list at quantity zero,
// the default shipping method and no coupon.
func (cat Catalog) NewCart() Cart {
	products := make([]Product, len(cat.Products))
	for i, p := range cat.Products {
		p.Quantity = 0
		products[i] = p
	}
	shipping, _ := cat.ShippingMethod(cat.DefaultShipping)
	return Cart{Products: products, Shipping: shipping}
}

func (cat Catalog) ShippingMethod(id string) (ShippingMethod, bool) {
	for _, m := range cat.ShippingMethods {
		if m.ID == id {
			return m, true
		}
	}
	return ShippingMethod{}, false
}

func (cat Catalog) Coupon(code string) (Coupon, bool) {
	code = NormalizeCouponCode(code)
	for _, c := range cat.Coupons {
		if c.Code == code {
			return c, true
		}
	}
	return Coupon{}, false
}

// SortedShippingMethods returns every method with the selected one first. The
// sheet pre-selects the first entry.
func (cat Catalog) SortedShippingMethods(selected string) []ShippingMethod {
	methods := make([]ShippingMethod, 0, len(cat.ShippingMethods))
	for _, m := range cat.ShippingMethods {
		if m.ID == selected {
			methods = append(methods, m)
		}
	}
	for _, m := range cat.ShippingMethods {
		if m.ID != selected {
			methods = append(methods, m)
		}
	}
	return methods
}

func (cat Catalog) SetQuantity(c Cart, productID string, quantity uint) (Cart, error) {
	for i, p := range c.Products {
		if p.ID != productID {
			continue
		}
		next := c.clone()
		next.Products[i].Quantity = quantity
		return next, nil
	}
	return c, fmt.Errorf("productId=%s: %w", productID, ErrProductNotFound)
}

func (cat Catalog) SelectShipping(c Cart, methodID string) (Cart, error) {
	method, ok := cat.ShippingMethod(methodID)
	if !ok {
		return c, fmt.Errorf("methodId=%s: %w", methodID, ErrShippingMethodUnknown)
	}
	next := c.clone()
	next.Shipping = method
	return next, nil
}

func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ApplyCoupon attaches the catalog coupon matching code. A blank code leaves the
// cart untouched, and a cart holds at most one coupon.
func (cat Catalog) ApplyCoupon(c Cart, code string) (Cart, error) {
	code = NormalizeCouponCode(code)
	if code == "" {
		return c, nil
	}
	if c.Coupon != nil {
		return c, ErrCouponAlreadyApplied
	}
	coupon, ok := cat.Coupon(code)
	if !ok {
		return c, ErrCouponNotFound
	}
	next := c.clone()
	next.Coupon = &coupon
	return next, nil
}
