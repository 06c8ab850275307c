// Package pricing holds the cart data model and derives the ordered payment
// summary (products, discount, shipping, tax, total) handed to the payment sheet.
package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Price    decimal.Decimal `json:"price"`
	Quantity uint            `json:"quantity"`
}

func (p Product) GrandTotal() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

func (p Product) SummaryLabel() string {
	return fmt.Sprintf("%s * %d", p.Label, p.Quantity)
}

// Coupon is identified by its code. Rate is the fraction taken off product totals.
type Coupon struct {
	Code string          `json:"code"`
	Rate decimal.Decimal `json:"rate"`
}

func (c Coupon) ID() string {
	return c.Code
}

func (c Coupon) Label() string {
	return strings.ToUpper("Coupon: " + c.Code)
}

type ShippingMethod struct {
	ID           string          `json:"id"`
	Label        string          `json:"label"`
	Price        decimal.Decimal `json:"price"`
	Detail       string          `json:"detail"`
	DeliveryDays *int            `json:"delivery_days,omitempty"`
}

type DateRange struct {
	Start time.Time
	End   time.Time
}

// DeliveryWindow returns the calendar days between now and the promised
// delivery day, or nil when the method makes no promise.
func (s ShippingMethod) DeliveryWindow(now time.Time) *DateRange {
	if s.DeliveryDays == nil {
		return nil
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return &DateRange{Start: start, End: start.AddDate(0, 0, *s.DeliveryDays)}
}

// Cart is a value. Every mutation goes through Catalog and returns a new Cart,
// the product slice is never shared between two carts.
type Cart struct {
	Products []Product      `json:"products"`
	Coupon   *Coupon        `json:"coupon,omitempty"`
	Shipping ShippingMethod `json:"shipping"`
}

func (c Cart) clone() Cart {
	products := make([]Product, len(c.Products))
	copy(products, c.Products)
	c.Products = products
	if c.Coupon != nil {
		coupon := *c.Coupon
		c.Coupon = &coupon
	}
	return c
}

func (c Cart) ProductsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.Products {
		total = total.Add(p.GrandTotal())
	}
	return total
}
