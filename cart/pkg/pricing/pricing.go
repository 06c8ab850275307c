package pricing

import (
	"github.com/shopspring/decimal"
)

type LineItemKind string

const (
	KindProduct  LineItemKind = "product"
	KindDiscount LineItemKind = "discount"
	KindShipping LineItemKind = "shipping"
	KindTax      LineItemKind = "tax"
	KindTotal    LineItemKind = "total"
)

const (
	TaxLabel          = "TAX"
	DefaultTotalLabel = "Itsuki's World"
)

var DefaultTaxRate = decimal.RequireFromString("0.1")

type LineItem struct {
	Kind   LineItemKind    `json:"kind"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Engine derives line items. TotalLabel names whoever receives the payment.
type Engine struct {
	TaxRate    decimal.Decimal
	TotalLabel string
}

func NewEngine(taxRate decimal.Decimal, totalLabel string) Engine {
	if totalLabel == "" {
		totalLabel = DefaultTotalLabel
	}
	return Engine{TaxRate: taxRate, TotalLabel: totalLabel}
}

var DefaultEngine = NewEngine(DefaultTaxRate, DefaultTotalLabel)

func ComputeLineItems(c Cart) []LineItem {
	return DefaultEngine.LineItems(c)
}

// LineItems builds the summary in a fixed order. Every component is rounded to
// cents before it is summed into tax and total, so the total always equals the
// sum of the items the payment validator sees.
func (e Engine) LineItems(c Cart) []LineItem {
	items := make([]LineItem, 0, len(c.Products)+4)
	for _, p := range c.Products {
		items = append(items, LineItem{
			Kind:   KindProduct,
			Label:  p.SummaryLabel(),
			Amount: Round(p.GrandTotal()),
		})
	}

	// discount applies to product totals only, never to shipping
	if c.Coupon != nil {
		items = append(items, LineItem{
			Kind:   KindDiscount,
			Label:  c.Coupon.Label(),
			Amount: Round(c.ProductsTotal().Mul(c.Coupon.Rate).Neg()),
		})
	}

	items = append(items, LineItem{
		Kind:   KindShipping,
		Label:  c.Shipping.Label,
		Amount: Round(c.Shipping.Price),
	})

	items = append(items, LineItem{
		Kind:   KindTax,
		Label:  TaxLabel,
		Amount: Round(Sum(items).Mul(e.TaxRate)),
	})

	items = append(items, LineItem{
		Kind:   KindTotal,
		Label:  e.TotalLabel,
		Amount: Round(Sum(items)),
	})
	return items
}

// Round rounds half away from zero to cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func Sum(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}

// Total returns the grand total, which is always the last item.
func Total(items []LineItem) decimal.Decimal {
	if len(items) == 0 {
		return decimal.Zero
	}
	return items[len(items)-1].Amount
}
