package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Alturino/checkout/cart/pkg/pricing"
)

type quoteOptions struct {
	hello    uint
	like     uint
	love     uint
	coupon   string
	shipping string
}

func newQuoteCommand() *cobra.Command {
	opts := quoteOptions{}
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Print the payment summary of a cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return quote(cmd.OutOrStdout(), pricing.DefaultCatalog(), opts)
		},
	}
	flags := cmd.Flags()
	flags.UintVar(&opts.hello, "hello", 0, "quantity of Hello")
	flags.UintVar(&opts.like, "like", 0, "quantity of Like")
	flags.UintVar(&opts.love, "love", 0, "quantity of Love")
	flags.StringVar(&opts.coupon, "coupon", "", "coupon code to apply")
	flags.StringVar(&opts.shipping, "shipping", "", "shipping method id")
	return cmd
}

func quote(w io.Writer, catalog pricing.Catalog, opts quoteOptions) error {
	cart := catalog.NewCart()
	quantities := []struct {
		id       string
		quantity uint
	}{
		{id: pricing.ProductHello, quantity: opts.hello},
		{id: pricing.ProductLike, quantity: opts.like},
		{id: pricing.ProductLove, quantity: opts.love},
	}

	var err error
	for _, q := range quantities {
		cart, err = catalog.SetQuantity(cart, q.id, q.quantity)
		if err != nil {
			return fmt.Errorf("failed setting quantity of %s with error=%w", q.id, err)
		}
	}
	if opts.shipping != "" {
		cart, err = catalog.SelectShipping(cart, opts.shipping)
		if err != nil {
			return fmt.Errorf("failed selecting shipping with error=%w", err)
		}
	}
	if opts.coupon != "" {
		cart, err = catalog.ApplyCoupon(cart, opts.coupon)
		if err != nil {
			return fmt.Errorf("failed applying coupon with error=%w", err)
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, item := range pricing.ComputeLineItems(cart) {
		fmt.Fprintf(tw, "%s\t%s\t\n", item.Label, item.Amount.StringFixed(2))
	}
	return tw.Flush()
}
