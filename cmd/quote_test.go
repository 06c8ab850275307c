package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/checkout/cart/pkg/pricing"
)

func TestQuote(t *testing.T) {
	testCases := []struct {
		name      string
		opts      quoteOptions
		wantLines []string
		wantTotal string
		wantErr   error
	}{
		{
			name:      "default cart",
			opts:      quoteOptions{hello: 1},
			wantLines: []string{"Hello From Itsuki * 1", "Itsuki's standard", "TAX"},
			wantTotal: "10.99",
		},
		{
			name:      "coupon is applied on products",
			opts:      quoteOptions{hello: 1, coupon: "itsuki10"},
			wantLines: []string{"COUPON: ITSUKI10", "-1.00"},
			wantTotal: "9.89",
		},
		{
			name:      "express shipping",
			opts:      quoteOptions{hello: 1, shipping: pricing.ShippingExpress},
			wantLines: []string{"Itsuki's Express"},
			wantTotal: "21.98",
		},
		{
			name:    "unknown coupon",
			opts:    quoteOptions{hello: 1, coupon: "NOPE"},
			wantErr: pricing.ErrCouponNotFound,
		},
		{
			name:    "unknown shipping",
			opts:    quoteOptions{hello: 1, shipping: "DRONE"},
			wantErr: pricing.ErrShippingMethodUnknown,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			err := quote(out, pricing.DefaultCatalog(), tc.opts)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)

			for _, line := range tc.wantLines {
				assert.Contains(t, out.String(), line)
			}
			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			last := lines[len(lines)-1]
			assert.Contains(t, last, pricing.DefaultTotalLabel)
			assert.True(t, strings.HasSuffix(strings.TrimSpace(last), tc.wantTotal), last)
		})
	}
}
