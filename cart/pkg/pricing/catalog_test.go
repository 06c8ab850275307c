package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCoupon(t *testing.T) {
	catalog := DefaultCatalog()
	withCoupon, err := catalog.ApplyCoupon(catalog.NewCart(), "ITSUKI30")
	require.NoError(t, err)

	tests := []struct {
		name         string
		input        Cart
		code         string
		expectedCode string
		expectedErr  error
	}{
		{name: "given blank code should leave cart unchanged", input: catalog.NewCart(), code: "   "},
		{name: "given empty code on couponed cart should keep coupon", input: withCoupon, code: "", expectedCode: "ITSUKI30"},
		{name: "given lowercase padded code should apply coupon", input: catalog.NewCart(), code: "  itsuki10\n", expectedCode: "ITSUKI10"},
		{name: "given unknown code should return not found", input: catalog.NewCart(), code: "FREE", expectedErr: ErrCouponNotFound},
		{
			name:         "given second coupon should return already applied",
			input:        withCoupon,
			code:         "ITSUKI10",
			expectedCode: "ITSUKI30",
			expectedErr:  ErrCouponAlreadyApplied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := catalog.ApplyCoupon(tt.input, tt.code)
			assert.ErrorIs(t, err, tt.expectedErr)
			if tt.expectedErr == nil {
				assert.NoError(t, err)
			}
			if tt.expectedCode == "" {
				assert.Nil(t, actual.Coupon)
				return
			}
			require.NotNil(t, actual.Coupon)
			assert.Equal(t, tt.expectedCode, actual.Coupon.Code)
		})
	}
}

func TestApplyCouponBlankReturnsIdenticalCart(t *testing.T) {
	catalog := DefaultCatalog()
	cart := catalog.NewCart()
	actual, err := catalog.ApplyCoupon(cart, "")
	require.NoError(t, err)
	assert.Equal(t, cart, actual)
	assert.Same(t, &cart.Products[0], &actual.Products[0])
}

func TestApplyCouponDoesNotMutateInput(t *testing.T) {
	catalog := DefaultCatalog()
	cart := catalog.NewCart()
	_, err := catalog.ApplyCoupon(cart, "ITSUKI10")
	require.NoError(t, err)
	assert.Nil(t, cart.Coupon)
}

func TestSetQuantity(t *testing.T) {
	catalog := DefaultCatalog()
	cart := catalog.NewCart()

	updated, err := catalog.SetQuantity(cart, ProductLove, 4)
	require.NoError(t, err)
	assert.Equal(t, uint(4), updated.Products[2].Quantity)
	assert.Equal(t, uint(0), cart.Products[2].Quantity)

	_, err = catalog.SetQuantity(cart, "NOPE", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSelectShipping(t *testing.T) {
	catalog := DefaultCatalog()
	cart := catalog.NewCart()
	assert.Equal(t, ShippingStandard, cart.Shipping.ID)

	express, err := catalog.SelectShipping(cart, ShippingExpress)
	require.NoError(t, err)
	assert.Equal(t, ShippingExpress, express.Shipping.ID)

	same, err := catalog.SelectShipping(express, "DRONE")
	assert.ErrorIs(t, err, ErrShippingMethodUnknown)
	assert.Equal(t, express, same)
}

func TestSortedShippingMethods(t *testing.T) {
	catalog := DefaultCatalog()

	ids := func(methods []ShippingMethod) []string {
		out := make([]string, len(methods))
		for i, m := range methods {
			out[i] = m.ID
		}
		return out
	}

	assert.Equal(t, []string{ShippingStandard, ShippingExpress}, ids(catalog.SortedShippingMethods(ShippingStandard)))
	assert.Equal(t, []string{ShippingExpress, ShippingStandard}, ids(catalog.SortedShippingMethods(ShippingExpress)))
	assert.Equal(t, []string{ShippingExpress, ShippingStandard}, ids(catalog.SortedShippingMethods("DRONE")))
}

func TestDeliveryWindow(t *testing.T) {
	catalog := DefaultCatalog()
	now := time.Date(2025, time.November, 30, 15, 4, 5, 0, time.UTC)

	express, ok := catalog.ShippingMethod(ShippingExpress)
	require.True(t, ok)
	window := express.DeliveryWindow(now)
	require.NotNil(t, window)
	assert.Equal(t, time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC), window.Start)
	assert.Equal(t, window.Start, window.End)

	threeDays := 3
	express.DeliveryDays = &threeDays
	assert.Equal(t, time.Date(2025, time.December, 3, 0, 0, 0, 0, time.UTC), express.DeliveryWindow(now).End)

	standard, ok := catalog.ShippingMethod(ShippingStandard)
	require.True(t, ok)
	assert.Nil(t, standard.DeliveryWindow(now))
}

func TestNewCartIsFresh(t *testing.T) {
	catalog := DefaultCatalog()
	a := catalog.NewCart()
	b := catalog.NewCart()
	a.Products[0].Quantity = 99
	assert.Equal(t, uint(0), b.Products[0].Quantity)
	for _, p := range catalog.NewCart().Products {
		assert.Equal(t, uint(0), p.Quantity, p.ID)
	}
	assert.Nil(t, catalog.NewCart().Coupon)
}
