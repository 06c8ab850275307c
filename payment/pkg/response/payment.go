package response

const (
	SummaryItemFinal = "final"

	StatusSuccess = "success"
	StatusFailure = "failure"

	ShippingTypeDelivery = "delivery"

	CodeCouponCodeInvalid = "couponCodeInvalid"
)

// PaymentRequest is built once per sheet presentation from the current cart.
// The last summary item is the grand total.
type PaymentRequest struct {
	MerchantIdentifier            string           `json:"merchantIdentifier"`
	MerchantCapabilities          []string         `json:"merchantCapabilities"`
	CurrencyCode                  string           `json:"currencyCode"`
	CountryCode                   string           `json:"countryCode"`
	SupportedNetworks             []string         `json:"supportedNetworks"`
	RequiredBillingContactFields  []string         `json:"requiredBillingContactFields"`
	RequiredShippingContactFields []string         `json:"requiredShippingContactFields"`
	ShippingType                  string           `json:"shippingType"`
	ShippingMethods               []ShippingMethod `json:"shippingMethods"`
	SupportsCouponCode            bool             `json:"supportsCouponCode"`
	CouponCode                    string           `json:"couponCode,omitempty"`
	PaymentSummaryItems           []SummaryItem    `json:"paymentSummaryItems"`
}

type SummaryItem struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
	Type   string `json:"type"`
}

type ShippingMethod struct {
	Identifier          string     `json:"identifier"`
	Label               string     `json:"label"`
	Amount              string     `json:"amount"`
	Detail              string     `json:"detail"`
	DateComponentsRange *DateRange `json:"dateComponentsRange,omitempty"`
}

// DateRange holds calendar dates formatted as YYYY-MM-DD.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type PaymentError struct {
	Code         string `json:"code"`
	ContactField string `json:"contactField,omitempty"`
	Message      string `json:"message"`
}

type CouponCodeUpdate struct {
	Errors              []PaymentError   `json:"errors"`
	PaymentSummaryItems []SummaryItem    `json:"paymentSummaryItems"`
	ShippingMethods     []ShippingMethod `json:"shippingMethods"`
}

type ShippingMethodUpdate struct {
	PaymentSummaryItems []SummaryItem `json:"paymentSummaryItems"`
}

type AuthorizationResult struct {
	Status string         `json:"status"`
	Errors []PaymentError `json:"errors"`
}

func (r AuthorizationResult) Approved() bool {
	return r.Status == StatusSuccess
}
