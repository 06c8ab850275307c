package request

// AuthorizedPayment is what the payment sheet hands over once the user has
// authorized. PaymentData stays opaque, it is only forwarded to a processor.
type AuthorizedPayment struct {
	Token           PaymentToken `validate:"required" json:"token"`
	BillingContact  *Contact     `                    json:"billingContact,omitempty"`
	ShippingContact *Contact     `                    json:"shippingContact,omitempty"`
}

type PaymentToken struct {
	PaymentData           string        `validate:"required" json:"paymentData"`
	TransactionIdentifier string        `validate:"required" json:"transactionIdentifier"`
	PaymentMethod         PaymentMethod `                    json:"paymentMethod"`
}

type PaymentMethod struct {
	DisplayName string `json:"displayName"`
	Network     string `json:"network"`
	Type        string `json:"type"`
}

type Contact struct {
	Name          *PersonName    `json:"name,omitempty"`
	EmailAddress  string         `json:"emailAddress,omitempty"`
	PhoneNumber   string         `json:"phoneNumber,omitempty"`
	PostalAddress *PostalAddress `json:"postalAddress,omitempty"`
}

type PersonName struct {
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
}

type PostalAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (p AuthorizedPayment) ShippingGivenName() string {
	if p.ShippingContact == nil || p.ShippingContact.Name == nil {
		return ""
	}
	return p.ShippingContact.Name.GivenName
}

type CouponCodeChanged struct {
	Code string `validate:"max=64" json:"code"`
}

type ShippingMethodChanged struct {
	MethodID string `validate:"required,max=64" json:"methodId"`
}
