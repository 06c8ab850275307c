package response

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID    uuid.UUID `json:"id"`
	Phase string    `json:"phase"`
	Cart  Cart      `json:"cart"`
}

type SessionToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type CreatedSession struct {
	Session
	SessionToken
}

type Cart struct {
	Products     []Product     `json:"products"`
	CouponCode   string        `json:"couponCode,omitempty"`
	ShippingID   string        `json:"shippingId"`
	SummaryItems []SummaryItem `json:"summaryItems"`
	Total        string        `json:"total"`
}

type Product struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Price    string `json:"price"`
	Quantity uint   `json:"quantity"`
}

type Capability struct {
	CanMakePayments bool `json:"canMakePayments"`
}
