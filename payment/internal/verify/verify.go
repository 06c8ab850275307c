// Package verify decides whether an authorized payment is accepted. It is the
// seam where a real deployment hands the token to its payment processor.
package verify

import (
	"context"
	"errors"
	"strings"

	"github.com/Alturino/checkout/internal/config"
	"github.com/Alturino/checkout/payment/pkg/request"
)

var ErrVerificationFailed = errors.New("payment verification failed")

const (
	CodeShippingContactInvalid = "shippingContactInvalid"
	CodeBillingContactInvalid  = "billingContactInvalid"
	CodeUnknown                = "unknown"

	FieldName = "name"
)

type Verifier interface {
	Verify(c context.Context, payment request.AuthorizedPayment) error
}

type FieldError struct {
	Code         string `json:"code"`
	ContactField string `json:"contactField,omitempty"`
	Message      string `json:"message"`
}

// Error carries the display errors shown on the sheet for a declined payment.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, f.Message)
	}
	if len(messages) == 0 {
		return ErrVerificationFailed.Error()
	}
	return ErrVerificationFailed.Error() + ": " + strings.Join(messages, "; ")
}

func (e *Error) Unwrap() error {
	return ErrVerificationFailed
}

func Declined(fields ...FieldError) error {
	return &Error{Fields: fields}
}

// FieldErrors extracts display errors from err. Errors that carry none still get
// one generic entry so the sheet has something to show.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var verr *Error
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		return verr.Fields
	}
	return []FieldError{{Code: CodeUnknown, Message: "Payment could not be verified."}}
}

// Contact is the placeholder check: only orders shipping to GivenName go through.
type Contact struct {
	GivenName string
}

const DefaultGivenName = "ITSUKI"

func NewContact(givenName string) Contact {
	if givenName == "" {
		givenName = DefaultGivenName
	}
	return Contact{GivenName: strings.ToUpper(givenName)}
}

func (v Contact) Verify(c context.Context, payment request.AuthorizedPayment) error {
	if err := c.Err(); err != nil {
		return err
	}
	if strings.ToUpper(payment.ShippingGivenName()) != v.GivenName {
		return Declined(FieldError{
			Code:         CodeShippingContactInvalid,
			ContactField: FieldName,
			Message:      "Hello, like and love are only sent to " + v.GivenName + ".",
		})
	}
	return nil
}

const (
	KindContact   = "contact"
	KindProcessor = "processor"
)

// New picks the verifier named by cfg.Verifier.
func New(cfg config.Payment) Verifier {
	if cfg.Verifier == KindProcessor {
		return NewProcessor(cfg.ProcessorURL, nil)
	}
	return NewContact(cfg.AcceptedGivenName)
}
