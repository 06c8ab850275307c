package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	commonHttp "github.com/Alturino/checkout/internal/common/http"
	"github.com/Alturino/checkout/internal/log"
	"github.com/Alturino/checkout/payment/pkg/request"
)

// Processor forwards the payment token to a payment processor over HTTP. A 2xx
// answer approves, a 4xx answer declines with the processor's display errors.
type Processor struct {
	url    string
	client *http.Client
}

func NewProcessor(url string, client *http.Client) Processor {
	if client == nil {
		client = otelhttp.DefaultClient
	}
	return Processor{url: url, client: client}
}

type processorRequest struct {
	PaymentData           string                `json:"paymentData"`
	TransactionIdentifier string                `json:"transactionIdentifier"`
	PaymentMethod         request.PaymentMethod `json:"paymentMethod"`
	ShippingContact       *request.Contact      `json:"shippingContact,omitempty"`
}

type processorResponse struct {
	Errors []FieldError `json:"errors"`
}

func (p Processor) Verify(c context.Context, payment request.AuthorizedPayment) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Processor Verify").
		Str(log.KeyTransactionID, payment.Token.TransactionIdentifier).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "encoding processor request").Logger()
	logger.Trace().Msg("encoding processor request")
	body, err := json.Marshal(processorRequest{
		PaymentData:           payment.Token.PaymentData,
		TransactionIdentifier: payment.Token.TransactionIdentifier,
		PaymentMethod:         payment.Token.PaymentMethod,
		ShippingContact:       payment.ShippingContact,
	})
	if err != nil {
		err = fmt.Errorf("failed encoding processor request with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("encoded processor request")

	logger = logger.With().Str(log.KeyProcess, "calling payment processor").Logger()
	logger.Info().Msg("calling payment processor")
	req, err := http.NewRequestWithContext(c, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		err = fmt.Errorf("failed creating processor request with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	req.Header.Set(commonHttp.HeaderContentType, commonHttp.HeaderValueJson)
	if requestID, ok := log.RequestIDFromContext(c); ok {
		req.Header.Set(commonHttp.HeaderRequestID, requestID)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed calling payment processor with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer resp.Body.Close()
	logger = logger.With().Int(log.KeyStatusCode, resp.StatusCode).Logger()
	logger.Info().Msg("called payment processor")

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		decoded := processorResponse{}
		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err == nil && len(raw) > 0 {
			err = json.Unmarshal(raw, &decoded)
		}
		if err != nil {
			logger.Warn().Err(err).Msg("failed decoding processor errors")
		}
		logger.Info().Any(log.KeyPaymentErrors, decoded.Errors).Msg("payment declined by processor")
		return Declined(decoded.Errors...)
	default:
		err = fmt.Errorf("payment processor answered statusCode=%d", resp.StatusCode)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
}
