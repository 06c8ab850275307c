// Package receipt announces approved payments on a redis channel and lets
// other processes listen for them.
package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/checkout/cart/pkg/pricing"
	commonErrors "github.com/Alturino/checkout/internal/common/errors"
	"github.com/Alturino/checkout/internal/common/otel"
	"github.com/Alturino/checkout/internal/log"
	"github.com/Alturino/checkout/payment/internal/session"
)

type Receipt struct {
	ID               uuid.UUID          `json:"id"`
	SessionID        uuid.UUID          `json:"sessionId"`
	TransactionID    string             `json:"transactionIdentifier"`
	ShippingMethodID string             `json:"shippingMethodId"`
	CouponCode       string             `json:"couponCode,omitempty"`
	LineItems        []pricing.LineItem `json:"lineItems"`
	Total            decimal.Decimal    `json:"total"`
	AuthorizedAt     time.Time          `json:"authorizedAt"`
}

// New builds the receipt of an approved snapshot.
func New(snapshot session.Snapshot, transactionID string, authorizedAt time.Time) Receipt {
	items := make([]pricing.LineItem, len(snapshot.LineItems))
	copy(items, snapshot.LineItems)
	couponCode := ""
	if snapshot.Cart.Coupon != nil {
		couponCode = snapshot.Cart.Coupon.Code
	}
	return Receipt{
		ID:               uuid.New(),
		SessionID:        snapshot.ID,
		TransactionID:    transactionID,
		ShippingMethodID: snapshot.Cart.Shipping.ID,
		CouponCode:       couponCode,
		LineItems:        items,
		Total:            pricing.Total(snapshot.LineItems),
		AuthorizedAt:     authorizedAt.UTC(),
	}
}

type Publisher interface {
	Publish(c context.Context, r Receipt) error
}

// NopPublisher drops receipts. Used when no cache is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Receipt) error {
	return nil
}

type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(c context.Context, r Receipt) error {
	c, span := otel.Tracer.Start(c, "RedisPublisher Publish")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisPublisher Publish").
		Str(log.KeyReceiptChannel, p.channel).
		Str(log.KeySessionID, r.SessionID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "marshaling receipt").Logger()
	logger.Trace().Msg("marshaling receipt")
	payload, err := json.Marshal(r)
	if err != nil {
		err = fmt.Errorf("failed marshaling receipt with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("marshaled receipt")

	logger = logger.With().Str(log.KeyProcess, "publishing receipt").Logger()
	logger.Trace().Msg("publishing receipt")
	if err := p.client.Publish(c, p.channel, payload).Err(); err != nil {
		err = fmt.Errorf("failed publishing receipt with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Str(log.KeyReceipt, r.ID.String()).Msg("published receipt")

	return nil
}

type Handler func(c context.Context, r Receipt) error

type Subscriber struct {
	client  *redis.Client
	channel string
}

func NewSubscriber(client *redis.Client, channel string) *Subscriber {
	return &Subscriber{client: client, channel: channel}
}

// Listen delivers every receipt published on the channel to handler until c
// is done. Undecodable messages and handler errors are logged and skipped.
func (s *Subscriber) Listen(c context.Context, handler Handler) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Subscriber Listen").
		Str(log.KeyReceiptChannel, s.channel).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "subscribing channel").Logger()
	logger.Info().Msg("subscribing channel")
	pubsub := s.client.Subscribe(c, s.channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(c); err != nil {
		err = fmt.Errorf("failed subscribing channel=%s with error=%w", s.channel, err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("subscribed channel")

	logger = logger.With().Str(log.KeyProcess, "receiving receipts").Logger()
	messages := pubsub.Channel()
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stopped receiving receipts")
			return nil
		case msg, ok := <-messages:
			if !ok {
				logger.Info().Msg("channel closed")
				return nil
			}
			s.handle(c, logger, msg, handler)
		}
	}
}

func (s *Subscriber) handle(c context.Context, logger zerolog.Logger, msg *redis.Message, handler Handler) {
	c, span := otel.Tracer.Start(c, "Subscriber handle")
	defer span.End()

	r := Receipt{}
	if err := json.Unmarshal([]byte(msg.Payload), &r); err != nil {
		err = fmt.Errorf("failed decoding receipt with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger = logger.With().Str(log.KeyReceipt, r.ID.String()).Logger()
	if err := handler(logger.WithContext(c), r); err != nil {
		err = fmt.Errorf("failed handling receipt with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Trace().Msg("handled receipt")
}
