package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alturino/checkout/internal/common/constants"
	commonErrors "github.com/Alturino/checkout/internal/common/errors"
	commonOtel "github.com/Alturino/checkout/internal/common/otel"
	"github.com/Alturino/checkout/internal/config"
	"github.com/Alturino/checkout/internal/infra"
	"github.com/Alturino/checkout/internal/log"
	"github.com/Alturino/checkout/internal/otel"
	"github.com/Alturino/checkout/payment/internal/receipt"
)

var errCacheDisabled = errors.New("receipt listener needs cache.enabled=true")

func logReceipt(c context.Context, r receipt.Receipt) error {
	zerolog.Ctx(c).Info().
		Str(log.KeySessionID, r.SessionID.String()).
		Str(log.KeyTransactionID, r.TransactionID).
		Str(log.KeyTotal, r.Total.StringFixed(2)).
		Any(log.KeyLineItems, r.LineItems).
		Msg("received receipt")
	return nil
}

func RunReceiptListener(c context.Context) {
	c, span := commonOtel.Tracer.Start(c, "RunReceiptListener")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppReceiptListener).
		Str(log.KeyTag, "main RunReceiptListener").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppReceiptListener)
	c, logger = initLogger(c, constants.AppReceiptListener, cfg)
	logger = logger.With().Str(log.KeyTag, "main RunReceiptListener").Logger()
	logger.Info().Msg("initialized config")

	if !cfg.Cache.Enabled {
		err := errCacheDisabled
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.AppReceiptListener, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := otel.ShutdownOtel(shutdownCtx, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache, err := infra.NewCacheClient(c, cfg.Cache)
	if err != nil {
		err = fmt.Errorf("failed initializing cache with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer cache.Close()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "listening receipts").Logger()
	logger.Info().Msg("listening receipts")
	c = logger.WithContext(c)
	if err := receipt.NewSubscriber(cache, cfg.Cache.ReceiptChannel).Listen(c, logReceipt); err != nil {
		err = fmt.Errorf("failed listening receipts with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("stopped listening receipts")
}
