package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/Alturino/checkout/cart/pkg/pricing"
	"github.com/Alturino/checkout/internal/common/constants"
	commonErrors "github.com/Alturino/checkout/internal/common/errors"
	commonOtel "github.com/Alturino/checkout/internal/common/otel"
	"github.com/Alturino/checkout/internal/config"
	"github.com/Alturino/checkout/internal/infra"
	"github.com/Alturino/checkout/internal/log"
	"github.com/Alturino/checkout/internal/metric"
	"github.com/Alturino/checkout/internal/middleware"
	"github.com/Alturino/checkout/internal/otel"
	"github.com/Alturino/checkout/payment/internal/controller"
	"github.com/Alturino/checkout/payment/internal/receipt"
	"github.com/Alturino/checkout/payment/internal/service"
	"github.com/Alturino/checkout/payment/internal/verify"
)

const (
	janitorInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

// initLogger swaps the process logger for one writing to the configured log
// file, if any.
func initLogger(c context.Context, appName string, cfg *config.Config) (context.Context, zerolog.Logger) {
	logger := *zerolog.Ctx(c)
	if cfg.Application.LogPath != "" {
		logger = log.NewLogger(cfg.Application.LogPath, cfg.Application.Env)
	}
	logger = logger.With().Str(log.KeyAppName, appName).Logger()
	return logger.WithContext(c), logger
}

func RunPaymentService(c context.Context) {
	c, span := commonOtel.Tracer.Start(c, "RunPaymentService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppPaymentService).
		Str(log.KeyTag, "main RunPaymentService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppPaymentService)
	c, logger = initLogger(c, constants.AppPaymentService, cfg)
	logger = logger.With().Str(log.KeyTag, "main RunPaymentService").Logger()
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.AppPaymentService, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := otel.ShutdownOtel(shutdownCtx, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	var publisher receipt.Publisher = receipt.NopPublisher{}
	if cfg.Cache.Enabled {
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
		defer func() {
			logger.Info().Msg("shutting down cache")
			if err := cache.Close(); err != nil {
				err = fmt.Errorf("failed shutting down cache with error=%w", err)
				logger.Error().Err(err).Msg(err.Error())
				return
			}
			logger.Info().Msg("shutdown cache")
		}()
		publisher = receipt.NewRedisPublisher(cache, cfg.Cache.ReceiptChannel)
		logger.Info().Msg("initialized cache")
	}

	logger = logger.With().Str(log.KeyProcess, "initializing payment service").Logger()
	logger.Info().Msg("initializing payment service")
	metrics := metric.New()
	paymentService := service.NewPaymentService(
		cfg,
		pricing.DefaultCatalog(),
		verify.New(cfg.Payment),
		publisher,
		metrics,
	)
	go paymentService.RunJanitor(c, janitorInterval)
	logger.Info().Msg("initialized payment service")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(otelmux.Middleware(constants.AppPaymentService), middleware.Logging, middleware.RecoverPanic)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	controller.AttachPaymentController(router, paymentService, cfg.Application.SecretKey)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	baseCtx := c
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger := logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown server")
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutting down http server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown http server")
}
