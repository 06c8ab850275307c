package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/checkout/internal/common"
	commonErrors "github.com/Alturino/checkout/internal/common/errors"
	commonHttp "github.com/Alturino/checkout/internal/common/http"
	"github.com/Alturino/checkout/internal/common/otel"
	"github.com/Alturino/checkout/internal/common/validate"
	"github.com/Alturino/checkout/internal/log"
	"github.com/Alturino/checkout/internal/middleware"
	"github.com/Alturino/checkout/payment/internal/service"
	"github.com/Alturino/checkout/payment/pkg/request"
)

type PaymentController struct {
	service *service.PaymentService
}

func AttachPaymentController(router *mux.Router, service *service.PaymentService, secretKey string) {
	controller := PaymentController{service: service}

	router.HandleFunc("/capability", controller.GetCapability).Methods(http.MethodGet)
	router.HandleFunc("/sessions", controller.CreateSession).Methods(http.MethodPost)

	sessions := router.PathPrefix("/sessions/{sessionId}").Subrouter()
	sessions.Use(middleware.Auth(secretKey))
	sessions.HandleFunc("", controller.FindSession).Methods(http.MethodGet)
	sessions.HandleFunc("/token", controller.RefreshToken).Methods(http.MethodPost)
	sessions.HandleFunc("/cart/products/{productId}", controller.SetQuantity).Methods(http.MethodPut)
	sessions.HandleFunc("/cart/coupon", controller.ApplyCoupon).Methods(http.MethodPost)
	sessions.HandleFunc("/cart/shipping", controller.SelectShipping).Methods(http.MethodPut)
	sessions.HandleFunc("/payment", controller.BeginPayment).Methods(http.MethodPost)
	sessions.HandleFunc("/payment/coupon", controller.CouponChanged).Methods(http.MethodPost)
	sessions.HandleFunc("/payment/shipping", controller.ShippingChanged).Methods(http.MethodPost)
	sessions.HandleFunc("/payment/authorize", controller.Authorize).Methods(http.MethodPost)
	sessions.HandleFunc("/payment/dismiss", controller.Dismiss).Methods(http.MethodPost)
	sessions.HandleFunc("/payment/acknowledge", controller.Acknowledge).Methods(http.MethodPost)
}

func writeFailed(c context.Context, w http.ResponseWriter, err error) {
	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     commonHttp.StatusFailed,
		"statusCode": HTTPStatus(err),
		"kind":       Kind(err),
		"message":    err.Error(),
	})
}

func writeSuccess(c context.Context, w http.ResponseWriter, statusCode int, message string, data map[string]interface{}) {
	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     commonHttp.StatusSuccess,
		"statusCode": statusCode,
		"message":    message,
		"data":       data,
	})
}

func decodeRequestBody(c context.Context, r *http.Request, dst interface{}) error {
	logger := zerolog.Ctx(c).With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed decoding request body with error=%w: %w", ErrBadRequest, err)
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	if err := validate.New().StructCtx(c, dst); err != nil {
		return fmt.Errorf("failed validating request body with error=%w: %w", ErrBadRequest, err)
	}
	logger.Trace().Msg("validated request body")
	return nil
}

func sessionIDFromContext(c context.Context) (uuid.UUID, error) {
	id, ok := common.SessionIDFromContext(c)
	if !ok {
		return uuid.Nil, fmt.Errorf("failed getting session id with error=%w", commonErrors.ErrEmptySubject)
	}
	return id, nil
}

func (ctrl PaymentController) GetCapability(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController GetCapability")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "PaymentController GetCapability").Logger()

	capability := ctrl.service.Capability(c)
	logger.Trace().Bool(log.KeyCanMakePayments, capability.CanMakePayments).Msg("got capability")

	writeSuccess(c, w, http.StatusOK, "capability found", map[string]interface{}{
		"capability": capability,
	})
}

func (ctrl PaymentController) CreateSession(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController CreateSession")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "PaymentController CreateSession").Logger()

	logger = logger.With().Str(log.KeyProcess, "creating session").Logger()
	logger.Info().Msg("creating session")
	c = logger.WithContext(c)
	created, err := ctrl.service.CreateSession(c)
	if err != nil {
		err = fmt.Errorf("failed creating session with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}
	logger.Info().Str(log.KeySessionID, created.ID.String()).Msg("created session")

	writeSuccess(c, w, http.StatusCreated, "successfully created session", map[string]interface{}{
		"session": created,
	})
}

func (ctrl PaymentController) FindSession(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController FindSession")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "PaymentController FindSession").Logger()

	sessionID, err := sessionIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "finding session").Logger()
	logger.Trace().Msg("finding session")
	c = logger.WithContext(c)
	found, err := ctrl.service.FindSession(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed finding sessionId=%s with error=%w", sessionID.String(), err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}
	logger.Trace().Msg("found session")

	writeSuccess(c, w, http.StatusOK, fmt.Sprintf("sessionId=%s found", sessionID.String()), map[string]interface{}{
		"session": found,
	})
}

func (ctrl PaymentController) SetQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController SetQuantity")
	defer span.End()

	pathValues := mux.Vars(r)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentController SetQuantity").
		Any(log.KeyPathValues, pathValues).
		Logger()

	sessionID, err := sessionIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	reqBody := request.SetQuantity{}
	if err := decodeRequestBody(logger.WithContext(c), r, &reqBody); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "setting product quantity").Logger()
	logger.Info().Msg("setting product quantity")
	c = logger.WithContext(c)
	updated, err := ctrl.service.SetQuantity(c, sessionID, pathValues["productId"], reqBody)
	if err != nil {
		err = fmt.Errorf("failed setting product quantity with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}
	logger.Info().Msg("set product quantity")

	writeSuccess(c, w, http.StatusOK, "successfully set product quantity", map[string]interface{}{
		"session": updated,
	})
}

func (ctrl PaymentController) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController ApplyCoupon")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "PaymentController ApplyCoupon").Logger()

	sessionID, err := sessionIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	reqBody := request.ApplyCoupon{}
	if err := decodeRequestBody(logger.WithContext(c), r, &reqBody); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "applying coupon").Logger()
	logger.Info().Msg("applying coupon")
	c = logger.WithContext(c)
	updated, err := ctrl.service.ApplyCoupon(c, sessionID, reqBody)
	if err != nil {
		err = fmt.Errorf("failed applying coupon with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}
	logger.Info().Msg("applied coupon")

	writeSuccess(c, w, http.StatusOK, "successfully applied coupon", map[string]interface{}{
		"session": updated,
	})
}

func (ctrl PaymentController) SelectShipping(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController SelectShipping")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "PaymentController SelectShipping").Logger()

	sessionID, err := sessionIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	reqBody := request.SelectShipping{}
	if err := decodeRequestBody(logger.WithContext(c), r, &reqBody); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "selecting shipping method").Logger()
	logger.Info().Msg("selecting shipping method")
	c = logger.WithContext(c)
	updated, err := ctrl.service.SelectShipping(c, sessionID, reqBody)
	if err != nil {
		err = fmt.Errorf("failed selecting shipping method with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}
	logger.Info().Msg("selected shipping method")

	writeSuccess(c, w, http.StatusOK, "successfully selected shipping method", map[string]interface{}{
		"session": updated,
	})
}

func (ctrl PaymentController) BeginPayment(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController BeginPayment")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "PaymentController BeginPayment").Logger()

	sessionID, err := sessionIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "beginning payment").Logger()
	logger.Info().Msg("beginning payment")
	c = logger.WithContext(c)
	paymentRequest, err := ctrl.service.BeginPayment(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed beginning payment with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}
	logger.Info().Msg("began payment")

	writeSuccess(c, w, http.StatusOK, "payment sheet ready", map[string]interface{}{
		"paymentRequest": paymentRequest,
	})
}

func (ctrl PaymentController) CouponChanged(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController CouponChanged")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "PaymentController CouponChanged").Logger()

	sessionID, err := sessionIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	reqBody := request.CouponCodeChanged{}
	if err := decodeRequestBody(logger.WithContext(c), r, &reqBody); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "changing coupon").Logger()
	logger.Info().Msg("changing coupon")
	c = logger.WithContext(c)
	update, err := ctrl.service.CouponChanged(c, sessionID, reqBody)
	if err != nil {
		err = fmt.Errorf("failed changing coupon with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}
	logger.Info().Msg("changed coupon")

	writeSuccess(c, w, http.StatusOK, "coupon code update", map[string]interface{}{
		"update": update,
	})
}

func (ctrl PaymentController) ShippingChanged(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController ShippingChanged")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "PaymentController ShippingChanged").Logger()

	sessionID, err := sessionIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	reqBody := request.ShippingMethodChanged{}
	if err := decodeRequestBody(logger.WithContext(c), r, &reqBody); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "changing shipping method").Logger()
	logger.Info().Msg("changing shipping method")
	c = logger.WithContext(c)
	update, err := ctrl.service.ShippingChanged(c, sessionID, reqBody)
	if err != nil {
		err = fmt.Errorf("failed changing shipping method with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}
	logger.Info().Msg("changed shipping method")

	writeSuccess(c, w, http.StatusOK, "shipping method update", map[string]interface{}{
		"update": update,
	})
}

// Authorize answers 200 for approvals and declines alike; the decision is in
// data.result.status.
func (ctrl PaymentController) Authorize(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController Authorize")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "PaymentController Authorize").Logger()

	sessionID, err := sessionIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	reqBody := request.AuthorizedPayment{}
	if err := decodeRequestBody(logger.WithContext(c), r, &reqBody); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "authorizing payment").Logger()
	logger.Info().Msg("authorizing payment")
	c = logger.WithContext(c)
	result, err := ctrl.service.Authorize(c, sessionID, reqBody)
	if err != nil {
		err = fmt.Errorf("failed authorizing payment with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}
	logger.Info().Bool(log.KeyPaymentApproved, result.Approved()).Msg("authorized payment")

	writeSuccess(c, w, http.StatusOK, "payment "+result.Status, map[string]interface{}{
		"result": result,
	})
}

func (ctrl PaymentController) RefreshToken(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController RefreshToken")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "PaymentController RefreshToken").Logger()

	sessionID, err := sessionIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "refreshing session token").Logger()
	logger.Info().Msg("refreshing session token")
	c = logger.WithContext(c)
	token, err := ctrl.service.RefreshToken(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed refreshing session token with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}
	logger.Info().Msg("refreshed session token")

	writeSuccess(c, w, http.StatusOK, "session token refreshed", map[string]interface{}{
		"token": token,
	})
}

func (ctrl PaymentController) Dismiss(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController Dismiss")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "PaymentController Dismiss").Logger()

	sessionID, err := sessionIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "dismissing payment sheet").Logger()
	logger.Info().Msg("dismissing payment sheet")
	c = logger.WithContext(c)
	updated, err := ctrl.service.Dismiss(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed dismissing payment sheet with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}
	logger.Info().Msg("dismissed payment sheet")

	writeSuccess(c, w, http.StatusOK, "payment sheet dismissed", map[string]interface{}{
		"session": updated,
	})
}

func (ctrl PaymentController) Acknowledge(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController Acknowledge")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "PaymentController Acknowledge").Logger()

	sessionID, err := sessionIDFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "acknowledging payment outcome").Logger()
	logger.Info().Msg("acknowledging payment outcome")
	c = logger.WithContext(c)
	updated, err := ctrl.service.Acknowledge(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed acknowledging payment outcome with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(c, w, err)
		return
	}
	logger.Info().Msg("acknowledged payment outcome")

	writeSuccess(c, w, http.StatusOK, "payment outcome acknowledged", map[string]interface{}{
		"session": updated,
	})
}
