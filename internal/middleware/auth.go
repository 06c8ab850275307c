package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/checkout/internal/common"
	commonErrors "github.com/Alturino/checkout/internal/common/errors"
	commonHttp "github.com/Alturino/checkout/internal/common/http"
	"github.com/Alturino/checkout/internal/common/otel"
	"github.com/Alturino/checkout/internal/log"
)

// Auth requires a bearer session token. When the matched route carries a
// {sessionId} variable the token subject must equal it.
func Auth(secretKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, span := otel.Tracer.Start(r.Context(), "middleware Auth")
			defer span.End()

			logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware Auth").Logger()

			logger = logger.With().Str(log.KeyProcess, "reading authorization header").Logger()
			authorization := r.Header.Get(commonHttp.HeaderAuthorization)
			token, found := strings.CutPrefix(authorization, "Bearer ")
			if !found {
				token, found = strings.CutPrefix(authorization, "bearer ")
			}
			if !found || token == "" {
				err := commonErrors.ErrEmptyAuth
				commonErrors.HandleError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				unauthorized(logger.WithContext(c), w, err)
				return
			}

			logger = logger.With().Str(log.KeyProcess, "verifying token").Logger()
			sessionID, err := common.VerifyToken(c, secretKey, token)
			if err != nil {
				commonErrors.HandleError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				unauthorized(logger.WithContext(c), w, commonErrors.ErrTokenInvalid)
				return
			}
			logger = logger.With().Str(log.KeySessionID, sessionID.String()).Logger()

			if pathID, ok := mux.Vars(r)["sessionId"]; ok {
				logger = logger.With().Str(log.KeyProcess, "matching session").Logger()
				id, err := uuid.Parse(pathID)
				if err != nil || id != sessionID {
					err = errors.Join(commonErrors.ErrSessionDenied, err)
					commonErrors.HandleError(err, span)
					logger.Error().Err(err).Msg(err.Error())
					commonHttp.WriteJsonResponse(logger.WithContext(c), w, map[string]string{}, map[string]interface{}{
						"status":     commonHttp.StatusFailed,
						"statusCode": http.StatusForbidden,
						"message":    commonErrors.ErrSessionDenied.Error(),
					})
					return
				}
			}
			logger.Trace().Msg("authorized request")

			c = common.AttachSessionIDToContext(c, sessionID)
			c = logger.WithContext(c)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}

func unauthorized(c context.Context, w http.ResponseWriter, err error) {
	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     commonHttp.StatusFailed,
		"statusCode": http.StatusUnauthorized,
		"message":    err.Error(),
	})
}
