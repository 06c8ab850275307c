package common

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/checkout/internal/common/constants"
	commonErrors "github.com/Alturino/checkout/internal/common/errors"
	"github.com/Alturino/checkout/internal/common/otel"
	"github.com/Alturino/checkout/internal/log"
)

// IssueToken signs a session token whose subject is sessionID, valid from
// issuedAt for ttl.
func IssueToken(
	c context.Context,
	secretKey string,
	sessionID uuid.UUID,
	issuedAt time.Time,
	ttl time.Duration,
) (string, error) {
	c, span := otel.Tracer.Start(c, "IssueToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "IssueToken").
		Str(log.KeySessionID, sessionID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "signing token").Logger()
	logger.Trace().Msg("signing token")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    constants.AppPaymentService,
		Subject:   sessionID.String(),
		Audience:  jwt.ClaimStrings{constants.AudienceSession},
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		ID:        uuid.NewString(),
	}).SignedString([]byte(secretKey))
	if err != nil {
		err = fmt.Errorf("failed signing token with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Msg("signed token")

	return token, nil
}

// VerifyToken parses token and returns the session id carried in its subject.
func VerifyToken(c context.Context, secretKey string, token string) (uuid.UUID, error) {
	return VerifyTokenAt(c, secretKey, token, time.Now())
}

// VerifyTokenAt is VerifyToken with the time claims checked against now.
func VerifyTokenAt(c context.Context, secretKey string, token string, now time.Time) (uuid.UUID, error) {
	c, span := otel.Tracer.Start(c, "VerifyToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "VerifyToken").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing claims").Logger()
	logger.Trace().Msg("parsing claims")
	claims := &jwt.RegisteredClaims{}
	jwtToken, err := jwt.ParseWithClaims(token,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
		jwt.WithAudience(constants.AudienceSession),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.AppPaymentService),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing claims with error=%w: %w", commonErrors.ErrTokenInvalid, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	logger.Trace().Msg("parsed claims")

	logger = logger.With().Str(log.KeyProcess, "validating token").Logger()
	logger.Trace().Msg("validating token")
	if !jwtToken.Valid {
		err = fmt.Errorf("failed validating token with error=%w", commonErrors.ErrTokenInvalid)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	logger.Trace().Msg("validated token")

	logger = logger.With().Str(log.KeyProcess, "parsing subject").Logger()
	logger.Trace().Msg("parsing subject")
	if claims.Subject == "" {
		err = fmt.Errorf("failed parsing subject with error=%w", commonErrors.ErrEmptySubject)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	sessionID, err := uuid.Parse(claims.Subject)
	if err != nil {
		err = fmt.Errorf("failed parsing subject=%s with error=%w: %w", claims.Subject, commonErrors.ErrTokenInvalid, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	logger.Info().Str(log.KeySessionID, sessionID.String()).Msg("verified token")

	return sessionID, nil
}

type sessionIDKey struct{}

func AttachSessionIDToContext(c context.Context, sessionID uuid.UUID) context.Context {
	return context.WithValue(c, sessionIDKey{}, sessionID)
}

func SessionIDFromContext(c context.Context) (uuid.UUID, bool) {
	id, ok := c.Value(sessionIDKey{}).(uuid.UUID)
	return id, ok
}
