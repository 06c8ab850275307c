package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/checkout/internal/common"
	commonHttp "github.com/Alturino/checkout/internal/common/http"
	"github.com/Alturino/checkout/internal/log"
)

const secret = "0123456789abcdef0123456789abcdef"

func newAuthRouter(t *testing.T) *mux.Router {
	t.Helper()
	router := mux.NewRouter()
	router.Use(Auth(secret))
	router.HandleFunc("/sessions/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := common.SessionIDFromContext(r.Context())
		require.True(t, ok)
		_, _ = io.WriteString(w, id.String())
	})
	return router
}

func TestAuth(t *testing.T) {
	sessionID := uuid.New()
	token, err := common.IssueToken(context.Background(), secret, sessionID, time.Now(), time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name          string
		path          string
		authorization string
		expected      int
	}{
		{name: "given matching token should pass", path: "/sessions/" + sessionID.String(), authorization: "Bearer " + token, expected: http.StatusOK},
		{name: "given missing header should be unauthorized", path: "/sessions/" + sessionID.String(), expected: http.StatusUnauthorized},
		{name: "given invalid token should be unauthorized", path: "/sessions/" + sessionID.String(), authorization: "Bearer nope", expected: http.StatusUnauthorized},
		{name: "given token of another session should be forbidden", path: "/sessions/" + uuid.NewString(), authorization: "Bearer " + token, expected: http.StatusForbidden},
		{name: "given malformed session id should be forbidden", path: "/sessions/abc", authorization: "Bearer " + token, expected: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authorization != "" {
				req.Header.Set(commonHttp.HeaderAuthorization, tt.authorization)
			}
			rec := httptest.NewRecorder()
			newAuthRouter(t).ServeHTTP(rec, req)

			assert.Equal(t, tt.expected, rec.Code)
			if tt.expected == http.StatusOK {
				assert.Equal(t, sessionID.String(), rec.Body.String())
			}
		})
	}
}

func TestLogging(t *testing.T) {
	body := `{"token":{"paymentData":"secret"},"code":"itsuki10"}`
	var seenBody string
	var seenRequestID string
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seenBody = string(raw)
		seenRequestID, _ = log.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body))
	req.Header.Set(commonHttp.HeaderRequestID, "request-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, body, seenBody)
	assert.Equal(t, "request-1", seenRequestID)
	assert.Equal(t, "request-1", rec.Header().Get(commonHttp.HeaderRequestID))
}

func TestRecoverPanic(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{name: "given error panic should respond 500", value: assert.AnError},
		{name: "given string panic should respond 500", value: "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RecoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.value)
			}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			response := map[string]interface{}{}
			require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&response))
			assert.Equal(t, commonHttp.StatusFailed, response["status"])
		})
	}
}
