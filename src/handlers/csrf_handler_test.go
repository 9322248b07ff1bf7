package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fxjournal/backend/src/logger"
)

var csrfTestKey = []byte("0123456789abcdef0123456789abcdef")

func TestCSRFTokenSignatureRoundTrip(t *testing.T) {
	token, err := generateCSRFToken(csrfTestKey)
	require.NoError(t, err)

	assert.True(t, validCSRFToken(csrfTestKey, token))
	assert.False(t, validCSRFToken([]byte("another-key-another-key-another!"), token))
	assert.False(t, validCSRFToken(csrfTestKey, "forged.token"))
	assert.False(t, validCSRFToken(csrfTestKey, "no-separator"))
}

func TestCSRFMiddleware(t *testing.T) {
	logger.InitLogger("error")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := CSRFMiddleware(csrfTestKey)(next)

	token, err := generateCSRFToken(csrfTestKey)
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		header     string
		cookie     string
		wantStatus int
	}{
		{"GET passes without token", http.MethodGet, "", "", http.StatusOK},
		{"OPTIONS passes without token", http.MethodOptions, "", "", http.StatusOK},
		{"POST with matching tokens", http.MethodPost, token, token, http.StatusOK},
		{"POST without tokens", http.MethodPost, "", "", http.StatusForbidden},
		{"POST with mismatched tokens", http.MethodPost, token, "different-value", http.StatusForbidden},
		{"POST with unsigned token", http.MethodPost, "nonce.badsig", "nonce.badsig", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/trades", nil)
			if tt.header != "" {
				req.Header.Set("X-CSRF-Token", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: tt.cookie})
			}

			rr := httptest.NewRecorder()
			protected.ServeHTTP(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
