package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/username/fxjournal/backend/src/config"
	"github.com/username/fxjournal/backend/src/logger"
	"github.com/username/fxjournal/backend/src/utils"
)

const csrfCookieName = "fxjournal_csrf"

// GetCSRFToken issues a signed token as both a cookie and a response value.
// The client echoes it back in X-CSRF-Token on mutating requests.
func GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := generateCSRFToken(config.Cfg.CSRFAuthKey)
	if err != nil {
		logger.L.Error("Failed to generate CSRF token", "error", err)
		utils.SendJSONError(w, "Failed to generate CSRF token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   false, // behind TLS termination in production
		MaxAge:   3600,
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-CSRF-Token", token)
	json.NewEncoder(w).Encode(map[string]string{
		"csrfToken": token,
	})
}

// generateCSRFToken returns "<random>.<hmac>" so the middleware can verify
// the token was issued by this server without keeping state.
func generateCSRFToken(authKey []byte) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	nonce := base64.RawURLEncoding.EncodeToString(b)
	return nonce + "." + signCSRFNonce(authKey, nonce), nil
}

func signCSRFNonce(authKey []byte, nonce string) string {
	mac := hmac.New(sha256.New, authKey)
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func validCSRFToken(authKey []byte, token string) bool {
	nonce, sig, found := strings.Cut(token, ".")
	if !found || nonce == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(signCSRFNonce(authKey, nonce)))
}

// CSRFMiddleware validates the double-submit token on mutating requests.
// Safe methods and preflight requests pass through untouched.
func CSRFMiddleware(authKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			headerToken := r.Header.Get("X-CSRF-Token")
			cookie, err := r.Cookie(csrfCookieName)
			if headerToken != "" && err == nil && headerToken == cookie.Value && validCSRFToken(authKey, headerToken) {
				next.ServeHTTP(w, r)
				return
			}

			logger.L.Warn("CSRF validation failed", "method", r.Method, "path", r.URL.Path, "origin", r.Header.Get("Origin"))
			utils.SendJSONError(w, "CSRF token validation failed", http.StatusForbidden)
		})
	}
}
