package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/username/fxjournal/backend/src/config"
	"github.com/username/fxjournal/backend/src/database"
	"github.com/username/fxjournal/backend/src/logger"
	"github.com/username/fxjournal/backend/src/model"
	"github.com/username/fxjournal/backend/src/security"
	"github.com/username/fxjournal/backend/src/services"
	"github.com/username/fxjournal/backend/src/utils"
)

type UserHandler struct {
	authService  *security.AuthService
	emailService services.EmailService
	tradeService services.TradeService
}

func NewUserHandler(authService *security.AuthService, emailService services.EmailService, tradeService services.TradeService) *UserHandler {
	return &UserHandler{
		authService:  authService,
		emailService: emailService,
		tradeService: tradeService,
	}
}

func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	credentials.Username = strings.TrimSpace(credentials.Username)
	credentials.Email = strings.TrimSpace(credentials.Email)

	if len(credentials.Username) < 3 {
		utils.SendJSONError(w, "Username must be at least 3 characters", http.StatusBadRequest)
		return
	}
	if _, err := mail.ParseAddress(credentials.Email); err != nil {
		utils.SendJSONError(w, "Invalid email address", http.StatusBadRequest)
		return
	}
	if len(credentials.Password) < 8 {
		utils.SendJSONError(w, "Password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	hashedPassword, err := h.authService.HashPassword(credentials.Password)
	if err != nil {
		logger.L.Error("Failed to hash password during registration", "error", err)
		utils.SendJSONError(w, "Failed to process registration", http.StatusInternalServerError)
		return
	}

	user := &model.User{
		Username:     credentials.Username,
		Email:        credentials.Email,
		Password:     hashedPassword,
		AuthProvider: "local",
	}
	if err := user.CreateUser(database.DB); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			utils.SendJSONError(w, "Username already exists", http.StatusConflict)
			return
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			utils.SendJSONError(w, "Email already registered", http.StatusConflict)
			return
		}
		logger.L.Error("Failed to create user", "error", err)
		utils.SendJSONError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	token, err := h.authService.GenerateRandomToken()
	if err == nil {
		err = model.SetVerificationToken(database.DB, user.ID, token, time.Now().Add(config.Cfg.VerificationTokenExpiry))
	}
	if err != nil {
		logger.L.Error("Failed to store verification token", "userID", user.ID, "error", err)
	} else if sendErr := h.emailService.SendVerificationEmail(user.Email, user.Username, token); sendErr != nil {
		// Registration still succeeds: the user can request a resend later.
		logger.L.Error("Failed to send verification email", "userID", user.ID, "error", sendErr)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "User registered successfully. Please check your email to verify your account.",
	})
}

func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByUsername(database.DB, credentials.Username)
	if err != nil {
		logger.L.Debug("Login: user lookup failed", "username", credentials.Username, "error", err)
		utils.SendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}
	if err := h.authService.CompareHashAndPassword(user.Password, credentials.Password); err != nil {
		logger.L.Debug("Login: password check failed", "username", credentials.Username)
		utils.SendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}
	if user.AuthProvider == "local" && !user.IsEmailVerified {
		utils.SendJSONError(w, "Email not verified. Please check your inbox.", http.StatusForbidden)
		return
	}

	accessToken, refreshToken, err := h.issueSession(r, user.ID)
	if err != nil {
		logger.L.Error("Login: failed to issue session", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	logger.L.Info("User logged in", "userID", user.ID, "username", user.Username)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// issueSession mints a token pair and persists the session row.
func (h *UserHandler) issueSession(r *http.Request, userID int64) (accessToken, refreshToken string, err error) {
	accessToken, err = h.authService.GenerateToken(fmt.Sprintf("%d", userID))
	if err != nil {
		return "", "", err
	}
	refreshToken, err = h.authService.GenerateRandomToken()
	if err != nil {
		return "", "", err
	}
	session := &model.Session{
		UserID:       userID,
		Token:        accessToken,
		RefreshToken: refreshToken,
		UserAgent:    r.UserAgent(),
		ClientIP:     r.RemoteAddr,
		ExpiresAt:    time.Now().Add(config.Cfg.RefreshTokenExpiry),
	}
	if err = model.CreateSession(database.DB, session); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (h *UserHandler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if requestBody.RefreshToken == "" {
		utils.SendJSONError(w, "Refresh token is required", http.StatusBadRequest)
		return
	}

	session, err := model.GetSessionByRefreshToken(database.DB, requestBody.RefreshToken)
	if err != nil {
		logger.L.Warn("Refresh token validation failed", "error", err)
		utils.SendJSONError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	// Rotate: the old session dies with its access token.
	if err := model.DeleteSessionByToken(database.DB, session.Token); err != nil {
		logger.L.Warn("Failed to delete old session on refresh", "sessionID", session.ID, "error", err)
	}

	accessToken, refreshToken, err := h.issueSession(r, session.UserID)
	if err != nil {
		logger.L.Error("Refresh: failed to issue session", "userID", session.UserID, "error", err)
		utils.SendJSONError(w, "Failed to create new session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *UserHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" {
		utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
		return
	}

	if err := model.DeleteSessionByToken(database.DB, tokenString); err != nil {
		logger.L.Warn("Logout: failed to delete session", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.SendJSONError(w, "Verification token is required", http.StatusBadRequest)
		return
	}

	if err := model.VerifyEmailByToken(database.DB, token); err != nil {
		logger.L.Warn("Email verification failed", "error", err)
		utils.SendJSONError(w, "Verification token invalid or expired", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Email verified successfully. You can now log in.",
	})
}

func (h *UserHandler) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// The response never reveals whether the email exists.
	respond := func() {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "If an account exists for that email, a password reset link has been sent.",
		})
	}

	user, err := model.GetUserByEmail(database.DB, strings.TrimSpace(requestBody.Email))
	if err != nil {
		logger.L.Debug("Password reset requested for unknown email", "error", err)
		respond()
		return
	}
	if user.AuthProvider != "local" {
		logger.L.Debug("Password reset requested for non-local account", "userID", user.ID)
		respond()
		return
	}

	token, err := h.authService.GenerateRandomToken()
	if err == nil {
		err = model.SetPasswordResetToken(database.DB, user.ID, token, time.Now().Add(config.Cfg.PasswordResetTokenExpiry))
	}
	if err != nil {
		logger.L.Error("Failed to store password reset token", "userID", user.ID, "error", err)
		respond()
		return
	}
	if sendErr := h.emailService.SendPasswordResetEmail(user.Email, user.Username, token); sendErr != nil {
		logger.L.Error("Failed to send password reset email", "userID", user.ID, "error", sendErr)
	}
	respond()
}

func (h *UserHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if requestBody.Token == "" {
		utils.SendJSONError(w, "Reset token is required", http.StatusBadRequest)
		return
	}
	if len(requestBody.NewPassword) < 8 {
		utils.SendJSONError(w, "Password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	hashedPassword, err := h.authService.HashPassword(requestBody.NewPassword)
	if err != nil {
		logger.L.Error("Failed to hash password during reset", "error", err)
		utils.SendJSONError(w, "Failed to process password reset", http.StatusInternalServerError)
		return
	}

	if err := model.ResetPasswordByToken(database.DB, requestBody.Token, hashedPassword); err != nil {
		logger.L.Warn("Password reset failed", "error", err)
		utils.SendJSONError(w, "Password reset token invalid or expired", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Password reset successfully. You can now log in.",
	})
}

// HasDataHandler tells the frontend whether to show the empty-journal state.
func (h *UserHandler) HasDataHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "User not authenticated", http.StatusUnauthorized)
		return
	}

	hasData, err := h.tradeService.HasTrades(userID)
	if err != nil {
		logger.L.Error("Failed to check user data", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to check user data", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"hasData": hasData})
}
