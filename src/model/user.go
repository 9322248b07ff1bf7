package model

import (
	"database/sql"
	"errors"
	"time"
)

type User struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Password        string    `json:"-"`
	AuthProvider    string    `json:"auth_provider"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Session struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	UserAgent    string    `json:"user_agent"`
	ClientIP     string    `json:"client_ip"`
	IsBlocked    bool      `json:"is_blocked"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

var ErrUserNotFound = errors.New("user not found")

// CreateUser inserts a new user into the database and sets its ID.
func (u *User) CreateUser(db *sql.DB) error {
	query := `
	INSERT INTO users (username, password, email, auth_provider, is_email_verified)
	VALUES (?, ?, ?, ?, ?)`

	if u.AuthProvider == "" {
		u.AuthProvider = "local"
	}
	res, err := db.Exec(query, u.Username, u.Password, u.Email, u.AuthProvider, u.IsEmailVerified)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.Password, &user.Email, &user.AuthProvider, &user.IsEmailVerified)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func GetUserByUsername(db *sql.DB, username string) (*User, error) {
	row := db.QueryRow(`SELECT id, username, password, email, auth_provider, is_email_verified FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func GetUserByEmail(db *sql.DB, email string) (*User, error) {
	row := db.QueryRow(`SELECT id, username, password, email, auth_provider, is_email_verified FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func GetUserByID(db *sql.DB, id int64) (*User, error) {
	row := db.QueryRow(`SELECT id, username, password, email, auth_provider, is_email_verified FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// SetVerificationToken stores a fresh email verification token for the user.
func SetVerificationToken(db *sql.DB, userID int64, token string, expiresAt time.Time) error {
	_, err := db.Exec(`UPDATE users SET email_verification_token = ?, email_verification_token_expires_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		token, expiresAt, userID)
	return err
}

// VerifyEmailByToken marks the owning user verified if the token is current.
func VerifyEmailByToken(db *sql.DB, token string) error {
	res, err := db.Exec(`
	UPDATE users
	SET is_email_verified = TRUE, email_verification_token = NULL, email_verification_token_expires_at = NULL, updated_at = CURRENT_TIMESTAMP
	WHERE email_verification_token = ? AND email_verification_token_expires_at > ?`,
		token, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.New("verification token invalid or expired")
	}
	return nil
}

// SetPasswordResetToken stores a fresh password reset token for the user.
func SetPasswordResetToken(db *sql.DB, userID int64, token string, expiresAt time.Time) error {
	_, err := db.Exec(`UPDATE users SET password_reset_token = ?, password_reset_token_expires_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		token, expiresAt, userID)
	return err
}

// ResetPasswordByToken replaces the password if the reset token is current.
func ResetPasswordByToken(db *sql.DB, token, hashedPassword string) error {
	res, err := db.Exec(`
	UPDATE users
	SET password = ?, password_reset_token = NULL, password_reset_token_expires_at = NULL, updated_at = CURRENT_TIMESTAMP
	WHERE password_reset_token = ? AND password_reset_token_expires_at > ?`,
		hashedPassword, token, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.New("password reset token invalid or expired")
	}
	return nil
}

// CreateSession inserts a new session into the database.
func CreateSession(db *sql.DB, session *Session) error {
	session.CreatedAt = time.Now()
	_, err := db.Exec(`
	INSERT INTO sessions (user_id, token, refresh_token, user_agent, client_ip, is_blocked, expires_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.UserID, session.Token, session.RefreshToken, session.UserAgent,
		session.ClientIP, session.IsBlocked, session.ExpiresAt, session.CreatedAt)
	return err
}

// GetSessionByToken retrieves an active, non-blocked session by its access token.
func GetSessionByToken(db *sql.DB, token string) (*Session, error) {
	row := db.QueryRow(`
	SELECT id, user_id, token, refresh_token, user_agent, client_ip, is_blocked, expires_at, created_at
	FROM sessions
	WHERE token = ? AND is_blocked = FALSE AND expires_at > ?`, token, time.Now())

	var session Session
	err := row.Scan(&session.ID, &session.UserID, &session.Token, &session.RefreshToken,
		&session.UserAgent, &session.ClientIP, &session.IsBlocked, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("session not found, expired, or blocked")
		}
		return nil, err
	}
	return &session, nil
}

// GetSessionByRefreshToken retrieves an active session by its refresh token.
// Refresh tokens are opaque, so this lookup is the only way to validate one.
func GetSessionByRefreshToken(db *sql.DB, refreshToken string) (*Session, error) {
	row := db.QueryRow(`
	SELECT id, user_id, token, refresh_token, user_agent, client_ip, is_blocked, expires_at, created_at
	FROM sessions
	WHERE refresh_token = ? AND is_blocked = FALSE AND expires_at > ?`, refreshToken, time.Now())

	var session Session
	err := row.Scan(&session.ID, &session.UserID, &session.Token, &session.RefreshToken,
		&session.UserAgent, &session.ClientIP, &session.IsBlocked, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("session not found, expired, or blocked")
		}
		return nil, err
	}
	return &session, nil
}

// DeleteSessionByToken removes a session based on the access token. A missing
// session is not an error: it may have expired already.
func DeleteSessionByToken(db *sql.DB, token string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}
