// backend/src/services/email_service.go
package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/username/fxjournal/backend/src/config"
	"github.com/username/fxjournal/backend/src/logger"
)

// NewEmailService picks a provider from configuration. Anything it cannot
// fully configure falls back to the mock, which only logs.
func NewEmailService() EmailService {
	if config.Cfg == nil {
		logger.L.Error("Configuration is nil, email service defaulting to mock")
		return &MockEmailService{}
	}

	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("Initializing email service", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete, falling back to MockEmailService")
			return &MockEmailService{
				VerificationEmailBaseURL: config.Cfg.VerificationEmailBaseURL,
				PasswordResetBaseURL:     config.Cfg.PasswordResetBaseURL,
			}
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey)
		return &MailgunEmailService{
			mg:                       mg,
			senderEmail:              config.Cfg.SenderEmail,
			senderName:               config.Cfg.SenderName,
			verificationEmailBaseURL: config.Cfg.VerificationEmailBaseURL,
			passwordResetBaseURL:     config.Cfg.PasswordResetBaseURL,
		}
	case "smtp":
		if config.Cfg.SMTPServer == "" || config.Cfg.SMTPUser == "" || config.Cfg.SMTPPassword == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("SMTP configuration incomplete, falling back to MockEmailService")
			return &MockEmailService{
				VerificationEmailBaseURL: config.Cfg.VerificationEmailBaseURL,
				PasswordResetBaseURL:     config.Cfg.PasswordResetBaseURL,
			}
		}
		return &SMTPEmailService{
			SMTPServer:               config.Cfg.SMTPServer,
			SMTPPort:                 config.Cfg.SMTPPort,
			SMTPUser:                 config.Cfg.SMTPUser,
			SMTPPassword:             config.Cfg.SMTPPassword,
			SenderEmail:              config.Cfg.SenderEmail,
			VerificationEmailBaseURL: config.Cfg.VerificationEmailBaseURL,
			PasswordResetBaseURL:     config.Cfg.PasswordResetBaseURL,
		}
	default:
		logger.L.Info("Defaulting to MockEmailService")
		return &MockEmailService{
			VerificationEmailBaseURL: config.Cfg.VerificationEmailBaseURL,
			PasswordResetBaseURL:     config.Cfg.PasswordResetBaseURL,
		}
	}
}

type SMTPEmailService struct {
	SMTPServer               string
	SMTPPort                 int
	SMTPUser                 string
	SMTPPassword             string
	SenderEmail              string
	VerificationEmailBaseURL string
	PasswordResetBaseURL     string
}

func (s *SMTPEmailService) sendPlain(toEmail, subject, body string) error {
	header := map[string]string{
		"From":         s.SenderEmail,
		"To":           toEmail,
		"Subject":      subject,
		"MIME-version": "1.0",
		"Content-Type": "text/plain; charset=\"UTF-8\"",
	}
	message := ""
	for k, v := range header {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n" + body

	auth := smtp.PlainAuth("", s.SMTPUser, s.SMTPPassword, s.SMTPServer)
	addr := fmt.Sprintf("%s:%d", s.SMTPServer, s.SMTPPort)
	return smtp.SendMail(addr, auth, s.SenderEmail, []string{toEmail}, []byte(message))
}

func (s *SMTPEmailService) SendVerificationEmail(toEmail, username, token string) error {
	verificationLink := fmt.Sprintf("%s?token=%s", s.VerificationEmailBaseURL, token)
	body := fmt.Sprintf(`Hi %s,

Welcome to FXJournal! Please verify your email address by opening this link:
%s

If you did not create an account using this email address, please ignore this email.

Thanks,
The FXJournal Team`, username, verificationLink)

	if err := s.sendPlain(toEmail, "Verify Your Email Address for FXJournal", body); err != nil {
		logger.L.Error("Failed to send verification email via SMTP", "error", err, "to", toEmail)
		return fmt.Errorf("failed to send verification email via SMTP: %w", err)
	}
	logger.L.Info("Verification email sent via SMTP", "to", toEmail)
	return nil
}

func (s *SMTPEmailService) SendPasswordResetEmail(toEmail, username, token string) error {
	resetLink := fmt.Sprintf("%s?token=%s", s.PasswordResetBaseURL, token)
	body := fmt.Sprintf(`Hi %s,

You requested a password reset for your FXJournal account.
Please open the following link to reset your password:
%s

If you did not request a password reset, please ignore this email. This link will expire in %s.

Thanks,
The FXJournal Team`, username, resetLink, config.Cfg.PasswordResetTokenExpiry.String())

	if err := s.sendPlain(toEmail, "Password Reset Request for FXJournal", body); err != nil {
		logger.L.Error("Failed to send password reset email via SMTP", "error", err, "to", toEmail)
		return fmt.Errorf("failed to send password reset email via SMTP: %w", err)
	}
	logger.L.Info("Password reset email sent via SMTP", "to", toEmail)
	return nil
}

type MailgunEmailService struct {
	mg                       mailgun.Mailgun
	senderEmail              string
	senderName               string
	verificationEmailBaseURL string
	passwordResetBaseURL     string
}

func (s *MailgunEmailService) SendVerificationEmail(toEmail, username, token string) error {
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	verificationLink := fmt.Sprintf("%s?token=%s", s.verificationEmailBaseURL, token)

	plainTextBody := fmt.Sprintf(`Hi %s,

Welcome to FXJournal! Please verify your email address by clicking the link below:
%s

If you did not create an account using this email address, please ignore this email.

Thanks,
The FXJournal Team`, username, verificationLink)

	htmlBody := fmt.Sprintf(`
	<html>
		<body style="font-family: Arial, sans-serif; line-height: 1.6;">
			<p>Hi %s,</p>
			<p>Welcome to FXJournal! Please verify your email address by clicking the link below:</p>
			<p><a href="%s" target="_blank" style="color: #1a73e8; text-decoration: none; font-weight: bold; padding: 10px 15px; border: 1px solid #1a73e8; border-radius: 4px; background-color: #e8f0fe;">Verify Email Address</a></p>
			<p>If the button above doesn't work, copy and paste this link into your browser:</p>
			<p><a href="%s" target="_blank" style="color: #1a73e8;">%s</a></p>
			<p>If you did not create an account using this email address, please ignore this email.</p>
			<p>Thanks,<br>The FXJournal Team</p>
		</body>
	</html>`, username, verificationLink, verificationLink, verificationLink)

	message := s.mg.NewMessage(from, "Verify Your Email Address for FXJournal", plainTextBody, toEmail)
	message.SetHtml(htmlBody)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send verification email via Mailgun", "error", err, "to", toEmail, "mailgunResp", resp, "mailgunId", id)
		return fmt.Errorf("mailgun send failed: %w", err)
	}
	logger.L.Info("Verification email sent via Mailgun", "to", toEmail, "id", id)
	return nil
}

func (s *MailgunEmailService) SendPasswordResetEmail(toEmail, username, token string) error {
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	resetLink := fmt.Sprintf("%s?token=%s", s.passwordResetBaseURL, token)
	expiry := config.Cfg.PasswordResetTokenExpiry.String()

	plainTextBody := fmt.Sprintf(`Hi %s,

You requested a password reset for your FXJournal account.
Please click the following link to reset your password:
%s

If you did not request a password reset, please ignore this email. This link will expire in %s.

Thanks,
The FXJournal Team`, username, resetLink, expiry)

	htmlBody := fmt.Sprintf(`
	<html>
		<body style="font-family: Arial, sans-serif; line-height: 1.6;">
			<p>Hi %s,</p>
			<p>You requested a password reset for your FXJournal account. Please click the button below to reset your password:</p>
			<p><a href="%s" target="_blank" style="color: #1a73e8; text-decoration: none; font-weight: bold; padding: 10px 15px; border: 1px solid #1a73e8; border-radius: 4px; background-color: #e8f0fe;">Reset Password</a></p>
			<p>If the button above doesn't work, copy and paste this link into your browser:</p>
			<p><a href="%s" target="_blank" style="color: #1a73e8;">%s</a></p>
			<p>If you did not request this reset, please ignore this email. This link will expire in %s.</p>
			<p>Thanks,<br>The FXJournal Team</p>
		</body>
	</html>`, username, resetLink, resetLink, resetLink, expiry)

	message := s.mg.NewMessage(from, "Password Reset Request for FXJournal", plainTextBody, toEmail)
	message.SetHtml(htmlBody)
	message.AddTag("password-reset")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send password reset email via Mailgun", "error", err, "to", toEmail, "mailgunResp", resp, "mailgunId", id)
		return fmt.Errorf("mailgun send failed for password reset: %w", err)
	}
	logger.L.Info("Password reset email sent via Mailgun", "to", toEmail, "id", id)
	return nil
}

type MockEmailService struct {
	VerificationEmailBaseURL string
	PasswordResetBaseURL     string
}

func (m *MockEmailService) SendVerificationEmail(toEmail, username, token string) error {
	verificationLink := fmt.Sprintf("%s?token=%s", m.VerificationEmailBaseURL, token)
	logger.L.Info("MockEmailService: would send verification email", "to", toEmail, "username", username, "verificationLink", verificationLink)
	return nil
}

func (m *MockEmailService) SendPasswordResetEmail(toEmail, username, token string) error {
	resetLink := fmt.Sprintf("%s?token=%s", m.PasswordResetBaseURL, token)
	logger.L.Info("MockEmailService: would send password reset email", "to", toEmail, "username", username, "resetLink", resetLink)
	return nil
}
