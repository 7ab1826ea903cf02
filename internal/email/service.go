package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/thysis/room-designer-api/internal/logging"
)

// ErrDeliveryUnavailable indicates the mail transport is misconfigured or
// unreachable. Callers treat it as a distinct failure from a bad request.
var ErrDeliveryUnavailable = errors.New("email delivery unavailable")

type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    smtpUser,
	}
}

// SendPasswordResetCode mails the 6-digit reset code to the user.
func (s *Service) SendPasswordResetCode(ctx context.Context, toEmail, code string) error {
	logger := logging.GetLoggerFromContext(ctx)

	body, err := s.renderResetCodeTemplate(code)
	if err != nil {
		logger.Error("failed to render reset code email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, "Your password reset code", body); err != nil {
		logger.Error("failed to send reset code email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", ErrDeliveryUnavailable)
	}

	logger.Info("password reset code sent", "email", toEmail)
	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	if s.smtpHost == "" || s.smtpUser == "" {
		return ErrDeliveryUnavailable
	}

	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg)
}

func (s *Service) renderResetCodeTemplate(code string) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background-color: #4F46E5;
            color: white;
            padding: 20px;
            text-align: center;
            border-radius: 5px 5px 0 0;
        }
        .code {
            font-size: 32px;
            letter-spacing: 8px;
            font-weight: bold;
            text-align: center;
            padding: 20px;
            background-color: #F3F4F6;
            border-radius: 5px;
            margin: 20px 0;
        }
        .footer {
            font-size: 12px;
            color: #6B7280;
            text-align: center;
            margin-top: 20px;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>Password Reset</h1>
    </div>
    <p>Use the code below to reset your password. It expires in 15 minutes.</p>
    <div class="code">{{.Code}}</div>
    <p>If you didn't request a password reset, you can ignore this email.</p>
    <div class="footer">Room Designer</div>
</body>
</html>`

	t, err := template.New("reset_code").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, struct{ Code string }{Code: code}); err != nil {
		return "", err
	}

	return buf.String(), nil
}
