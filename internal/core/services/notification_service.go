package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"health-service-api/internal/config"
)

// NotificationService delivers the out-of-band admin verification email for
// new registrations. Delivery is best-effort: registration never fails
// because the mail did not go out.
type NotificationService struct {
	cfg     config.NotifyConfig
	enabled bool
}

// NewNotificationService creates a new notification service
func NewNotificationService(cfg *config.Config) *NotificationService {
	enabled := cfg.Notify.SMTPHost != "" && cfg.Notify.AdminEmail != ""
	if !enabled {
		log.Println("⚠️ Admin notification disabled (SMTP_HOST or ADMIN_EMAIL not set)")
	}
	return &NotificationService{
		cfg:     cfg.Notify,
		enabled: enabled,
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// NotifyRegistration sends the admin a verification link for a newly
// registered user
func (s *NotificationService) NotifyRegistration(userID uint, email, role, token string) {
	if !s.enabled {
		return
	}

	link := fmt.Sprintf("%s/api/v1/admin/verify/%d/%s", s.cfg.BaseURL, userID, token)

	subject := "New registration pending verification"
	body := fmt.Sprintf(
		"A new %s has registered with email %s.\r\n\r\n"+
			"Review and verify the account within 24 hours:\r\n%s\r\n",
		role, email, link,
	)

	go func() {
		if err := s.send(subject, body); err != nil {
			log.Printf("⚠️ Failed to send admin notification for user %d: %v", userID, err)
			return
		}
		log.Printf("✅ Admin notified about registration: %s", email)
	}()
}

// send delivers a plain-text mail to the admin address
func (s *NotificationService) send(subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + s.cfg.AdminEmail,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}

	return smtp.SendMail(addr, auth, s.cfg.From, []string{s.cfg.AdminEmail}, []byte(msg))
}
