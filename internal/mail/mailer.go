package mail

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

// Config holds SMTP settings plus the public base URL used to build
// verification and reset links.
type Config struct {
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string
	BaseURL   string
}

// Mailer sends account emails over SMTP.
type Mailer struct {
	cfg Config
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendVerification emails the link that marks the account verified.
func (m *Mailer) SendVerification(to, code string) error {
	body := fmt.Sprintf(`<b>Welcome!</b><br>Click this link to verify your account:<br><a href="%s/verification/%s">%s/verification/%s</a>`,
		m.cfg.BaseURL, code, m.cfg.BaseURL, code)
	return m.send(to, "Welcome!", body)
}

// SendPasswordReset emails the link that opens the password reset flow.
func (m *Mailer) SendPasswordReset(to, code string) error {
	body := fmt.Sprintf(`<b>Hey there!</b><br>Click this link to reset your password:<br><a href="%s/password/reset/%s">%s/password/reset/%s</a>`,
		m.cfg.BaseURL, code, m.cfg.BaseURL, code)
	return m.send(to, "Password reset", body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	if m.cfg.SMTPHost == "" || m.cfg.FromEmail == "" {
		log.Printf("Mailer: SMTP config missing, skipping email to %s", to)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.FromEmail)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
