package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"go-bikemart/config"
)

// EmailService sends marketplace notifications over SMTP. When no SMTP host
// is configured the service is disabled and every send is a no-op, so local
// runs need no mail server.
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService initializes the notifier from configuration. A nil dialer
// marks the service disabled.
func NewEmailService(cfg config.Config) *EmailService {
	if cfg.SMTPHost == "" {
		return &EmailService{}
	}
	return &EmailService{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

// Enabled reports whether the service has an SMTP transport configured.
func (es *EmailService) Enabled() bool {
	return es != nil && es.dialer != nil
}

// SendBookingNotification tells a seller that a buyer booked their listing.
func (es *EmailService) SendBookingNotification(toEmail, bikeName, buyerName, buyerContact string) error {
	if !es.Enabled() {
		return nil
	}
	body := fmt.Sprintf(
		"<p>Your listing <b>%s</b> has a new booking.</p><p>Buyer: %s<br>Contact: %s</p>",
		bikeName, buyerName, buyerContact,
	)
	m := gomail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("New booking for %s", bikeName))
	m.SetBody("text/html", body)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
