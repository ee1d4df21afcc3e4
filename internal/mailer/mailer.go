package mailer

import (
	"fmt"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// dialer is satisfied by *gomail.Dialer.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends listing notifications through an SMTP relay.
type SMTPMailer struct {
	dialer dialer
	from   string
	logger *logger.Logger
}

func NewSMTPMailer(host string, port int, username, password, from string, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		logger: log.Named("SMTPMailer"),
	}
}

func (s *SMTPMailer) SendListingCreated(toEmail, username, listingTitle string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "New Listing Created")
	m.SetBody("text/plain", listingCreatedText(username, listingTitle))
	m.AddAlternative("text/html", listingCreatedHTML(username, listingTitle))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("Failed to send listing created email", zap.String("to", toEmail), zap.Error(err))
		return fmt.Errorf("send listing created email: %w", err)
	}
	s.logger.Info("Listing created email sent", zap.String("to", toEmail))
	return nil
}

func listingCreatedText(username, title string) string {
	return fmt.Sprintf("Hello %s,\n\nYour listing '%s' has been created successfully.\n", username, title)
}

func listingCreatedHTML(username, title string) string {
	return fmt.Sprintf("<p>Hello %s,</p><p>Your listing <b>%s</b> has been created successfully.</p>", username, title)
}

// NopMailer is used when SMTP is not configured.
type NopMailer struct{}

func (NopMailer) SendListingCreated(string, string, string) error { return nil }
