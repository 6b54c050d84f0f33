// internal/pkg/email/service.go
package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sellasticpots/shop-backend/internal/config"
	"github.com/sellasticpots/shop-backend/internal/domain/order"
)

// Service sends transactional email over SMTP
type Service struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewService creates a new email service
func NewService(cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

// SendOrderConfirmation sends an order confirmation to the customer.
// When email is disabled in configuration the message is logged and
// dropped.
func (s *Service) SendOrderConfirmation(o *order.Order) error {
	subject := fmt.Sprintf("Order Confirmation %s", o.DisplayOrderID())
	body := s.buildOrderConfirmationBody(o)

	if !s.cfg.Email.Enabled {
		s.logger.WithFields(logrus.Fields{
			"to":      o.Email,
			"subject": subject,
		}).Info("Email disabled, skipping order confirmation")
		return nil
	}

	return s.send(o.Email, subject, body)
}

func (s *Service) buildOrderConfirmationBody(o *order.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", o.CustomerName)
	fmt.Fprintf(&b, "Thank you for your order %s placed on %s.\r\n\r\n",
		o.DisplayOrderID(), o.OrderDate.Format("02 Jan 2006"))

	b.WriteString("Items:\r\n")
	for _, item := range o.Items {
		fmt.Fprintf(&b, "  %s x%d - %s\r\n", item.ProductName, item.Quantity,
			formatAmount(item.Price*int64(item.Quantity)))
	}

	fmt.Fprintf(&b, "\r\nSubtotal: %s\r\n", formatAmount(o.Subtotal))
	if o.DeliveryFee > 0 {
		fmt.Fprintf(&b, "Delivery: %s\r\n", formatAmount(o.DeliveryFee))
	} else {
		b.WriteString("Delivery: FREE\r\n")
	}
	fmt.Fprintf(&b, "Total: %s\r\n\r\n", formatAmount(o.TotalAmount))

	fmt.Fprintf(&b, "Estimated delivery: %s\r\n\r\n", o.EstimatedDelivery.Format("02 Jan 2006"))
	fmt.Fprintf(&b, "Shipping to:\r\n%s\r\n%s, %s %s\r\n\r\n", o.Address, o.City, o.State, o.Pincode)
	fmt.Fprintf(&b, "%s\r\n", s.cfg.App.CompanyName)

	return b.String()
}

func (s *Service) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Email.SMTPHost, s.cfg.Email.SMTPPort)

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", s.cfg.Email.FromName, s.cfg.Email.FromEmail),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	var err error
	if s.cfg.Email.UseTLS {
		err = s.sendWithStartTLS(addr, to, []byte(msg))
	} else {
		var auth smtp.Auth
		if s.cfg.Email.SMTPUser != "" {
			auth = smtp.PlainAuth("", s.cfg.Email.SMTPUser, s.cfg.Email.SMTPPass, s.cfg.Email.SMTPHost)
		}
		err = smtp.SendMail(addr, auth, s.cfg.Email.FromEmail, []string{to}, []byte(msg))
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("Email sent")
	return nil
}

// sendWithStartTLS forces a STARTTLS handshake before authenticating.
// smtp.SendMail only upgrades opportunistically.
func (s *Service) sendWithStartTLS(addr, to string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Email.SMTPHost}); err != nil {
		return fmt.Errorf("failed to start tls: %w", err)
	}

	if s.cfg.Email.SMTPUser != "" {
		auth := smtp.PlainAuth("", s.cfg.Email.SMTPUser, s.cfg.Email.SMTPPass, s.cfg.Email.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(s.cfg.Email.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message body: %w", err)
	}

	return client.Quit()
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("₹%.2f", float64(cents)/100)
}
