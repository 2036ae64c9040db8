package mailer

import (
	"fmt"
	"io"
	"strings"
	"sync"

	gomail "gopkg.in/gomail.v2"

	"github.com/verdantcart/verdantcart-checkout-service/internal/config"
	"github.com/verdantcart/verdantcart-checkout-service/internal/logging"
	"github.com/verdantcart/verdantcart-checkout-service/internal/models"
)

// Mailer sends the post-purchase order summary with the invoice attached.
type Mailer interface {
	SendOrderConfirmation(to string, order *models.Order, invoicePDF []byte) error
}

// SMTPMailer implements Mailer over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *logging.Logger
}

// NewSMTPMailer creates an SMTP-backed mailer.
func NewSMTPMailer(cfg config.SMTPConfig, logger *logging.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

// SendOrderConfirmation emails an HTML order summary with the invoice PDF
// attached. The PDF is attached straight from memory; nothing touches disk.
func (m *SMTPMailer) SendOrderConfirmation(to string, order *models.Order, invoicePDF []byte) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Your order %s is confirmed", order.ID))
	msg.SetBody("text/html", orderSummaryHTML(order))

	if len(invoicePDF) > 0 {
		msg.Attach("invoice.pdf", gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(invoicePDF)
			return err
		}))
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("failed to send order confirmation",
			"order_id", order.ID,
			"error", err.Error(),
		)
		return err
	}

	m.logger.Info("order confirmation sent", "order_id", order.ID)
	return nil
}

func orderSummaryHTML(order *models.Order) string {
	var b strings.Builder
	b.WriteString("<h2>Thanks for your order!</h2>")
	fmt.Fprintf(&b, "<p>Order <strong>%s</strong> has been confirmed.</p>", order.ID)
	b.WriteString("<table border=\"0\" cellpadding=\"4\"><tr><th align=\"left\">Item</th><th align=\"right\">Qty</th><th align=\"right\">Total</th></tr>")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<tr><td>%s</td><td align=\"right\">%d</td><td align=\"right\">%.2f %s</td></tr>",
			item.ProductName, item.Quantity, item.LineTotal.ToFloat(), item.LineTotal.Currency)
	}
	fmt.Fprintf(&b, "<tr><td><strong>Grand total</strong></td><td></td><td align=\"right\"><strong>%.2f %s</strong></td></tr>",
		order.Total.ToFloat(), order.Total.Currency)
	b.WriteString("</table><p>Your invoice is attached.</p>")
	return b.String()
}

// MockMailer records sent mail for tests and can simulate transport failures.
type MockMailer struct {
	mu   sync.Mutex
	Err  error
	Sent []SentMail
}

type SentMail struct {
	To         string
	OrderID    string
	InvoicePDF []byte
}

func (m *MockMailer) SendOrderConfirmation(to string, order *models.Order, invoicePDF []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{To: to, OrderID: order.ID, InvoicePDF: invoicePDF})
	return nil
}

// SentCount returns how many confirmations were delivered.
func (m *MockMailer) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
