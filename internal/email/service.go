package email

import (
	"errors"
	"fmt"
	"log"
	"mime"
	"net/smtp"
	"strings"
	"time"
)

// ErrHeaderInjection is returned when an address would break the message headers
var ErrHeaderInjection = errors.New("email header contains a line break")

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
)

// SendFunc matches smtp.SendMail
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service handles email sending via SMTP
type Service struct {
	host        string
	port        string
	username    string
	password    string
	from        string
	adminEmail  string
	maxAttempts int
	retryDelay  time.Duration
	sendMail    SendFunc
	sleep       func(time.Duration)
}

// Config holds SMTP settings
type Config struct {
	Host       string
	Port       string
	Username   string
	Password   string
	From       string
	AdminEmail string
}

// NewService creates a new email service
func NewService(cfg Config) *Service {
	return &Service{
		host:        cfg.Host,
		port:        cfg.Port,
		username:    cfg.Username,
		password:    cfg.Password,
		from:        cfg.From,
		adminEmail:  cfg.AdminEmail,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		sendMail:    smtp.SendMail,
		sleep:       time.Sleep,
	}
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to string, c OrderConfirmation) error {
	subject := fmt.Sprintf("Order confirmed: #%s", shortID(c.OrderID))
	return s.send(to, "", subject, BuildOrderConfirmationBody(c))
}

// SendContactMessage forwards a contact form message to the shop
func (s *Service) SendContactMessage(m ContactMessage) error {
	subject := "Contact form: " + m.Subject
	if m.Subject == "" {
		subject = "Contact form message from " + m.Name
	}
	return s.send(s.adminRecipient(), m.Email, subject, BuildContactBody(m))
}

// SendBulkQuote sends the priced estimate to the shop and to the customer
func (s *Service) SendBulkQuote(q Quote) error {
	body := BuildQuoteBody(q)
	errAdmin := s.send(s.adminRecipient(), q.Email, "Bulk order enquiry from "+q.Name, body)
	errCustomer := s.send(q.Email, "", "Your bulk order estimate", body)
	return errors.Join(errAdmin, errCustomer)
}

func (s *Service) adminRecipient() string {
	if s.adminEmail != "" {
		return s.adminEmail
	}
	return s.from
}

// send delivers one message, retrying with a fixed delay.
// The subject is RFC 2047 encoded, so control characters never reach the headers.
func (s *Service) send(to, replyTo, subject, body string) error {
	if strings.ContainsAny(s.from+to+replyTo, "\r\n") {
		return ErrHeaderInjection
	}

	var headers strings.Builder
	fmt.Fprintf(&headers, "From: %s\r\nTo: %s\r\n", s.from, to)
	if replyTo != "" {
		fmt.Fprintf(&headers, "Reply-To: %s\r\n", replyTo)
	}
	fmt.Fprintf(&headers, "Subject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		mime.QEncoding.Encode("utf-8", subject))
	msg := []byte(headers.String() + body)

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err = s.sendMail(addr, auth, s.from, []string{to}, msg); err == nil {
			return nil
		}
		log.Printf("[Email] Attempt %d/%d to %s failed: %v", attempt, s.maxAttempts, to, err)
		if attempt < s.maxAttempts {
			s.sleep(s.retryDelay)
		}
	}
	return fmt.Errorf("send email to %s: %w", to, err)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
