package enquiry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/model"
	"github.com/shopspring/decimal"
)

const (
	maxMessageLength = 5000
	maxQuoteLines    = 50
	// MinBulkQuantity is the smallest line quantity treated as a bulk order
	MinBulkQuantity = 10
)

var (
	ErrNameRequired    = domain.Invalid("name is required")
	ErrInvalidEmail    = domain.Invalid("invalid email address")
	ErrMessageRequired = domain.Invalid("message is required")
	ErrMessageTooLong  = domain.Invalid("message is too long")
	ErrNoLines         = domain.Invalid("at least one product is required")
	ErrTooManyLines    = domain.Invalid("too many products in one enquiry")
	ErrQuantityTooLow  = domain.Invalid(fmt.Sprintf("bulk orders need at least %d units per product", MinBulkQuantity))
	ErrUnknownProduct  = domain.Invalid("product is not available")
	ErrMultiLineField  = domain.Invalid("name, phone, company and subject must be a single line")
)

// Mailer delivers enquiry emails
type Mailer interface {
	SendContactMessage(m email.ContactMessage) error
	SendBulkQuote(q email.Quote) error
}

// QuoteLine is one requested product in a bulk enquiry
type QuoteLine struct {
	ProductID string
	Size      string
	Quantity  int
}

// QuoteRequest is a bulk order enquiry
type QuoteRequest struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Notes   string
	Lines   []QuoteLine
}

type Service struct {
	store  store.ProductStore
	mailer Mailer
}

func NewService(st store.ProductStore, mailer Mailer) *Service {
	return &Service{store: st, mailer: mailer}
}

// singleLine rejects CR and LF in fields that end up in mail headers
func singleLine(fields ...string) error {
	for _, f := range fields {
		if strings.ContainsAny(f, "\r\n") {
			return ErrMultiLineField
		}
	}
	return nil
}

func validContact(name, addr string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if err := singleLine(name); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(addr); err != nil || strings.ContainsAny(addr, "<>\r\n") {
		return ErrInvalidEmail
	}
	return nil
}

// Contact forwards a contact form message to the shop
func (s *Service) Contact(ctx context.Context, m email.ContactMessage) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Message = strings.TrimSpace(m.Message)
	m.Subject = strings.TrimSpace(m.Subject)
	if err := validContact(m.Name, m.Email); err != nil {
		return err
	}
	if err := singleLine(m.Subject, m.Phone); err != nil {
		return err
	}
	if m.Message == "" {
		return ErrMessageRequired
	}
	if len(m.Message) > maxMessageLength {
		return ErrMessageTooLong
	}

	if err := s.mailer.SendContactMessage(m); err != nil {
		log.Printf("[Enquiry] Failed to forward contact message from %s: %v", m.Email, err)
		return err
	}
	return nil
}

// Quote prices a bulk enquiry from current catalog prices without sending it
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*email.Quote, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validContact(req.Name, req.Email); err != nil {
		return nil, err
	}
	if err := singleLine(req.Phone, req.Company); err != nil {
		return nil, err
	}
	if len(req.Lines) == 0 {
		return nil, ErrNoLines
	}
	if len(req.Lines) > maxQuoteLines {
		return nil, ErrTooManyLines
	}

	q := &email.Quote{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   strings.TrimSpace(req.Phone),
		Company: strings.TrimSpace(req.Company),
		Notes:   strings.TrimSpace(req.Notes),
		Total:   decimal.Zero,
	}
	for _, l := range req.Lines {
		if l.Quantity < MinBulkQuantity {
			return nil, ErrQuantityTooLow
		}
		p, err := s.store.GetProduct(ctx, l.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, l.ProductID)
			}
			return nil, err
		}
		if p.Status != model.ProductActive {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, p.Name)
		}
		name := p.Name
		if l.Size != "" {
			if _, ok := p.Size(l.Size); !ok {
				return nil, fmt.Errorf("%w: %s in size %s", ErrUnknownProduct, p.Name, l.Size)
			}
			name += " (" + l.Size + ")"
		}
		unit := p.UnitPrice(l.Size)
		lineTotal := unit.Mul(decimal.NewFromInt(int64(l.Quantity)))
		q.Lines = append(q.Lines, email.QuoteLine{
			Name:      name,
			Quantity:  l.Quantity,
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
		q.Total = q.Total.Add(lineTotal)
	}
	return q, nil
}

// BulkOrder prices the enquiry and emails the estimate to the shop and the customer
func (s *Service) BulkOrder(ctx context.Context, req QuoteRequest) (*email.Quote, error) {
	q, err := s.Quote(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.SendBulkQuote(*q); err != nil {
		log.Printf("[Enquiry] Failed to send bulk quote for %s: %v", q.Email, err)
		return nil, err
	}
	log.Printf("[Enquiry] Bulk quote sent to %s (%d lines, total %s)", q.Email, len(q.Lines), q.Total.StringFixed(2))
	return q, nil
}
