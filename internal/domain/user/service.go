package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = domain.NotFound("user not found")
	ErrAddressNotFound    = domain.NotFound("address not found")
	ErrInvalidEmail       = domain.Invalid("a valid email is required")
	ErrInvalidName        = domain.Invalid("name is required")
	ErrInvalidAddress     = domain.Invalid("full name, phone, line1, city, state and postal code are required")
	ErrEmailTaken         = domain.Conflict("email already registered")
	ErrInvalidCredentials = domain.Unauthorized("invalid email or password")
	ErrWrongPassword      = domain.Unauthorized("current password is incorrect")
	ErrUserDeactivated    = domain.Forbidden("user account is deactivated")
	ErrNotAdmin           = domain.Forbidden("admin access required")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9]([a-zA-Z0-9\-]*[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9\-]*[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// Service handles accounts, credentials and addresses
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService creates a new user service
func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// Register creates a customer account
func (s *Service) Register(ctx context.Context, email, password, name, phone string) (*model.User, error) {
	return s.register(ctx, email, password, name, phone, auth.RoleCustomer)
}

func (s *Service) register(ctx context.Context, email, password, name, phone, role string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if name == "" {
		return nil, ErrInvalidName
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Phone:        strings.TrimSpace(phone),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrEmailTaken
			}
			return err
		}
		if role != auth.RoleCustomer {
			return nil
		}
		return tx.CreateNotification(ctx, &model.AdminNotification{
			ID:        uuid.New().String(),
			Type:      model.NotificationNewUser,
			Title:     "New customer",
			Message:   fmt.Sprintf("%s (%s) registered", u.Name, u.Email),
			RefID:     u.ID,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks credentials. With requireAdmin set, only admins pass.
func (s *Service) Authenticate(ctx context.Context, email, password string, requireAdmin bool) (*model.User, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrUserDeactivated
	}
	if requireAdmin && u.Role != auth.RoleAdmin {
		return nil, ErrNotAdmin
	}
	return u, nil
}

// Get returns the user by id
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile changes name and phone
func (s *Service) UpdateProfile(ctx context.Context, id, name, phone string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Name = name
	u.Phone = strings.TrimSpace(phone)
	u.UpdatedAt = s.now()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword replaces the password after checking the current one
func (s *Service) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(currentPassword, u.PasswordHash) {
		return ErrWrongPassword
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.now()
	return s.store.UpdateUser(ctx, u)
}

// ==========================================
// Addresses
// ==========================================

// AddressInput carries address fields from the API
type AddressInput struct {
	FullName   string
	Phone      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	IsDefault  bool
}

func (in AddressInput) valid() bool {
	for _, f := range []string{in.FullName, in.Phone, in.Line1, in.City, in.State, in.PostalCode} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// ListAddresses returns the user's addresses, default first
func (s *Service) ListAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	return s.store.ListAddresses(ctx, userID)
}

// GetAddress returns an address owned by the user. Others' addresses are reported missing.
func (s *Service) GetAddress(ctx context.Context, userID, id string) (*model.Address, error) {
	a, err := s.store.GetAddress(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && a.UserID != userID) {
		return nil, ErrAddressNotFound
	}
	return a, err
}

// DefaultAddress returns the user's default address, or their first one
func (s *Service) DefaultAddress(ctx context.Context, userID string) (*model.Address, error) {
	list, err := s.store.ListAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrAddressNotFound
	}
	return &list[0], nil
}

// SaveAddress creates an address, or updates it when id is set.
// The user's first address becomes the default.
func (s *Service) SaveAddress(ctx context.Context, userID, id string, in AddressInput) (*model.Address, error) {
	if !in.valid() {
		return nil, ErrInvalidAddress
	}
	country := strings.TrimSpace(in.Country)
	if country == "" {
		country = "India"
	}

	a := &model.Address{
		ID:         id,
		UserID:     userID,
		FullName:   strings.TrimSpace(in.FullName),
		Phone:      strings.TrimSpace(in.Phone),
		Line1:      strings.TrimSpace(in.Line1),
		Line2:      strings.TrimSpace(in.Line2),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    country,
		IsDefault:  in.IsDefault,
	}

	err := s.store.InTx(ctx, func(tx store.Store) error {
		if id != "" {
			existing, err := tx.GetAddress(ctx, id)
			if errors.Is(err, store.ErrNotFound) || (err == nil && existing.UserID != userID) {
				return ErrAddressNotFound
			}
			if err != nil {
				return err
			}
		} else {
			a.ID = uuid.New().String()
			list, err := tx.ListAddresses(ctx, userID)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				a.IsDefault = true
			}
		}
		return tx.SaveAddress(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAddress removes one of the user's addresses
func (s *Service) DeleteAddress(ctx context.Context, userID, id string) error {
	if _, err := s.GetAddress(ctx, userID, id); err != nil {
		return err
	}
	return s.store.DeleteAddress(ctx, id)
}

// ==========================================
// Admin
// ==========================================

// ListCustomers pages through customer accounts, newest first
func (s *Service) ListCustomers(ctx context.Context, page, limit int) (domain.Page[model.User], error) {
	page, limit, offset := domain.Paging(page, limit)
	users, total, err := s.store.ListUsers(ctx, auth.RoleCustomer, limit, offset)
	if err != nil {
		return domain.Page[model.User]{}, err
	}
	return domain.NewPage(users, total, page, limit), nil
}

// SetActive activates or deactivates a customer. Admin accounts are left alone.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (*model.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == auth.RoleAdmin {
		return nil, domain.Forbidden("admin accounts cannot be toggled here")
	}
	u.IsActive = active
	u.UpdatedAt = s.now()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureAdmin creates the bootstrap admin account if the email is not taken yet
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if name == "" {
		name = "Administrator"
	}
	u, err := s.register(ctx, email, password, name, "", auth.RoleAdmin)
	if err != nil {
		return err
	}
	log.Printf("[User] Bootstrap admin created: %s", u.Email)
	return nil
}
