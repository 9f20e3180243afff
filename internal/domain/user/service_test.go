package user

import (
	"context"
	"strings"
	"testing"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService() (*Service, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewService(st), st
}

// ============================================
// Email Validation Tests
// ============================================

func TestIsValidEmail_ValidEmails(t *testing.T) {
	validEmails := []string{
		"test@example.com",
		"user.name@domain.org",
		"user+tag@example.com",
		"user123@test.co.in",
		"a@b.cd",
		"USER@EXAMPLE.COM",
		"test@subdomain.example.com",
	}

	for _, email := range validEmails {
		t.Run(email, func(t *testing.T) {
			assert.True(t, isValidEmail(email), "Expected %s to be valid", email)
		})
	}
}

func TestIsValidEmail_InvalidEmails(t *testing.T) {
	invalidEmails := []string{
		"",
		"notanemail",
		"@example.com",
		"user@",
		"user@.com",
		"user@domain",
		"user@domain.",
		"user space@example.com",
		strings.Repeat("a", 250) + "@example.com",
	}

	for _, email := range invalidEmails {
		t.Run(email, func(t *testing.T) {
			assert.False(t, isValidEmail(email), "Expected %s to be invalid", email)
		})
	}
}

// ============================================
// Register / Authenticate Tests
// ============================================

func TestService_Register_Success(t *testing.T) {
	service, st := newTestUserService()
	ctx := context.Background()

	u, err := service.Register(ctx, "  Priya@Example.com ", "password123", "Priya", "9876543210")

	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "priya@example.com", u.Email)
	assert.Equal(t, auth.RoleCustomer, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "password123", u.PasswordHash)

	notes, err := st.ListNotifications(ctx, true, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationNewUser, notes[0].Type)
	assert.Equal(t, u.ID, notes[0].RefID)
}

func TestService_Register_Rejections(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()

	_, err := service.Register(ctx, "taken@example.com", "password123", "First", "")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		wantErr  error
	}{
		{"invalid email", "nope", "password123", "A", ErrInvalidEmail},
		{"empty name", "a@example.com", "password123", " ", ErrInvalidName},
		{"short password", "b@example.com", "short", "B", auth.ErrPasswordTooShort},
		{"duplicate email any case", "TAKEN@example.com", "password123", "C", ErrEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(ctx, tt.email, tt.password, tt.userName, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err = service.Register(ctx, "taken@example.com", "password123", "C", "")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestService_Authenticate(t *testing.T) {
	service, st := newTestUserService()
	ctx := context.Background()

	customer, err := service.Register(ctx, "shopper@example.com", "password123", "Shopper", "")
	require.NoError(t, err)
	require.NoError(t, service.EnsureAdmin(ctx, "admin@example.com", "adminpass123", ""))

	t.Run("customer storefront login", func(t *testing.T) {
		u, err := service.Authenticate(ctx, "shopper@example.com", "password123", false)
		require.NoError(t, err)
		assert.Equal(t, customer.ID, u.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Authenticate(ctx, "shopper@example.com", "wrongpass", false)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := service.Authenticate(ctx, "ghost@example.com", "password123", false)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("customer on admin login", func(t *testing.T) {
		_, err := service.Authenticate(ctx, "shopper@example.com", "password123", true)
		assert.ErrorIs(t, err, ErrNotAdmin)
	})

	t.Run("admin on admin login", func(t *testing.T) {
		u, err := service.Authenticate(ctx, "admin@example.com", "adminpass123", true)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, u.Role)
	})

	t.Run("deactivated customer", func(t *testing.T) {
		_, err := service.SetActive(ctx, customer.ID, false)
		require.NoError(t, err)
		_, err = service.Authenticate(ctx, "shopper@example.com", "password123", false)
		assert.ErrorIs(t, err, ErrUserDeactivated)
	})

	// admin bootstrap does not raise a new-user notification
	notes, err := st.ListNotifications(ctx, false, 10)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestService_ChangePassword(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()

	u, err := service.Register(ctx, "pw@example.com", "password123", "PW", "")
	require.NoError(t, err)

	err = service.ChangePassword(ctx, u.ID, "not-current", "newpassword1")
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, service.ChangePassword(ctx, u.ID, "password123", "newpassword1"))

	_, err = service.Authenticate(ctx, "pw@example.com", "newpassword1", false)
	assert.NoError(t, err)

	err = service.ChangePassword(ctx, "missing", "x", "newpassword1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// ============================================
// Address Tests
// ============================================

func testAddress(name string) AddressInput {
	return AddressInput{
		FullName: name, Phone: "9876543210", Line1: "12 MG Road",
		City: "Bengaluru", State: "Karnataka", PostalCode: "560001",
	}
}

func TestService_SaveAddress_FirstBecomesDefault(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()

	first, err := service.SaveAddress(ctx, "user-1", "", testAddress("Home"))
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.Equal(t, "India", first.Country)

	in := testAddress("Office")
	in.IsDefault = true
	second, err := service.SaveAddress(ctx, "user-1", "", in)
	require.NoError(t, err)

	list, err := service.ListAddresses(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.False(t, list[1].IsDefault)

	def, err := service.DefaultAddress(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Office", def.FullName)
}

func TestService_Address_Ownership(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()

	a, err := service.SaveAddress(ctx, "owner", "", testAddress("Home"))
	require.NoError(t, err)

	_, err = service.GetAddress(ctx, "intruder", a.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)

	_, err = service.SaveAddress(ctx, "intruder", a.ID, testAddress("Hijack"))
	assert.ErrorIs(t, err, ErrAddressNotFound)

	assert.ErrorIs(t, service.DeleteAddress(ctx, "intruder", a.ID), ErrAddressNotFound)
	require.NoError(t, service.DeleteAddress(ctx, "owner", a.ID))

	_, err = service.DefaultAddress(ctx, "owner")
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestService_SaveAddress_Invalid(t *testing.T) {
	service, _ := newTestUserService()

	in := testAddress("Home")
	in.PostalCode = ""
	_, err := service.SaveAddress(context.Background(), "user-1", "", in)

	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

// ============================================
// Admin Tests
// ============================================

func TestService_ListCustomers_ExcludesAdmins(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()

	require.NoError(t, service.EnsureAdmin(ctx, "admin@example.com", "adminpass123", "Boss"))
	_, err := service.Register(ctx, "c1@example.com", "password123", "C1", "")
	require.NoError(t, err)
	_, err = service.Register(ctx, "c2@example.com", "password123", "C2", "")
	require.NoError(t, err)

	page, err := service.ListCustomers(ctx, 1, 1)

	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Len(t, page.Items, 1)
}

func TestService_EnsureAdmin_Idempotent(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()

	require.NoError(t, service.EnsureAdmin(ctx, "admin@example.com", "adminpass123", ""))
	require.NoError(t, service.EnsureAdmin(ctx, "admin@example.com", "different-pass", ""))
	require.NoError(t, service.EnsureAdmin(ctx, "", "", ""))

	u, err := service.Authenticate(ctx, "admin@example.com", "adminpass123", true)
	require.NoError(t, err)
	assert.Equal(t, "Administrator", u.Name)

	_, err = service.SetActive(ctx, u.ID, false)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
