package api

import (
	"net/http"
	"time"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/model"
	"github.com/go-chi/chi/v5"
)

// AuthHandlers handles authentication, profile and address requests
type AuthHandlers struct {
	userService   *user.Service
	jwtService    *auth.JWTService
	secureCookies bool
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(userService *user.Service, jwtService *auth.JWTService, secureCookies bool) *AuthHandlers {
	return &AuthHandlers{
		userService:   userService,
		jwtService:    jwtService,
		secureCookies: secureCookies,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token,omitempty"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// Register creates a customer account and signs it in
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	u, err := h.userService.Register(r.Context(), req.Email, req.Password, req.Name, req.Phone)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	h.startSession(w, r, u, http.StatusCreated, "Registration successful")
}

// Login signs in a storefront user
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, false)
}

// AdminLogin signs in an administrator with the shorter back-office session
func (h *AuthHandlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, true)
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request, requireAdmin bool) {
	var req LoginRequest
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	u, err := h.userService.Authenticate(r.Context(), req.Email, req.Password, requireAdmin)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	h.startSession(w, r, u, http.StatusOK, "Login successful")
}

// Logout clears the session cookie
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	respondMessage(w, "Logout successful")
}

// Me returns the current authenticated user
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.userService.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// UpdateProfile changes the current user's name and phone
func (h *AuthHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name" validate:"required"`
		Phone string `json:"phone"`
	}
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	u, err := h.userService.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Phone)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// ChangePassword handles password change requests
func (h *AuthHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required"`
	}
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	if err := h.userService.ChangePassword(r.Context(), middleware.GetUserID(r.Context()), req.CurrentPassword, req.NewPassword); err != nil {
		respondErr(w, r, err)
		return
	}
	respondMessage(w, "Password changed successfully")
}

func (h *AuthHandlers) startSession(w http.ResponseWriter, r *http.Request, u *model.User, status int, message string) {
	token, expiresAt, err := h.jwtService.GenerateSessionToken(u.ID, u.Email, u.Role)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.jwtService.SessionTTL(u.Role).Seconds()),
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, status, AuthResponse{User: u, Token: token, ExpiresAt: &expiresAt, Message: message})
}

// Address Handlers

// AddressRequest is the body for creating or updating an address
type AddressRequest struct {
	FullName   string `json:"full_name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"is_default"`
}

func (req AddressRequest) input() user.AddressInput {
	return user.AddressInput{
		FullName:   req.FullName,
		Phone:      req.Phone,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}
}

func (h *AuthHandlers) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.userService.ListAddresses(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if addresses == nil {
		addresses = []model.Address{}
	}
	respondJSON(w, http.StatusOK, addresses)
}

func (h *AuthHandlers) GetAddress(w http.ResponseWriter, r *http.Request) {
	a, err := h.userService.GetAddress(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (h *AuthHandlers) CreateAddress(w http.ResponseWriter, r *http.Request) {
	h.saveAddress(w, r, "", http.StatusCreated)
}

func (h *AuthHandlers) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	h.saveAddress(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *AuthHandlers) saveAddress(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req AddressRequest
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	a, err := h.userService.SaveAddress(r.Context(), middleware.GetUserID(r.Context()), id, req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, status, a)
}

func (h *AuthHandlers) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeleteAddress(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	respondMessage(w, "Address deleted")
}
