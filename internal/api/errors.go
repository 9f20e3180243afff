package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/domain/inventory"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20 // 1MB

var validate = validator.New(validator.WithRequiredStructEnabled())

// errInvalidBody is returned for malformed JSON
var errInvalidBody = domain.Invalid("invalid request body")

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, errorResponse{Error: message})
}

func respondMessage(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalid), errors.Is(err, domain.ErrRejected):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondErr translates err into a status and JSON body. Unexpected errors
// are logged and reported with a generic message.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Details: fieldErrors(verrs)})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] %s %s (request %s): %v", r.Method, r.URL.Path, middleware.GetReqID(r.Context()), err)
		respondJSONError(w, "internal server error", status)
		return
	}

	resp := errorResponse{Error: err.Error()}
	var stockErr *inventory.InsufficientStockError
	if errors.As(err, &stockErr) {
		resp.Details = map[string]any{
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		}
	}
	respondJSON(w, status, resp)
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out[field] = "is required"
		case "email":
			out[field] = "must be a valid email address"
		case "oneof":
			out[field] = "must be one of: " + fe.Param()
		case "min", "gte":
			out[field] = "must be at least " + fe.Param()
		case "max", "lte":
			out[field] = "must be at most " + fe.Param()
		default:
			out[field] = fmt.Sprintf("failed %q validation", fe.Tag())
		}
	}
	return out
}

// decode reads a JSON body into dst and validates its struct tags
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody
	}
	return validate.Struct(dst)
}

// pageParams reads ?page= and ?limit=; malformed values fall back to defaults
func pageParams(r *http.Request) (int, int) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return page, limit
}

func boolParam(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(key)))
	return v
}
