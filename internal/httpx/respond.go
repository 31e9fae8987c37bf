package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-tool-rental/internal/auth"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

var errRequestInProgress = errors.New("a request with this idempotency key is still in progress")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, code int, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, code, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, rental.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, rental.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, rental.ErrInsufficientInventory),
		errors.Is(err, rental.ErrInvalidTransition),
		errors.Is(err, rental.ErrActiveRentalsExist),
		errors.Is(err, rental.ErrConstraintViolation),
		errors.Is(err, errRequestInProgress):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError always answers {success:false, message}. Unknown errors are
// logged and hidden behind a generic message.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		a.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		msg = "internal error"
	}
	writeJSON(w, code, map[string]any{"success": false, "message": msg})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json", rental.ErrValidation)
	}
	if err := validate.Struct(v); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			parts := make([]string, 0, len(ve))
			for _, fe := range ve {
				parts = append(parts, fe.Field()+" "+fe.Tag())
			}
			return fmt.Errorf("%w: %s", rental.ErrValidation, strings.Join(parts, ", "))
		}
		return fmt.Errorf("%w: %v", rental.ErrValidation, err)
	}
	return nil
}

// queryID reads a positive integer id from the query string.
func queryID(r *http.Request, name string) (int64, error) {
	return parseID(r.URL.Query().Get(name), name)
}

func parseID(s, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s required", rental.ErrValidation, name)
	}
	return id, nil
}
