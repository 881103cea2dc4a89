// Package api provides the HTTP handlers of the cued speech practice API.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/cuedspeech/internal/lfpc"
	"github.com/ayusman/cuedspeech/internal/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodyBytes bounds request bodies. A frame is 21 points, so even large
// sample batches stay well under this.
const maxBodyBytes = 4 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeInternal logs err with a trace ID and hides it from the client.
func writeInternal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	traceID := logging.ErrorWithTraceID(logging.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"error":  err.Error(),
	}, msg)
	writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s (trace %s)", msg, traceID))
}

// NewValidator returns a validator with the "lfpckey" tag registered. The tag
// accepts any consonant key that belongs to a configuration group.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("lfpckey", func(fl validator.FieldLevel) bool {
		_, ok := lfpc.CanonicalKey(fl.Field().String())
		return ok
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and validates it.
func decodeAndValidate(r *http.Request, v *validator.Validate, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.New("Invalid JSON")
	}
	if err := v.Struct(dst); err != nil {
		return validationMessage(err)
	}
	return nil
}

func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
