package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"dukapos/m/domain"
)

type errorResponse struct {
	Error   string             `json:"error"`
	Code    string             `json:"code,omitempty"`
	Details []validationDetail `json:"details,omitempty"`
}

var errBodyTooLarge = errors.New("request body is too large")

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("request body is required")
		case errors.As(err, &tooLarge):
			return errBodyTooLarge
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respondError(w, http.StatusBadRequest, domain.ErrInvalidInput.Code, message)
}

// respondDecodeError reports a body that could not be read. Bodies cut off by
// the size limit get 413 whether or not a Content-Length was sent.
func respondDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.Is(err, errBodyTooLarge) || errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", errBodyTooLarge.Error())
		return
	}
	respondBadRequest(w, err.Error())
}

// respondDomainError maps err onto a status code. Errors that are not domain
// errors are logged and hidden behind a generic message.
func (h *Handler) respondDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		h.log.Error(fallback, zap.Error(err), zap.String("path", r.URL.Path))
		respondError(w, http.StatusInternalServerError, "INTERNAL", fallback)
		return
	}

	status := http.StatusBadRequest
	switch derr {
	case domain.ErrNotFound:
		status = http.StatusNotFound
	case domain.ErrUnauthorized:
		status = http.StatusUnauthorized
	}
	respondError(w, status, derr.Code, err.Error())
}
