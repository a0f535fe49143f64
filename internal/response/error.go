package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
	}); err != nil {
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", code)
	}
}

func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	switch e := typed(err).(type) {
	case *errs.NotFoundError:
		log.Warn("resource not found", "error", e.Message)
		h.WriteError(w, r, http.StatusNotFound, "not_found", e.Message)

	case *errs.AlreadyExistsError:
		log.Warn("resource already exists", "error", e.Message)
		h.WriteError(w, r, http.StatusConflict, "already_exists", e.Message)

	case *errs.ValidationError:
		log.Warn("validation failed", "error", e.Message)
		h.WriteError(w, r, http.StatusBadRequest, "invalid_input", e.Message)

	case *errs.ConfigError:
		log.Warn("configuration error", "error", e.Message)
		h.WriteError(w, r, http.StatusBadRequest, "config_error", e.Message)

	case *errs.SupersededError:
		log.Debug("request superseded")
		h.WriteError(w, r, http.StatusConflict, "superseded", e.Message)

	// upstream failures keep their message; the client shows it next to a retry action
	case *errs.TransportError:
		log.Warn("upstream transport error", "error", e.Message)
		h.WriteError(w, r, http.StatusBadGateway, "upstream_error", e.Message)

	case *errs.HTTPError:
		log.Warn("upstream http error", "status", e.Status, "error", e.Message)
		h.WriteError(w, r, http.StatusBadGateway, "upstream_error", e.Message)

	case *errs.ParseError:
		log.Warn("upstream parse error", "error", e.Message)
		h.WriteError(w, r, http.StatusBadGateway, "upstream_error", e.Message)

	case *errs.ProviderError:
		log.Warn("provider reported error", "marker", e.Marker, "error", e.Message)
		h.WriteError(w, r, http.StatusBadGateway, "upstream_error", e.Message)

	case *errs.DatabaseError:
		log.Error("database error",
			"operation", e.Operation,
			"error", e.Message,
			"cause", e.Err)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	case *errs.ExternalServiceError:
		level := slog.LevelError
		if e.Transient {
			level = slog.LevelWarn
		}
		log.Log(r.Context(), level, "external service error",
			"service", e.Service,
			"transient", e.Transient,
			"error", e.Message)

		status := http.StatusBadGateway
		if e.Transient {
			status = http.StatusServiceUnavailable
		}
		h.WriteError(w, r, status, "service_unavailable", e.Message)

	case *errs.EncryptionError:
		log.Error("encryption error", "error", e.Message)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An unexpected error occurred")
	}
}

// typed returns the first error in err's chain that HandleError knows how to
// map, or err itself.
func typed(err error) error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch e.(type) {
		case *errs.NotFoundError, *errs.AlreadyExistsError, *errs.ValidationError,
			*errs.ConfigError, *errs.SupersededError, *errs.TransportError,
			*errs.HTTPError, *errs.ParseError, *errs.ProviderError,
			*errs.DatabaseError, *errs.ExternalServiceError, *errs.EncryptionError:
			return e
		}
	}
	return err
}
