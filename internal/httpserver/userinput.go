package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/al-bashkir/cwe117-demo/internal/logsanitize"
)

// UserInput is the payload accepted by POST /api/test. Fields omitted from
// the request body are nil.
type UserInput struct {
	Name    *string `json:"name"`
	Message *string `json:"message"`
}

// LogValue implements slog.LogValuer so a UserInput can only be logged in
// sanitized form.
func (u UserInput) LogValue() slog.Value {
	return slog.GroupValue(
		optionalAttr("name", u.Name),
		optionalAttr("message", u.Message),
	)
}

func optionalAttr(key string, v *string) slog.Attr {
	clean := logsanitize.SanitizeOptional(v)
	if clean == nil {
		return slog.Any(key, nil)
	}
	return slog.String(key, *clean)
}

// handleUserInput logs the submitted payload and echoes it back.
func (s *Server) handleUserInput(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)

	var input UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.log.Warn("request body too large",
				"request_id", requestIDFrom(r.Context()),
				"limit", maxErr.Limit,
			)
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		s.log.Warn("invalid request body",
			"request_id", requestIDFrom(r.Context()),
			"error", err,
		)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.log.Info("REST request to save UserInput",
		"request_id", requestIDFrom(r.Context()),
		"input", input,
	)

	s.writeJSON(w, r, http.StatusOK, input)
}
