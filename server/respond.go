package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Seann-Moser/chatrelay/chat"
	"go.uber.org/zap"
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeJSON helper sends a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("write json response", zap.Error(err))
	}
}

// writeError helper sends a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

func writeErrorDetails(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorBody{Error: message, Details: details})
}

// writeChatError maps a gateway error onto a status and error body.
func (s *Server) writeChatError(w http.ResponseWriter, err error) {
	var ve *chat.ValidationError
	var re *chat.RemoteError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, chat.ErrNotFound):
		writeError(w, http.StatusNotFound, "No messages found")
	case errors.As(err, &re):
		status := http.StatusInternalServerError
		if re.IsAuthFailure() {
			status = http.StatusUnauthorized
		}
		details := re.Code
		if details == "" && re.Err != nil {
			details = re.Err.Error()
		}
		writeErrorDetails(w, status, "Failed to "+re.Op, details)
	default:
		s.logger.Error("unexpected message gateway error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
