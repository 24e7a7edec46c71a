package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/garnizeh/studybuddy/pkg/errorx"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func statusFor(kind errorx.Kind) int {
	switch kind {
	case errorx.KindValidation:
		return http.StatusBadRequest
	case errorx.KindAuth:
		return http.StatusUnauthorized
	case errorx.KindStorage:
		return http.StatusBadGateway
	case errorx.KindNotFound:
		return http.StatusNotFound
	case errorx.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the text shown to clients. Query, storage and internal errors only
// expose their own message, never the wrapped cause.
func publicMessage(err error) string {
	var e *errorx.Error
	if !errors.As(err, &e) {
		return "internal server error"
	}
	switch e.Kind {
	case errorx.KindQuery, errorx.KindStorage, errorx.KindInternal:
		return e.Msg
	default:
		return e.Error()
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := errorx.KindOf(err)
	writeJSON(w, statusFor(kind), errorResponse{Error: publicMessage(err), Kind: kind.String()})
}
