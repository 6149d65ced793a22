package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tuanvumaihuynh/digital-store/internal/http/apierr"
)

const (
	statusSuccess = "success"
	statusInfo    = "info"
)

type messageResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

type dataResponse[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

// responder writes JSON envelopes and logs error responses by severity.
type responder struct {
	logger *slog.Logger
}

func (rs responder) json(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		rs.logger.WarnContext(r.Context(), "error encoding response", slog.Any("error", err))
	}
}

func (rs responder) error(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	rs.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := apierr.Write(w, res); err != nil {
		rs.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}
