package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiobox/internal/shared"
)

const maxRequestBody = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// statusFor maps a service error to its response status and public message.
//
// Upstream details stay in the log.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusBadRequest, publicMessage(err)
	case errors.Is(err, shared.ErrUnauthorized):
		return http.StatusUnauthorized, "token not found"
	case errors.Is(err, shared.ErrInvalidToken):
		return http.StatusForbidden, "invalid token"
	case errors.Is(err, shared.ErrTrackNotFound):
		return http.StatusNotFound, "Track not found"
	case errors.Is(err, shared.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, shared.ErrUserExists):
		return http.StatusConflict, "User already exists"
	case errors.Is(err, shared.ErrAuthExchange), errors.Is(err, shared.ErrCatalogRequest),
		errors.Is(err, shared.ErrTimeout):
		return http.StatusBadGateway, "Music service unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func publicMessage(err error) string {
	if errors.Is(err, shared.ErrInvalidCredentials) {
		return "Invalid credentials"
	}
	return err.Error()
}

// respondError logs err and writes the mapped status.
func respondError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "status", status, "err", err)
	} else {
		logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	writeError(w, status, message)
}

// decodeJSON reads a JSON object from the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", shared.ErrInvalidInput)
	}
	return nil
}

// queryLimit parses the limit query parameter. Missing means 0, which lets the workflow apply its default.
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", shared.ErrInvalidInput)
	}
	return n, nil
}
