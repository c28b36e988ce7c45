package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"filepower/backend/app/dto"
	"filepower/backend/app/services"
	"filepower/backend/global"

	"gorm.io/gorm"
)

type HTTPController struct{ DB *gorm.DB }

func NewHTTPController(db *gorm.DB) *HTTPController {
	return &HTTPController{DB: db}
}

func (c *HTTPController) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readyz reports whether the database answers.
func (c *HTTPController) Readyz(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := c.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// writeError maps service errors to status codes. Unknown errors are logged
// and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		global.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeMessage(w, status, "internal error")
		return
	}
	writeMessage(w, status, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dto.Validate(v); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// optionalID reads a folder id query parameter; absent or empty is the root.
func optionalID(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}

func parseIntDefault(value string, def int) int {
	if v, err := strconv.Atoi(value); err == nil && v > 0 {
		return v
	}
	return def
}
