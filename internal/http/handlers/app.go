// Package handlers implements the HTTP API surface.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"tryon/internal/domain"
	"tryon/internal/storage"
	"tryon/internal/store"
)

// App bundles the dependencies the handlers need.
type App struct {
	Store *store.Store
	Files *storage.FileStore
	Log   zerolog.Logger

	// MaxUploadBytes caps the multipart form size on submit.
	MaxUploadBytes int64

	// DefaultMaxRetries applies to jobs that omit max_retries.
	DefaultMaxRetries int
}

// NewApp constructs the handler set.
func NewApp(st *store.Store, files *storage.FileStore, log zerolog.Logger, maxUploadBytes int64, defaultMaxRetries int) *App {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 25 << 20
	}
	if defaultMaxRetries < 0 {
		defaultMaxRetries = domain.DefaultMaxRetries
	}
	if defaultMaxRetries > domain.MaxRetriesCeiling {
		defaultMaxRetries = domain.MaxRetriesCeiling
	}
	return &App{
		Store:             st,
		Files:             files,
		Log:               log,
		MaxUploadBytes:    maxUploadBytes,
		DefaultMaxRetries: defaultMaxRetries,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
