package handlers

import "net/http"

// Info identifies the service at the API root.
func (a *App) Info(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"service": "AI Virtual Try-On",
		"version": "1.0.0",
		"status":  "running",
	})
}

// Health reports liveness plus queue statistics.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	stats := a.Store.Stats()
	a.json(w, http.StatusOK, map[string]any{
		"status": "ok",
		"jobs": map[string]int{
			"total":      stats.Total,
			"queued":     stats.Queued,
			"processing": stats.Processing,
			"done":       stats.Done,
			"failed":     stats.Failed,
		},
	})
}
