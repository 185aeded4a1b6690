package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tryon/internal/domain"
)

// SubmitTryOn accepts a multipart try-on request and enqueues a job.
// Each image comes either as an uploaded file or as a URL, never both.
func (a *App) SubmitTryOn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.MaxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form: "+err.Error())
		return
	}

	person, err := a.imageRef(r, "user", a.Files.SaveUpload)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	garment, err := a.imageRef(r, "product", a.Files.SaveProduct)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	job := domain.NewJob(person, garment)
	job.ProductID = strings.TrimSpace(r.FormValue("product_id"))
	job.GarmentType = strings.TrimSpace(r.FormValue("garment_type"))
	job.Mode = domain.NormalizeMode(r.FormValue("mode"))
	job.MaxRetries = a.DefaultMaxRetries

	if v := r.FormValue("max_retries"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "max_retries must be a non-negative integer")
			return
		}
		if n > domain.MaxRetriesCeiling {
			n = domain.MaxRetriesCeiling
		}
		job.MaxRetries = n
	}
	if v := r.FormValue("realism_level"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "realism_level must be an integer")
			return
		}
		if n < 1 {
			n = 1
		}
		if n > 5 {
			n = 5
		}
		job.Preferences.RealismLevel = n
	}
	if v := r.FormValue("preserve_face"); v != "" {
		job.Preferences.PreserveFace, _ = strconv.ParseBool(v)
	}
	if v := r.FormValue("preserve_background"); v != "" {
		job.Preferences.PreserveBackground, _ = strconv.ParseBool(v)
	}

	if err := a.Store.Submit(job); err != nil {
		if errors.Is(err, domain.ErrQueueFull) {
			a.error(w, http.StatusServiceUnavailable, "queue_full", "try again later")
			return
		}
		a.Log.Error().Err(err).Msg("submit job")
		a.error(w, http.StatusInternalServerError, "internal", "failed to enqueue job")
		return
	}

	a.Log.Info().Str("job_id", job.ID).Str("mode", string(job.Mode)).Msg("job submitted")
	a.json(w, http.StatusAccepted, map[string]any{
		"job_id":  job.ID,
		"status":  job.Status,
		"message": "job accepted for processing",
	})
}

// saveFunc stores validated upload bytes and returns a local path.
type saveFunc func(ctx context.Context, name string, data []byte) (string, error)

// imageRef resolves one image input from the form. prefix selects the field
// pair, e.g. user_image / user_image_url, and save picks the bucket the
// uploaded bytes land in.
func (a *App) imageRef(r *http.Request, prefix string, save saveFunc) (domain.ImageRef, error) {
	fileField := prefix + "_image"
	urlField := prefix + "_image_url"

	file, header, err := r.FormFile(fileField)
	hasFile := err == nil
	if hasFile {
		defer file.Close()
	}
	url := strings.TrimSpace(r.FormValue(urlField))

	switch {
	case hasFile && url != "":
		return domain.ImageRef{}, errors.New("provide either " + fileField + " or " + urlField + ", not both")
	case hasFile:
		path, err := a.saveUpload(r, file, header, save)
		if err != nil {
			return domain.ImageRef{}, err
		}
		return domain.ImageRef{Path: path}, nil
	case url != "":
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return domain.ImageRef{}, errors.New(urlField + " must be an http(s) URL")
		}
		return domain.ImageRef{URL: url}, nil
	default:
		return domain.ImageRef{}, errors.New("missing " + fileField + " or " + urlField)
	}
}

func (a *App) saveUpload(r *http.Request, file multipart.File, header *multipart.FileHeader, save saveFunc) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", errors.New("unsupported image format " + ext + ", expected jpg or png")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", errors.New("read upload: " + err.Error())
	}
	return save(r.Context(), uuid.NewString()+ext, data)
}

// TryOnStatus reports the full lifecycle record of a job.
func (a *App) TryOnStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := a.Store.Get(jobID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}

	resp := map[string]any{
		"job_id":      job.ID,
		"status":      job.Status,
		"mode":        job.Mode,
		"retry_count": job.RetryCount,
		"max_retries": job.MaxRetries,
		"created_at":  job.CreatedAt.Format(time.RFC3339),
		"updated_at":  job.UpdatedAt.Format(time.RFC3339),
	}
	if job.ProductID != "" {
		resp["product_id"] = job.ProductID
	}
	if job.StartedAt != nil {
		resp["started_at"] = job.StartedAt.Format(time.RFC3339)
	}
	if job.CompletedAt != nil {
		resp["completed_at"] = job.CompletedAt.Format(time.RFC3339)
	}
	if job.Status == domain.StatusDone {
		resp["result_url"] = job.ResultURL
		resp["quality_score"] = job.QualityScore
	}
	if job.Status == domain.StatusFailed {
		resp["error"] = map[string]string{
			"code":    string(job.ErrorKind),
			"message": job.ErrorMessage,
		}
	}
	if len(job.DebugArtifacts) > 0 {
		resp["debug_artifacts"] = job.DebugArtifacts
	}
	a.json(w, http.StatusOK, resp)
}

// TryOnResult streams the finished image. Jobs that are not DONE yet get a
// 400 carrying the current status so clients can keep polling.
func (a *App) TryOnResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := a.Store.Get(jobID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if job.Status != domain.StatusDone {
		a.json(w, http.StatusBadRequest, map[string]any{
			"error": map[string]string{
				"code":    "not_ready",
				"message": "job is not finished",
			},
			"status": job.Status,
		})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, a.Files.ResultPath(job.ID))
}
