// Package storage persists uploads, results and debug artifacts onto the
// local filesystem.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"tryon/internal/domain"
	"tryon/internal/imaging"
)

// Bucket prefixes under the storage root.
const (
	bucketUploads   = "uploads"
	bucketProducts  = "products"
	bucketResults   = "results"
	bucketArtifacts = "artifacts"
)

// FileStore persists assets onto the local filesystem. It is intended for
// single-node deployments where an object storage service is not available.
type FileStore struct {
	basePath string
	log      zerolog.Logger
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string, log zerolog.Logger) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath, log: log}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Write persists the provided bytes at the given relative key and returns the
// canonicalized storage key. Keys are cleaned to prevent directory traversal.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return cleanKey, nil
}

// SaveUpload stores raw user-image bytes and returns the local path the
// pipeline will later load the image from.
func (s *FileStore) SaveUpload(ctx context.Context, name string, data []byte) (string, error) {
	return s.saveInput(ctx, bucketUploads, name, data)
}

// SaveProduct stores raw product-image bytes under the products bucket.
func (s *FileStore) SaveProduct(ctx context.Context, name string, data []byte) (string, error) {
	return s.saveInput(ctx, bucketProducts, name, data)
}

func (s *FileStore) saveInput(ctx context.Context, bucket, name string, data []byte) (string, error) {
	key, err := s.Write(ctx, bucket+"/"+name, data)
	if err != nil {
		return "", domain.WrapErr(domain.KindStorage, err, "save "+bucket)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(key)), nil
}

// SaveResult encodes the final image as PNG under the results bucket and
// returns the public result URL path.
func (s *FileStore) SaveResult(ctx context.Context, jobID string, img image.Image) (string, error) {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return "", domain.WrapErr(domain.KindStorage, err, "encode result")
	}
	if _, err := s.Write(ctx, bucketResults+"/"+jobID+".png", data); err != nil {
		return "", domain.WrapErr(domain.KindStorage, err, "save result")
	}
	return "/results/" + jobID + ".png", nil
}

// ResultPath returns the filesystem path of a stored result image.
func (s *FileStore) ResultPath(jobID string) string {
	return filepath.Join(s.basePath, bucketResults, jobID+".png")
}

// ArtifactBundle holds the intermediate pipeline outputs saved for debugging.
// Any field may be nil.
type ArtifactBundle struct {
	PersonMask     *imaging.Mask
	TorsoMask      *imaging.Mask
	GarmentMask    *imaging.Mask
	DraftComposite *image.NRGBA
	Keypoints      map[string]imaging.Point
}

// SaveArtifacts persists whatever the bundle carries and returns a name to
// key map of what was written. Artifact storage is best effort: individual
// failures are logged and skipped, never surfaced to the pipeline.
func (s *FileStore) SaveArtifacts(ctx context.Context, jobID string, bundle ArtifactBundle) map[string]string {
	out := make(map[string]string)
	prefix := bucketArtifacts + "/" + jobID + "/"

	saveMask := func(name string, m *imaging.Mask) {
		if m == nil {
			return
		}
		data, err := imaging.EncodePNG(m.ToGray())
		if err == nil {
			_, err = s.Write(ctx, prefix+name+".png", data)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("job_id", jobID).Str("artifact", name).Msg("save artifact failed")
			return
		}
		out[name] = prefix + name + ".png"
	}
	saveMask("person_mask", bundle.PersonMask)
	saveMask("torso_mask", bundle.TorsoMask)
	saveMask("garment_mask", bundle.GarmentMask)

	if bundle.DraftComposite != nil {
		data, err := imaging.EncodePNG(bundle.DraftComposite)
		if err == nil {
			_, err = s.Write(ctx, prefix+"draft_composite.png", data)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("job_id", jobID).Msg("save draft composite failed")
		} else {
			out["draft_composite"] = prefix + "draft_composite.png"
		}
	}

	if len(bundle.Keypoints) > 0 {
		data, err := json.MarshalIndent(bundle.Keypoints, "", "  ")
		if err == nil {
			_, err = s.Write(ctx, prefix+"keypoints.json", data)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("job_id", jobID).Msg("save keypoints failed")
		} else {
			out["keypoints"] = prefix + "keypoints.json"
		}
	}
	return out
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
