package storage

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"tryon/internal/imaging"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	return s
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{name: "plain", key: "uploads/a.png", want: "uploads/a.png"},
		{name: "leading slash", key: "/uploads/a.png", want: "uploads/a.png"},
		{name: "dot prefix", key: "./uploads/a.png", want: "uploads/a.png"},
		{name: "backslashes", key: "uploads\\a.png", want: "uploads/a.png"},
		{name: "traversal", key: "../etc/passwd", wantErr: true},
		{name: "empty", key: "  ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sanitizeKey(tt.key)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("sanitizeKey(%q) expected error, got %q", tt.key, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("sanitizeKey(%q) error: %v", tt.key, err)
			}
			if got != tt.want {
				t.Fatalf("sanitizeKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestSaveResult(t *testing.T) {
	s := newTestStore(t)
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))

	url, err := s.SaveResult(context.Background(), "job-1", img)
	if err != nil {
		t.Fatalf("SaveResult() error: %v", err)
	}
	if url != "/results/job-1.png" {
		t.Fatalf("SaveResult() url = %q", url)
	}
	if _, err := os.Stat(s.ResultPath("job-1")); err != nil {
		t.Fatalf("SaveResult() file missing: %v", err)
	}
}

func TestSaveUpload(t *testing.T) {
	s := newTestStore(t)
	path, err := s.SaveUpload(context.Background(), "u.png", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("SaveUpload() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("SaveUpload() read back: %v", err)
	}
	if len(data) != 3 {
		t.Fatalf("SaveUpload() stored %d bytes, want 3", len(data))
	}
	if filepath.Dir(path) != filepath.Join(s.BasePath(), "uploads") {
		t.Fatalf("SaveUpload() path = %q, want under uploads/", path)
	}
}

func TestSaveProduct(t *testing.T) {
	s := newTestStore(t)
	path, err := s.SaveProduct(context.Background(), "g.png", []byte{4, 5, 6})
	if err != nil {
		t.Fatalf("SaveProduct() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("SaveProduct() file missing: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(s.BasePath(), "products") {
		t.Fatalf("SaveProduct() path = %q, want under products/", path)
	}
}

func TestSaveArtifacts(t *testing.T) {
	s := newTestStore(t)
	mask := imaging.NewMask(4, 4)
	mask.Set(1, 1, true)

	out := s.SaveArtifacts(context.Background(), "job-2", ArtifactBundle{
		PersonMask:     mask,
		DraftComposite: image.NewNRGBA(image.Rect(0, 0, 4, 4)),
		Keypoints: map[string]imaging.Point{
			"neck": {X: 2, Y: 1},
		},
	})

	for _, name := range []string{"person_mask", "draft_composite", "keypoints"} {
		key, ok := out[name]
		if !ok {
			t.Fatalf("SaveArtifacts() missing %s in %v", name, out)
		}
		if _, err := os.Stat(filepath.Join(s.BasePath(), filepath.FromSlash(key))); err != nil {
			t.Fatalf("SaveArtifacts() %s file missing: %v", name, err)
		}
	}
	if _, ok := out["torso_mask"]; ok {
		t.Fatalf("SaveArtifacts() invented artifact for nil mask")
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore("  ", zerolog.Nop()); err == nil {
		t.Fatalf("NewFileStore() expected error for blank path")
	}
}
