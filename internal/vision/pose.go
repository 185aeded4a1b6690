// Package vision wraps the external pose-estimation and person-segmentation
// models behind small interfaces and provides the geometric fallbacks the
// pipeline uses when a model produces nothing usable.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"net/http"
	"strings"
	"time"

	"tryon/internal/domain"
	"tryon/internal/imaging"
)

// PoseEstimator detects body landmarks on a person image. Implementations
// must tolerate being invoked twice per job: the initial attempt and a
// later mask-assisted retry.
type PoseEstimator interface {
	Detect(ctx context.Context, img *image.NRGBA, minConfidence float64) (*imaging.BodySet, error)
}

// PoseClientOptions configures a PoseClient.
type PoseClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// PoseClient calls an external pose-estimation service over HTTP.
type PoseClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewPoseClient builds a PoseClient with defaults for unset options.
func NewPoseClient(opts PoseClientOptions) *PoseClient {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &PoseClient{
		httpClient: client,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
	}
}

type poseRequest struct {
	Image         string  `json:"image"`
	MinConfidence float64 `json:"min_confidence"`
}

type poseResponse struct {
	Landmarks []struct {
		Name       string  `json:"name"`
		X          float64 `json:"x"`
		Y          float64 `json:"y"`
		Confidence float64 `json:"confidence"`
	} `json:"landmarks"`
	Message string `json:"message"`
}

// Detect posts the image to the pose service and maps the response onto the
// closed body-landmark set. Landmarks below minConfidence are dropped; the
// neck is synthesized as the shoulder midpoint when the service does not
// report one. Fewer than both shoulders is a pose failure.
func (c *PoseClient) Detect(ctx context.Context, img *image.NRGBA, minConfidence float64) (*imaging.BodySet, error) {
	if c.baseURL == "" {
		return nil, domain.E(domain.KindPoseFailed, "pose service not configured")
	}
	encoded, err := imaging.ToBase64JPEG(img, 90)
	if err != nil {
		return nil, domain.WrapErr(domain.KindPoseFailed, err, "encode pose request")
	}
	body, err := json.Marshal(poseRequest{Image: encoded, MinConfidence: minConfidence})
	if err != nil {
		return nil, domain.WrapErr(domain.KindPoseFailed, err, "marshal pose request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/pose", bytes.NewReader(body))
	if err != nil {
		return nil, domain.WrapErr(domain.KindPoseFailed, err, "build pose request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapErr(domain.KindPoseFailed, err, "pose request failed")
	}
	defer resp.Body.Close()

	var out poseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, domain.WrapErr(domain.KindPoseFailed, err, "decode pose response")
	}
	if resp.StatusCode != http.StatusOK {
		if out.Message != "" {
			return nil, domain.E(domain.KindPoseFailed, "pose service: %s", out.Message)
		}
		return nil, domain.E(domain.KindPoseFailed, "pose service: http %d", resp.StatusCode)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	set := &imaging.BodySet{}
	for _, lm := range out.Landmarks {
		if lm.Confidence < minConfidence {
			continue
		}
		slot, ok := imaging.ParseBodyPoint(lm.Name)
		if !ok {
			continue
		}
		set.Set(slot, imaging.Point{
			X: clamp(lm.X, 0, float64(w-1)),
			Y: clamp(lm.Y, 0, float64(h-1)),
		})
	}

	if _, ok := set.Get(imaging.BodyNeck); !ok {
		if set.Has(imaging.BodyLeftShoulder, imaging.BodyRightShoulder) {
			ls, _ := set.Get(imaging.BodyLeftShoulder)
			rs, _ := set.Get(imaging.BodyRightShoulder)
			set.Set(imaging.BodyNeck, imaging.Midpoint(ls, rs))
		}
	}

	if !set.Has(imaging.BodyLeftShoulder, imaging.BodyRightShoulder) {
		return nil, domain.E(domain.KindPoseFailed, "missing critical keypoints (shoulders)")
	}
	return set, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ PoseEstimator = (*PoseClient)(nil)
