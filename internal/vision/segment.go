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

const minPersonComponent = 1000

// Segmenter produces a binary person mask for an image.
type Segmenter interface {
	Segment(ctx context.Context, img *image.NRGBA) (*imaging.Mask, error)
}

// SegmentClientOptions configures a SegmentClient.
type SegmentClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// SegmentClient calls an external person-segmentation service over HTTP.
// The service returns a PNG whose alpha channel is the person matte.
type SegmentClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewSegmentClient builds a SegmentClient with defaults for unset options.
func NewSegmentClient(opts SegmentClientOptions) *SegmentClient {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &SegmentClient{
		httpClient: client,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
	}
}

type segmentRequest struct {
	Image string `json:"image"`
}

type segmentResponse struct {
	Mask    string `json:"mask"`
	Message string `json:"message"`
}

// Segment posts the image and converts the returned matte into a binary
// mask. The matte is thresholded, then specks smaller than a minimum
// component size are dropped. An empty result is a segmentation failure.
func (c *SegmentClient) Segment(ctx context.Context, img *image.NRGBA) (*imaging.Mask, error) {
	if c.baseURL == "" {
		return nil, domain.E(domain.KindSegmentationFailed, "segmentation service not configured")
	}
	encoded, err := imaging.ToBase64JPEG(img, 90)
	if err != nil {
		return nil, domain.WrapErr(domain.KindSegmentationFailed, err, "encode segmentation request")
	}
	body, err := json.Marshal(segmentRequest{Image: encoded})
	if err != nil {
		return nil, domain.WrapErr(domain.KindSegmentationFailed, err, "marshal segmentation request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/segment", bytes.NewReader(body))
	if err != nil {
		return nil, domain.WrapErr(domain.KindSegmentationFailed, err, "build segmentation request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapErr(domain.KindSegmentationFailed, err, "segmentation request failed")
	}
	defer resp.Body.Close()

	var out segmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, domain.WrapErr(domain.KindSegmentationFailed, err, "decode segmentation response")
	}
	if resp.StatusCode != http.StatusOK {
		if out.Message != "" {
			return nil, domain.E(domain.KindSegmentationFailed, "segmentation service: %s", out.Message)
		}
		return nil, domain.E(domain.KindSegmentationFailed, "segmentation service: http %d", resp.StatusCode)
	}
	if out.Mask == "" {
		return nil, domain.E(domain.KindSegmentationFailed, "segmentation response missing mask")
	}

	matte, err := imaging.FromBase64(out.Mask)
	if err != nil {
		return nil, domain.WrapErr(domain.KindSegmentationFailed, err, "decode segmentation matte")
	}
	mask := imaging.MaskFromAlpha(matte)
	mask = mask.RemoveSmallComponents(minPersonComponent)
	if mask.CountNonZero() == 0 {
		return nil, domain.E(domain.KindSegmentationFailed, "no person detected in image")
	}
	return mask, nil
}

var _ Segmenter = (*SegmentClient)(nil)
