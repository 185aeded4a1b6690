// Package generate is the HTTP client for the image-generation gateway that
// refines a geometric draft composite into a photorealistic result.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"os"
	"strings"
	"time"

	"tryon/internal/domain"
	"tryon/internal/imaging"
)

const (
	defaultBaseURL = "https://api.nanobanana.com/v1"
	defaultTimeout = 120 * time.Second
	jpegQuality    = 95
)

// Generator produces the refined try-on image for final-mode jobs.
type Generator interface {
	Generate(ctx context.Context, req Request) (*image.NRGBA, error)
}

// Request carries everything the gateway needs for one refinement call.
type Request struct {
	Person      *image.NRGBA
	Garment     *image.NRGBA
	Draft       *image.NRGBA
	GarmentType string
	Prefs       domain.Preferences
}

// Options configures a Client. Unset fields fall back to environment
// variables and library defaults.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client talks to the generation gateway over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient builds a gateway client. An empty API key is allowed; requests
// will then fail and the pipeline falls back to the draft composite.
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("GENERATE_BASE_URL")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GENERATE_API_KEY")
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

type generateRequest struct {
	PersonImage    string `json:"person_image"`
	GarmentImage   string `json:"garment_image"`
	DraftImage     string `json:"draft_image,omitempty"`
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
}

type generateResponse struct {
	Image   string `json:"image"`
	Message string `json:"message"`
}

// Generate posts the person, garment and draft images plus the assembled
// prompt, and decodes the returned image. Deadline expiry maps to a timeout
// error; every other failure is a gateway error.
func (c *Client) Generate(ctx context.Context, req Request) (*image.NRGBA, error) {
	person, err := imaging.ToBase64JPEG(req.Person, jpegQuality)
	if err != nil {
		return nil, domain.WrapErr(domain.KindGenerationAPI, err, "encode person image")
	}
	garment, err := imaging.ToBase64JPEG(req.Garment, jpegQuality)
	if err != nil {
		return nil, domain.WrapErr(domain.KindGenerationAPI, err, "encode garment image")
	}
	payload := generateRequest{
		PersonImage:    person,
		GarmentImage:   garment,
		Prompt:         BuildPrompt(req.Prefs, req.GarmentType),
		NegativePrompt: NegativePrompt,
	}
	if req.Draft != nil {
		draft, err := imaging.ToBase64JPEG(req.Draft, jpegQuality)
		if err != nil {
			return nil, domain.WrapErr(domain.KindGenerationAPI, err, "encode draft image")
		}
		payload.DraftImage = draft
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.WrapErr(domain.KindGenerationAPI, err, "marshal generate request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tryon", bytes.NewReader(body))
	if err != nil {
		return nil, domain.WrapErr(domain.KindGenerationAPI, err, "build generate request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domain.WrapErr(domain.KindTimeout, err, "generation gateway timed out")
		}
		return nil, domain.WrapErr(domain.KindGenerationAPI, err, "generate request failed")
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, domain.WrapErr(domain.KindGenerationAPI, err, "decode generate response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if out.Message != "" {
			return nil, domain.E(domain.KindGenerationAPI, "generation gateway: %s", out.Message)
		}
		return nil, domain.E(domain.KindGenerationAPI, "generation gateway: http %d", resp.StatusCode)
	}
	if out.Image == "" {
		return nil, domain.E(domain.KindGenerationAPI, "generation gateway returned no image")
	}

	img, err := imaging.FromBase64(out.Image)
	if err != nil {
		return nil, domain.WrapErr(domain.KindGenerationAPI, err, "decode generated image")
	}
	return img, nil
}

var _ Generator = (*Client)(nil)
