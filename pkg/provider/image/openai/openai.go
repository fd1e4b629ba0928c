// Package openai provides a cover-art image provider backed by the OpenAI
// Images API (DALL-E 3).
package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/papercast-dev/papercast/pkg/provider/image"
)

// DefaultModel is the default OpenAI image model.
const DefaultModel = oai.ImageModelDallE3

// defaultSize is used when the request does not specify dimensions.
const defaultSize = oai.ImageGenerateParamsSize1024x1024

// Ensure Provider implements the image.Provider interface.
var _ image.Provider = (*Provider)(nil)

// Provider implements image.Provider using the OpenAI Images API.
type Provider struct {
	client oai.Client
	model  string
}

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a new OpenAI image Provider.
// If model is empty, DefaultModel (dall-e-3) is used.
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai image: apiKey must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	client := oai.NewClient(reqOpts...)
	return &Provider{client: client, model: model}, nil
}

// Generate implements image.Provider. The image is requested as base64 PNG so
// no second fetch is needed.
func (p *Provider) Generate(ctx context.Context, req image.Request) (*image.Result, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("openai image: prompt must not be empty")
	}

	resp, err := p.client.Images.Generate(ctx, oai.ImageGenerateParams{
		Prompt:         req.Prompt,
		Model:          p.model,
		N:              param.NewOpt(int64(1)),
		Size:           sizeParam(req.Size),
		ResponseFormat: oai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("openai image: generate: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai image: empty response")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("openai image: decode image data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("openai image: empty image data")
	}

	return &image.Result{
		Data:          data,
		MIMEType:      "image/png",
		RevisedPrompt: resp.Data[0].RevisedPrompt,
	}, nil
}

// ModelID returns the configured model string.
func (p *Provider) ModelID() string {
	return p.model
}

// sizeParam maps a size string to the API enum, defaulting to 1024x1024 for
// empty or unsupported values.
func sizeParam(size string) oai.ImageGenerateParamsSize {
	switch size {
	case "1024x1024", "1024x1792", "1792x1024", "512x512", "256x256":
		return oai.ImageGenerateParamsSize(size)
	default:
		return defaultSize
	}
}
