package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"safety-studio/internal/apperr"
)

// ImageResult is one generated image variant.
type ImageResult struct {
	Seed int      `json:"seed"`
	URLs []string `json:"urls"`
	UUID string   `json:"uuid"`
}

// ImageOptions are the pass-through generation parameters.
type ImageOptions struct {
	NumResults    int
	AspectRatio   string
	Seed          *int
	ModelVersion  string
	PromptEnhance bool
}

// ImageGenerator produces artwork from a text prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, opts ImageOptions) ([]ImageResult, error)
}

// ImageService is a client for the text-to-image HTTP API.
type ImageService struct {
	baseURL      string
	apiToken     string
	modelVersion string
	client       *http.Client
}

func NewImageService(baseURL, apiToken, modelVersion string) *ImageService {
	return &ImageService{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiToken:     apiToken,
		modelVersion: modelVersion,
		client:       &http.Client{Timeout: 90 * time.Second},
	}
}

func (s *ImageService) Generate(ctx context.Context, prompt string, opts ImageOptions) ([]ImageResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperr.Validation("prompt is required")
	}
	if opts.NumResults <= 0 {
		opts.NumResults = 1
	}
	version := opts.ModelVersion
	if version == "" {
		version = s.modelVersion
	}

	body := map[string]interface{}{
		"prompt":         prompt,
		"num_results":    opts.NumResults,
		"sync":           true,
		"prompt_enhance": opts.PromptEnhance,
	}
	if opts.AspectRatio != "" {
		body["aspect_ratio"] = opts.AspectRatio
	}
	if opts.Seed != nil {
		body["seed"] = *opts.Seed
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/text-to-image/base/"+version, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_token", s.apiToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExternalAPI, "image generation unavailable", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		e := apperr.External(resp.StatusCode, imageErrorMessage(resp.StatusCode))
		e.Debug = string(data)
		return nil, e
	}

	var result struct {
		Result []struct {
			Seed int      `json:"seed"`
			URLs []string `json:"urls"`
			UUID string   `json:"uuid"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Result) == 0 {
		return nil, apperr.External(resp.StatusCode, "image generation returned no results")
	}

	out := make([]ImageResult, 0, len(result.Result))
	for _, r := range result.Result {
		out = append(out, ImageResult{Seed: r.Seed, URLs: r.URLs, UUID: r.UUID})
	}
	return out, nil
}

// imageErrorMessage maps upstream statuses to user-facing strings; the
// original code is preserved on the error for passthrough.
func imageErrorMessage(status int) string {
	switch status {
	case http.StatusRequestTimeout:
		return "image generation timed out, try a simpler prompt"
	case http.StatusUnprocessableEntity:
		return "prompt was rejected by the image service, rephrase and retry"
	case http.StatusTooManyRequests:
		return "image generation rate limit reached, try again shortly"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "image generation API token rejected"
	default:
		return fmt.Sprintf("image generation failed (status %d)", status)
	}
}
