package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"safety-studio/internal/apperr"
)

// MediaService wraps the Cloudinary upload and delivery-URL APIs.
type MediaService struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	uploadURL string
	client    *http.Client
}

// UploadResult is the subset of the upload response the dashboard uses.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Bytes     int64  `json:"bytes"`
}

func NewMediaService(cloudName, apiKey, apiSecret, folder string) *MediaService {
	return &MediaService{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    folder,
		uploadURL: fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", cloudName),
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload sends a remote file URL (or data URI) through the signed upload
// endpoint and returns the hosted copy.
func (s *MediaService) Upload(ctx context.Context, fileURL string) (*UploadResult, error) {
	if strings.TrimSpace(fileURL) == "" {
		return nil, apperr.Validation("file url is required")
	}

	params := map[string]string{
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	}
	if s.folder != "" {
		params["folder"] = s.folder
	}
	signature := s.sign(params)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("file", fileURL)
	form.Set("api_key", s.apiKey)
	form.Set("signature", signature)

	req, err := http.NewRequestWithContext(ctx, "POST", s.uploadURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExternalAPI, "media upload unavailable", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		e := apperr.External(resp.StatusCode, fmt.Sprintf("media upload failed (status %d)", resp.StatusCode))
		e.Debug = string(data)
		return nil, e
	}

	var result UploadResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// TransformURL builds a delivery URL applying width/height/crop/format
// transformations to an already-uploaded asset.
func (s *MediaService) TransformURL(publicID string, width, height int, crop, format string) string {
	var parts []string
	if width > 0 {
		parts = append(parts, fmt.Sprintf("w_%d", width))
	}
	if height > 0 {
		parts = append(parts, fmt.Sprintf("h_%d", height))
	}
	if crop != "" {
		parts = append(parts, "c_"+crop)
	}
	transform := strings.Join(parts, ",")

	u := fmt.Sprintf("https://res.cloudinary.com/%s/image/upload", s.cloudName)
	if transform != "" {
		u += "/" + transform
	}
	u += "/" + publicID
	if format != "" {
		u += "." + format
	}
	return u
}

// sign computes the sorted-parameter SHA-1 signature required by the
// upload API.
func (s *MediaService) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	sb.WriteString(s.apiSecret)

	sum := sha1.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
