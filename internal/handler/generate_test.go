package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"safety-studio/internal/model"
	"safety-studio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCopyGen struct {
	lastLanguage string
}

func (s *stubCopyGen) GenerateSocialCopy(ctx context.Context, topic model.Topic, platform, contentType, tone, language string) (*service.SocialCopy, error) {
	s.lastLanguage = language
	return &service.SocialCopy{Text: "copy for " + platform, Hashtags: []string{"#safety"}}, nil
}

type stubImageGen struct{}

func (stubImageGen) Generate(ctx context.Context, prompt string, opts service.ImageOptions) ([]service.ImageResult, error) {
	return []service.ImageResult{{Seed: 1, URLs: []string{"https://img.test/x.png"}, UUID: "u"}}, nil
}

func newTestRouter(copygen service.CopyGenerator, images service.ImageGenerator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewGenerateHandler(copygen, images)
	r := gin.New()
	r.POST("/api/generate-image", h.Image)
	r.POST("/api/generate-social", h.Social)
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateSocialDetectsLanguage(t *testing.T) {
	copygen := &stubCopyGen{}
	r := newTestRouter(copygen, stubImageGen{})

	w := post(r, "/api/generate-social", `{"topic":"hola, ¿cómo estás? el negocio de seguridad"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "es", copygen.lastLanguage)

	var resp model.GenerateSocialResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.GeneratedContent, "facebook")
	assert.Contains(t, resp.GeneratedContent, "instagram")
	assert.Equal(t, "es", resp.Settings["language"])
}

func TestGenerateSocialExplicitLanguageWins(t *testing.T) {
	copygen := &stubCopyGen{}
	r := newTestRouter(copygen, stubImageGen{})

	w := post(r, "/api/generate-social", `{"topic":"hola el negocio","language":"fr"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fr", copygen.lastLanguage)
}

func TestGenerateSocialMissingTopic(t *testing.T) {
	r := newTestRouter(&stubCopyGen{}, stubImageGen{})

	w := post(r, "/api/generate-social", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestGenerateImage(t *testing.T) {
	r := newTestRouter(&stubCopyGen{}, stubImageGen{})

	w := post(r, "/api/generate-image", `{"prompt":"hard hat poster"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                  `json:"success"`
		Result  []service.ImageResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Result, 1)
	assert.Equal(t, "u", resp.Result[0].UUID)
}

func TestGenerateImageMissingPrompt(t *testing.T) {
	r := newTestRouter(&stubCopyGen{}, stubImageGen{})

	w := post(r, "/api/generate-image", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
