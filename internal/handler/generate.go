package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safety-studio/internal/apperr"
	"safety-studio/internal/langdetect"
	"safety-studio/internal/logger"
	"safety-studio/internal/model"
	"safety-studio/internal/service"
)

// GenerateHandler proxies the image and social-copy generation APIs.
type GenerateHandler struct {
	ai     service.CopyGenerator
	images service.ImageGenerator
}

func NewGenerateHandler(ai service.CopyGenerator, images service.ImageGenerator) *GenerateHandler {
	return &GenerateHandler{ai: ai, images: images}
}

// POST /api/generate-image
func (h *GenerateHandler) Image(c *gin.Context) {
	var req model.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("prompt is required"))
		return
	}
	results, err := h.images.Generate(c.Request.Context(), req.Prompt, service.ImageOptions{
		NumResults:    req.NumResults,
		AspectRatio:   req.AspectRatio,
		Seed:          req.Seed,
		ModelVersion:  req.ModelVersion,
		PromptEnhance: req.PromptEnhance,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": results})
}

// POST /api/generate-social
func (h *GenerateHandler) Social(c *gin.Context) {
	var req model.GenerateSocialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("topic is required"))
		return
	}
	if len(req.Platforms) == 0 {
		req.Platforms = []string{"facebook", "instagram"}
	}
	language := req.Language
	if language == "" || !langdetect.Supported(language) {
		language = langdetect.Detect(req.Topic)
	}

	topic := model.Topic{Title: req.Topic}
	generated := make(map[string]model.PlatformContent, len(req.Platforms))
	for _, platform := range req.Platforms {
		sc, err := h.ai.GenerateSocialCopy(c.Request.Context(), topic, platform, req.ContentType, req.Tone, language)
		if err != nil {
			fail(c, err)
			return
		}
		generated[platform] = model.PlatformContent{Text: sc.Text, Hashtags: sc.Hashtags}
	}
	logger.Info("social copy generated", "topic", req.Topic, "platforms", len(req.Platforms), "language", language)

	c.JSON(http.StatusOK, model.GenerateSocialResponse{
		Success:          true,
		GeneratedContent: generated,
		Settings: model.Settings{
			"contentType": req.ContentType,
			"tone":        req.Tone,
			"language":    language,
		},
	})
}
