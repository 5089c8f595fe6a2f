package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safety-studio/internal/apperr"
	"safety-studio/internal/model"
	"safety-studio/internal/service"
)

type MediaHandler struct {
	media *service.MediaService
}

func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// POST /api/cloudinary/upload
func (h *MediaHandler) Upload(c *gin.Context) {
	var req struct {
		FileURL string `json:"fileUrl" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("fileUrl is required"))
		return
	}
	result, err := h.media.Upload(c.Request.Context(), req.FileURL)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "upload": result})
}

// POST /api/cloudinary/transform
func (h *MediaHandler) Transform(c *gin.Context) {
	var req model.TransformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("publicId is required"))
		return
	}
	url := h.media.TransformURL(req.PublicID, req.Width, req.Height, req.Crop, req.Format)
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}
