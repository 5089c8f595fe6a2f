package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safety-studio/internal/apperr"
	"safety-studio/internal/model"
	"safety-studio/internal/service"
)

type LibraryHandler struct {
	library *service.LibraryService
}

func NewLibraryHandler(library *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

// POST /api/prompts/save
func (h *LibraryHandler) SavePrompt(c *gin.Context) {
	var req model.SavePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("prompt is required"))
		return
	}
	rec, err := h.library.SavePrompt(c.Request.Context(), userID(c), req.Prompt, req.Settings)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "prompt": rec})
}

// GET /api/prompts/load
func (h *LibraryHandler) LoadPrompts(c *gin.Context) {
	prompts, err := h.library.ListPrompts(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	if prompts == nil {
		prompts = []model.SavedPrompt{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "prompts": prompts})
}

// DELETE /api/prompts/delete
func (h *LibraryHandler) DeletePrompt(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		fail(c, apperr.Validation("id is required"))
		return
	}
	if err := h.library.DeletePrompt(c.Request.Context(), userID(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/images/save
func (h *LibraryHandler) SaveImage(c *gin.Context) {
	var req model.SaveImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("url is required"))
		return
	}
	rec, err := h.library.SaveImage(c.Request.Context(), userID(c), req.URL, req.Prompt, req.Settings)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "image": rec})
}

// GET /api/images
func (h *LibraryHandler) ListImages(c *gin.Context) {
	images, err := h.library.ListImages(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	if images == nil {
		images = []model.SavedImage{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "images": images})
}

// DELETE /api/images/:id
func (h *LibraryHandler) DeleteImage(c *gin.Context) {
	if err := h.library.DeleteImage(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
