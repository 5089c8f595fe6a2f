package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"safety-studio/internal/apperr"
	"safety-studio/internal/model"
	"safety-studio/internal/service"
)

type ContentHandler struct {
	content *service.ContentService
}

func NewContentHandler(content *service.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// POST /api/content/generate
func (h *ContentHandler) Generate(c *gin.Context) {
	var req model.GenerateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("date is required"))
		return
	}
	doc, err := h.content.GenerateDailyContent(c.Request.Context(), req.Date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "content": doc})
}

// GET /api/content/today
func (h *ContentHandler) Today(c *gin.Context) {
	date := time.Now().Format("2006-01-02")
	doc, err := h.content.GetDailyContent(c.Request.Context(), date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "content": doc})
}

// POST /api/content/mark-posted
func (h *ContentHandler) MarkPosted(c *gin.Context) {
	var req model.MarkPostedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("postId, platform and date are required"))
		return
	}
	if err := h.content.MarkPosted(c.Request.Context(), req.Date, req.PostID, req.Platform); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
