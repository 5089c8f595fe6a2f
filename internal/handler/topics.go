package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"safety-studio/internal/apperr"
	"safety-studio/internal/logger"
	"safety-studio/internal/model"
	"safety-studio/internal/service"
)

type TopicHandler struct {
	topics *service.TopicService
}

func NewTopicHandler(topics *service.TopicService) *TopicHandler {
	return &TopicHandler{topics: topics}
}

// POST /api/topics/discover
func (h *TopicHandler) Discover(c *gin.Context) {
	result, err := h.topics.DiscoverTopics(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, model.DiscoverTopicsResponse{
		Success:      true,
		Count:        result.Count,
		UsedFallback: result.UsedFallback,
	})
}

// POST /api/topics/select
func (h *TopicHandler) Select(c *gin.Context) {
	var req model.SelectTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request"))
		return
	}

	day := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			fail(c, apperr.Validation("date must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	result, err := h.topics.SelectDailyTopics(c.Request.Context(), day, req.ExcludeDays)
	if err != nil {
		fail(c, err)
		return
	}
	logger.Info("topics selected", "date", day.Format("2006-01-02"),
		"count", len(result.SelectedTopics), "fallback", result.FallbackUsed)
	c.JSON(http.StatusOK, model.SelectTopicsResponse{
		Success:        true,
		SelectedTopics: result.SelectedTopics,
		TotalAvailable: result.TotalAvailable,
		FallbackUsed:   result.FallbackUsed,
	})
}

// POST /api/topics/clear
func (h *TopicHandler) Clear(c *gin.Context) {
	count, err := h.topics.ClearTopics(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}
