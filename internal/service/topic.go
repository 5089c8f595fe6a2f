package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"safety-studio/internal/apperr"
	"safety-studio/internal/logger"
	"safety-studio/internal/model"

	"gorm.io/gorm"
)

const (
	selectPoolSize   = 100
	fallbackPoolSize = 10
	minSelectable    = 3
)

// SelectionResult is the outcome of one daily topic pick. Selected topics
// carry pre-update usage fields.
type SelectionResult struct {
	SelectedTopics []model.Topic `json:"selectedTopics"`
	TotalAvailable int           `json:"totalAvailable"`
	FallbackUsed   bool          `json:"fallbackUsed"`
}

// DiscoveryResult reports how the topic store was populated.
type DiscoveryResult struct {
	Count        int  `json:"count"`
	UsedFallback bool `json:"usedFallback"`
}

// TopicService owns topic rotation: discovery, selection and the
// administrative clear.
type TopicService struct {
	db           *gorm.DB
	picker       TopicPicker
	topicsPerDay int
}

func NewTopicService(db *gorm.DB, picker TopicPicker, topicsPerDay int) *TopicService {
	if topicsPerDay <= 0 {
		topicsPerDay = minSelectable
	}
	return &TopicService{db: db, picker: picker, topicsPerDay: topicsPerDay}
}

// SelectDailyTopics picks a diverse set of topics not used within
// excludeDays of date, and marks them used. When fewer than three unused
// topics exist it falls back to the top-priority pool without touching
// usage counters.
func (s *TopicService) SelectDailyTopics(ctx context.Context, date time.Time, excludeDays int) (*SelectionResult, error) {
	if excludeDays <= 0 {
		excludeDays = 7
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Topic{}).Where("is_archived = ?", false).Count(&total).Error; err != nil {
		return nil, mapStoreErr("count topics", err)
	}
	if total == 0 {
		return nil, apperr.New(apperr.KindNoTopics, "no topics available, run discovery first")
	}

	var pool []model.Topic
	err := s.db.WithContext(ctx).
		Where("is_archived = ?", false).
		Order("priority_score DESC").
		Limit(selectPoolSize).
		Find(&pool).Error
	if err != nil {
		return nil, mapStoreErr("load topic pool", err)
	}

	cutoff := date.AddDate(0, 0, -excludeDays)
	var unused []model.Topic
	for _, t := range pool {
		if t.LastUsedDate == nil || t.LastUsedDate.Before(cutoff) {
			unused = append(unused, t)
		}
	}

	if len(unused) < minSelectable {
		return s.selectFallback(ctx, len(unused))
	}

	selected := s.pickDiverse(ctx, unused)
	now := time.Now()
	for _, t := range selected {
		res := s.db.WithContext(ctx).Model(&model.Topic{}).
			Where("id = ?", t.ID).
			Updates(map[string]interface{}{
				"last_used_date": now,
				"usage_count":    gorm.Expr("usage_count + 1"),
			})
		if res.Error != nil || res.RowsAffected == 0 {
			logger.Warn("topic usage update skipped", "topic_id", t.ID, "err", res.Error)
		}
	}

	return &SelectionResult{
		SelectedTopics: selected,
		TotalAvailable: len(unused),
	}, nil
}

// selectFallback re-queries the top-priority pool when too few unused
// topics remain. The fallback path never mutates usage fields.
func (s *TopicService) selectFallback(ctx context.Context, unusedCount int) (*SelectionResult, error) {
	var fallback []model.Topic
	err := s.db.WithContext(ctx).
		Where("is_archived = ?", false).
		Order("priority_score DESC").
		Limit(fallbackPoolSize).
		Find(&fallback).Error
	if err != nil {
		return nil, mapStoreErr("load fallback pool", err)
	}
	if len(fallback) < minSelectable {
		return nil, apperr.Newf(apperr.KindInsufficientTopics,
			"only %d topics available, at least %d required", len(fallback), minSelectable)
	}
	logger.Info("topic selection fallback", "unused", unusedCount, "pool", len(fallback))
	return &SelectionResult{
		SelectedTopics: fallback[:minSelectable],
		TotalAvailable: unusedCount,
		FallbackUsed:   true,
	}, nil
}

// pickDiverse delegates the diversity choice to the LLM and intersects
// the returned ids with the candidate pool; ids outside the pool are a
// partial failure (logged, dropped). On LLM failure or an empty
// intersection the pick degrades to priority order.
func (s *TopicService) pickDiverse(ctx context.Context, unused []model.Topic) []model.Topic {
	n := s.topicsPerDay
	if n > len(unused) {
		n = len(unused)
	}

	ids, err := s.picker.ChooseDiverseTopics(ctx, unused, n)
	if err != nil {
		logger.Warn("diverse pick failed, using priority order", "err", err)
		return unused[:n]
	}

	byID := make(map[string]model.Topic, len(unused))
	for _, t := range unused {
		byID[t.ID] = t
	}
	var selected []model.Topic
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			if len(selected) < n {
				selected = append(selected, t)
			}
		} else {
			logger.Warn("model returned id outside candidate pool", "id", id)
		}
	}
	if len(selected) == 0 {
		logger.Warn("no valid ids from model, using priority order")
		return unused[:n]
	}
	return selected
}

// DiscoverTopics populates the store when it is empty. Idempotent by
// presence: any non-archived topic short-circuits with the existing count
// and zero writes.
func (s *TopicService) DiscoverTopics(ctx context.Context) (*DiscoveryResult, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Topic{}).Where("is_archived = ?", false).Count(&total).Error; err != nil {
		return nil, mapStoreErr("count topics", err)
	}
	if total > 0 {
		return &DiscoveryResult{Count: int(total)}, nil
	}

	usedFallback := false
	topics, err := s.picker.GenerateTopicIdeas(ctx, len(fallbackTopics))
	if err != nil {
		logger.Warn("topic generation failed, using static list", "err", err)
		topics = fallbackTopics
		usedFallback = true
	}

	count := 0
	for i := range topics {
		t := topics[i]
		t.UsageCount = 0
		t.LastUsedDate = nil
		t.IsArchived = false
		if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
			logger.Warn("topic insert failed", "title", t.Title, "err", err)
			continue
		}
		count++
	}
	if count == 0 {
		return nil, apperr.New(apperr.KindStoreUnavailable, "failed to persist any topics")
	}
	return &DiscoveryResult{Count: count, UsedFallback: usedFallback}, nil
}

// ClearTopics deletes every topic. Administrative reset only.
func (s *TopicService) ClearTopics(ctx context.Context) (int, error) {
	res := s.db.WithContext(ctx).Where("1 = 1").Delete(&model.Topic{})
	if res.Error != nil {
		return 0, mapStoreErr("clear topics", res.Error)
	}
	logger.Info("topics cleared", "count", res.RowsAffected)
	return int(res.RowsAffected), nil
}

func mapStoreErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.KindNotFound, op, err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "index") {
		return apperr.Wrap(apperr.KindStoreIndexMissing,
			op+" needs a store index, check schema migrations", err)
	}
	return apperr.Wrap(apperr.KindStoreUnavailable, fmt.Sprintf("%s failed", op), err)
}

// fallbackTopics is the static seed list used when LLM discovery fails.
var fallbackTopics = []model.Topic{
	{Title: "Hard Hats Save Lives", Category: "ppe", Description: "Why head protection matters on every site.", Keywords: model.StringList{"hard hat", "head protection", "ppe"}, PriorityScore: 9, SeasonalRelevance: model.SeasonAll},
	{Title: "Know Your Extinguisher Classes", Category: "fire-safety", Description: "Matching extinguisher types to fire classes.", Keywords: model.StringList{"fire extinguisher", "fire classes"}, PriorityScore: 8, SeasonalRelevance: model.SeasonAll},
	{Title: "Lockout Tagout Basics", Category: "electrical-safety", Description: "Isolating energy sources before maintenance.", Keywords: model.StringList{"lockout", "tagout", "loto"}, PriorityScore: 9, SeasonalRelevance: model.SeasonAll},
	{Title: "Harness Inspection Checklist", Category: "fall-protection", Description: "Daily checks before working at height.", Keywords: model.StringList{"harness", "fall arrest", "height"}, PriorityScore: 8, SeasonalRelevance: model.SeasonAll},
	{Title: "Reading Safety Data Sheets", Category: "hazard-communication", Description: "Finding the hazards section fast.", Keywords: model.StringList{"sds", "ghs", "labels"}, PriorityScore: 7, SeasonalRelevance: model.SeasonAll},
	{Title: "Guards Stay On", Category: "machine-guarding", Description: "Never bypass machine guards, even for a quick fix.", Keywords: model.StringList{"machine guard", "pinch point"}, PriorityScore: 7, SeasonalRelevance: model.SeasonAll},
	{Title: "Lift With Your Legs", Category: "ergonomics", Description: "Safe manual handling technique.", Keywords: model.StringList{"lifting", "back safety", "manual handling"}, PriorityScore: 6, SeasonalRelevance: model.SeasonAll},
	{Title: "Know Your Muster Point", Category: "emergency-preparedness", Description: "Evacuation routes and assembly areas.", Keywords: model.StringList{"evacuation", "muster point", "drill"}, PriorityScore: 7, SeasonalRelevance: model.SeasonAll},
	{Title: "Heat Stress Warning Signs", Category: "chemical-safety", Description: "Hydration and rest cycles in hot conditions.", Keywords: model.StringList{"heat stress", "hydration"}, PriorityScore: 8, SeasonalRelevance: model.SeasonSummer},
	{Title: "Talk About Stress at Work", Category: "mental-health", Description: "Making it normal to raise workload concerns.", Keywords: model.StringList{"mental health", "stress", "wellbeing"}, PriorityScore: 6, SeasonalRelevance: model.SeasonWinter},
}
