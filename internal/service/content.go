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

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// discoveryWait is the pause between seeding an empty topic store and
// retrying selection.
var discoveryWait = 2 * time.Second

// ContentService orchestrates daily generation: topic selection, per-topic
// copy and artwork, and the status machine on daily_contents.
type ContentService struct {
	db          *gorm.DB
	topics      *TopicService
	copygen     CopyGenerator
	images      ImageGenerator
	platforms   []string
	excludeDays int
}

func NewContentService(db *gorm.DB, topics *TopicService, copygen CopyGenerator, images ImageGenerator, platforms []string, excludeDays int) *ContentService {
	if len(platforms) == 0 {
		platforms = []string{"facebook", "instagram"}
	}
	if excludeDays <= 0 {
		excludeDays = 7
	}
	return &ContentService{
		db:          db,
		topics:      topics,
		copygen:     copygen,
		images:      images,
		platforms:   platforms,
		excludeDays: excludeDays,
	}
}

// GenerateDailyContent runs (or short-circuits) generation for one date.
// A completed document is returned unchanged. The generating state is
// claimed with a conditional write, so a concurrent second caller gets
// ErrGenerationInProgress instead of double-running.
func (s *ContentService) GenerateDailyContent(ctx context.Context, date string) (*model.DailyContent, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, apperr.Validation("date must be YYYY-MM-DD")
	}

	var existing model.DailyContent
	err = s.db.WithContext(ctx).Where("date = ?", date).First(&existing).Error
	switch {
	case err == nil:
		if existing.GenerationStatus == model.StatusCompleted {
			return &existing, nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, mapStoreErr("load daily content", err)
	}

	doc, err := s.claim(ctx, date)
	if err != nil {
		return nil, err
	}
	if doc != nil {
		// Lost the race but the winner already finished.
		return doc, nil
	}

	result, err := s.resolveTopics(ctx, day)
	if err != nil {
		s.markError(ctx, date, err)
		return nil, err
	}

	posts := make(model.PostList, 0, len(result.SelectedTopics))
	topicsUsed := make(model.StringList, 0, len(result.SelectedTopics))
	for _, topic := range result.SelectedTopics {
		post, err := s.buildPost(ctx, topic)
		if err != nil {
			s.markError(ctx, date, err)
			return nil, err
		}
		posts = append(posts, *post)
		topicsUsed = append(topicsUsed, topic.ID)
	}

	now := time.Now()
	final := model.DailyContent{
		Date:             date,
		Posts:            posts,
		GenerationStatus: model.StatusCompleted,
		GeneratedAt:      &now,
		TopicsUsed:       topicsUsed,
	}
	err = s.db.WithContext(ctx).Model(&model.DailyContent{}).Where("date = ?", date).
		Updates(map[string]interface{}{
			"posts":             final.Posts,
			"generation_status": model.StatusCompleted,
			"generated_at":      now,
			"topics_used":       final.TopicsUsed,
			"error_message":     "",
		}).Error
	if err != nil {
		mapped := mapStoreErr("save daily content", err)
		s.markError(ctx, date, mapped)
		return nil, mapped
	}
	logger.Info("daily content generated", "date", date, "posts", len(posts), "fallback", result.FallbackUsed)
	return &final, nil
}

// claim moves the document into generating atomically. Returns (nil, nil)
// when this caller owns generation, (doc, nil) when another caller already
// completed it, and ErrGenerationInProgress when one is mid-flight.
func (s *ContentService) claim(ctx context.Context, date string) (*model.DailyContent, error) {
	res := s.db.WithContext(ctx).Model(&model.DailyContent{}).
		Where("date = ? AND generation_status NOT IN ?", date,
			[]string{model.StatusGenerating, model.StatusCompleted}).
		Updates(map[string]interface{}{
			"generation_status": model.StatusGenerating,
			"error_message":     "",
		})
	if res.Error != nil {
		return nil, mapStoreErr("claim daily content", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil, nil
	}

	placeholder := model.DailyContent{
		Date:             date,
		Posts:            model.PostList{},
		GenerationStatus: model.StatusGenerating,
		TopicsUsed:       model.StringList{},
	}
	err := s.db.WithContext(ctx).Create(&placeholder).Error
	if err == nil {
		return nil, nil
	}
	if !isDuplicateKey(err) {
		return nil, mapStoreErr("create daily content", err)
	}

	// Row exists in generating or completed state.
	var doc model.DailyContent
	if err := s.db.WithContext(ctx).Where("date = ?", date).First(&doc).Error; err != nil {
		return nil, mapStoreErr("reload daily content", err)
	}
	if doc.GenerationStatus == model.StatusCompleted {
		return &doc, nil
	}
	return nil, apperr.Newf(apperr.KindGenerationInProgress, "generation already in progress for %s", date)
}

// resolveTopics selects topics, seeding the store once when it is empty.
func (s *ContentService) resolveTopics(ctx context.Context, day time.Time) (*SelectionResult, error) {
	result, err := s.topics.SelectDailyTopics(ctx, day, s.excludeDays)
	if err == nil {
		return result, nil
	}
	if apperr.KindOf(err) != apperr.KindNoTopics {
		return nil, err
	}

	logger.Info("topic store empty, running discovery", "date", day.Format(dateLayout))
	if _, err := s.topics.DiscoverTopics(ctx); err != nil {
		return nil, fmt.Errorf("discovery before selection: %w", err)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(discoveryWait):
	}
	return s.topics.SelectDailyTopics(ctx, day, s.excludeDays)
}

// buildPost generates copy and artwork for every platform concurrently
// and joins the results into one Post.
func (s *ContentService) buildPost(ctx context.Context, topic model.Topic) (*model.Post, error) {
	contents := make([]*model.PlatformContent, len(s.platforms))

	g, gctx := errgroup.WithContext(ctx)
	for i, platform := range s.platforms {
		i, platform := i, platform
		g.Go(func() error {
			sc, err := s.copygen.GenerateSocialCopy(gctx, topic, platform, "", "", "")
			if err != nil {
				return err
			}
			results, err := s.images.Generate(gctx, sc.ImagePrompt, ImageOptions{NumResults: 1})
			if err != nil {
				return err
			}
			imageURL := ""
			if len(results) > 0 && len(results[0].URLs) > 0 {
				imageURL = results[0].URLs[0]
			}
			contents[i] = &model.PlatformContent{
				Text:     sc.Text,
				ImageURL: imageURL,
				Hashtags: sc.Hashtags,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate post for topic %s: %w", topic.ID, err)
	}

	platforms := make(map[string]*model.PlatformContent, len(s.platforms))
	for i, platform := range s.platforms {
		platforms[platform] = contents[i]
	}
	return &model.Post{
		ID:        uuid.New().String(),
		TopicID:   topic.ID,
		Category:  topic.Category,
		Platforms: platforms,
		CreatedAt: time.Now(),
	}, nil
}

// markError records a visible failed state. Posts and topicsUsed are
// cleared so a later retry starts clean.
func (s *ContentService) markError(ctx context.Context, date string, cause error) {
	err := s.db.WithContext(ctx).Model(&model.DailyContent{}).Where("date = ?", date).
		Updates(map[string]interface{}{
			"posts":             model.PostList{},
			"topics_used":       model.StringList{},
			"generation_status": model.StatusError,
			"error_message":     cause.Error(),
		}).Error
	if err != nil {
		logger.Error("failed to mark error status", "date", date, "err", err)
	}
}

// GetDailyContent fetches one date's document, or an empty pending shell
// when none exists. Never writes.
func (s *ContentService) GetDailyContent(ctx context.Context, date string) (*model.DailyContent, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, apperr.Validation("date must be YYYY-MM-DD")
	}
	var doc model.DailyContent
	err := s.db.WithContext(ctx).Where("date = ?", date).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.DailyContent{
			Date:             date,
			Posts:            model.PostList{},
			GenerationStatus: model.StatusPending,
			TopicsUsed:       model.StringList{},
		}, nil
	}
	if err != nil {
		return nil, mapStoreErr("load daily content", err)
	}
	return &doc, nil
}

// MarkPosted flags one post as published on one platform. Missing date,
// post or platform is a not-found with no mutation.
func (s *ContentService) MarkPosted(ctx context.Context, date, postID, platform string) error {
	var doc model.DailyContent
	err := s.db.WithContext(ctx).Where("date = ?", date).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("no content for " + date)
	}
	if err != nil {
		return mapStoreErr("load daily content", err)
	}

	for i := range doc.Posts {
		if doc.Posts[i].ID != postID {
			continue
		}
		pc, ok := doc.Posts[i].Platforms[platform]
		if !ok {
			return apperr.NotFound("post has no content for platform " + platform)
		}
		now := time.Now()
		pc.IsPosted = true
		pc.PostedAt = &now
		return s.db.WithContext(ctx).Model(&model.DailyContent{}).
			Where("date = ?", date).
			Update("posts", doc.Posts).Error
	}
	return apperr.NotFound("post not found")
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
