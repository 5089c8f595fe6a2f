package service

import (
	"context"

	"safety-studio/internal/apperr"
	"safety-studio/internal/model"

	"gorm.io/gorm"
)

// LibraryService manages per-user saved prompts and images. Deletion is a
// soft delete: rows are tombstoned via is_active and filtered in queries.
type LibraryService struct {
	db *gorm.DB
}

func NewLibraryService(db *gorm.DB) *LibraryService { return &LibraryService{db: db} }

func (s *LibraryService) SavePrompt(ctx context.Context, userID, prompt string, settings model.Settings) (*model.SavedPrompt, error) {
	rec := model.SavedPrompt{
		UserID:   userID,
		Prompt:   prompt,
		Settings: settings,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, mapStoreErr("save prompt", err)
	}
	return &rec, nil
}

func (s *LibraryService) ListPrompts(ctx context.Context, userID string) ([]model.SavedPrompt, error) {
	var prompts []model.SavedPrompt
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&prompts).Error
	if err != nil {
		return nil, mapStoreErr("list prompts", err)
	}
	return prompts, nil
}

func (s *LibraryService) DeletePrompt(ctx context.Context, userID, promptID string) error {
	return s.softDelete(ctx, &model.SavedPrompt{}, userID, promptID, "prompt")
}

func (s *LibraryService) SaveImage(ctx context.Context, userID, url, prompt string, settings model.Settings) (*model.SavedImage, error) {
	rec := model.SavedImage{
		UserID:   userID,
		URL:      url,
		Prompt:   prompt,
		Settings: settings,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, mapStoreErr("save image", err)
	}
	return &rec, nil
}

func (s *LibraryService) ListImages(ctx context.Context, userID string) ([]model.SavedImage, error) {
	var images []model.SavedImage
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&images).Error
	if err != nil {
		return nil, mapStoreErr("list images", err)
	}
	return images, nil
}

func (s *LibraryService) DeleteImage(ctx context.Context, userID, imageID string) error {
	return s.softDelete(ctx, &model.SavedImage{}, userID, imageID, "image")
}

func (s *LibraryService) softDelete(ctx context.Context, entity interface{}, userID, id, kind string) error {
	res := s.db.WithContext(ctx).Model(entity).
		Where("id = ? AND user_id = ? AND is_active = ?", id, userID, true).
		Update("is_active", false)
	if res.Error != nil {
		return mapStoreErr("delete "+kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(kind + " not found")
	}
	return nil
}
