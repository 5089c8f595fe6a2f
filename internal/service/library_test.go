package service

import (
	"context"
	"testing"

	"safety-studio/internal/apperr"
	"safety-studio/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLibraryService(db)
	ctx := context.Background()

	saved, err := svc.SavePrompt(ctx, "alice", "a safety poster about hard hats",
		model.Settings{"aspectRatio": "1:1"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.True(t, saved.IsActive)

	prompts, err := svc.ListPrompts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, saved.ID, prompts[0].ID)
	assert.True(t, prompts[0].IsActive)

	require.NoError(t, svc.DeletePrompt(ctx, "alice", saved.ID))

	prompts, err = svc.ListPrompts(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, prompts)

	// Soft delete: the row still exists, tombstoned.
	var rec model.SavedPrompt
	require.NoError(t, db.First(&rec, "id = ?", saved.ID).Error)
	assert.False(t, rec.IsActive)
}

func TestPromptsAreScopedPerUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLibraryService(db)
	ctx := context.Background()

	_, err := svc.SavePrompt(ctx, "alice", "alice prompt", nil)
	require.NoError(t, err)
	_, err = svc.SavePrompt(ctx, "bob", "bob prompt", nil)
	require.NoError(t, err)

	prompts, err := svc.ListPrompts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, "alice prompt", prompts[0].Prompt)
}

func TestDeletePromptWrongUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLibraryService(db)
	ctx := context.Background()

	saved, err := svc.SavePrompt(ctx, "alice", "private", nil)
	require.NoError(t, err)

	err = svc.DeletePrompt(ctx, "bob", saved.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	prompts, err := svc.ListPrompts(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, prompts, 1)
}

func TestImageRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLibraryService(db)
	ctx := context.Background()

	saved, err := svc.SaveImage(ctx, "alice", "https://cdn.test/img.png", "poster prompt",
		model.Settings{"seed": 42})
	require.NoError(t, err)

	images, err := svc.ListImages(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "https://cdn.test/img.png", images[0].URL)

	require.NoError(t, svc.DeleteImage(ctx, "alice", saved.ID))

	images, err = svc.ListImages(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, images)
}
