package service

import (
	"context"
	"testing"
	"time"

	"safety-studio/internal/apperr"
	"safety-studio/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedTopic(t *testing.T, db *gorm.DB, title string, priority int, lastUsed *time.Time, archived bool) model.Topic {
	t.Helper()
	topic := model.Topic{
		Title:             title,
		Category:          "ppe",
		Keywords:          model.StringList{"safety"},
		PriorityScore:     priority,
		SeasonalRelevance: model.SeasonAll,
		IsArchived:        archived,
		LastUsedDate:      lastUsed,
	}
	require.NoError(t, db.Create(&topic).Error)
	return topic
}

func TestSelectDailyTopicsEmptyStore(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTopicService(db, &fakePicker{}, 3)

	_, err := svc.SelectDailyTopics(context.Background(), time.Now(), 7)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNoTopics, apperr.KindOf(err))
}

func TestSelectDailyTopicsMarksUsage(t *testing.T) {
	db := setupTestDB(t)
	for i := 0; i < 5; i++ {
		seedTopic(t, db, "topic", 5+i, nil, false)
	}
	picker := &fakePicker{}
	svc := NewTopicService(db, picker, 3)

	result, err := svc.SelectDailyTopics(context.Background(), time.Now(), 7)
	require.NoError(t, err)
	assert.Len(t, result.SelectedTopics, 3)
	assert.Equal(t, 5, result.TotalAvailable)
	assert.False(t, result.FallbackUsed)

	// Returned topics carry pre-update state.
	for _, topic := range result.SelectedTopics {
		assert.Equal(t, 0, topic.UsageCount)
		assert.Nil(t, topic.LastUsedDate)
	}

	// The store reflects the usage update.
	for _, topic := range result.SelectedTopics {
		var stored model.Topic
		require.NoError(t, db.First(&stored, "id = ?", topic.ID).Error)
		assert.Equal(t, 1, stored.UsageCount)
		assert.NotNil(t, stored.LastUsedDate)
	}
}

func TestSelectDailyTopicsExcludesArchivedAndRecent(t *testing.T) {
	db := setupTestDB(t)
	yesterday := time.Now().AddDate(0, 0, -1)
	old := time.Now().AddDate(0, 0, -30)

	seedTopic(t, db, "archived", 10, nil, true)
	recent := seedTopic(t, db, "recent", 9, &yesterday, false)
	seedTopic(t, db, "stale", 8, &old, false)
	seedTopic(t, db, "never-a", 7, nil, false)
	seedTopic(t, db, "never-b", 6, nil, false)

	var candidateIDs []string
	picker := &fakePicker{chooseFn: func(candidates []model.Topic, n int) ([]string, error) {
		ids := make([]string, 0, n)
		for i := 0; i < n && i < len(candidates); i++ {
			candidateIDs = append(candidateIDs, candidates[i].ID)
			ids = append(ids, candidates[i].ID)
		}
		return ids, nil
	}}
	svc := NewTopicService(db, picker, 3)

	result, err := svc.SelectDailyTopics(context.Background(), time.Now(), 7)
	require.NoError(t, err)
	require.Len(t, result.SelectedTopics, 3)
	for _, topic := range result.SelectedTopics {
		assert.False(t, topic.IsArchived)
		assert.NotEqual(t, recent.ID, topic.ID)
	}
	assert.Equal(t, 3, result.TotalAvailable)
}

func TestSelectDailyTopicsDropsIDsOutsidePool(t *testing.T) {
	db := setupTestDB(t)
	for i := 0; i < 4; i++ {
		seedTopic(t, db, "topic", 5, nil, false)
	}
	picker := &fakePicker{chooseFn: func(candidates []model.Topic, n int) ([]string, error) {
		// One valid id plus fabricated ones the model was never given.
		return []string{candidates[0].ID, "made-up-1", "made-up-2"}, nil
	}}
	svc := NewTopicService(db, picker, 3)

	result, err := svc.SelectDailyTopics(context.Background(), time.Now(), 7)
	require.NoError(t, err)
	assert.Len(t, result.SelectedTopics, 1)
}

func TestSelectDailyTopicsFallbackPath(t *testing.T) {
	db := setupTestDB(t)
	yesterday := time.Now().AddDate(0, 0, -1)

	// Five topics, only two unused: below the minimum of three.
	seedTopic(t, db, "used-a", 10, &yesterday, false)
	seedTopic(t, db, "used-b", 9, &yesterday, false)
	seedTopic(t, db, "used-c", 8, &yesterday, false)
	seedTopic(t, db, "never-a", 7, nil, false)
	seedTopic(t, db, "never-b", 6, nil, false)

	picker := &fakePicker{}
	svc := NewTopicService(db, picker, 3)

	result, err := svc.SelectDailyTopics(context.Background(), time.Now(), 7)
	require.NoError(t, err)
	assert.True(t, result.FallbackUsed)
	assert.Equal(t, 2, result.TotalAvailable)
	require.Len(t, result.SelectedTopics, 3)

	// Top three by priority, regardless of recency.
	assert.Equal(t, "used-a", result.SelectedTopics[0].Title)
	assert.Equal(t, 10, result.SelectedTopics[0].PriorityScore)

	// Fallback never touches usage fields.
	var count int64
	db.Model(&model.Topic{}).Where("usage_count > 0").Count(&count)
	assert.Zero(t, count)
	assert.Zero(t, picker.chooseCalls)
}

func TestSelectDailyTopicsInsufficient(t *testing.T) {
	db := setupTestDB(t)
	yesterday := time.Now().AddDate(0, 0, -1)
	seedTopic(t, db, "used-a", 10, &yesterday, false)
	seedTopic(t, db, "used-b", 9, &yesterday, false)

	svc := NewTopicService(db, &fakePicker{}, 3)
	_, err := svc.SelectDailyTopics(context.Background(), time.Now(), 7)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientTopics, apperr.KindOf(err))
}

func TestSelectDailyTopicsPriorityOrderOnPickerFailure(t *testing.T) {
	db := setupTestDB(t)
	seedTopic(t, db, "low", 2, nil, false)
	seedTopic(t, db, "high", 10, nil, false)
	seedTopic(t, db, "mid", 5, nil, false)

	picker := &fakePicker{chooseFn: func([]model.Topic, int) ([]string, error) {
		return nil, context.DeadlineExceeded
	}}
	svc := NewTopicService(db, picker, 3)

	result, err := svc.SelectDailyTopics(context.Background(), time.Now(), 7)
	require.NoError(t, err)
	require.Len(t, result.SelectedTopics, 3)
	assert.Equal(t, "high", result.SelectedTopics[0].Title)
}

func TestDiscoverTopicsIdempotentByPresence(t *testing.T) {
	db := setupTestDB(t)
	seedTopic(t, db, "existing", 5, nil, false)

	picker := &fakePicker{}
	svc := NewTopicService(db, picker, 3)

	result, err := svc.DiscoverTopics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.False(t, result.UsedFallback)
	assert.Zero(t, picker.ideasCalls)

	var count int64
	db.Model(&model.Topic{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDiscoverTopicsStaticFallback(t *testing.T) {
	db := setupTestDB(t)
	picker := &fakePicker{} // ideasFn nil -> llm unavailable
	svc := NewTopicService(db, picker, 3)

	result, err := svc.DiscoverTopics(context.Background())
	require.NoError(t, err)
	assert.True(t, result.UsedFallback)
	assert.Equal(t, len(fallbackTopics), result.Count)

	var topics []model.Topic
	require.NoError(t, db.Find(&topics).Error)
	for _, topic := range topics {
		assert.NotEmpty(t, topic.ID, "store assigns identity")
		assert.Zero(t, topic.UsageCount)
		assert.GreaterOrEqual(t, topic.PriorityScore, 1)
		assert.LessOrEqual(t, topic.PriorityScore, 10)
	}
}

func TestDiscoverTopicsDiscardsCallerIDs(t *testing.T) {
	db := setupTestDB(t)
	picker := &fakePicker{ideasFn: func(n int) ([]model.Topic, error) {
		return []model.Topic{
			{ID: "model-chose-this", Title: "t1", Category: "ppe", PriorityScore: 50},
		}, nil
	}}
	svc := NewTopicService(db, picker, 3)

	_, err := svc.DiscoverTopics(context.Background())
	require.NoError(t, err)

	var topic model.Topic
	require.NoError(t, db.First(&topic).Error)
	assert.NotEqual(t, "model-chose-this", topic.ID)
	assert.Equal(t, 10, topic.PriorityScore, "priority clamped to [1,10]")
}

func TestClearTopics(t *testing.T) {
	db := setupTestDB(t)
	seedTopic(t, db, "a", 5, nil, false)
	seedTopic(t, db, "b", 5, nil, false)

	svc := NewTopicService(db, &fakePicker{}, 3)
	count, err := svc.ClearTopics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var remaining int64
	db.Model(&model.Topic{}).Count(&remaining)
	assert.Zero(t, remaining)
}
