package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"safety-studio/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// fakePicker is an in-memory TopicPicker.
type fakePicker struct {
	chooseFn    func(candidates []model.Topic, n int) ([]string, error)
	ideasFn     func(n int) ([]model.Topic, error)
	chooseCalls int32
	ideasCalls  int32
}

func (f *fakePicker) ChooseDiverseTopics(ctx context.Context, candidates []model.Topic, n int) ([]string, error) {
	atomic.AddInt32(&f.chooseCalls, 1)
	if f.chooseFn != nil {
		return f.chooseFn(candidates, n)
	}
	ids := make([]string, 0, n)
	for i := 0; i < n && i < len(candidates); i++ {
		ids = append(ids, candidates[i].ID)
	}
	return ids, nil
}

func (f *fakePicker) GenerateTopicIdeas(ctx context.Context, n int) ([]model.Topic, error) {
	atomic.AddInt32(&f.ideasCalls, 1)
	if f.ideasFn != nil {
		return f.ideasFn(n)
	}
	return nil, fmt.Errorf("llm unavailable")
}

// fakeCopyGen is an in-memory CopyGenerator counting external calls.
type fakeCopyGen struct {
	calls int32
	err   error
}

func (f *fakeCopyGen) GenerateSocialCopy(ctx context.Context, topic model.Topic, platform, contentType, tone, language string) (*SocialCopy, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return &SocialCopy{
		Text:        fmt.Sprintf("%s copy for %s", platform, topic.Title),
		Hashtags:    []string{"#safety"},
		ImagePrompt: "poster about " + topic.Title,
	}, nil
}

// fakeImageGen is an in-memory ImageGenerator counting external calls.
type fakeImageGen struct {
	calls int32
	err   error
}

func (f *fakeImageGen) Generate(ctx context.Context, prompt string, opts ImageOptions) ([]ImageResult, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return []ImageResult{{Seed: 42, URLs: []string{"https://img.test/" + prompt}, UUID: "u-1"}}, nil
}
