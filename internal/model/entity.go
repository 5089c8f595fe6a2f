package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Daily content generation statuses.
const (
	StatusPending    = "pending"
	StatusGenerating = "generating"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Seasonal relevance values.
const (
	SeasonSummer = "summer"
	SeasonWinter = "winter"
	SeasonAll    = "all"
)

// Categories is the fixed enumeration of safety-content categories.
var Categories = []string{
	"ppe",
	"fire-safety",
	"electrical-safety",
	"fall-protection",
	"hazard-communication",
	"machine-guarding",
	"ergonomics",
	"emergency-preparedness",
	"chemical-safety",
	"mental-health",
}

// StringList is stored as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// PostList is stored as a JSON column on daily_contents.
type PostList []Post

func (l PostList) Value() (driver.Value, error) {
	if l == nil {
		l = PostList{}
	}
	return json.Marshal(l)
}

func (l *PostList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Settings is an opaque per-record settings blob (generation parameters).
type Settings map[string]interface{}

func (s Settings) Value() (driver.Value, error) {
	if s == nil {
		s = Settings{}
	}
	return json.Marshal(s)
}

func (s *Settings) Scan(value interface{}) error {
	return scanJSON(value, s)
}

func scanJSON(value interface{}, dst interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}

// Topic is one rotation unit for daily generation.
type Topic struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id"`
	Title             string     `json:"title"`
	Category          string     `gorm:"index" json:"category"`
	Description       string     `gorm:"type:text" json:"description"`
	Keywords          StringList `gorm:"type:json" json:"keywords"`
	UsageCount        int        `gorm:"default:0" json:"usageCount"`
	LastUsedDate      *time.Time `json:"lastUsedDate,omitempty"`
	PriorityScore     int        `gorm:"default:5" json:"priorityScore"`
	SeasonalRelevance string     `gorm:"default:all" json:"seasonalRelevance"`
	IsArchived        bool       `gorm:"default:false;index" json:"isArchived"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func (Topic) TableName() string { return "topics" }

// BeforeCreate assigns the store identity and clamps priority to [1,10].
// Caller-supplied ids are discarded.
func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	t.ID = uuid.New().String()
	if t.PriorityScore < 1 {
		t.PriorityScore = 1
	}
	if t.PriorityScore > 10 {
		t.PriorityScore = 10
	}
	return nil
}

// PlatformContent is one platform's slice of a Post.
type PlatformContent struct {
	Text     string     `json:"text"`
	ImageURL string     `json:"imageUrl"`
	Hashtags []string   `json:"hashtags"`
	IsPosted bool       `json:"isPosted"`
	PostedAt *time.Time `json:"postedAt,omitempty"`
}

// Post is one generated content item, owned by its parent DailyContent.
type Post struct {
	ID        string                      `json:"id"`
	TopicID   string                      `json:"topicId"`
	Category  string                      `json:"category"`
	Platforms map[string]*PlatformContent `json:"platforms"`
	CreatedAt time.Time                   `json:"createdAt"`
}

// DailyContent is the per-date aggregate of generated posts.
type DailyContent struct {
	Date             string     `gorm:"primaryKey;size:10" json:"date"`
	Posts            PostList   `gorm:"type:json" json:"posts"`
	GenerationStatus string     `gorm:"size:16" json:"generationStatus"`
	GeneratedAt      *time.Time `json:"generatedAt,omitempty"`
	TopicsUsed       StringList `gorm:"type:json" json:"topicsUsed"`
	ErrorMessage     string     `json:"errorMessage,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (DailyContent) TableName() string { return "daily_contents" }

// SavedPrompt is a per-user prompt record, soft-deleted via IsActive.
type SavedPrompt struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index" json:"userId"`
	Prompt    string    `gorm:"type:text" json:"prompt"`
	Settings  Settings  `gorm:"type:json" json:"settings"`
	IsActive  bool      `gorm:"default:true;index" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func (SavedPrompt) TableName() string { return "saved_prompts" }

func (p *SavedPrompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// SavedImage is a per-user generated-image record, soft-deleted via IsActive.
type SavedImage struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index" json:"userId"`
	URL       string    `json:"url"`
	Prompt    string    `gorm:"type:text" json:"prompt"`
	Settings  Settings  `gorm:"type:json" json:"settings"`
	IsActive  bool      `gorm:"default:true;index" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func (SavedImage) TableName() string { return "saved_images" }

func (i *SavedImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// Member is a dashboard account.
type Member struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex" json:"username"`
	Password string `json:"-"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Role     string `json:"role"`
}

func (Member) TableName() string { return "members" }

// AutoMigrate creates the schema for every entity.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Topic{}, &DailyContent{}, &SavedPrompt{}, &SavedImage{}, &Member{})
}
