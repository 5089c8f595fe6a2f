package model

// Request/response shapes for the HTTP surface.

type SelectTopicsRequest struct {
	Date        string `json:"date"`
	ExcludeDays int    `json:"excludeDays"`
}

type SelectTopicsResponse struct {
	Success        bool    `json:"success"`
	SelectedTopics []Topic `json:"selectedTopics"`
	TotalAvailable int     `json:"totalAvailable"`
	FallbackUsed   bool    `json:"fallbackUsed,omitempty"`
}

type DiscoverTopicsResponse struct {
	Success      bool `json:"success"`
	Count        int  `json:"count"`
	UsedFallback bool `json:"usedFallback"`
}

type GenerateContentRequest struct {
	Date string `json:"date" binding:"required"`
}

type MarkPostedRequest struct {
	PostID   string `json:"postId" binding:"required"`
	Platform string `json:"platform" binding:"required"`
	Date     string `json:"date" binding:"required"`
}

type GenerateImageRequest struct {
	Prompt        string `json:"prompt" binding:"required"`
	NumResults    int    `json:"numResults"`
	AspectRatio   string `json:"aspectRatio"`
	Seed          *int   `json:"seed,omitempty"`
	ModelVersion  string `json:"modelVersion"`
	PromptEnhance bool   `json:"promptEnhance"`
}

type GenerateSocialRequest struct {
	Topic       string   `json:"topic" binding:"required"`
	Platforms   []string `json:"platforms"`
	ContentType string   `json:"contentType"`
	Tone        string   `json:"tone"`
	Language    string   `json:"language"`
}

type GenerateSocialResponse struct {
	Success          bool                       `json:"success"`
	GeneratedContent map[string]PlatformContent `json:"generatedContent"`
	Settings         Settings                   `json:"settings"`
}

type SavePromptRequest struct {
	Prompt   string   `json:"prompt" binding:"required"`
	Settings Settings `json:"settings"`
}

type SaveImageRequest struct {
	URL      string   `json:"url" binding:"required"`
	Prompt   string   `json:"prompt"`
	Settings Settings `json:"settings"`
}

type TransformRequest struct {
	PublicID string `json:"publicId" binding:"required"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Crop     string `json:"crop"`
	Format   string `json:"format"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Role   string `json:"role"`
}
