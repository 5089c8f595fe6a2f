package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"safety-studio/internal/apperr"
	"safety-studio/internal/model"
)

// SocialCopy is one platform's generated copy for a topic.
type SocialCopy struct {
	Text        string   `json:"text"`
	Hashtags    []string `json:"hashtags"`
	ImagePrompt string   `json:"imagePrompt"`
}

// CopyGenerator produces platform-specific social copy.
type CopyGenerator interface {
	GenerateSocialCopy(ctx context.Context, topic model.Topic, platform, contentType, tone, language string) (*SocialCopy, error)
}

// TopicPicker delegates topic diversification and discovery to the LLM.
type TopicPicker interface {
	ChooseDiverseTopics(ctx context.Context, candidates []model.Topic, n int) ([]string, error)
	GenerateTopicIdeas(ctx context.Context, n int) ([]model.Topic, error)
}

// AIService is a client for an OpenAI-compatible chat-completions API.
type AIService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewAIService(baseURL, apiKey, model string) *AIService {
	return &AIService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *AIService) chat(ctx context.Context, system, user string) (string, error) {
	body := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindExternalAPI, "text generation unavailable", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		e := apperr.External(resp.StatusCode, llmErrorMessage(resp.StatusCode))
		e.Debug = string(data)
		return "", e
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", apperr.External(resp.StatusCode, "text generation returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

func llmErrorMessage(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return "text generation rate limit reached, try again shortly"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "text generation API key rejected"
	default:
		return fmt.Sprintf("text generation failed (status %d)", status)
	}
}

// ChooseDiverseTopics asks the LLM for n topic ids spread across category
// and seasonal relevance. Returned ids are raw model output; the caller
// intersects them with the candidate pool.
func (s *AIService) ChooseDiverseTopics(ctx context.Context, candidates []model.Topic, n int) ([]string, error) {
	var sb strings.Builder
	for _, t := range candidates {
		fmt.Fprintf(&sb, "- id=%s category=%s season=%s priority=%d title=%q\n",
			t.ID, t.Category, t.SeasonalRelevance, t.PriorityScore, t.Title)
	}
	system := fmt.Sprintf(`You select workplace-safety topics for a daily social media schedule.
Pick exactly %d ids from the list, spreading picks across categories and seasonal relevance.
Return JSON only: {"ids":["..."]}`, n)

	result, err := s.chat(ctx, system, sb.String())
	if err != nil {
		return nil, fmt.Errorf("choose topics: %w", err)
	}
	var parsed struct {
		IDs []string `json:"ids"`
	}
	if err := json.Unmarshal([]byte(extractJSON(result)), &parsed); err != nil {
		return nil, fmt.Errorf("parse topic choice: %w", err)
	}
	return parsed.IDs, nil
}

// GenerateTopicIdeas asks the LLM for fresh topic records. Ids are
// assigned by the store on insert, never by the model.
func (s *AIService) GenerateTopicIdeas(ctx context.Context, n int) ([]model.Topic, error) {
	system := fmt.Sprintf(`You generate workplace-safety social media topics.
Return JSON only: {"topics":[{"title":"...","category":"one of %s","description":"...","keywords":["..."],"priorityScore":1-10,"seasonalRelevance":"summer|winter|all"}]}
Generate exactly %d topics.`, strings.Join(model.Categories, "|"), n)

	result, err := s.chat(ctx, system, "Generate the topics.")
	if err != nil {
		return nil, fmt.Errorf("generate topics: %w", err)
	}
	var parsed struct {
		Topics []model.Topic `json:"topics"`
	}
	if err := json.Unmarshal([]byte(extractJSON(result)), &parsed); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}
	if len(parsed.Topics) == 0 {
		return nil, fmt.Errorf("model returned no topics")
	}
	return parsed.Topics, nil
}

// GenerateSocialCopy produces one platform's post text, hashtags and an
// image prompt for the given topic.
func (s *AIService) GenerateSocialCopy(ctx context.Context, topic model.Topic, platform, contentType, tone, language string) (*SocialCopy, error) {
	if contentType == "" {
		contentType = "educational"
	}
	if tone == "" {
		tone = "professional"
	}
	if language == "" {
		language = "en"
	}
	system := fmt.Sprintf(`You write %s social media posts about workplace safety for %s.
Tone: %s. Language: %s.
Return JSON only: {"text":"...","hashtags":["..."],"imagePrompt":"a text-to-image prompt for the post artwork"}`,
		contentType, platform, tone, language)
	user := fmt.Sprintf("Topic: %s\nCategory: %s\nDescription: %s\nKeywords: %s",
		topic.Title, topic.Category, topic.Description, strings.Join(topic.Keywords, ", "))

	result, err := s.chat(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("social copy for %s: %w", platform, err)
	}
	var sc SocialCopy
	if err := json.Unmarshal([]byte(extractJSON(result)), &sc); err != nil {
		return nil, fmt.Errorf("parse social copy: %w", err)
	}
	if sc.Text == "" {
		return nil, fmt.Errorf("model returned empty copy")
	}
	return &sc, nil
}

// extractJSON strips markdown code fences that models wrap around JSON.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	if i := strings.Index(s, "{"); i > 0 {
		s = s[i:]
	}
	return s
}
