package rest

import (
	"time"

	"github.com/retainhq/retain/internal/core/domain"
)

// contentPreviewLength bounds the document preview in list responses.
const contentPreviewLength = 200

type knowledgeBaseResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toKnowledgeBaseResponse(kb domain.KnowledgeBase) knowledgeBaseResponse {
	return knowledgeBaseResponse{
		ID:          kb.ID,
		Name:        kb.Name,
		Description: kb.Description,
		CreatedAt:   kb.CreatedAt,
		UpdatedAt:   kb.UpdatedAt,
	}
}

type documentResponse struct {
	ID              string    `json:"id"`
	KnowledgeBaseID string    `json:"knowledge_base_id"`
	Filename        string    `json:"filename"`
	FileType        string    `json:"file_type"`
	FileSize        int64     `json:"file_size"`
	UploadDate      time.Time `json:"upload_date"`
	ContentPreview  *string   `json:"content_preview,omitempty"`
}

func toDocumentResponse(doc domain.Document) documentResponse {
	resp := documentResponse{
		ID:              doc.ID,
		KnowledgeBaseID: doc.KnowledgeBaseID,
		Filename:        doc.Filename,
		FileType:        string(doc.FileType),
		FileSize:        doc.FileSize,
		UploadDate:      doc.UploadedAt,
	}
	if doc.Content != nil {
		preview := previewOf(*doc.Content)
		resp.ContentPreview = &preview
	}
	return resp
}

// previewOf truncates extracted text to a short rune-safe preview.
func previewOf(text string) string {
	runes := []rune(text)
	if len(runes) <= contentPreviewLength {
		return text
	}
	return string(runes[:contentPreviewLength]) + "..."
}

type questionResponse struct {
	ID             string    `json:"id"`
	QuestionText   string    `json:"question_text"`
	ContextSnippet *string   `json:"context_snippet,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
}

func toQuestionResponse(q domain.Question) questionResponse {
	resp := questionResponse{
		ID:           q.ID,
		QuestionText: q.Text,
		GeneratedAt:  q.GeneratedAt,
	}
	if q.ContextSnippet != "" {
		snippet := q.ContextSnippet
		resp.ContextSnippet = &snippet
	}
	return resp
}

type answerResponse struct {
	ID            string    `json:"id"`
	QuestionID    string    `json:"question_id"`
	UserAnswer    string    `json:"user_answer"`
	AIScore       *int      `json:"ai_score"`
	AIFeedback    *string   `json:"ai_feedback"`
	AISuggestions []string  `json:"ai_suggestions"`
	AnsweredAt    time.Time `json:"answered_at"`
}

func toAnswerResponse(a domain.Answer) answerResponse {
	suggestions := a.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return answerResponse{
		ID:            a.ID,
		QuestionID:    a.QuestionID,
		UserAnswer:    a.UserAnswer,
		AIScore:       a.Score,
		AIFeedback:    a.Feedback,
		AISuggestions: suggestions,
		AnsweredAt:    a.AnsweredAt,
	}
}

type historyItemResponse struct {
	Question questionResponse `json:"question"`
	Answer   answerResponse   `json:"answer"`
}

type historyResponse struct {
	Items      []historyItemResponse `json:"items"`
	TotalCount int                   `json:"total_count"`
}

type reviewSessionResponse struct {
	ID              string    `json:"id"`
	KnowledgeBaseID string    `json:"knowledge_base_id"`
	QuestionsCount  int       `json:"questions_count"`
	AverageScore    *float64  `json:"average_score"`
	SessionDate     time.Time `json:"session_date"`
}

func toReviewSessionResponse(s domain.ReviewSession) reviewSessionResponse {
	return reviewSessionResponse{
		ID:              s.ID,
		KnowledgeBaseID: s.KnowledgeBaseID,
		QuestionsCount:  s.QuestionsCount,
		AverageScore:    s.AverageScore,
		SessionDate:     s.SessionDate,
	}
}

type progressResponse struct {
	TotalQuestionsAnswered int      `json:"total_questions_answered"`
	AverageScore           *float64 `json:"average_score"`
	RecentAverageScore     *float64 `json:"recent_average_score"`
	ImprovementTrend       *string  `json:"improvement_trend"`
	TotalReviewSessions    int      `json:"total_review_sessions"`
}

func toProgressResponse(p domain.LearningProgress) progressResponse {
	resp := progressResponse{
		TotalQuestionsAnswered: p.TotalQuestionsAnswered,
		AverageScore:           p.AverageScore,
		RecentAverageScore:     p.RecentAverageScore,
		TotalReviewSessions:    p.TotalReviewSessions,
	}
	if p.ImprovementTrend != "" {
		trend := p.ImprovementTrend
		resp.ImprovementTrend = &trend
	}
	return resp
}

// aiConfigResponse never carries the API key itself, only whether one
// is set.
type aiConfigResponse struct {
	Provider         string     `json:"provider"`
	APIKeyConfigured bool       `json:"api_key_configured"`
	APIURL           *string    `json:"api_url"`
	ModelName        *string    `json:"model_name"`
	MaxTokens        int        `json:"max_tokens"`
	Temperature      float64    `json:"temperature"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

func toAIConfigResponse(cfg domain.AIConfig) aiConfigResponse {
	resp := aiConfigResponse{
		Provider:         string(cfg.Provider),
		APIKeyConfigured: cfg.APIKey != "",
		MaxTokens:        cfg.MaxTokens,
		Temperature:      cfg.Temperature,
	}
	if cfg.APIURL != "" {
		url := cfg.APIURL
		resp.APIURL = &url
	}
	if cfg.ModelName != "" {
		model := cfg.ModelName
		resp.ModelName = &model
	}
	if !cfg.UpdatedAt.IsZero() {
		updated := cfg.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}
