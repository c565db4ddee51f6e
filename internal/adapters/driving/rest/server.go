package rest

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/retainhq/retain/internal/core/ports/driving"
)

// Default rate limit for AI-backed endpoints. Generous enough for
// interactive use, tight enough to protect provider quota.
const (
	DefaultAIRequestsPerSecond = 5
	DefaultAIBurst             = 10
)

// Services bundles the driving ports the server exposes.
type Services struct {
	Library  driving.LibraryService
	Quiz     driving.QuizService
	Review   driving.ReviewService
	Settings driving.SettingsService
}

// Options tunes server behaviour. Zero values pick defaults.
type Options struct {
	// AIRequestsPerSecond caps the sustained rate of AI-backed requests
	// across all clients. AIBurst is the short-term allowance.
	AIRequestsPerSecond float64
	AIBurst             int

	// MaxUploadBytes bounds the size of a document upload request.
	MaxUploadBytes int64
}

// Server is the HTTP adapter over the core services.
type Server struct {
	library  driving.LibraryService
	quiz     driving.QuizService
	review   driving.ReviewService
	settings driving.SettingsService

	aiLimiter      *rate.Limiter
	maxUploadBytes int64
	handler        http.Handler
}

// NewServer wires the services into an HTTP handler.
func NewServer(services Services, opts Options) *Server {
	if opts.AIRequestsPerSecond <= 0 {
		opts.AIRequestsPerSecond = DefaultAIRequestsPerSecond
	}
	if opts.AIBurst <= 0 {
		opts.AIBurst = DefaultAIBurst
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}

	s := &Server{
		library:        services.Library,
		quiz:           services.Quiz,
		review:         services.Review,
		settings:       services.Settings,
		aiLimiter:      rate.NewLimiter(rate.Limit(opts.AIRequestsPerSecond), opts.AIBurst),
		maxUploadBytes: opts.MaxUploadBytes,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully assembled HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Knowledge bases and documents.
	mux.HandleFunc("GET /api/knowledge-bases", s.handleListKnowledgeBases)
	mux.HandleFunc("POST /api/knowledge-bases", s.handleCreateKnowledgeBase)
	mux.HandleFunc("PUT /api/knowledge-bases/{id}", s.handleUpdateKnowledgeBase)
	mux.HandleFunc("DELETE /api/knowledge-bases/{id}", s.handleDeleteKnowledgeBase)
	mux.HandleFunc("GET /api/knowledge-bases/{id}/documents", s.handleListDocuments)
	mux.HandleFunc("POST /api/knowledge-bases/{id}/documents", s.handleUploadDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", s.handleDeleteDocument)
	mux.HandleFunc("GET /api/documents/{id}/content", s.handleDocumentContent)

	// Quiz. Generation and grading call out to the AI provider.
	mux.HandleFunc("POST /api/knowledge-bases/{id}/generate-question", s.rateLimited(s.handleGenerateQuestion))
	mux.HandleFunc("POST /api/questions/{id}/answer", s.rateLimited(s.handleSubmitAnswer))

	// Review and progress.
	mux.HandleFunc("GET /api/knowledge-bases/{id}/review/random", s.handleRandomReviewQuestion)
	mux.HandleFunc("GET /api/knowledge-bases/{id}/review/questions", s.handleReviewQuestions)
	mux.HandleFunc("GET /api/knowledge-bases/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /api/knowledge-bases/{id}/progress", s.handleProgress)
	mux.HandleFunc("GET /api/knowledge-bases/{id}/review-sessions", s.handleListReviewSessions)
	mux.HandleFunc("POST /api/review-sessions", s.handleCreateReviewSession)
	mux.HandleFunc("PUT /api/review-sessions/{id}/score", s.handleUpdateReviewSessionScore)
	mux.HandleFunc("POST /api/review/answer", s.rateLimited(s.handleSubmitReviewAnswer))

	// AI configuration.
	mux.HandleFunc("GET /api/ai-config", s.handleGetAIConfig)
	mux.HandleFunc("POST /api/ai-config", s.handleSaveAIConfig)
	mux.HandleFunc("POST /api/ai-config/test", s.rateLimited(s.handleTestAIConnection))

	return withCORS(withRequestLog(mux))
}
