package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retainhq/retain/internal/adapters/driven/storage/memory"
	"github.com/retainhq/retain/internal/cache"
	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
	"github.com/retainhq/retain/internal/core/services"
	"github.com/retainhq/retain/internal/extractors"
)

// fakeProvider is a scripted AI backend for handler tests.
type fakeProvider struct {
	question  string
	eval      domain.Evaluation
	err       error
	reachable bool
}

var _ driven.AIProvider = (*fakeProvider)(nil)

func (p *fakeProvider) GenerateQuestion(context.Context, string) (string, error) {
	return p.question, p.err
}

func (p *fakeProvider) EvaluateAnswer(context.Context, string, string, string) (domain.Evaluation, error) {
	return p.eval, p.err
}

func (p *fakeProvider) TestConnection(context.Context) bool {
	return p.reachable
}

type fakeFactory struct {
	provider *fakeProvider
}

var _ driven.AIProviderFactory = (*fakeFactory)(nil)

func (f *fakeFactory) Create(string, map[string]string) (driven.AIProvider, error) {
	return f.provider, nil
}

type testEnv struct {
	handler  http.Handler
	provider *fakeProvider
	configs  *memory.AIConfigStore
	quiz     *memory.QuizStore
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	docs := memory.NewDocumentStore()
	kbs := memory.NewKnowledgeBaseStore(docs)
	quiz := memory.NewQuizStore()
	reviews := memory.NewReviewStore()
	configs := memory.NewAIConfigStore()
	provider := &fakeProvider{
		question:  "What is the main idea?",
		eval:      domain.Evaluation{Score: 90, Feedback: "solid", Suggestions: []string{"expand"}},
		reachable: true,
	}
	factory := &fakeFactory{provider: provider}
	contentCache := cache.New[string](time.Minute)

	library := services.NewLibraryService(kbs, docs, extractors.NewRegistry(), t.TempDir(), contentCache)
	quizSvc := services.NewQuizService(quiz, docs, configs, factory, contentCache)
	review := services.NewReviewService(reviews, quiz, kbs, quizSvc)
	settings := services.NewSettingsService(configs, factory)

	srv := NewServer(Services{
		Library:  library,
		Quiz:     quizSvc,
		Review:   review,
		Settings: settings,
	}, opts)

	return &testEnv{handler: srv.Handler(), provider: provider, configs: configs, quiz: quiz}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) upload(t *testing.T, kbID, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/knowledge-bases/"+kbID+"/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// createKB creates a knowledge base through the API and returns its ID.
func (e *testEnv) createKB(t *testing.T, name string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/knowledge-bases", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeBody(t, rec)["id"].(string)
}

func (e *testEnv) configureAI(t *testing.T) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/ai-config", map[string]any{
		"provider": "deepseek",
		"api_key":  "sk-test",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestKnowledgeBaseEndpoints(t *testing.T) {
	t.Run("create and list", func(t *testing.T) {
		env := newTestEnv(t, Options{})

		rec := env.do(t, http.MethodPost, "/api/knowledge-bases", map[string]string{
			"name":        "Go Internals",
			"description": "runtime notes",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		created := decodeBody(t, rec)
		assert.NotEmpty(t, created["id"])
		assert.Equal(t, "Go Internals", created["name"])

		rec = env.do(t, http.MethodGet, "/api/knowledge-bases", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		listed := decodeBody(t, rec)["knowledge_bases"].([]any)
		assert.Len(t, listed, 1)
	})

	t.Run("create with empty name is rejected", func(t *testing.T) {
		env := newTestEnv(t, Options{})

		rec := env.do(t, http.MethodPost, "/api/knowledge-bases", map[string]string{"name": "  "})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotEmpty(t, decodeBody(t, rec)["error"])
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		env := newTestEnv(t, Options{})

		req := httptest.NewRequest(http.MethodPost, "/api/knowledge-bases", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		id := env.createKB(t, "before")

		rec := env.do(t, http.MethodPut, "/api/knowledge-bases/"+id, map[string]string{"name": "after"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "after", decodeBody(t, rec)["name"])
	})

	t.Run("delete missing returns 404", func(t *testing.T) {
		env := newTestEnv(t, Options{})

		rec := env.do(t, http.MethodDelete, "/api/knowledge-bases/missing", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDocumentEndpoints(t *testing.T) {
	t.Run("upload and list with preview", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		id := env.createKB(t, "docs")

		rec := env.upload(t, id, "notes.txt", []byte("goroutines multiplex onto threads"))
		require.Equal(t, http.StatusCreated, rec.Code)
		doc := decodeBody(t, rec)["document"].(map[string]any)
		assert.Equal(t, "txt", doc["file_type"])

		rec = env.do(t, http.MethodGet, "/api/knowledge-bases/"+id+"/documents", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		docs := decodeBody(t, rec)["documents"].([]any)
		require.Len(t, docs, 1)
		listed := docs[0].(map[string]any)
		assert.Equal(t, "goroutines multiplex onto threads", listed["content_preview"])
	})

	t.Run("unsupported extension is rejected", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		id := env.createKB(t, "docs")

		rec := env.upload(t, id, "slides.docx", []byte("binary"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unparseable file is rejected and not stored", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		id := env.createKB(t, "docs")

		rec := env.upload(t, id, "broken.pdf", []byte("definitely not a pdf"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "document parsing failed", decodeBody(t, rec)["error"])

		rec = env.do(t, http.MethodGet, "/api/knowledge-bases/"+id+"/documents", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodeBody(t, rec)["documents"])
	})

	t.Run("missing multipart field is rejected", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		id := env.createKB(t, "docs")

		rec := env.do(t, http.MethodPost, "/api/knowledge-bases/"+id+"/documents", map[string]string{"file": "nope"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("content endpoint returns extracted text", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		id := env.createKB(t, "docs")

		rec := env.upload(t, id, "notes.txt", []byte("channel axioms"))
		require.Equal(t, http.StatusCreated, rec.Code)
		docID := decodeBody(t, rec)["document"].(map[string]any)["id"].(string)

		rec = env.do(t, http.MethodGet, "/api/documents/"+docID+"/content", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "channel axioms", decodeBody(t, rec)["content"])

		rec = env.do(t, http.MethodDelete, "/api/documents/"+docID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/documents/"+docID+"/content", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestQuizEndpoints(t *testing.T) {
	t.Run("generate question", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		env.configureAI(t)
		id := env.createKB(t, "quiz")
		require.Equal(t, http.StatusCreated, env.upload(t, id, "notes.txt", []byte("select blocks until a case runs")).Code)

		rec := env.do(t, http.MethodPost, "/api/knowledge-bases/"+id+"/generate-question", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "What is the main idea?", body["question_text"])
		assert.Equal(t, "select blocks until a case runs", body["context_snippet"])
	})

	t.Run("generate without AI configuration", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		id := env.createKB(t, "quiz")
		require.Equal(t, http.StatusCreated, env.upload(t, id, "notes.txt", []byte("material")).Code)

		rec := env.do(t, http.MethodPost, "/api/knowledge-bases/"+id+"/generate-question", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("generate without content", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		env.configureAI(t)
		id := env.createKB(t, "quiz")

		rec := env.do(t, http.MethodPost, "/api/knowledge-bases/"+id+"/generate-question", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("submit answer returns the grading", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		env.configureAI(t)
		id := env.createKB(t, "quiz")
		require.Equal(t, http.StatusCreated, env.upload(t, id, "notes.txt", []byte("material")).Code)

		rec := env.do(t, http.MethodPost, "/api/knowledge-bases/"+id+"/generate-question", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		questionID := decodeBody(t, rec)["id"].(string)

		rec = env.do(t, http.MethodPost, "/api/questions/"+questionID+"/answer", map[string]string{
			"user_answer": "they are cheap stacks",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(90), body["ai_score"])
		assert.Equal(t, "solid", body["ai_feedback"])
		assert.Equal(t, []any{"expand"}, body["ai_suggestions"])
	})

	t.Run("provider failure maps to 503", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		env.configureAI(t)
		id := env.createKB(t, "quiz")
		require.Equal(t, http.StatusCreated, env.upload(t, id, "notes.txt", []byte("material")).Code)

		env.provider.err = &driven.ProviderError{StatusCode: 500, Message: "upstream blew up"}
		rec := env.do(t, http.MethodPost, "/api/knowledge-bases/"+id+"/generate-question", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHistoryEndpoint(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.configureAI(t)
	id := env.createKB(t, "history")
	require.Equal(t, http.StatusCreated, env.upload(t, id, "notes.txt", []byte("material")).Code)

	// Answer three questions with distinct scores.
	for _, score := range []int{40, 70, 95} {
		env.provider.eval = domain.Evaluation{Score: score, Feedback: "f"}

		rec := env.do(t, http.MethodPost, "/api/knowledge-bases/"+id+"/generate-question", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		questionID := decodeBody(t, rec)["id"].(string)

		rec = env.do(t, http.MethodPost, "/api/questions/"+questionID+"/answer", map[string]string{"user_answer": "a"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	t.Run("unfiltered", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/knowledge-bases/"+id+"/history", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(3), body["total_count"])
	})

	t.Run("score filter", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/knowledge-bases/"+id+"/history?min_score=50&max_score=90", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, float64(1), body["total_count"])
		item := body["items"].([]any)[0].(map[string]any)
		answer := item["answer"].(map[string]any)
		assert.Equal(t, float64(70), answer["ai_score"])
	})

	t.Run("limit", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/knowledge-bases/"+id+"/history?limit=2", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(2), decodeBody(t, rec)["total_count"])
	})

	t.Run("invalid limit is rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/knowledge-bases/"+id+"/history?limit=nope", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReviewEndpoints(t *testing.T) {
	seedAnswers := func(t *testing.T, env *testEnv, kbID string, n int) {
		t.Helper()
		ctx := context.Background()
		for i := 0; i < n; i++ {
			q := domain.NewQuestion(kbID, fmt.Sprintf("question %d", i), "")
			require.NoError(t, env.quiz.SaveQuestion(ctx, q))
			a := domain.NewAnswer(q.ID, "answer")
			a = a.Graded(domain.Evaluation{Score: 60 + i, Feedback: "f"})
			require.NoError(t, env.quiz.SaveAnswer(ctx, a))
		}
	}

	t.Run("random question", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		id := env.createKB(t, "review")
		seedAnswers(t, env, id, 2)

		rec := env.do(t, http.MethodGet, "/api/knowledge-bases/"+id+"/review/random", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		question := decodeBody(t, rec)["question"].(map[string]any)
		assert.Contains(t, question["question_text"], "question")
	})

	t.Run("random question without history", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		id := env.createKB(t, "review")

		rec := env.do(t, http.MethodGet, "/api/knowledge-bases/"+id+"/review/random", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("question batch respects count", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		id := env.createKB(t, "review")
		seedAnswers(t, env, id, 8)

		rec := env.do(t, http.MethodGet, "/api/knowledge-bases/"+id+"/review/questions?count=3", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(3), decodeBody(t, rec)["count"])

		rec = env.do(t, http.MethodGet, "/api/knowledge-bases/"+id+"/review/questions?count=21", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("session lifecycle", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		id := env.createKB(t, "review")
		seedAnswers(t, env, id, 5)

		rec := env.do(t, http.MethodPost, "/api/review-sessions", map[string]any{
			"knowledge_base_id": id,
			"questions_count":   3,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		sessionID := decodeBody(t, rec)["id"].(string)

		rec = env.do(t, http.MethodPut, "/api/review-sessions/"+sessionID+"/score", map[string]any{
			"average_score": 81.5,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 81.5, decodeBody(t, rec)["average_score"])

		rec = env.do(t, http.MethodGet, "/api/knowledge-bases/"+id+"/review-sessions", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), decodeBody(t, rec)["total_count"])
	})

	t.Run("session needs enough history", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		id := env.createKB(t, "review")
		seedAnswers(t, env, id, 1)

		rec := env.do(t, http.MethodPost, "/api/review-sessions", map[string]any{
			"knowledge_base_id": id,
			"questions_count":   5,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("review answer is stored ungraded without AI", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		id := env.createKB(t, "review")
		seedAnswers(t, env, id, 1)

		rec := env.do(t, http.MethodGet, "/api/knowledge-bases/"+id+"/review/random", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		questionID := decodeBody(t, rec)["question"].(map[string]any)["id"].(string)

		rec = env.do(t, http.MethodPost, "/api/review/answer", map[string]string{
			"question_id": questionID,
			"user_answer": "second attempt",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, decodeBody(t, rec)["ai_score"])
	})

	t.Run("progress", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		id := env.createKB(t, "review")
		seedAnswers(t, env, id, 4)

		rec := env.do(t, http.MethodGet, "/api/knowledge-bases/"+id+"/progress", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(4), body["total_questions_answered"])
		assert.NotNil(t, body["average_score"])
	})
}

func TestAIConfigEndpoints(t *testing.T) {
	t.Run("defaults before configuration", func(t *testing.T) {
		env := newTestEnv(t, Options{})

		rec := env.do(t, http.MethodGet, "/api/ai-config", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "deepseek", body["provider"])
		assert.Equal(t, false, body["api_key_configured"])
		assert.Equal(t, float64(domain.DefaultMaxTokens), body["max_tokens"])
	})

	t.Run("save does not echo the key", func(t *testing.T) {
		env := newTestEnv(t, Options{})

		rec := env.do(t, http.MethodPost, "/api/ai-config", map[string]any{
			"provider":   "deepseek",
			"api_key":    "sk-secret",
			"model_name": "deepseek-chat",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "sk-secret")

		cfg := decodeBody(t, rec)["config"].(map[string]any)
		assert.Equal(t, true, cfg["api_key_configured"])
		assert.Equal(t, "deepseek-chat", cfg["model_name"])
	})

	t.Run("save without required key is rejected", func(t *testing.T) {
		env := newTestEnv(t, Options{})

		rec := env.do(t, http.MethodPost, "/api/ai-config", map[string]any{"provider": "deepseek"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("connection test", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		env.configureAI(t)

		rec := env.do(t, http.MethodPost, "/api/ai-config/test", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "success", decodeBody(t, rec)["status"])

		env.provider.reachable = false
		rec = env.do(t, http.MethodPost, "/api/ai-config/test", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("connection test without configuration", func(t *testing.T) {
		env := newTestEnv(t, Options{})

		rec := env.do(t, http.MethodPost, "/api/ai-config/test", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("preflight request", func(t *testing.T) {
		env := newTestEnv(t, Options{})

		req := httptest.NewRequest(http.MethodOptions, "/api/knowledge-bases", nil)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("AI endpoints are rate limited", func(t *testing.T) {
		env := newTestEnv(t, Options{AIRequestsPerSecond: 0.01, AIBurst: 1})
		env.configureAI(t)

		rec := env.do(t, http.MethodPost, "/api/ai-config/test", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodPost, "/api/ai-config/test", nil)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("non-AI endpoints are not rate limited", func(t *testing.T) {
		env := newTestEnv(t, Options{AIRequestsPerSecond: 0.01, AIBurst: 1})

		for i := 0; i < 5; i++ {
			rec := env.do(t, http.MethodGet, "/api/knowledge-bases", nil)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}
