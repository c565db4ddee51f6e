package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retainhq/retain/internal/adapters/driven/storage/memory"
	"github.com/retainhq/retain/internal/cache"
	"github.com/retainhq/retain/internal/core/domain"
)

type quizFixture struct {
	svc      *QuizService
	quiz     *memory.QuizStore
	docs     *memory.DocumentStore
	configs  *memory.AIConfigStore
	provider *stubProvider
	factory  *stubFactory
	cache    *cache.Cache[string]
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()

	f := &quizFixture{
		quiz:     memory.NewQuizStore(),
		docs:     memory.NewDocumentStore(),
		configs:  memory.NewAIConfigStore(),
		provider: &stubProvider{question: "What is the main idea?"},
		cache:    cache.New[string](time.Minute),
	}
	f.factory = &stubFactory{provider: f.provider}
	f.svc = NewQuizService(f.quiz, f.docs, f.configs, f.factory, f.cache)
	return f
}

func (f *quizFixture) configureAI(t *testing.T) {
	t.Helper()
	require.NoError(t, f.configs.Save(context.Background(), domain.AIConfig{
		Provider:    domain.AIProviderDeepSeek,
		APIKey:      "sk-test",
		MaxTokens:   1000,
		Temperature: 0.7,
	}))
}

func (f *quizFixture) addDocument(t *testing.T, kbID, content string) {
	t.Helper()
	doc := domain.NewDocument(kbID, "doc.txt", domain.FileTypeTXT, "/tmp/doc.txt", int64(len(content)), &content)
	require.NoError(t, f.docs.Save(context.Background(), doc))
}

func TestQuizService_GenerateQuestion(t *testing.T) {
	ctx := context.Background()

	t.Run("no extracted content returns ErrNoContent", func(t *testing.T) {
		f := newQuizFixture(t)
		f.configureAI(t)

		_, err := f.svc.GenerateQuestion(ctx, "kb")
		assert.ErrorIs(t, err, domain.ErrNoContent)
	})

	t.Run("unconfigured AI returns ErrAINotConfigured", func(t *testing.T) {
		f := newQuizFixture(t)
		f.addDocument(t, "kb", "material")

		_, err := f.svc.GenerateQuestion(ctx, "kb")
		assert.ErrorIs(t, err, domain.ErrAINotConfigured)
	})

	t.Run("generates and persists a question with a snippet", func(t *testing.T) {
		f := newQuizFixture(t)
		f.configureAI(t)
		f.addDocument(t, "kb", "the material body")

		q, err := f.svc.GenerateQuestion(ctx, "kb")

		require.NoError(t, err)
		assert.Equal(t, "What is the main idea?", q.Text)
		assert.Equal(t, "the material body", q.ContextSnippet)
		assert.Equal(t, "the material body", f.provider.material())
		assert.Equal(t, "deepseek", f.factory.lastProvider)
		assert.Equal(t, "sk-test", f.factory.lastSettings["api_key"])

		stored, err := f.quiz.GetQuestion(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, q.Text, stored.Text)
	})

	t.Run("long material is truncated into the snippet", func(t *testing.T) {
		f := newQuizFixture(t)
		f.configureAI(t)

		long := make([]byte, 1200)
		for i := range long {
			long[i] = 'a'
		}
		f.addDocument(t, "kb", string(long))

		q, err := f.svc.GenerateQuestion(ctx, "kb")

		require.NoError(t, err)
		assert.Len(t, q.ContextSnippet, snippetLength+3)
		assert.Equal(t, "...", q.ContextSnippet[snippetLength:])
	})

	t.Run("material is cached between calls", func(t *testing.T) {
		f := newQuizFixture(t)
		f.configureAI(t)
		f.addDocument(t, "kb", "original")

		_, err := f.svc.GenerateQuestion(ctx, "kb")
		require.NoError(t, err)

		// New content without invalidation is not observed.
		f.addDocument(t, "kb", "added later")
		_, err = f.svc.GenerateQuestion(ctx, "kb")
		require.NoError(t, err)
		assert.Equal(t, "original", f.provider.material())

		// After invalidation the fresh aggregate is read.
		f.cache.Invalidate("kb")
		_, err = f.svc.GenerateQuestion(ctx, "kb")
		require.NoError(t, err)
		assert.Contains(t, f.provider.material(), "added later")
	})

	t.Run("empty provider reply is rejected", func(t *testing.T) {
		f := newQuizFixture(t)
		f.configureAI(t)
		f.addDocument(t, "kb", "material")
		f.provider.question = ""

		_, err := f.svc.GenerateQuestion(ctx, "kb")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestQuizService_SubmitAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("missing question returns ErrNotFound", func(t *testing.T) {
		f := newQuizFixture(t)

		_, err := f.svc.SubmitAnswer(ctx, "missing", "my answer")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty answer is rejected", func(t *testing.T) {
		f := newQuizFixture(t)
		q := domain.NewQuestion("kb", "question?", "")
		require.NoError(t, f.quiz.SaveQuestion(ctx, q))

		_, err := f.svc.SubmitAnswer(ctx, q.ID, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("grades and persists the answer", func(t *testing.T) {
		f := newQuizFixture(t)
		f.configureAI(t)
		f.addDocument(t, "kb", "material")
		f.provider.eval = domain.Evaluation{
			Score:       88,
			Feedback:    "well reasoned",
			Suggestions: []string{"mention the edge case"},
		}

		q := domain.NewQuestion("kb", "question?", "")
		require.NoError(t, f.quiz.SaveQuestion(ctx, q))

		a, err := f.svc.SubmitAnswer(ctx, q.ID, "my answer")

		require.NoError(t, err)
		require.NotNil(t, a.Score)
		assert.Equal(t, 88, *a.Score)
		require.NotNil(t, a.Feedback)
		assert.Equal(t, "well reasoned", *a.Feedback)

		history, err := f.svc.History(ctx, "kb", domain.HistoryFilter{})
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, a.ID, history[0].Answer.ID)
	})
}
