package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewSession records one round of revisiting questions from history.
// AverageScore is nil until the session has been scored.
type ReviewSession struct {
	ID              string
	KnowledgeBaseID string
	QuestionsCount  int
	AverageScore    *float64
	SessionDate     time.Time
}

// NewReviewSession creates an unscored review session.
func NewReviewSession(kbID string, questionsCount int) ReviewSession {
	return ReviewSession{
		ID:              uuid.New().String(),
		KnowledgeBaseID: kbID,
		QuestionsCount:  questionsCount,
		SessionDate:     time.Now().UTC(),
	}
}

// Trend labels for LearningProgress.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// LearningProgress summarises quiz performance for one knowledge base.
// Averages are nil when no graded answers exist; Trend is empty until at
// least four graded answers are available.
type LearningProgress struct {
	TotalQuestionsAnswered int
	AverageScore           *float64
	RecentAverageScore     *float64
	ImprovementTrend       string
	TotalReviewSessions    int
}

// ComputeProgress derives progress statistics from history items ordered
// most recent first, the way history queries return them.
func ComputeProgress(history []HistoryItem, totalSessions int) LearningProgress {
	progress := LearningProgress{
		TotalQuestionsAnswered: len(history),
		TotalReviewSessions:    totalSessions,
	}

	var scores []int
	for _, item := range history {
		if item.Answer.Score != nil {
			scores = append(scores, *item.Answer.Score)
		}
	}
	if len(scores) == 0 {
		return progress
	}

	avg := mean(scores)
	progress.AverageScore = &avg

	recent := scores
	if len(recent) > 10 {
		recent = recent[:10]
	}
	recentAvg := mean(recent)
	progress.RecentAverageScore = &recentAvg

	// Trend compares the chronological first half against the second half;
	// a five point gap separates stable from a real change.
	if len(scores) >= 4 {
		chronological := make([]int, len(scores))
		for i, s := range scores {
			chronological[len(scores)-1-i] = s
		}
		half := len(chronological) / 2
		firstAvg := mean(chronological[:half])
		secondAvg := mean(chronological[half:])
		switch {
		case secondAvg > firstAvg+5:
			progress.ImprovementTrend = TrendImproving
		case firstAvg > secondAvg+5:
			progress.ImprovementTrend = TrendDeclining
		default:
			progress.ImprovementTrend = TrendStable
		}
	}

	return progress
}

func mean(scores []int) float64 {
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}
