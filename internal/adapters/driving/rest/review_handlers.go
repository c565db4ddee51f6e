package rest

import (
	"net/http"
	"strconv"
)

type createReviewSessionRequest struct {
	KnowledgeBaseID string `json:"knowledge_base_id"`
	QuestionsCount  int    `json:"questions_count"`
}

type sessionScoreRequest struct {
	AverageScore *float64 `json:"average_score"`
}

type reviewAnswerRequest struct {
	QuestionID string `json:"question_id"`
	UserAnswer string `json:"user_answer"`
}

func (s *Server) handleRandomReviewQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := s.review.RandomQuestion(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"question": toQuestionResponse(*q)})
}

func (s *Server) handleReviewQuestions(w http.ResponseWriter, r *http.Request) {
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid query parameter: count")
			return
		}
		count = v
	}

	questions, err := s.review.ReviewQuestions(r.Context(), r.PathValue("id"), count)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]questionResponse, 0, len(questions))
	for _, q := range questions {
		resp = append(resp, toQuestionResponse(q))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"questions": resp,
		"count":     len(resp),
	})
}

func (s *Server) handleCreateReviewSession(w http.ResponseWriter, r *http.Request) {
	var req createReviewSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	session, err := s.review.RecordSession(r.Context(), req.KnowledgeBaseID, req.QuestionsCount, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReviewSessionResponse(*session))
}

func (s *Server) handleUpdateReviewSessionScore(w http.ResponseWriter, r *http.Request) {
	var req sessionScoreRequest
	if err := decodeJSON(r, &req); err != nil || req.AverageScore == nil {
		writeErrorMessage(w, http.StatusBadRequest, "missing or invalid average_score")
		return
	}

	session, err := s.review.UpdateSessionScore(r.Context(), r.PathValue("id"), *req.AverageScore)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewSessionResponse(*session))
}

func (s *Server) handleSubmitReviewAnswer(w http.ResponseWriter, r *http.Request) {
	var req reviewAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	answer, err := s.review.SubmitReviewAnswer(r.Context(), req.QuestionID, req.UserAnswer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnswerResponse(*answer))
}

func (s *Server) handleListReviewSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.review.ListSessions(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]reviewSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, toReviewSessionResponse(session))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions":    resp,
		"total_count": len(resp),
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.review.Progress(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProgressResponse(*progress))
}
