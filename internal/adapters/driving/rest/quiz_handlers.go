package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/retainhq/retain/internal/core/domain"
)

type answerRequest struct {
	UserAnswer string `json:"user_answer"`
}

func (s *Server) handleGenerateQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := s.quiz.GenerateQuestion(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuestionResponse(*q))
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	answer, err := s.quiz.SubmitAnswer(r.Context(), r.PathValue("id"), req.UserAnswer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnswerResponse(*answer))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := historyFilterFromQuery(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.quiz.History(r.Context(), r.PathValue("id"), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := historyResponse{Items: make([]historyItemResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, historyItemResponse{
			Question: toQuestionResponse(item.Question),
			Answer:   toAnswerResponse(item.Answer),
		})
	}
	resp.TotalCount = len(resp.Items)
	writeJSON(w, http.StatusOK, resp)
}

// historyFilterFromQuery parses the optional paging and filter
// parameters of a history request.
func historyFilterFromQuery(r *http.Request) (domain.HistoryFilter, error) {
	var filter domain.HistoryFilter
	query := r.URL.Query()

	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return filter, &queryError{param: name}
		}
		*dst = v
	}

	for name, dst := range map[string]**int{"min_score": &filter.MinScore, "max_score": &filter.MaxScore} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, &queryError{param: name}
		}
		*dst = &v
	}

	for name, dst := range map[string]**time.Time{"start_date": &filter.StartDate, "end_date": &filter.EndDate} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		v, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, &queryError{param: name}
		}
		*dst = &v
	}

	return filter, nil
}

type queryError struct {
	param string
}

func (e *queryError) Error() string {
	return "invalid query parameter: " + e.param
}
