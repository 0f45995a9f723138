package server

import (
	"encoding/json"
	"net/http"

	"github.com/xela07ax/trustlens-engine/internal/domain"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

// handleAnalyze — единственная рабочая ручка: принимает цели проверки,
// синхронно отдает полный OrchestrationResult.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req domain.OrchestrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	res, err := s.engine.AnalyzeAll(r.Context(), req)
	if err != nil {
		if r.Context().Err() != nil {
			// Клиент отвалился или внешний таймаут: ответ уже никому не нужен
			s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "request cancelled"})
			return
		}
		// Единственная ошибка ядра — невалидный запрос (fail-fast до fan-out)
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encode failed", zap.Error(err))
	}
}
