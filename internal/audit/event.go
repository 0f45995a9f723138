package audit

import (
	"time"

	"github.com/xela07ax/trustlens-engine/internal/domain"
)

// Event — одно аудит-событие оркестрации: кто проверялся, что ответил
// каждый домен и каким вышел итог. Пишется в append-only сток ПОСЛЕ
// того, как все домены отработали.
type Event struct {
	ID      string `json:"id"`       // UUID события
	TraceID string `json:"trace_id"` // Сквозной ID запроса

	// Идентификаторы целей запроса
	WalletAddress   string `json:"wallet_address"`
	ContractAddress string `json:"contract_address,omitempty"`
	SocialHandle    string `json:"social_handle,omitempty"`

	// Результаты
	Domains                map[string]domain.AnalysisResult `json:"domains"`
	OverallScore           int                              `json:"overall_score"`
	OverallRecommendations []string                         `json:"overall_recommendations"`
	InsufficientData       bool                             `json:"insufficient_data"`

	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"` // Время обработки запроса
}
