package domain

import (
	"fmt"
	"strings"
	"time"
)

// Имена доменов анализа. Используются как ключи в OrchestrationResult,
// в таблице весов и в метриках — менять без миграции кэша нельзя.
const (
	DomainWallet   = "wallet_analysis"
	DomainContract = "contract_analysis"
	DomainSocial   = "social_analysis"
	DomainGraph    = "graph_analysis"
)

// OrchestrationRequest — запрос на комплексную проверку.
// Обязателен только кошелек; контракт и соцпрофиль подключают
// соответствующие анализаторы, если заданы.
type OrchestrationRequest struct {
	WalletAddress   string `json:"wallet_address"`
	ContractAddress string `json:"contract_address,omitempty"`
	SocialHandle    string `json:"social_handle,omitempty"`
}

// Validate — единственное место, где оркестратор может отказать.
// Формат адреса — забота Data-Source порта, здесь только пустота.
func (r OrchestrationRequest) Validate() error {
	if strings.TrimSpace(r.WalletAddress) == "" {
		return fmt.Errorf("wallet_address is required")
	}
	return nil
}

// CacheKey — детерминированный составной ключ для кэша результатов.
// Регистр нормализуется, чтобы 0xAB и 0xab считались одним запросом.
func (r OrchestrationRequest) CacheKey() string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(r.WalletAddress)),
		strings.ToLower(strings.TrimSpace(r.ContractAddress)),
		strings.ToLower(strings.TrimSpace(r.SocialHandle)),
	}
	return strings.Join(parts, "|")
}

// OrchestrationResult — агрегат всех доменных результатов одного запроса.
type OrchestrationResult struct {
	Request OrchestrationRequest `json:"request"`

	// Domains — результаты по имени домена (DomainWallet и т.д.).
	// Отсутствие ключа означает, что анализатор не был применим.
	Domains map[string]AnalysisResult `json:"domains"`

	OverallScore           int      `json:"overall_score"` // 0..100
	OverallRecommendations []string `json:"overall_recommendations"`

	// InsufficientData поднимается, когда НИ ОДИН домен не дал пригодного
	// результата. Ноль в OverallScore в этом случае — не "риска нет",
	// и потребитель обязан это различать.
	InsufficientData bool `json:"insufficient_data"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}
