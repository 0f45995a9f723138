package domain

// RiskLevel — категория риска, производная от численного скора.
type RiskLevel string

const (
	// RiskNoData — терминальное состояние "данных нет". Это НЕ ошибка:
	// анализатор искал свидетельства и честно сообщил, что их не нашлось.
	RiskNoData RiskLevel = "NO_DATA"

	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"

	// RiskError — анализатор не смог завершить работу (транспортный сбой,
	// таймаут). Скор при этом не имеет смысла и исключается из агрегации.
	RiskError RiskLevel = "ERROR"
)

// LevelFromScore переводит скор [0..100] в категорию.
// Пороги строгие: 0 — это валидный LOW, а не "нет данных".
func LevelFromScore(score int) RiskLevel {
	switch {
	case score > 75:
		return RiskCritical
	case score > 50:
		return RiskHigh
	case score > 25:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Details — открытая карта подробностей анализа. Значения обязаны быть
// JSON-сериализуемыми (скаляры, списки, вложенные карты) — результат
// уходит в кэш и в аудит без дополнительных преобразований.
type Details map[string]any

// AnalysisResult — единая форма ответа любого доменного анализатора.
// Создается заново на каждый вызов и после возврата не мутируется.
type AnalysisResult struct {
	Score           int       `json:"score"`      // 0..100, выше = рискованнее
	RiskLevel       RiskLevel `json:"risk_level"` //
	Details         Details   `json:"details"`
	Recommendations []string  `json:"recommendations"`
}

// Usable сообщает, можно ли учитывать Score в взвешенной агрегации.
func (r AnalysisResult) Usable() bool {
	return r.RiskLevel != RiskNoData && r.RiskLevel != RiskError
}

// NoDataResult — стандартная заготовка для случая "свидетельств нет".
func NoDataResult(message string) AnalysisResult {
	return AnalysisResult{
		Score:     0,
		RiskLevel: RiskNoData,
		Details:   Details{"error": message},
	}
}

// ErrorResult — стандартная заготовка для локально погашенного сбоя.
// Анализаторы тотальны: наружу уходит результат, а не паника или error.
func ErrorResult(message string) AnalysisResult {
	return AnalysisResult{
		Score:     0,
		RiskLevel: RiskError,
		Details:   Details{"error": message},
	}
}

// ClampScore ограничивает сумму штрафов рабочим диапазоном.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
