// Package analyzer содержит доменные анализаторы риска.
//
// Контракт общий для всех: Analyze ТОТАЛЕН. Любой сбой порта данных
// гасится внутри и превращается в AnalysisResult{ERROR}; отсутствие
// данных — в AnalysisResult{NO_DATA}. Оркестратору не нужен
// exception-handling вокруг вызова анализатора.
package analyzer

import (
	"context"

	"github.com/xela07ax/trustlens-engine/internal/domain"
)

// Analyzer — один эвиденциальный домен (кошелек, контракт, соцпрофиль).
type Analyzer interface {
	// Name — имя домена, под которым результат попадает в агрегат
	// (domain.DomainWallet и т.д.)
	Name() string

	Analyze(ctx context.Context, target string) domain.AnalysisResult
}
