package analyzer

import (
	"context"
	"fmt"

	"github.com/xela07ax/trustlens-engine/internal/domain"
	"github.com/xela07ax/trustlens-engine/internal/source"
	"go.uber.org/zap"
)

const (
	penaltyPerVulnerability = 25 // За каждую найденную уязвимость
	penaltyUnverifiedSource = 20 // Исходники контракта не верифицированы
)

// ContractAnalyzer оценивает риск смарт-контракта: уязвимости и
// верификацию исходников по данным всех провайдеров.
type ContractAnalyzer struct {
	agg    *source.Aggregator
	logger *zap.Logger
}

func NewContractAnalyzer(agg *source.Aggregator, logger *zap.Logger) *ContractAnalyzer {
	return &ContractAnalyzer{agg: agg, logger: logger.Named("contract")}
}

func (a *ContractAnalyzer) Name() string { return domain.DomainContract }

func (a *ContractAnalyzer) Analyze(ctx context.Context, address string) domain.AnalysisResult {
	if address == "" {
		return domain.ErrorResult("contract address is empty")
	}

	records, err := a.agg.ContractData(ctx, address)
	if err != nil {
		a.logger.Error("contract data fetch failed",
			zap.String("address", address), zap.Error(err))
		return domain.ErrorResult("could not fetch contract data from any source")
	}
	if len(records) == 0 {
		return domain.NoDataResult("no contract data found for this address")
	}

	score := 0
	recs := newRecSet()
	details := domain.Details{}

	var sources []string
	for _, r := range records {
		sources = append(sources, r.Source)

		if n := len(r.Vulnerabilities); n > 0 {
			score += n * penaltyPerVulnerability
			recs.add(fmt.Sprintf("Address the %d vulnerabilities found by %s.", n, r.Source))
			details[r.Source+"_vulnerabilities"] = r.Vulnerabilities
		}

		if r.VerifiedKnown {
			details[r.Source+"_is_verified"] = r.Verified
			if !r.Verified {
				score += penaltyUnverifiedSource
				recs.add(fmt.Sprintf("Contract source code is not verified on %s.", r.Source))
			}
		}
	}

	score = domain.ClampScore(score)
	details["sources"] = sources

	return domain.AnalysisResult{
		Score:           score,
		RiskLevel:       domain.LevelFromScore(score),
		Details:         details,
		Recommendations: recs.list(),
	}
}
