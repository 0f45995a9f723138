package analyzer

import (
	"context"

	"github.com/xela07ax/trustlens-engine/internal/domain"
	"github.com/xela07ax/trustlens-engine/internal/source"
	"go.uber.org/zap"
)

const (
	// Аккаунт подписан на толпу, но сам мало кому интересен —
	// классический признак накрутки/неаутентичности
	penaltyLowFollowerRatio = 40
	lowFollowerRatio        = 0.5
)

// SocialAnalyzer оценивает аутентичность офф-чейн профиля.
// Вес домена в общей агрегации намеренно маленький: социальные сигналы
// легко подделать.
type SocialAnalyzer struct {
	agg    *source.Aggregator
	logger *zap.Logger
}

func NewSocialAnalyzer(agg *source.Aggregator, logger *zap.Logger) *SocialAnalyzer {
	return &SocialAnalyzer{agg: agg, logger: logger.Named("social")}
}

func (a *SocialAnalyzer) Name() string { return domain.DomainSocial }

func (a *SocialAnalyzer) Analyze(ctx context.Context, handle string) domain.AnalysisResult {
	if handle == "" {
		return domain.ErrorResult("social handle is empty")
	}

	records, err := a.agg.SocialData(ctx, handle)
	if err != nil {
		a.logger.Error("social data fetch failed",
			zap.String("handle", handle), zap.Error(err))
		return domain.ErrorResult("could not fetch social data from any source")
	}
	if len(records) == 0 {
		return domain.NoDataResult("social analysis is not supported by configured sources or no data was found")
	}

	score := 0
	recs := newRecSet()
	details := domain.Details{}

	var sources []string
	for _, r := range records {
		sources = append(sources, r.Source)

		if r.HasRatio {
			details[r.Source+"_follower_ratio"] = r.FollowerRatio
			if r.FollowerRatio < lowFollowerRatio {
				score += penaltyLowFollowerRatio
				recs.add("Account has a low follower/following ratio, indicating potential inauthenticity.")
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
