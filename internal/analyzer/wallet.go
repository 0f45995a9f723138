package analyzer

import (
	"context"
	"fmt"
	"sort"

	"github.com/xela07ax/trustlens-engine/internal/domain"
	"github.com/xela07ax/trustlens-engine/internal/source"
	"go.uber.org/zap"
)

// Штрафные баллы кошелькового домена. Каждый индикатор документирован
// рядом со своим применением.
const (
	penaltyPerScamAsset = 20 // За каждый актив, помеченный источником как скам

	penaltyManyTransfers = 30 // >200 трансферов: похоже на бота
	penaltySomeTransfers = 15 // >50 трансферов: повышенная активность

	penaltyManyApprovals = 40 // >20 выданных апрувов: огромная поверхность атаки
	penaltySomeApprovals = 20 // >5 апрувов: стоит провести ревизию
)

// WalletAnalyzer оценивает он-чейн поведение кошелька по записям
// всех доступных провайдеров.
type WalletAnalyzer struct {
	agg    *source.Aggregator
	logger *zap.Logger
}

func NewWalletAnalyzer(agg *source.Aggregator, logger *zap.Logger) *WalletAnalyzer {
	return &WalletAnalyzer{agg: agg, logger: logger.Named("wallet")}
}

func (a *WalletAnalyzer) Name() string { return domain.DomainWallet }

func (a *WalletAnalyzer) Analyze(ctx context.Context, address string) domain.AnalysisResult {
	if address == "" {
		return domain.ErrorResult("wallet address is empty")
	}

	records, err := a.agg.WalletData(ctx, address)
	if err != nil {
		a.logger.Error("wallet data fetch failed",
			zap.String("address", address), zap.Error(err))
		return domain.ErrorResult("could not fetch wallet data from any source")
	}
	if len(records) == 0 {
		return domain.NoDataResult("no wallet data found for this address")
	}

	score := 0
	recs := newRecSet()
	details := domain.Details{}

	var (
		sources        []string
		transfers      int
		approvals      int
		totalScamCount int
	)

	for _, r := range records {
		sources = append(sources, r.Source)
		transfers += r.TransferCount
		approvals += r.ApprovalCount

		if r.ScamAssetCount > 0 {
			totalScamCount += r.ScamAssetCount
			score += r.ScamAssetCount * penaltyPerScamAsset
			recs.add(fmt.Sprintf("Review the %d suspicious assets reported by %s.", r.ScamAssetCount, r.Source))
			details[r.Source+"_scam_details"] = r.ScamAssetDetails
		}

		details[r.Source+"_asset_summary"] = domain.Details{
			"total_assets":        r.TotalAssets,
			"portfolio_value_usd": r.PortfolioValueUSD,
		}
	}

	// Поведенческие сигналы из событийных логов
	switch {
	case transfers > 200:
		score += penaltyManyTransfers
		recs.add("Wallet has a very high number of transfers, suggesting potential bot activity. Investigate further.")
	case transfers > 50:
		score += penaltySomeTransfers
		recs.add("Wallet has a high number of transfers. Verify the nature of these transactions.")
	}

	switch {
	case approvals > 20:
		score += penaltyManyApprovals
		recs.add("Wallet has approved a very high number of contracts. Review and revoke unnecessary approvals immediately.")
	case approvals > 5:
		score += penaltySomeApprovals
		recs.add("Wallet has several active approvals. Periodically review and revoke unused contract permissions.")
	}

	score = domain.ClampScore(score)

	details["sources"] = sources
	details["total_transfers"] = transfers
	details["total_approvals"] = approvals
	details["scam_assets"] = totalScamCount

	return domain.AnalysisResult{
		Score:           score,
		RiskLevel:       domain.LevelFromScore(score),
		Details:         details,
		Recommendations: recs.list(),
	}
}

// recSet — множество рекомендаций: дубликаты схлопываются, вывод
// сортируется для побайтовой воспроизводимости результата.
type recSet map[string]struct{}

func newRecSet() recSet { return make(recSet) }

func (s recSet) add(rec string) { s[rec] = struct{}{} }

func (s recSet) list() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for rec := range s {
		out = append(out, rec)
	}
	sort.Strings(out)
	return out
}
