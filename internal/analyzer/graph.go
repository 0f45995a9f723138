package analyzer

import (
	"context"
	"fmt"
	"sort"

	"github.com/xela07ax/trustlens-engine/internal/domain"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
)

const (
	pagerankDamping   = 0.85
	pagerankTolerance = 1e-6

	topInfluencers = 5

	// Пороги концентрации влияния: когда почти весь PageRank сидит
	// в пятерке адресов, сеть выглядит как схема, а не как рынок
	concentrationCritical = 0.8
	concentrationElevated = 0.5

	penaltyCriticalConcentration = 40
	penaltyElevatedConcentration = 20
)

// GraphAnalyzer строит направленный взвешенный граф переводов и
// превращает топологию в сигнал риска через итеративную центральность
// (PageRank). Граф живет ровно один вызов Analyze и не сохраняется.
type GraphAnalyzer struct {
	logger *zap.Logger
}

func NewGraphAnalyzer(logger *zap.Logger) *GraphAnalyzer {
	return &GraphAnalyzer{logger: logger.Named("graph")}
}

func (a *GraphAnalyzer) Name() string { return domain.DomainGraph }

// Analyze принимает плоский список транзакций (а не адрес): выборку
// истории делает оркестратор через Data-Source порт до fan-out.
func (a *GraphAnalyzer) Analyze(ctx context.Context, txs []domain.Transaction) (res domain.AnalysisResult) {
	if len(txs) == 0 {
		return domain.NoDataResult("no transaction data for graph analysis")
	}

	// Численная библиотека не обязана быть тотальной — мы обязаны.
	// Любая паника итерации превращается в NO_DATA, как и несходимость.
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("pagerank computation failed", zap.Any("panic", r))
			res = domain.NoDataResult("graph analysis failed during centrality computation")
		}
	}()

	nodes, edges := buildEdges(txs)
	if len(nodes) == 0 {
		return domain.NoDataResult("transaction data did not yield a valid graph")
	}

	g := simple.NewWeightedDirectedGraph(0, 0)
	for pair, weight := range edges {
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(pair.from),
			T: simple.Node(pair.to),
			W: weight,
		})
	}

	ranks := network.PageRank(g, pagerankDamping, pagerankTolerance)

	// Обратный маппинг id -> адрес и сортировка по влиянию
	byAddr := make([]rankedWallet, 0, len(nodes))
	total := 0.0
	for addr, id := range nodes {
		score := ranks[id]
		total += score
		byAddr = append(byAddr, rankedWallet{addr: addr, score: score})
	}
	if total <= 0 {
		return domain.NoDataResult("centrality scores degenerated to zero")
	}

	sort.Slice(byAddr, func(i, j int) bool {
		if byAddr[i].score != byAddr[j].score {
			return byAddr[i].score > byAddr[j].score
		}
		return byAddr[i].addr < byAddr[j].addr // Стабильность при равных скора
	})

	top := byAddr
	if len(top) > topInfluencers {
		top = top[:topInfluencers]
	}

	topSum := 0.0
	shortened := make([]string, 0, len(top))
	for _, w := range top {
		topSum += w.score
		shortened = append(shortened, shortAddress(w.addr))
	}
	concentration := topSum / total

	score := 0
	recs := newRecSet()
	switch {
	case concentration > concentrationCritical:
		score += penaltyCriticalConcentration
		recs.add("Value flow is heavily concentrated in a handful of wallets. Verify the network is not a closed loop.")
	case concentration > concentrationElevated:
		score += penaltyElevatedConcentration
		recs.add("A small group of wallets dominates the transaction network. Check the counterparties before interacting.")
	}
	score = domain.ClampScore(score)

	details := domain.Details{
		"total_wallets_in_graph":      len(nodes),
		"total_transactions_in_graph": len(edges),
		"influence_concentration_top_5": fmt.Sprintf("%.2f%%", concentration*100),
		// Адреса укорачиваются: details уходят в аудит и чат-витрины,
		// полный список светить там не нужно
		"most_influential_wallets": shortened,
	}

	return domain.AnalysisResult{
		Score:           score,
		RiskLevel:       domain.LevelFromScore(score),
		Details:         details,
		Recommendations: recs.list(),
	}
}

type rankedWallet struct {
	addr  string
	score float64
}

type edgeKey struct {
	from, to int64
}

// buildEdges сворачивает мультиграф переводов в простой граф:
// вес ребра = суммарная ценность переводов упорядоченной пары.
// Переводы самому себе отбрасываются — это не контрагентские связи.
func buildEdges(txs []domain.Transaction) (map[string]int64, map[edgeKey]float64) {
	nodes := make(map[string]int64)
	edges := make(map[edgeKey]float64)

	id := func(addr string) int64 {
		if n, ok := nodes[addr]; ok {
			return n
		}
		n := int64(len(nodes))
		nodes[addr] = n
		return n
	}

	for _, tx := range txs {
		if tx.FromAddress == "" || tx.ToAddress == "" || tx.FromAddress == tx.ToAddress {
			continue
		}
		value := tx.Value
		if value < 0 {
			continue
		}
		key := edgeKey{from: id(tx.FromAddress), to: id(tx.ToAddress)}
		edges[key] += value
	}

	return nodes, edges
}

// shortAddress — усеченная форма для логов и витрин: 0x1234...abcd
func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
