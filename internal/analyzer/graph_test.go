package analyzer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/trustlens-engine/internal/domain"
	"go.uber.org/zap"
)

func newGraphAnalyzer() *GraphAnalyzer {
	return NewGraphAnalyzer(zap.NewNop())
}

func TestGraphEmptyTransactions(t *testing.T) {
	res := newGraphAnalyzer().Analyze(context.Background(), nil)

	assert.Equal(t, domain.RiskNoData, res.RiskLevel)
	assert.Equal(t, 0, res.Score)
}

func TestGraphSelfTransfersOnly(t *testing.T) {
	txs := []domain.Transaction{
		{FromAddress: "0xaaa", ToAddress: "0xaaa", Value: 100},
		{FromAddress: "0xbbb", ToAddress: "0xbbb", Value: 50},
	}
	res := newGraphAnalyzer().Analyze(context.Background(), txs)

	// Переводы самому себе не образуют контрагентских связей
	assert.Equal(t, domain.RiskNoData, res.RiskLevel)
}

func TestGraphHubConcentration(t *testing.T) {
	// Один адрес собирает ценность с пяти отправителей:
	// концентрация топ-5 уходит за 0.8 и дает +40
	hub := "0xhub00000000000000000000000000000000000001"
	var txs []domain.Transaction
	for i := 0; i < 5; i++ {
		txs = append(txs, domain.Transaction{
			FromAddress: fmt.Sprintf("0xsender%02d00000000000000000000000000000000", i),
			ToAddress:   hub,
			Value:       1800, // 9000 суммарно против мелочи ниже
		})
	}
	res := newGraphAnalyzer().Analyze(context.Background(), txs)

	require.True(t, res.Usable())
	assert.Equal(t, 40, res.Score)
	assert.Equal(t, domain.RiskMedium, res.RiskLevel)
	assert.Equal(t, 6, res.Details["total_wallets_in_graph"])
	assert.NotEmpty(t, res.Recommendations)

	// Полные адреса не должны утекать в details
	wallets, ok := res.Details["most_influential_wallets"].([]string)
	require.True(t, ok)
	for _, w := range wallets {
		assert.Contains(t, w, "...")
		assert.NotContains(t, w, hub)
	}
}

func TestGraphDispersedRing(t *testing.T) {
	// Кольцо из 20 узлов: PageRank равномерный, топ-5 держит ровно 25%
	const n = 20
	var txs []domain.Transaction
	for i := 0; i < n; i++ {
		txs = append(txs, domain.Transaction{
			FromAddress: fmt.Sprintf("0xring%040d", i),
			ToAddress:   fmt.Sprintf("0xring%040d", (i+1)%n),
			Value:       10,
		})
	}
	res := newGraphAnalyzer().Analyze(context.Background(), txs)

	require.True(t, res.Usable())
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, domain.RiskLow, res.RiskLevel)
	assert.Equal(t, n, res.Details["total_wallets_in_graph"])
	assert.Empty(t, res.Recommendations)
}

func TestGraphEdgeAccumulation(t *testing.T) {
	// Мультиграф сворачивается: три перевода одной пары = одно ребро
	txs := []domain.Transaction{
		{FromAddress: "0xaaa", ToAddress: "0xbbb", Value: 10},
		{FromAddress: "0xaaa", ToAddress: "0xbbb", Value: 20},
		{FromAddress: "0xaaa", ToAddress: "0xbbb", Value: 30},
		{FromAddress: "0xbbb", ToAddress: "0xaaa", Value: 5},
	}
	res := newGraphAnalyzer().Analyze(context.Background(), txs)

	require.True(t, res.Usable())
	assert.Equal(t, 2, res.Details["total_wallets_in_graph"])
	assert.Equal(t, 2, res.Details["total_transactions_in_graph"])
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "0x1234...wxyz", shortAddress("0x1234567890abcdefwxyz"))
	assert.Equal(t, "0xshort", shortAddress("0xshort"))
}
