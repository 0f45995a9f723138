package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/trustlens-engine/internal/domain"
	"go.uber.org/zap"
)

// stubProvider — провайдер с фиксированными ответами для тестов агрегатора.
type stubProvider struct {
	name   string
	wallet *WalletRecord
	txs    []domain.Transaction
	err    error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) WalletData(context.Context, string) (*WalletRecord, error) {
	return s.wallet, s.err
}

func (s *stubProvider) ContractData(context.Context, string) (*ContractRecord, error) {
	return nil, s.err
}

func (s *stubProvider) SocialData(context.Context, string) (*SocialRecord, error) {
	return nil, s.err
}

func (s *stubProvider) WalletTransactions(context.Context, string) ([]domain.Transaction, error) {
	return s.txs, s.err
}

func TestAggregatorMergesProviders(t *testing.T) {
	agg := NewAggregator(zap.NewNop(),
		&stubProvider{name: "a", wallet: &WalletRecord{Source: "a"}},
		&stubProvider{name: "b", wallet: &WalletRecord{Source: "b"}},
	)

	records, err := agg.WalletData(context.Background(), "0xabc")

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestAggregatorSurvivesPartialFailure(t *testing.T) {
	agg := NewAggregator(zap.NewNop(),
		&stubProvider{name: "down", err: errors.New("timeout")},
		&stubProvider{name: "up", wallet: &WalletRecord{Source: "up"}},
	)

	// Один источник упал — выборка жива за счет второго
	records, err := agg.WalletData(context.Background(), "0xabc")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "up", records[0].Source)
}

func TestAggregatorTotalFailure(t *testing.T) {
	agg := NewAggregator(zap.NewNop(),
		&stubProvider{name: "down1", err: errors.New("timeout")},
		&stubProvider{name: "down2", err: errors.New("refused")},
	)

	// Упали все: транспортный сбой обязан отличаться от "данных нет"
	records, err := agg.WalletData(context.Background(), "0xabc")

	assert.Error(t, err)
	assert.Empty(t, records)
}

func TestAggregatorNoDataIsNotError(t *testing.T) {
	agg := NewAggregator(zap.NewNop(),
		&stubProvider{name: "a"}, // nil-запись: провайдер не знает домен
	)

	records, err := agg.WalletData(context.Background(), "0xabc")

	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestTransactionsFirstNonEmptyWins(t *testing.T) {
	txsB := []domain.Transaction{{FromAddress: "0xa", ToAddress: "0xb", Value: 1}}
	agg := NewAggregator(zap.NewNop(),
		&stubProvider{name: "a"}, // пустая история
		&stubProvider{name: "b", txs: txsB},
	)

	got, err := agg.WalletTransactions(context.Background(), "0xabc")

	require.NoError(t, err)
	// Истории разных источников не склеиваются — иначе дубли рёбер
	assert.Equal(t, txsB, got)
}

func TestTransactionsAllFailed(t *testing.T) {
	agg := NewAggregator(zap.NewNop(),
		&stubProvider{name: "down", err: errors.New("refused")},
	)

	_, err := agg.WalletTransactions(context.Background(), "0xabc")
	assert.Error(t, err)
}
