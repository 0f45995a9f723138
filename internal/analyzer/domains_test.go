package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/trustlens-engine/internal/domain"
	"github.com/xela07ax/trustlens-engine/internal/source"
	"go.uber.org/zap"
)

// fakeProvider — управляемый источник данных для тестов анализаторов.
type fakeProvider struct {
	name     string
	wallet   *source.WalletRecord
	contract *source.ContractRecord
	social   *source.SocialRecord
	txs      []domain.Transaction
	err      error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) WalletData(context.Context, string) (*source.WalletRecord, error) {
	return f.wallet, f.err
}

func (f *fakeProvider) ContractData(context.Context, string) (*source.ContractRecord, error) {
	return f.contract, f.err
}

func (f *fakeProvider) SocialData(context.Context, string) (*source.SocialRecord, error) {
	return f.social, f.err
}

func (f *fakeProvider) WalletTransactions(context.Context, string) ([]domain.Transaction, error) {
	return f.txs, f.err
}

func aggWith(providers ...source.Provider) *source.Aggregator {
	return source.NewAggregator(zap.NewNop(), providers...)
}

func TestWalletScamPenalties(t *testing.T) {
	agg := aggWith(&fakeProvider{
		name: "src-a",
		wallet: &source.WalletRecord{
			Source:           "src-a",
			ScamAssetCount:   2,
			ScamAssetDetails: []string{"rug-token", "fake-nft"},
		},
	})
	a := NewWalletAnalyzer(agg, zap.NewNop())

	res := a.Analyze(context.Background(), "0xabc")

	require.True(t, res.Usable())
	assert.Equal(t, 40, res.Score) // 2 скам-актива по 20
	assert.Equal(t, domain.RiskMedium, res.RiskLevel)
	assert.Contains(t, res.Recommendations, "Review the 2 suspicious assets reported by src-a.")
}

func TestWalletBehaviorPenaltiesAndClamp(t *testing.T) {
	agg := aggWith(&fakeProvider{
		name: "src-a",
		wallet: &source.WalletRecord{
			Source:         "src-a",
			ScamAssetCount: 3,   // +60
			TransferCount:  500, // +30
			ApprovalCount:  25,  // +40
		},
	})
	a := NewWalletAnalyzer(agg, zap.NewNop())

	res := a.Analyze(context.Background(), "0xabc")

	assert.Equal(t, 100, res.Score) // 130 усечено до потолка
	assert.Equal(t, domain.RiskCritical, res.RiskLevel)
}

func TestWalletNoData(t *testing.T) {
	a := NewWalletAnalyzer(aggWith(&fakeProvider{name: "src-a"}), zap.NewNop())

	res := a.Analyze(context.Background(), "0xabc")

	assert.Equal(t, domain.RiskNoData, res.RiskLevel)
	assert.Equal(t, 0, res.Score)
	assert.NotEmpty(t, res.Details["error"])
}

func TestWalletTransportFault(t *testing.T) {
	a := NewWalletAnalyzer(aggWith(&fakeProvider{
		name: "src-a",
		err:  errors.New("connection refused"),
	}), zap.NewNop())

	// Контракт анализатора тотален: сбой порта = ERROR, не паника
	res := a.Analyze(context.Background(), "0xabc")

	assert.Equal(t, domain.RiskError, res.RiskLevel)
}

func TestWalletEmptyTarget(t *testing.T) {
	a := NewWalletAnalyzer(aggWith(&fakeProvider{name: "src-a"}), zap.NewNop())
	assert.Equal(t, domain.RiskError, a.Analyze(context.Background(), "").RiskLevel)
}

func TestContractVulnerabilities(t *testing.T) {
	agg := aggWith(&fakeProvider{
		name: "scan",
		contract: &source.ContractRecord{
			Source:          "scan",
			Vulnerabilities: []string{"reentrancy", "unchecked call"},
			Verified:        false,
			VerifiedKnown:   true,
		},
	})
	a := NewContractAnalyzer(agg, zap.NewNop())

	res := a.Analyze(context.Background(), "0xdef")

	require.True(t, res.Usable())
	assert.Equal(t, 70, res.Score) // 2*25 + 20 за неверифицированные исходники
	assert.Equal(t, domain.RiskHigh, res.RiskLevel)
	assert.Contains(t, res.Recommendations, "Contract source code is not verified on scan.")
	assert.Equal(t, false, res.Details["scan_is_verified"])
}

func TestContractVerifiedClean(t *testing.T) {
	agg := aggWith(&fakeProvider{
		name:     "scan",
		contract: &source.ContractRecord{Source: "scan", Verified: true, VerifiedKnown: true},
	})
	a := NewContractAnalyzer(agg, zap.NewNop())

	res := a.Analyze(context.Background(), "0xdef")

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, domain.RiskLow, res.RiskLevel) // Ноль — валидный LOW
}

func TestSocialLowFollowerRatio(t *testing.T) {
	agg := aggWith(&fakeProvider{
		name:   "social-api",
		social: &source.SocialRecord{Source: "social-api", FollowerRatio: 0.2, HasRatio: true},
	})
	a := NewSocialAnalyzer(agg, zap.NewNop())

	res := a.Analyze(context.Background(), "alice")

	assert.Equal(t, 40, res.Score)
	assert.Equal(t, domain.RiskMedium, res.RiskLevel)
	assert.Contains(t, res.Recommendations,
		"Account has a low follower/following ratio, indicating potential inauthenticity.")
}

func TestSocialNoData(t *testing.T) {
	a := NewSocialAnalyzer(aggWith(&fakeProvider{name: "social-api"}), zap.NewNop())
	assert.Equal(t, domain.RiskNoData, a.Analyze(context.Background(), "alice").RiskLevel)
}
