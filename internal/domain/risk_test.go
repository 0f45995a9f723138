package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromScore(t *testing.T) {
	tests := []struct {
		score int
		want  RiskLevel
	}{
		{0, RiskLow},
		{25, RiskLow},
		{26, RiskMedium},
		{50, RiskMedium},
		{51, RiskHigh},
		{75, RiskHigh},
		{76, RiskCritical},
		{100, RiskCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFromScore(tt.score), "score %d", tt.score)
	}
}

func TestUsable(t *testing.T) {
	assert.False(t, AnalysisResult{RiskLevel: RiskNoData}.Usable())
	assert.False(t, AnalysisResult{RiskLevel: RiskError}.Usable())
	assert.True(t, AnalysisResult{RiskLevel: RiskLow}.Usable())
	assert.True(t, AnalysisResult{Score: 90, RiskLevel: RiskCritical}.Usable())
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-5))
	assert.Equal(t, 100, ClampScore(240))
	assert.Equal(t, 42, ClampScore(42))
}

func TestCacheKeyNormalization(t *testing.T) {
	a := OrchestrationRequest{WalletAddress: "0xAbCd", ContractAddress: "0xFF", SocialHandle: "Alice"}
	b := OrchestrationRequest{WalletAddress: " 0xabcd ", ContractAddress: "0xff", SocialHandle: "alice"}
	assert.Equal(t, a.CacheKey(), b.CacheKey())

	// Разные наборы целей не должны коллидировать
	c := OrchestrationRequest{WalletAddress: "0xabcd"}
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
}

func TestValidate(t *testing.T) {
	assert.Error(t, OrchestrationRequest{}.Validate())
	assert.Error(t, OrchestrationRequest{WalletAddress: "   "}.Validate())
	assert.NoError(t, OrchestrationRequest{WalletAddress: "0xabc"}.Validate())
}
