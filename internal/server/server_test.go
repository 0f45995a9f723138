package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/trustlens-engine/internal/domain"
	"go.uber.org/zap"
)

// fakeEngine — подмена ядра для тестов транспортного слоя.
type fakeEngine struct {
	res *domain.OrchestrationResult
	err error
}

func (f *fakeEngine) AnalyzeAll(_ context.Context, req domain.OrchestrationRequest) (*domain.OrchestrationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := *f.res
	res.Request = req
	return &res, nil
}

func newTestServer(engine Engine) *Server {
	return New(engine, nil, zap.NewNop())
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeEngine{res: &domain.OrchestrationResult{}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeOK(t *testing.T) {
	engine := &fakeEngine{res: &domain.OrchestrationResult{
		OverallScore: 66,
		Domains: map[string]domain.AnalysisResult{
			domain.DomainWallet: {Score: 80, RiskLevel: domain.RiskCritical},
		},
	}}
	srv := newTestServer(engine)

	body := `{"wallet_address":"0xabc","contract_address":"0xdef"}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res domain.OrchestrationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 66, res.OverallScore)
	assert.Equal(t, "0xabc", res.Request.WalletAddress)
	assert.Contains(t, res.Domains, domain.DomainWallet)
}

func TestAnalyzeBadJSON(t *testing.T) {
	srv := newTestServer(&fakeEngine{res: &domain.OrchestrationResult{}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeInvalidRequest(t *testing.T) {
	srv := newTestServer(&fakeEngine{err: domain.OrchestrationRequest{}.Validate()})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var res errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Error)
}

func TestTraceIDPropagation(t *testing.T) {
	srv := newTestServer(&fakeEngine{res: &domain.OrchestrationResult{}})

	// Пришедший от прокси заголовок возвращается как есть
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Trace-ID", "trace-from-proxy")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "trace-from-proxy", rec.Header().Get("X-Trace-ID"))

	// Без заголовка сервер генерирует собственный идентификатор
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}
