// Package orchestrator — координационное ядро движка: раздает работу
// доменным анализаторам, переживает частичные отказы и сводит
// разнородные результаты в один взвешенный скор.
package orchestrator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/trustlens-engine/internal/analyzer"
	"github.com/xela07ax/trustlens-engine/internal/audit"
	"github.com/xela07ax/trustlens-engine/internal/cache"
	"github.com/xela07ax/trustlens-engine/internal/domain"
	"github.com/xela07ax/trustlens-engine/internal/infra"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TransactionSource — кусок Data-Source порта, нужный самому
// оркестратору: префетч истории переводов для графового анализа.
type TransactionSource interface {
	WalletTransactions(ctx context.Context, address string) ([]domain.Transaction, error)
}

// GraphAnalyzer выделен в отдельный контракт: он принимает не адрес,
// а уже выбранный список транзакций.
type GraphAnalyzer interface {
	Name() string
	Analyze(ctx context.Context, txs []domain.Transaction) domain.AnalysisResult
}

// Options — ручки ядра (из EngineConfig).
type Options struct {
	// AnalyzerTimeout — потолок ожидания одного анализатора. Превышение
	// эквивалентно ERROR этого домена; остальной батч не страдает.
	AnalyzerTimeout time.Duration

	// Weights — вес каждого домена в итоговом скоре. Нормировка всегда
	// идет по фактически пригодным доменам, а не по полной таблице.
	Weights map[string]float64
}

func (o *Options) defaults() {
	if o.AnalyzerTimeout <= 0 {
		o.AnalyzerTimeout = 30 * time.Second
	}
	if len(o.Weights) == 0 {
		o.Weights = map[string]float64{
			domain.DomainWallet:   0.4,
			domain.DomainContract: 0.3,
			domain.DomainSocial:   0.1,
			domain.DomainGraph:    0.2,
		}
	}
}

// Orchestrator собирается один раз на старте; все зависимости —
// явные конструкторные, никаких глобальных синглтонов.
type Orchestrator struct {
	wallet   analyzer.Analyzer
	contract analyzer.Analyzer
	social   analyzer.Analyzer
	graph    GraphAnalyzer

	txSource TransactionSource
	cache    cache.ResultCache
	auditor  audit.Appender
	metrics  *Metrics
	logger   *zap.Logger
	opts     Options

	// Коалесценция конкурентных одинаковых запросов: полный fan-out
	// на один ключ выполняется ровно один раз
	group singleflight.Group

	now func() time.Time // Подменяется в тестах
}

func New(
	wallet, contract, social analyzer.Analyzer,
	graph GraphAnalyzer,
	txSource TransactionSource,
	resultCache cache.ResultCache,
	auditor audit.Appender,
	metrics *Metrics,
	logger *zap.Logger,
	opts Options,
) *Orchestrator {
	opts.defaults()
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if auditor == nil {
		auditor = audit.NopAppender{}
	}
	return &Orchestrator{
		wallet:   wallet,
		contract: contract,
		social:   social,
		graph:    graph,
		txSource: txSource,
		cache:    resultCache,
		auditor:  auditor,
		metrics:  metrics,
		logger:   logger.Named("orchestrator"),
		opts:     opts,
		now:      time.Now,
	}
}

// AnalyzeAll — входная точка движка. Синхронна для вызывающего,
// внутри — конкурентный fan-out/fan-in. Единственная причина ошибки —
// невалидный запрос; деградация данных выражается уровнями
// NO_DATA/ERROR по доменам, а не отказом вызова.
func (o *Orchestrator) AnalyzeAll(ctx context.Context, req domain.OrchestrationRequest) (*domain.OrchestrationResult, error) {
	if err := req.Validate(); err != nil {
		o.metrics.TotalRequests.WithLabelValues("invalid").Inc()
		return nil, err
	}

	key := req.CacheKey()

	// 1. Кэш (Hot Path): попадание возвращает результат без fan-out
	if res, ok := o.cache.Get(ctx, key); ok {
		o.metrics.CacheHits.Inc()
		o.metrics.TotalRequests.WithLabelValues("cached").Inc()
		return res, nil
	}
	o.metrics.CacheMisses.Inc()

	// 2. Single-flight: конкурентные дубликаты ждут общий расчет,
	// а не устраивают каждый свой fan-out
	v, err, _ := o.group.Do(key, func() (interface{}, error) {
		// Перепроверка кэша внутри группы (check-then-set)
		if res, ok := o.cache.Get(ctx, key); ok {
			o.metrics.CacheHits.Inc()
			return res, nil
		}

		res := o.analyze(ctx, req)

		// Деградированный расчет (отмена контекста) не кэшируем:
		// следующий запрос имеет шанс на полные данные
		if ctx.Err() == nil {
			o.cache.Set(ctx, key, res)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}

	o.metrics.TotalRequests.WithLabelValues("ok").Inc()
	return v.(*domain.OrchestrationResult), nil
}

// analyze выполняет полный цикл: fan-out -> ожидание -> агрегация -> аудит.
func (o *Orchestrator) analyze(ctx context.Context, req domain.OrchestrationRequest) *domain.OrchestrationResult {
	start := o.now()

	// Слоты результатов фиксированы заранее: горутины не разделяют
	// ничего, кроме собственной ячейки
	var (
		wg          sync.WaitGroup
		walletRes   domain.AnalysisResult
		contractRes domain.AnalysisResult
		socialRes   domain.AnalysisResult
		graphRes    domain.AnalysisResult

		runContract = req.ContractAddress != ""
		runSocial   = req.SocialHandle != ""
	)

	// Кошельковый анализ обязателен всегда
	wg.Add(1)
	go func() {
		defer wg.Done()
		walletRes = o.runDomain(ctx, domain.DomainWallet, func(ctx context.Context) domain.AnalysisResult {
			return o.wallet.Analyze(ctx, req.WalletAddress)
		})
	}()

	if runContract {
		wg.Add(1)
		go func() {
			defer wg.Done()
			contractRes = o.runDomain(ctx, domain.DomainContract, func(ctx context.Context) domain.AnalysisResult {
				return o.contract.Analyze(ctx, req.ContractAddress)
			})
		}()
	}

	if runSocial {
		wg.Add(1)
		go func() {
			defer wg.Done()
			socialRes = o.runDomain(ctx, domain.DomainSocial, func(ctx context.Context) domain.AnalysisResult {
				return o.social.Analyze(ctx, req.SocialHandle)
			})
		}()
	}

	// Графовый анализ: сначала префетч истории у порта, потом счет.
	// Оба шага сидят под тем же потолком времени, что и прочие домены.
	wg.Add(1)
	go func() {
		defer wg.Done()
		graphRes = o.runDomain(ctx, domain.DomainGraph, func(ctx context.Context) domain.AnalysisResult {
			txs, err := o.txSource.WalletTransactions(ctx, req.WalletAddress)
			if err != nil {
				o.logger.Error("transaction prefetch failed",
					zap.String("wallet", req.WalletAddress), zap.Error(err))
				return domain.ErrorResult("an unexpected error occurred during graph analysis")
			}
			return o.graph.Analyze(ctx, txs)
		})
	}()

	wg.Wait()

	// Fan-in: порядок доменов не важен, агрегация — сумма по множеству
	domains := map[string]domain.AnalysisResult{
		domain.DomainWallet: walletRes,
		domain.DomainGraph:  graphRes,
	}
	if runContract {
		domains[domain.DomainContract] = contractRes
	}
	if runSocial {
		domains[domain.DomainSocial] = socialRes
	}

	overall, insufficient := o.overallScore(domains)
	if insufficient {
		o.metrics.InsufficientData.Inc()
	}

	res := &domain.OrchestrationResult{
		Request:                req,
		Domains:                domains,
		OverallScore:           overall,
		OverallRecommendations: mergeRecommendations(domains),
		InsufficientData:       insufficient,
		AnalyzedAt:             start.UTC(),
	}

	duration := o.now().Sub(start)
	o.metrics.RequestDuration.WithLabelValues("ok").Observe(duration.Seconds())

	// Аудит — fire-and-forget: недоступный сток не трогает ответ
	o.auditor.Append(audit.Event{
		ID:                     uuid.New().String(),
		TraceID:                infra.TraceIDFromContext(ctx),
		WalletAddress:          req.WalletAddress,
		ContractAddress:        req.ContractAddress,
		SocialHandle:           req.SocialHandle,
		Domains:                domains,
		OverallScore:           overall,
		OverallRecommendations: res.OverallRecommendations,
		InsufficientData:       insufficient,
		Timestamp:              start.UTC(),
		DurationMs:             duration.Milliseconds(),
	})

	return res
}

// runDomain исполняет один анализатор под потолком времени.
// Контракт анализаторов тотален, но ядро дополнительно страхуется:
// паника или зависание одной задачи не валит батч.
func (o *Orchestrator) runDomain(ctx context.Context, name string,
	run func(ctx context.Context) domain.AnalysisResult) domain.AnalysisResult {

	start := o.now()

	cctx, cancel := context.WithTimeout(ctx, o.opts.AnalyzerTimeout)
	defer cancel()

	done := make(chan domain.AnalysisResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error("analyzer panicked",
					zap.String("analysis_domain", name), zap.Any("panic", r))
				done <- domain.ErrorResult("analyzer failed unexpectedly")
			}
		}()
		done <- run(cctx)
	}()

	var res domain.AnalysisResult
	select {
	case res = <-done:
	case <-cctx.Done():
		// Превышение потолка = ERROR этого домена (TIMEOUT — его вариант).
		// Сам анализатор довершится в фоне и будет отброшен.
		res = domain.ErrorResult("analysis timed out")
		res.Details["timeout"] = true
		o.logger.Warn("analyzer exceeded ceiling",
			zap.String("analysis_domain", name),
			zap.Duration("ceiling", o.opts.AnalyzerTimeout))
	}

	o.metrics.AnalysisDuration.
		WithLabelValues(name, string(res.RiskLevel)).
		Observe(o.now().Sub(start).Seconds())

	return res
}

// overallScore — взвешенное среднее ТОЛЬКО по пригодным доменам,
// с нормировкой на сумму их весов. Второе значение — флаг "данных
// не хватило ни по одному домену".
func (o *Orchestrator) overallScore(domains map[string]domain.AnalysisResult) (int, bool) {
	var weighted, totalWeight float64

	for name, res := range domains {
		if !res.Usable() {
			continue
		}
		w, ok := o.opts.Weights[name]
		if !ok || w <= 0 {
			continue
		}
		weighted += float64(res.Score) * w
		totalWeight += w
	}

	if totalWeight <= 0 {
		// Ноль здесь — НЕ "риска нет"; флаг обязан дойти до потребителя
		return 0, true
	}
	return domain.ClampScore(int(weighted / totalWeight)), false
}

// mergeRecommendations — дедуплицированное объединение рекомендаций
// всех доменов. Сортировка делает результат воспроизводимым побайтово.
func mergeRecommendations(domains map[string]domain.AnalysisResult) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, res := range domains {
		for _, rec := range res.Recommendations {
			if _, ok := seen[rec]; ok {
				continue
			}
			seen[rec] = struct{}{}
			merged = append(merged, rec)
		}
	}
	sort.Strings(merged)
	return merged
}
