package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"github.com/xela07ax/trustlens-engine/internal/domain"
	"golang.org/x/time/rate"
)

// ReliableProvider — декоратор надёжности вокруг одного провайдера.
// Порядок защиты: Rate Limiter -> Circuit Breaker -> Retry -> таймаут вызова.
// Лимитирование внешних API — ответственность порта, оркестратор про него
// не знает.
type ReliableProvider struct {
	next    Provider
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter

	attempts    uint
	callTimeout time.Duration
}

// ReliabilityOptions — настройки декоратора (из EngineConfig).
type ReliabilityOptions struct {
	Attempts    uint          // Попыток на один вызов (default 3)
	CallTimeout time.Duration // Предел одной попытки (default 10s)
	RPS         float64       // Лимит запросов к провайдеру (default 100)
	Burst       int           // Допустимый всплеск (default 20)
}

func (o *ReliabilityOptions) defaults() {
	if o.Attempts == 0 {
		o.Attempts = 3
	}
	if o.CallTimeout == 0 {
		o.CallTimeout = 10 * time.Second
	}
	if o.RPS == 0 {
		o.RPS = 100
	}
	if o.Burst == 0 {
		o.Burst = 20
	}
}

func NewReliableProvider(next Provider, opts ReliabilityOptions) *ReliableProvider {
	opts.defaults()

	// Настройка предохранителя: после 5 последовательных сбоев перестаем
	// долбить провайдера и даем ему 30 секунд отдышаться
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "source-" + next.Name(),
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &ReliableProvider{
		next:        next,
		cb:          cb,
		limiter:     rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst),
		attempts:    opts.Attempts,
		callTimeout: opts.CallTimeout,
	}
}

func (p *ReliableProvider) Name() string { return p.next.Name() }

func (p *ReliableProvider) WalletData(ctx context.Context, address string) (*WalletRecord, error) {
	return guard(p, ctx, address, Provider.WalletData)
}

func (p *ReliableProvider) ContractData(ctx context.Context, address string) (*ContractRecord, error) {
	return guard(p, ctx, address, Provider.ContractData)
}

func (p *ReliableProvider) SocialData(ctx context.Context, handle string) (*SocialRecord, error) {
	return guard(p, ctx, handle, Provider.SocialData)
}

func (p *ReliableProvider) WalletTransactions(ctx context.Context, address string) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := p.execute(ctx, func(ctx context.Context) error {
		var callErr error
		txs, callErr = p.next.WalletTransactions(ctx, address)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// guard — общая обвязка для трёх доменных методов.
func guard[R any](p *ReliableProvider, ctx context.Context, target string,
	fetch func(Provider, context.Context, string) (*R, error)) (*R, error) {

	var rec *R
	err := p.execute(ctx, func(ctx context.Context) error {
		var callErr error
		rec, callErr = fetch(p.next, ctx, target)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (p *ReliableProvider) execute(ctx context.Context, call func(ctx context.Context) error) error {
	// 1. Rate Limiter
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	// 2. Circuit Breaker
	_, err := p.cb.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(p.attempts),
			// Умный расчет задержки
			retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
				// Если провайдер вернул ThrottleError (считал Retry-After),
				// уважаем его просьбу
				var tErr *ThrottleError
				if errors.As(err, &tErr) {
					return tErr.RetryAfter
				}

				// Иначе (сетевой лаг, 500-ка) — экспоненциальный бэкофф
				return retry.BackOffDelay(n, err, config)
			}),
		)

		retryErr := r.Do(func() error {
			tCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
			defer cancel()
			return call(tCtx)
		})

		return nil, retryErr
	})

	return err
}
