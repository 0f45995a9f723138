package source

import (
	"context"
	"sync"

	"github.com/xela07ax/trustlens-engine/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Aggregator опрашивает все сконфигурированные провайдеры параллельно
// и склеивает их ответы. Упавший провайдер выпадает из выборки, пока
// остальные отвечают; ошибка наружу уходит только когда упали ВСЕ —
// иначе транспортный сбой одного источника выглядел бы как NO_DATA.
type Aggregator struct {
	providers []Provider
	logger    *zap.Logger
}

func NewAggregator(logger *zap.Logger, providers ...Provider) *Aggregator {
	return &Aggregator{
		providers: providers,
		logger:    logger.Named("aggregator"),
	}
}

// WalletData собирает записи о кошельке со всех провайдеров.
func (a *Aggregator) WalletData(ctx context.Context, address string) ([]WalletRecord, error) {
	return collect(ctx, a, address, Provider.WalletData)
}

// ContractData собирает записи о контракте со всех провайдеров.
func (a *Aggregator) ContractData(ctx context.Context, address string) ([]ContractRecord, error) {
	return collect(ctx, a, address, Provider.ContractData)
}

// SocialData собирает записи соцпрофиля со всех провайдеров.
func (a *Aggregator) SocialData(ctx context.Context, handle string) ([]SocialRecord, error) {
	return collect(ctx, a, handle, Provider.SocialData)
}

// WalletTransactions возвращает историю переводов от ПЕРВОГО провайдера,
// у которого она нашлась. Склеивать транзакции разных источников нельзя —
// получатся дубли рёбер в графе.
func (a *Aggregator) WalletTransactions(ctx context.Context, address string) ([]domain.Transaction, error) {
	var lastErr error
	for _, p := range a.providers {
		txs, err := p.WalletTransactions(ctx, address)
		if err != nil {
			a.logger.Warn("transaction fetch failed",
				zap.String("provider", p.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		if len(txs) > 0 {
			return txs, nil
		}
	}
	// Все промолчали: если хоть кто-то упал — отдаем ошибку транспорта,
	// иначе это честное "переводов нет"
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

// collect — общий fan-out/fan-in для трёх доменных выборок.
// errgroup здесь ради Wait: индивидуальные сбои гасятся внутри задачи,
// чтобы один упавший провайдер не отменял запросы соседей.
func collect[R any](ctx context.Context, a *Aggregator, target string,
	fetch func(Provider, context.Context, string) (*R, error)) ([]R, error) {

	var (
		mu      sync.Mutex
		records []R
		lastErr error
		failed  int
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range a.providers {
		p := p
		g.Go(func() error {
			rec, err := fetch(p, ctx, target)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				a.logger.Warn("provider fetch failed",
					zap.String("provider", p.Name()), zap.Error(err))
				lastErr = err
				failed++
				return nil
			}
			if rec != nil {
				records = append(records, *rec)
			}
			// rec == nil: провайдер не знает этот домен — не ошибка
			return nil
		})
	}
	_ = g.Wait()

	if len(records) == 0 && failed > 0 {
		return nil, lastErr
	}
	return records, nil
}
