package source

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/xela07ax/trustlens-engine/internal/domain"
)

// SimulatedProvider — заглушка внешнего источника. Включается, когда
// реальные провайдеры недоступны или не сконфигурированы: отдает
// статистически правдоподобные записи, ДЕТЕРМИНИРОВАННЫЕ по адресу.
// Один и тот же адрес всегда дает один и тот же профиль — это важно
// для кэша и воспроизводимости скора.
type SimulatedProvider struct {
	// Latency — максимальный искусственный джиттер ответа (0 = мгновенно).
	// Полезно для нагрузочных прогонов таймаутов оркестратора.
	Latency time.Duration
}

func NewSimulatedProvider() *SimulatedProvider {
	return &SimulatedProvider{}
}

func (c *SimulatedProvider) Name() string { return "simulated" }

// seed — детерминированный источник случайности для конкретной цели
func seed(target string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(target))))
	s := h.Sum64()
	return rand.New(rand.NewSource(int64(s)))
}

func (c *SimulatedProvider) sleep(ctx context.Context, rng *rand.Rand) error {
	if c.Latency <= 0 {
		return nil
	}
	d := time.Duration(rng.Int63n(int64(c.Latency)))
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *SimulatedProvider) WalletData(ctx context.Context, address string) (*WalletRecord, error) {
	rng := seed(address)
	if err := c.sleep(ctx, rng); err != nil {
		return nil, err
	}

	rec := &WalletRecord{
		Source:            c.Name(),
		TransferCount:     rng.Intn(300),
		ApprovalCount:     rng.Intn(30),
		TotalAssets:       1 + rng.Intn(40),
		PortfolioValueUSD: float64(rng.Intn(500000)) / 10,
	}

	// Примерно каждый пятый кошелек несет скам-флаги
	if rng.Intn(5) == 0 {
		rec.ScamAssetCount = 1 + rng.Intn(3)
		for i := 0; i < rec.ScamAssetCount; i++ {
			rec.ScamAssetDetails = append(rec.ScamAssetDetails,
				fmt.Sprintf("token flagged as scam (id %d)", rng.Intn(9000)))
		}
	}

	return rec, nil
}

func (c *SimulatedProvider) ContractData(ctx context.Context, address string) (*ContractRecord, error) {
	rng := seed("contract:" + address)
	if err := c.sleep(ctx, rng); err != nil {
		return nil, err
	}

	rec := &ContractRecord{
		Source:        c.Name(),
		Verified:      rng.Intn(3) != 0,
		VerifiedKnown: true,
	}

	if rng.Intn(4) == 0 {
		n := 1 + rng.Intn(2)
		pool := []string{
			"reentrancy in withdraw path",
			"unchecked external call",
			"owner can mint unlimited supply",
			"proxy admin not timelocked",
		}
		for i := 0; i < n; i++ {
			rec.Vulnerabilities = append(rec.Vulnerabilities, pool[rng.Intn(len(pool))])
		}
	}

	return rec, nil
}

func (c *SimulatedProvider) SocialData(ctx context.Context, handle string) (*SocialRecord, error) {
	rng := seed("social:" + handle)
	if err := c.sleep(ctx, rng); err != nil {
		return nil, err
	}

	followers := rng.Intn(20000)
	following := 1 + rng.Intn(5000)

	return &SocialRecord{
		Source:        c.Name(),
		Followers:     followers,
		Following:     following,
		FollowerRatio: float64(followers) / float64(following),
		HasRatio:      true,
	}, nil
}

// WalletTransactions генерирует историю переводов вокруг адреса.
// Каждый ~седьмой кошелек получает "хабовую" топологию (вся ценность
// стекается в один адрес) — удобно для демонстрации графового сигнала.
func (c *SimulatedProvider) WalletTransactions(ctx context.Context, address string) ([]domain.Transaction, error) {
	rng := seed("txs:" + address)
	if err := c.sleep(ctx, rng); err != nil {
		return nil, err
	}

	peer := func(i int) string {
		return fmt.Sprintf("0xsim%08x%08x", rng.Uint32(), i)
	}

	n := 20 + rng.Intn(40)
	txs := make([]domain.Transaction, 0, n)

	if rng.Intn(7) == 0 {
		// Концентрированная топология: пять отправителей, один получатель
		hub := peer(0)
		senders := make([]string, 5)
		for i := range senders {
			senders[i] = peer(1 + i)
		}
		for i := 0; i < n; i++ {
			txs = append(txs, domain.Transaction{
				FromAddress: senders[i%len(senders)],
				ToAddress:   hub,
				Value:       100 + float64(rng.Intn(10000)),
			})
		}
		return txs, nil
	}

	// Обычная рассеянная активность вокруг самого кошелька
	for i := 0; i < n; i++ {
		from, to := address, peer(i)
		if rng.Intn(2) == 0 {
			from, to = to, from
		}
		txs = append(txs, domain.Transaction{
			FromAddress: from,
			ToAddress:   to,
			Value:       float64(rng.Intn(5000)),
		})
	}
	return txs, nil
}
