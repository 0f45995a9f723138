package source

import (
	"context"
	"fmt"
	"time"

	"github.com/xela07ax/trustlens-engine/internal/domain"
)

// Пакет source — Data-Source порт движка. Каждый анализатор получает
// нормализованные записи отсюда и не знает, какой провайдер их собрал.
//
// Контракт порта: отсутствие данных — это (nil, nil) или пустой срез,
// а НЕ ошибка. Ошибка возвращается только при транспортном сбое,
// и анализаторы обязаны её гасить локально.

// WalletRecord — нормализованные данные о кошельке от одного провайдера.
type WalletRecord struct {
	Source string `json:"source"` // Имя провайдера (bitsCrunch, ContractScan...)

	// Скам-флаги: количество помеченных активов и их описания
	ScamAssetCount   int      `json:"scam_asset_count"`
	ScamAssetDetails []string `json:"scam_asset_details,omitempty"`

	// Поведение: объёмы трансферов и выданных апрувов из событийных логов
	TransferCount int `json:"transfer_count"`
	ApprovalCount int `json:"approval_count"`

	// Сводка портфеля
	TotalAssets       int     `json:"total_assets"`
	PortfolioValueUSD float64 `json:"portfolio_value_usd"`
}

// ContractRecord — нормализованные данные о смарт-контракте.
type ContractRecord struct {
	Source          string   `json:"source"`
	Vulnerabilities []string `json:"vulnerabilities,omitempty"`

	// VerifiedKnown отделяет "источник не знает" от "не верифицирован"
	Verified      bool `json:"verified"`
	VerifiedKnown bool `json:"verified_known"`
}

// SocialRecord — нормализованные данные соцпрофиля.
type SocialRecord struct {
	Source    string `json:"source"`
	Followers int    `json:"followers"`
	Following int    `json:"following"`

	// FollowerRatio = followers/following; HasRatio=false, когда
	// провайдер не отдал обе величины
	FollowerRatio float64 `json:"follower_ratio"`
	HasRatio      bool    `json:"has_ratio"`
}

// Provider — один внешний источник данных.
// Ответственность за ретраи, лимиты и circuit breaker лежит на обёртке
// ReliableProvider, а не на вызывающем коде.
type Provider interface {
	Name() string

	WalletData(ctx context.Context, address string) (*WalletRecord, error)
	ContractData(ctx context.Context, address string) (*ContractRecord, error)
	SocialData(ctx context.Context, handle string) (*SocialRecord, error)

	// WalletTransactions отдает историю переводов для графового анализа.
	// Пустой срез — валидный ответ.
	WalletTransactions(ctx context.Context, address string) ([]domain.Transaction, error)
}

// ThrottleError — провайдер попросил притормозить (например, прислал
// Retry-After). Ретрай-цикл использует RetryAfter вместо обычного бэкоффа.
type ThrottleError struct {
	RetryAfter time.Duration
	Cause      error
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("throttled: retry after %v (cause: %v)", e.RetryAfter, e.Cause)
}

func (e *ThrottleError) Unwrap() error { return e.Cause }
