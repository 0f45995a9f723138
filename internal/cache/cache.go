// Package cache — кэш результатов оркестрации. Единственное состояние,
// разделяемое между конкурентными запросами движка.
package cache

import (
	"context"

	"github.com/xela07ax/trustlens-engine/internal/domain"
)

// ResultCache отображает составной ключ запроса на готовый результат.
// Контракт: Get для протухшей или отсутствующей записи возвращает
// (nil, false); ошибки бэкенда гасятся внутри реализации — деградация
// кэша не должна ломать основной путь.
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.OrchestrationResult, bool)
	Set(ctx context.Context, key string, result *domain.OrchestrationResult)
}
