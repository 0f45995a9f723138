package infra

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "trustlens"
)

const (
	// RedisStreamEvents — append-only поток аудит-событий оркестратора
	RedisStreamEvents = RedisNamespace + ":events"

	// redisKeyResultCachePrefix — префикс ключей кэша результатов
	redisKeyResultCachePrefix = RedisNamespace + ":result:"
)

// RedisKeyResultCache строит ключ кэша для составного ключа запроса.
func RedisKeyResultCache(requestKey string) string {
	return redisKeyResultCachePrefix + requestKey
}
