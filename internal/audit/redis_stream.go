package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/trustlens-engine/internal/infra"
)

// RedisStream пишет события в Redis Stream (XADD) — append-only журнал,
// который читают витрины и LLM-ассистент объяснений.
type RedisStream struct {
	rdb    *redis.Client
	stream string
}

func NewRedisStream(rdb *redis.Client) *RedisStream {
	return &RedisStream{rdb: rdb, stream: infra.RedisStreamEvents}
}

// WriteBatch отправляет пачку одним pipeline-раундом.
func (w *RedisStream) WriteBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	pipe := w.rdb.Pipeline()
	for _, e := range events {
		values, err := flatten(e)
		if err != nil {
			return fmt.Errorf("flatten audit event %s: %w", e.ID, err)
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: w.stream,
			Values: values,
		})
	}
	_, err := pipe.Exec(ctx)
	return err
}

// flatten — поля стрима плоские, поэтому вложенные структуры
// уходят JSON-строками.
func flatten(e Event) (map[string]interface{}, error) {
	domains, err := json.Marshal(e.Domains)
	if err != nil {
		return nil, err
	}
	recs, err := json.Marshal(e.OverallRecommendations)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":                e.ID,
		"trace_id":          e.TraceID,
		"wallet_address":    e.WalletAddress,
		"contract_address":  e.ContractAddress,
		"social_handle":     e.SocialHandle,
		"domains":           string(domains),
		"overall_score":     strconv.Itoa(e.OverallScore),
		"recommendations":   string(recs),
		"insufficient_data": strconv.FormatBool(e.InsufficientData),
		"timestamp":         e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		"duration_ms":       strconv.FormatInt(e.DurationMs, 10),
	}, nil
}
