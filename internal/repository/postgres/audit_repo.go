package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xela07ax/trustlens-engine/internal/audit"

	_ "github.com/jackc/pgx/v5/stdlib" // Драйвер Postgres
)

// AuditRepo — альтернативный сток аудита: пакетная вставка в Postgres.
// Выбирается конфигом audit.sink = "postgres", когда события нужны
// для SQL-аналитики, а не только для стрима.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(connString string, maxConns int32) (*AuditRepo, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if maxConns <= 0 {
		maxConns = 15
	}
	db.SetMaxOpenConns(int(maxConns))
	db.SetMaxIdleConns(int(maxConns))
	db.SetConnMaxLifetime(5 * time.Minute)
	return &AuditRepo{db: db}, nil
}

// Ping проверяет доступность базы на старте.
func (r *AuditRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *AuditRepo) Close() error { return r.db.Close() }

// WriteBatch сохраняет пачку событий одним INSERT.
func (r *AuditRepo) WriteBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	// Количество колонок в таблице analysis_events
	numFields := 11
	placeholderStr := ""
	vals := make([]interface{}, 0, len(events)*numFields)

	// Динамически строим запрос для пакетной вставки
	for i, e := range events {
		p := i * numFields
		placeholderStr += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d),",
			p+1, p+2, p+3, p+4, p+5, p+6, p+7, p+8, p+9, p+10, p+11)

		domains, _ := json.Marshal(e.Domains)
		recs, _ := json.Marshal(e.OverallRecommendations)

		vals = append(vals,
			e.ID, e.TraceID, e.WalletAddress, e.ContractAddress, e.SocialHandle,
			domains, e.OverallScore, recs, e.InsufficientData, e.DurationMs, e.Timestamp,
		)
	}

	query := fmt.Sprintf(
		"INSERT INTO analysis_events (id, trace_id, wallet_address, contract_address, social_handle, domains, overall_score, recommendations, insufficient_data, duration_ms, timestamp) VALUES %s",
		strings.TrimSuffix(placeholderStr, ","),
	)

	_, err := r.db.ExecContext(ctx, query, vals...)
	return err
}
