package audit

/*
Файл sink.go реализует асинхронный сток аудит-событий движка.

Ключевые особенности архитектуры:
- Non-blocking Logging: события уходят в буферизованный канал; задержки
  стока (Redis/Postgres) не влияют на время ответа оркестратора.
- Batching: события копятся в памяти и пишутся пачками по таймеру или
  при достижении лимита.
- Drain Pattern & Graceful Shutdown: при остановке вход «запирается»,
  воркер вычитывает остатки канала и делает финальный flush — события
  не теряются при перезагрузке.
- Load Shedding: при переполнении буфера событие дропается с записью
  в обычный лог, а не блокирует вызывающего.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// StorageInterface определяет, куда физически сохраняются события
type StorageInterface interface {
	// WriteBatch сохраняет пачку событий за один раз
	WriteBatch(ctx context.Context, events []Event) error
}

// Appender — то, что видит оркестратор: fire-and-forget запись.
type Appender interface {
	Append(event Event)
}

// Options — настройки буферизации (из AuditConfig).
type Options struct {
	BufferSize    int
	FlushInterval time.Duration
	BatchSize     int
}

func (o *Options) defaults() {
	if o.BufferSize <= 0 {
		o.BufferSize = 10000
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 500 * time.Millisecond
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
}

type Sink struct {
	ch     chan Event
	repo   StorageInterface
	logger *zap.Logger
	wg     sync.WaitGroup

	flushInterval time.Duration
	batchSize     int

	// Атомарный флаг (0 - открыт, 1 - закрыт): защита от Append после Stop
	isClosed int32
}

func NewSink(repo StorageInterface, logger *zap.Logger, opts Options) *Sink {
	opts.defaults()
	return &Sink{
		ch:            make(chan Event, opts.BufferSize),
		repo:          repo,
		logger:        logger.With(zap.String("mod", "audit-sink")),
		flushInterval: opts.FlushInterval,
		batchSize:     opts.BatchSize,
	}
}

func (s *Sink) Start() {
	s.wg.Add(1)
	go s.worker()
}

// Stop «запирает» вход в канал и ждет, пока воркер всё допишет.
func (s *Sink) Stop() {
	atomic.StoreInt32(&s.isClosed, 1)

	// Крошечная пауза, чтобы текущие Append успели проскочить
	time.Sleep(10 * time.Millisecond)

	s.logger.Info("stopping audit sink: closing channel and flushing buffer...")
	close(s.ch)
	s.wg.Wait()
	s.logger.Info("audit sink stopped gracefully")
}

// Append — неблокирующая запись. Сбои стока никогда не доходят
// до вызывающего: худший случай — событие уйдет в обычный лог.
func (s *Sink) Append(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if atomic.LoadInt32(&s.isClosed) == 1 {
		s.logger.Warn("audit event dropped: sink is stopping", zap.String("id", event.ID))
		return
	}

	select {
	case s.ch <- event:
	default:
		// Буфер переполнен (Backpressure) — сбрасываем нагрузку
		s.logger.Error("audit_buffer_overflow",
			zap.String("trace_id", event.TraceID),
			zap.String("wallet", event.WalletAddress),
		)
	}
}

func (s *Sink) worker() {
	defer s.wg.Done()

	batch := make([]Event, 0, s.batchSize)
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) > 0 {
			// Background: основной контекст к этому моменту может быть закрыт
			if err := s.repo.WriteBatch(context.Background(), batch); err != nil {
				s.logger.Error("audit flush failed", zap.Error(err))
			}
			batch = batch[:0]
		}
	}

	for {
		select {
		case event, ok := <-s.ch:
			if !ok {
				// Канал закрыт в Stop(): вычитали остатки, финальный flush
				flush()
				s.logger.Info("audit worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= s.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// NopAppender — заглушка для режима audit.sink = "off" и тестов.
type NopAppender struct{}

func (NopAppender) Append(Event) {}
