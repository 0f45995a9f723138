package audit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStorage копит записанные пачки для проверок.
type fakeStorage struct {
	mu      sync.Mutex
	batches [][]Event
	err     error
}

func (f *fakeStorage) WriteBatch(_ context.Context, events []Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	batch := make([]Event, len(events))
	copy(batch, events)
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeStorage) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func TestSinkDrainsOnStop(t *testing.T) {
	storage := &fakeStorage{}
	sink := NewSink(storage, zap.NewNop(), Options{
		BufferSize:    100,
		FlushInterval: time.Hour, // Тикер не должен успеть — дольет Stop
		BatchSize:     1000,
	})
	sink.Start()

	const n = 25
	for i := 0; i < n; i++ {
		sink.Append(Event{ID: fmt.Sprintf("e%d", i)})
	}
	sink.Stop()

	// Drain Pattern: ни одно событие не потеряно при остановке
	assert.Equal(t, n, storage.total())
}

func TestSinkFlushesOnBatchSize(t *testing.T) {
	storage := &fakeStorage{}
	sink := NewSink(storage, zap.NewNop(), Options{
		BufferSize:    100,
		FlushInterval: time.Hour,
		BatchSize:     5,
	})
	sink.Start()

	for i := 0; i < 5; i++ {
		sink.Append(Event{ID: fmt.Sprintf("e%d", i)})
	}

	// Пачка уходит по достижении лимита, без ожидания тикера
	require.Eventually(t, func() bool { return storage.total() == 5 },
		time.Second, 10*time.Millisecond)

	storage.mu.Lock()
	defer storage.mu.Unlock()
	require.Len(t, storage.batches, 1)
	assert.Len(t, storage.batches[0], 5)

	sink.Stop()
}

func TestSinkDropsAfterStop(t *testing.T) {
	storage := &fakeStorage{}
	sink := NewSink(storage, zap.NewNop(), Options{BufferSize: 10})
	sink.Start()
	sink.Stop()

	// Append после Stop молча дропается, без паники на закрытом канале
	assert.NotPanics(t, func() {
		sink.Append(Event{ID: "late"})
	})
	assert.Equal(t, 0, storage.total())
}

func TestSinkStampsTimestamp(t *testing.T) {
	storage := &fakeStorage{}
	sink := NewSink(storage, zap.NewNop(), Options{BufferSize: 10})
	sink.Start()

	sink.Append(Event{ID: "e1"})
	sink.Stop()

	require.Equal(t, 1, storage.total())
	assert.False(t, storage.batches[0][0].Timestamp.IsZero())
}

func TestSinkShedsLoadOnOverflow(t *testing.T) {
	storage := &fakeStorage{}
	// Воркер не запущен: буфер на 2 события переполнится третьим
	sink := NewSink(storage, zap.NewNop(), Options{BufferSize: 2})

	assert.NotPanics(t, func() {
		for i := 0; i < 10; i++ {
			sink.Append(Event{ID: fmt.Sprintf("e%d", i)})
		}
	})

	// Дольется ровно то, что влезло в буфер
	sink.Start()
	sink.Stop()
	assert.Equal(t, 2, storage.total())
}
