package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	data map[string][]byte
	puts int
	err  error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Put(_ context.Context, key string, value []byte) error {
	if m.err != nil {
		return m.err
	}
	m.puts++
	m.data[key] = value
	return nil
}

func record(n int) Record {
	return Record{ID: fmt.Sprintf("r%d", n), Method: "GET", URL: "https://api.test", Status: 200, ElapsedMs: int64(n)}
}

func TestLedger_AppendIsNewestFirst(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, record(1)))
	require.NoError(t, l.Append(ctx, record(2)))

	records := l.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "r2", records[0].ID)
	assert.Equal(t, "r1", records[1].ID)

	latest, ok := l.Latest()
	assert.True(t, ok)
	assert.Equal(t, "r2", latest.ID)
}

func TestLedger_CapacityEvictsOldest(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()

	for i := 1; i <= 55; i++ {
		require.NoError(t, l.Append(ctx, record(i)))
		want := i
		if want > 50 {
			want = 50
		}
		assert.Equal(t, want, l.Len())
	}

	records := l.Records()
	require.Len(t, records, 50)
	assert.Equal(t, "r55", records[0].ID)
	assert.Equal(t, "r6", records[49].ID)
	_, found := l.Find("r5")
	assert.False(t, found)
}

func TestLedger_CustomCapacity(t *testing.T) {
	l := NewLedger(WithCapacity(3))
	for i := 1; i <= 5; i++ {
		require.NoError(t, l.Append(context.Background(), record(i)))
	}
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 3, l.Capacity())

	assert.Equal(t, DefaultCapacity, NewLedger(WithCapacity(0)).Capacity())
}

func TestLedger_Clear(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append(context.Background(), record(1)))

	require.NoError(t, l.Clear(context.Background()))
	assert.Equal(t, 0, l.Len())
	_, ok := l.Latest()
	assert.False(t, ok)

	// clearing an empty ledger is fine
	require.NoError(t, l.Clear(context.Background()))
}

func TestLedger_RecordsIsACopy(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append(context.Background(), record(1)))

	records := l.Records()
	records[0].ID = "changed"

	latest, _ := l.Latest()
	assert.Equal(t, "r1", latest.ID)
}

func TestLedger_RecordsShareNoMaps(t *testing.T) {
	l := NewLedger()
	rec := record(1)
	rec.RequestHeaders = map[string]string{"Accept": "application/json"}
	rec.RequestBody = map[string]any{"tags": []any{"a"}}
	rec.ResponseBody = map[string]any{"msg": "original"}
	require.NoError(t, l.Append(context.Background(), rec))

	rec.RequestHeaders["Injected"] = "yes"
	rec.ResponseBody.(map[string]any)["msg"] = "changed"

	records := l.Records()
	records[0].RequestHeaders["Injected"] = "yes"
	records[0].RequestBody.(map[string]any)["tags"].([]any)[0] = "changed"

	found, ok := l.Find("r1")
	require.True(t, ok)
	found.ResponseBody.(map[string]any)["msg"] = "changed"

	latest, _ := l.Latest()
	assert.Equal(t, map[string]string{"Accept": "application/json"}, latest.RequestHeaders)
	assert.Equal(t, map[string]any{"tags": []any{"a"}}, latest.RequestBody)
	assert.Equal(t, map[string]any{"msg": "original"}, latest.ResponseBody)
}

func TestCloneValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"string", "text"},
		{"number", json.Number("9007199254740993")},
		{"nested", map[string]any{"a": []any{map[string]any{"b": true}}}},
		{"string map", map[string]string{"k": "v"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.in, CloneValue(tt.in))
		})
	}
}

func TestLedger_PersistsEveryMutation(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	l := NewLedger(WithStore(store))
	require.NoError(t, l.Append(ctx, record(1)))
	require.NoError(t, l.Append(ctx, record(2)))
	assert.Equal(t, 2, store.puts)

	reloaded := NewLedger(WithStore(store))
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, l.Records()[0].ID, reloaded.Records()[0].ID)
	assert.Equal(t, 2, reloaded.Len())

	require.NoError(t, l.Clear(ctx))
	assert.JSONEq(t, `[]`, string(store.data[StoreKey]))
}

func TestLedger_LoadTruncatesToCapacity(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	big := NewLedger(WithStore(store))
	for i := 1; i <= 10; i++ {
		require.NoError(t, big.Append(ctx, record(i)))
	}

	small := NewLedger(WithStore(store), WithCapacity(4))
	require.NoError(t, small.Load(ctx))
	assert.Equal(t, 4, small.Len())
	assert.Equal(t, "r10", small.Records()[0].ID)
}

func TestLedger_SaveErrorKeepsRecord(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk full")

	l := NewLedger(WithStore(store))
	err := l.Append(context.Background(), record(1))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving history")
	assert.Equal(t, 1, l.Len())
}

func TestLedger_ConcurrentAppend(t *testing.T) {
	l := NewLedger()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = l.Append(context.Background(), record(n))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, l.Len())
}

func TestRecord_IsError(t *testing.T) {
	assert.False(t, Record{Status: 200}.IsError())
	assert.False(t, Record{Status: 204}.IsError())
	assert.True(t, Record{Status: 404}.IsError())
	assert.True(t, Record{Status: StatusTransportError}.IsError())
	assert.Equal(t, 1500*time.Millisecond, Record{ElapsedMs: 1500}.Elapsed())
}

func TestSizeOf(t *testing.T) {
	tests := []struct {
		name string
		data any
		want int
	}{
		{name: "object", data: map[string]any{"msg": "no"}, want: len(`{"msg":"no"}`)},
		{name: "string", data: "pong", want: len(`"pong"`)},
		{name: "nil", data: nil, want: len("null")},
		{name: "unencodable", data: make(chan int), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SizeOf(tt.data))
		})
	}
}
